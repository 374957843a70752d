package middleware

import (
	"net/http"
	"strings"

	"recruitportal_backend/internal/auth"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/pkg/apperrors"
	"recruitportal_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет токен провайдера идентичности.
// userID в контексте считается подтвержденным.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authorization header missing or invalid"))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(secret, tokenStr)
		if err != nil {
			logger.CtxDebug(c.Request.Context(), "Token rejected", "error", err)
			apperrors.HandleError(c, apperrors.New(apperrors.CodeInvalidToken, "auth", "Invalid token", http.StatusUnauthorized))
			return
		}

		c.Set(contextkeys.UserIDContextKey, claims.UserID)
		c.Set(contextkeys.UserRoleContextKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RoleMiddleware - доступ только для указанной роли
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != requiredRole {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// RequirePermission - доступ по таблице разрешений
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		if !auth.HasPermission(role, permission) {
			logger.CtxWarn(c.Request.Context(), "Permission denied", "role", role, "permission", permission)
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDContextKey)
}

func GetUserRole(c *gin.Context) models.UserRole {
	val, exists := c.Get(contextkeys.UserRoleContextKey)
	if !exists {
		return ""
	}
	switch role := val.(type) {
	case models.UserRole:
		return role
	case string:
		return models.UserRole(role)
	}
	return ""
}
