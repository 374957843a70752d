package handlers

import (
	"net/http"

	"recruitportal_backend/internal/auth"
	"recruitportal_backend/internal/middleware"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// RoleHandler - CRUD ролей одной услуги. Маршруты: /services/<slug>/roles
type RoleHandler[T any, C any, U any] struct {
	*BaseHandler
	roleService services.ServiceRoleService[T, C, U]
}

func NewRoleHandler[T any, C any, U any](base *BaseHandler, roleService services.ServiceRoleService[T, C, U]) *RoleHandler[T, C, U] {
	return &RoleHandler[T, C, U]{
		BaseHandler: base,
		roleService: roleService,
	}
}

func (h *RoleHandler[T, C, U]) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	roles := r.Group("/services/" + h.roleService.ServiceTag().Slug() + "/roles")
	roles.Use(guards.Auth, middleware.RequirePermission(auth.PermissionRolesWrite))
	{
		roles.POST("", guards.RateLimit, h.Create)
		roles.GET("", h.List)
		roles.GET("/:roleId", h.Get)
		roles.PUT("/:roleId", h.Update)
		roles.DELETE("/:roleId", h.SoftDelete)
		roles.POST("/:roleId/restore", h.Restore)
		roles.DELETE("/:roleId/purge", h.HardDelete)
		roles.PUT("/:roleId/counts", h.UpdateCounts)
	}

	// Конвейер результатов пишет счетчики в роли любых клиентов
	results := r.Group("/services/" + h.roleService.ServiceTag().Slug() + "/roles")
	results.Use(guards.Auth, middleware.RequirePermission(auth.PermissionResultsIngest))
	{
		results.POST("/:roleId/results", h.AddResult)
	}
}

// Create списывает один кредит. При нехватке кредитов - 402 и текущий остаток.
func (h *RoleHandler[T, C, U]) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	req := new(C)
	if !h.BindAndValidate_JSON(c, req) {
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), h.GetDB(c), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler[T, C, U]) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	roles, err := h.roleService.List(c.Request.Context(), h.GetDB(c), userID, ParseQueryBool(c, "includeDeleted"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles, "total": len(roles)})
}

func (h *RoleHandler[T, C, U]) Get(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	role, err := h.roleService.Get(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler[T, C, U]) Update(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	req := new(U)
	if !h.BindAndValidate_JSON(c, req) {
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler[T, C, U]) SoftDelete(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.roleService.SoftDelete(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoleHandler[T, C, U]) Restore(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	role, err := h.roleService.Restore(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler[T, C, U]) HardDelete(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.roleService.HardDelete(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RoleHandler[T, C, U]) UpdateCounts(c *gin.Context) {
	userID, ok := h.scope(c)
	if !ok {
		return
	}

	var req dto.UpdateCountsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	role, err := h.roleService.UpdateCandidateCounts(c.Request.Context(), h.GetDB(c), userID, c.Param("roleId"), req.Counts)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (h *RoleHandler[T, C, U]) AddResult(c *gin.Context) {
	var req dto.AddResultRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	role, err := h.roleService.AddResult(c.Request.Context(), h.GetDB(c), "", c.Param("roleId"), req.Counts)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// scope - владелец для проверки доступа; админ работает с любыми ролями
func (h *RoleHandler[T, C, U]) scope(c *gin.Context) (string, bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return "", false
	}
	if h.IsAdmin(c) {
		return "", true
	}
	return userID, true
}
