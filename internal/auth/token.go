package auth

import (
	"errors"
	"fmt"
	"time"

	"recruitportal_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims - данные, которые провайдер идентичности кладет в токен
type Claims struct {
	UserID string          `json:"sub"`
	Role   models.UserRole `json:"role"`
}

// GenerateToken подписывает HS256-токен. Нужен сидам и тестам:
// в проде токены выпускает внешний провайдер с тем же секретом.
func GenerateToken(secret, issuer, userID string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iss":  issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия и достает claims
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := mapClaims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}

	role, _ := mapClaims["role"].(string)
	if role == "" {
		role = string(models.UserRoleClient)
	}

	return &Claims{UserID: sub, Role: models.UserRole(role)}, nil
}
