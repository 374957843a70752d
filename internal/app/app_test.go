package app_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"recruitportal_backend/internal/app"
	"recruitportal_backend/internal/config"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/test/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupServer(t *testing.T) (*helpers.TestServer, *gorm.DB) {
	t.Helper()
	logger.Init("test")
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.JWT.Secret = helpers.TestJWTSecret
	cfg.RateLimit.RequestsPerMinute = 1000
	cfg.RateLimit.Burst = 100

	db := helpers.NewTestDB(t)
	sc := services.NewServiceContainer(services.ContainerOptions{CacheTTL: time.Minute})
	return helpers.NewTestServer(t, app.SetupRouter(cfg, db, sc)), db
}

func decode(t *testing.T, body string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), v), "тело ответа: %s", body)
}

func TestPublicRoutes(t *testing.T) {
	ts, db := setupServer(t)
	helpers.CreatePlan(t, db, "Starter", 5)

	res, _ := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var plans struct {
		Total int `json:"total"`
	}
	decode(t, body, &plans)
	assert.Equal(t, 1, plans.Total)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/services", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "lead-generation")
}

func TestAccessControl(t *testing.T) {
	ts, _ := setupServer(t)
	client := helpers.Token(t, "client-1", models.UserRoleClient)
	admin := helpers.Token(t, "admin-1", models.UserRoleAdmin)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/services/cv-sourcing/roles", "",
		map[string]interface{}{"title": "Go Developer"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "UNAUTHORIZED")

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/plans", client, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/plans", admin, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestRoleCreationSpendsCredit(t *testing.T) {
	ts, db := setupServer(t)
	token := helpers.Token(t, "client-1", models.UserRoleClient)
	plan := helpers.CreatePlan(t, db, "Starter", 2)

	// 1. Без кредитов роль не создается
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/services/cv-sourcing/roles", token,
		map[string]interface{}{"title": "Go Developer"})
	require.Equal(t, http.StatusPaymentRequired, res.StatusCode, body)
	assert.Contains(t, body, "INSUFFICIENT_CREDITS")

	// 2. Покупка
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/subscriptions/purchase", token,
		map[string]interface{}{"planId": plan.ID, "billingCycle": "monthly", "paidAmount": 100})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var entry struct {
		ID               string `json:"id"`
		RemainingCredits int    `json:"remainingCredits"`
	}
	decode(t, body, &entry)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 2, entry.RemainingCredits)

	// 3. Невалидный запрос отклоняется до списания
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/services/cv-sourcing/roles", token,
		map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	// 4. Создание роли списывает кредит и попадает в общий индекс
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/services/cv-sourcing/roles", token,
		map[string]interface{}{"title": "Go Developer", "seniority": "senior"})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)
	var role struct {
		ID string `json:"id"`
	}
	decode(t, body, &role)
	t.Logf("Создана роль %s", role.ID)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/subscriptions/my/credits", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var credits struct {
		RemainingCredits int `json:"remainingCredits"`
	}
	decode(t, body, &credits)
	assert.Equal(t, 1, credits.RemainingCredits)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/roles", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var index struct {
		Total int `json:"total"`
	}
	decode(t, body, &index)
	assert.Equal(t, 1, index.Total)
	assert.Contains(t, body, role.ID)

	// 5. Удаление роли
	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/services/cv-sourcing/roles/"+role.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/roles", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	decode(t, body, &index)
	assert.Equal(t, 0, index.Total)
}

func TestConsumeCredits(t *testing.T) {
	ts, db := setupServer(t)
	token := helpers.Token(t, "client-1", models.UserRoleClient)
	plan := helpers.CreatePlan(t, db, "Starter", 3)
	helpers.CreateSubscription(t, db, "client-1", plan.ID, 3, nil)

	var result struct {
		Consumed         bool `json:"consumed"`
		RemainingCredits int  `json:"remainingCredits"`
	}

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/subscriptions/consume", token,
		map[string]interface{}{"amount": 2})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	decode(t, body, &result)
	assert.True(t, result.Consumed)
	assert.Equal(t, 1, result.RemainingCredits)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/subscriptions/consume", token,
		map[string]interface{}{"amount": 5})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	decode(t, body, &result)
	assert.False(t, result.Consumed)
	assert.Equal(t, 1, result.RemainingCredits)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/subscriptions/consume", token,
		map[string]interface{}{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
