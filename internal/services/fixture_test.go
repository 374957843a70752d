package services_test

import (
	"context"
	"testing"
	"time"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/test/helpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Начало тестового времени: все покупки совершаются 10 января 2024
var testStart = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	clock *helpers.StepClock
	sc    *services.ServiceContainer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Init("test")

	clock := helpers.NewStepClock(testStart, time.Millisecond)
	return &fixture{
		ctx:   context.Background(),
		db:    helpers.NewTestDB(t),
		clock: clock,
		sc: services.NewServiceContainer(services.ContainerOptions{
			CacheTTL:      time.Minute,
			RefundRetries: 2,
			Now:           clock.Now,
		}),
	}
}

// purchase покупает месячный план с заданным числом кредитов
func (f *fixture) purchase(t *testing.T, userID string, credits int) *models.UserSubscription {
	t.Helper()
	plan := helpers.CreatePlan(t, f.db, "Plan "+uuid.NewString()[:8], credits)
	sub, err := f.sc.SubscriptionService.Purchase(f.ctx, f.db, userID, &dto.PurchaseRequest{
		PlanID:       plan.ID,
		BillingCycle: models.BillingCycleMonthly,
		PaidAmount:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) remaining(t *testing.T, userID string) int {
	t.Helper()
	total, err := f.sc.SubscriptionService.TotalRemainingCredits(f.ctx, f.db, userID)
	require.NoError(t, err)
	return total
}

func cvRequest(title string) *dto.CreateCvSourcingRoleRequest {
	return &dto.CreateCvSourcingRoleRequest{
		RoleFields: dto.RoleFields{Title: title, Location: "Remote"},
		Seniority:  "senior",
		SalaryMin:  decimal.NewFromInt(4000),
		SalaryMax:  decimal.NewFromInt(6000),
	}
}
