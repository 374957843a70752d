package helpers

import (
	"sync"
	"testing"
	"time"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB поднимает SQLite в памяти с полной схемой.
// Одно соединение: все запросы внутри транзакции обязаны идти через tx.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err, "Не удалось открыть тестовую БД")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "Не удалось выполнить AutoMigrate для тестовой БД")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreatePlan создает активный план с заданным количеством кредитов во всех циклах
func CreatePlan(t *testing.T, db *gorm.DB, title string, credits int) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		Title:           title,
		MonthlyPrice:    decimal.NewFromInt(100),
		MonthlyCredits:  credits,
		AnnualPrice:     decimal.NewFromInt(1000),
		AnnualCredits:   credits * 12,
		AdhocPrice:      decimal.NewFromInt(50),
		AdhocCredits:    credits,
		CreditUnitPrice: decimal.NewFromInt(10),
		Currency:        "USD",
		IsActive:        true,
	}
	require.NoError(t, plan.SetFeatures([]string{"Dedicated recruiter"}))
	require.NoError(t, db.Create(plan).Error, "Не удалось создать план")
	return plan
}

// CreateSubscription кладет в реестр запись напрямую, минуя покупку
func CreateSubscription(t *testing.T, db *gorm.DB, userID, planID string, remaining int, end *time.Time) *models.UserSubscription {
	t.Helper()

	sub := &models.UserSubscription{
		UserID:           userID,
		PlanID:           planID,
		BillingCycle:     models.BillingCycleMonthly,
		PaidAmount:       decimal.NewFromInt(100),
		Currency:         "USD",
		TotalCredits:     remaining,
		RemainingCredits: remaining,
		StartDate:        time.Now().UTC(),
		EndDate:          end,
		Status:           models.SubscriptionStatusActive,
	}
	require.NoError(t, db.Create(sub).Error, "Не удалось создать запись реестра")
	return sub
}

// StepClock - детерминированные часы: каждый вызов сдвигает время на шаг
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start.UTC(), step: step}
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.now
	c.now = c.now.Add(c.step)
	return current
}

// Set переставляет часы
func (c *StepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
