package services_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/pkg/apperrors"
	"recruitportal_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCheckAndDeduct_InsufficientCredits(t *testing.T) {
	f := newFixture(t)

	result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, "Backend Engineer")

	require.NoError(t, err, "нехватка кредитов - не ошибка")
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RemainingCredits)
	assert.Contains(t, result.Message, "CV Sourcing")

	var count int64
	require.NoError(t, f.db.Model(&models.CreditEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCheckAndDeduct_WritesUsedEvent(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 2)

	result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagDirect, "Head of Sales")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.RemainingCredits)
	assert.Equal(t, sub.ID, result.SubscriptionID)

	events, err := f.sc.CreditHistoryService.FindByUserAndService(f.ctx, f.db, "user-1", models.ServiceTagDirect, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.CreditActionUsed, events[0].ActionType)
	assert.Equal(t, -1, events[0].CreditAmount)
	assert.Equal(t, 1, events[0].RemainingCreditsAfter)
	assert.Equal(t, "360/Direct", events[0].ServiceTitle)
	require.NotNil(t, events[0].RoleTitle)
	assert.Equal(t, "Head of Sales", *events[0].RoleTitle)

	_, err = f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTag(42), "Anything")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownServiceTag))
}

func TestCheckAndDeduct_RefusalReportsUsableBalance(t *testing.T) {
	f := newFixture(t)
	plan := helpers.CreatePlan(t, f.db, "Growth", 5)

	// Период закончился, но проход истечения еще не запускался
	ended := testStart.Add(-time.Hour)
	helpers.CreateSubscription(t, f.db, "user-1", plan.ID, 5, &ended)
	require.Equal(t, 5, f.remaining(t, "user-1"))

	result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagLeadGeneration, "Retail leads")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RemainingCredits, "в отказе - остаток, который можно потратить")

	usable, err := f.sc.SubscriptionService.UsableCredits(f.ctx, f.db, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, usable)
}

// Пул тестовой БД из одного соединения выполняет транзакции по очереди;
// отказ по устаревшему остатку проверяется в тестах репозитория.
func TestCheckAndDeduct_ConcurrentLastCredit(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 1)

	const workers = 8
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		failures  atomic.Int32
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, "Data Engineer")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if result.Success {
				successes.Add(1)
			} else {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "последний кредит списывается ровно один раз")
	assert.Equal(t, int32(workers-1), failures.Load())
	assert.Equal(t, 0, f.remaining(t, "user-1"))
}

func TestCheckAndDeduct_ConsumesEarliestEndingEntryFirst(t *testing.T) {
	f := newFixture(t)
	plan := helpers.CreatePlan(t, f.db, "Growth", 5)

	later := time.Now().UTC().AddDate(0, 2, 0)
	sooner := time.Now().UTC().AddDate(0, 0, 10)
	adhoc := helpers.CreateSubscription(t, f.db, "user-1", plan.ID, 3, nil)
	laterSub := helpers.CreateSubscription(t, f.db, "user-1", plan.ID, 3, &later)
	soonerSub := helpers.CreateSubscription(t, f.db, "user-1", plan.ID, 1, &sooner)

	result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, "QA Engineer")
	require.NoError(t, err)
	assert.Equal(t, soonerSub.ID, result.SubscriptionID)

	result, err = f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, "QA Engineer")
	require.NoError(t, err)
	assert.Equal(t, laterSub.ID, result.SubscriptionID)
	assert.NotEqual(t, adhoc.ID, result.SubscriptionID)
	assert.Equal(t, 2, result.RemainingCredits)
	assert.Equal(t, 5, f.remaining(t, "user-1"))
}

func TestWithCredit_RefundsWhenCreateFails(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 3)
	createErr := errors.New("role storage unavailable")

	// 1. Создание роли падает после списания
	_, err := f.sc.CreditGatekeeper.WithCredit(f.ctx, f.db, "user-1", models.ServiceTagLeadGeneration, "SDR Team", func(tx *gorm.DB) (string, error) {
		return "", createErr
	})

	// 2. Наружу уходит исходная ошибка, кредит возвращен
	assert.ErrorIs(t, err, createErr)
	assert.Equal(t, 3, f.remaining(t, "user-1"))

	events, err := f.sc.CreditHistoryService.FindBySubscription(f.ctx, f.db, sub.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.CreditActionRefunded, events[0].ActionType)
	assert.Equal(t, 1, events[0].CreditAmount)
	assert.Equal(t, models.CreditActionUsed, events[1].ActionType)

	report, err := f.sc.CreditHistoryService.Reconcile(f.ctx, f.db, sub.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 3, report.EventSum)
}

func TestWithCredit_InsufficientCreditsSkipsCreate(t *testing.T) {
	f := newFixture(t)
	called := false

	_, err := f.sc.CreditGatekeeper.WithCredit(f.ctx, f.db, "user-1", models.ServiceTagPrequalification, "Nurse", func(tx *gorm.DB) (string, error) {
		called = true
		return "id", nil
	})

	assert.False(t, called)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientCredits, appErr.Code)
	assert.Equal(t, 402, appErr.HTTPCode)
}

func TestRefund_RejectsEntryWithoutUsage(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 2)

	err := f.sc.CreditGatekeeper.Refund(f.ctx, f.db, services.RefundRequest{
		SubscriptionID: sub.ID,
		UserID:         "user-1",
		ServiceTag:     models.ServiceTagCvSourcing,
		RoleTitle:      "Backend Engineer",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidOperation))
	assert.Equal(t, 2, f.remaining(t, "user-1"))
}
