package services_test

import (
	"testing"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditHistory_NewestFirstWithServiceFilter(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 5)

	for _, tag := range []models.ServiceTag{models.ServiceTagCvSourcing, models.ServiceTagDirect, models.ServiceTagCvSourcing} {
		result, err := f.sc.CreditGatekeeper.CheckAndDeduct(f.ctx, f.db, "user-1", tag, "Role for "+tag.DisplayName())
		require.NoError(t, err)
		require.True(t, result.Success)
	}

	all, err := f.sc.CreditHistoryService.FindByUser(f.ctx, f.db, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "события идут от новых к старым")
	}
	assert.Equal(t, models.CreditActionPurchased, all[3].ActionType)
	assert.Equal(t, 2, all[0].RemainingCreditsAfter)

	limited, err := f.sc.CreditHistoryService.FindByUser(f.ctx, f.db, "user-1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	cv, err := f.sc.CreditHistoryService.FindByUserAndService(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, 10)
	require.NoError(t, err)
	assert.Len(t, cv, 2)
	for _, e := range cv {
		assert.Equal(t, "CV Sourcing", e.ServiceTitle)
		assert.Equal(t, sub.ID, e.SubscriptionID)
	}

	_, err = f.sc.CreditHistoryService.FindByUserAndService(f.ctx, f.db, "user-1", models.ServiceTagNone, 10)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownServiceTag))
}

func TestCreditHistory_EventsAreAppendOnly(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 5)

	var event models.CreditEvent
	require.NoError(t, f.db.First(&event, "subscription_id = ?", sub.ID).Error)

	err := f.db.Model(&event).Update("credit_amount", 500).Error
	assert.ErrorIs(t, err, models.ErrCreditEventImmutable)

	err = f.db.Delete(&event).Error
	assert.ErrorIs(t, err, models.ErrCreditEventImmutable)

	report, err := f.sc.CreditHistoryService.Reconcile(f.ctx, f.db, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, report.EventSum)
	assert.True(t, report.Consistent)
}

func TestCreditHistory_ReconcileDetectsDrift(t *testing.T) {
	f := newFixture(t)
	sub := f.purchase(t, "user-1", 5)

	// Счетчик изменен в обход журнала
	require.NoError(t, f.db.Model(&models.UserSubscription{}).
		Where("id = ?", sub.ID).
		UpdateColumn("remaining_credits", 4).Error)

	report, err := f.sc.CreditHistoryService.Reconcile(f.ctx, f.db, sub.ID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	assert.Equal(t, 5, report.EventSum)
	assert.Equal(t, 4, report.RemainingCredits)

	_, err = f.sc.CreditHistoryService.Reconcile(f.ctx, f.db, "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrSubscriptionNotFound))
}
