package repositories_test

import (
	"testing"
	"time"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeCredits_StaleReadCannotSpendTwice(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewUserSubscriptionRepository()
	now := time.Now().UTC()
	end := now.Add(24 * time.Hour)

	plan := helpers.CreatePlan(t, db, "Starter", 1)
	sub := helpers.CreateSubscription(t, db, "user-1", plan.ID, 1, &end)

	// 1. Оба запроса видят последний кредит
	staleA, err := repo.FindByID(db, sub.ID)
	require.NoError(t, err)
	staleB, err := repo.FindByID(db, sub.ID)
	require.NoError(t, err)
	require.Equal(t, 1, staleA.RemainingCredits)
	require.Equal(t, 1, staleB.RemainingCredits)

	// 2. Первый списывает
	ok, err := repo.ConsumeCredits(db, staleA.ID, staleA.RemainingCredits, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// 3. Второй действует по устаревшему остатку и получает отказ
	ok, err = repo.ConsumeCredits(db, staleB.ID, staleB.RemainingCredits, now)
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded, err := repo.FindByID(db, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.RemainingCredits)
	assert.Equal(t, 1, reloaded.UsedCredits)
	assert.True(t, reloaded.IsConsistent())
}

func TestConsumeCredits_SkipsEntriesPastEndDate(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := repositories.NewUserSubscriptionRepository()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	plan := helpers.CreatePlan(t, db, "Starter", 5)
	sub := helpers.CreateSubscription(t, db, "user-1", plan.ID, 5, &past)

	ok, err := repo.ConsumeCredits(db, sub.ID, 1, now)
	require.NoError(t, err)
	assert.False(t, ok, "истекшая, но еще не переведенная в expired запись не списывается")

	var reloaded models.UserSubscription
	require.NoError(t, db.First(&reloaded, "id = ?", sub.ID).Error)
	assert.Equal(t, 5, reloaded.RemainingCredits)
}
