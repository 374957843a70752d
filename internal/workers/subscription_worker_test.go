package workers_test

import (
	"context"
	"testing"
	"time"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/internal/workers"
	"recruitportal_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionWorker_SweepOnce(t *testing.T) {
	logger.Init("test")
	db := helpers.NewTestDB(t)
	sc := services.NewServiceContainer(services.ContainerOptions{CacheTTL: time.Minute})
	worker := workers.NewSubscriptionWorker(db, sc, time.Minute, time.Minute)
	ctx := context.Background()

	plan := helpers.CreatePlan(t, db, "Worker plan", 5)
	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)
	expired := helpers.CreateSubscription(t, db, "user-1", plan.ID, 3, &past)
	helpers.CreateSubscription(t, db, "user-2", plan.ID, 4, &future)

	affected, err := worker.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	var reloaded models.UserSubscription
	require.NoError(t, db.First(&reloaded, "id = ?", expired.ID).Error)
	assert.Equal(t, models.SubscriptionStatusExpired, reloaded.Status)

	// Повторный проход ничего не меняет
	affected, err = worker.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)
}

func TestSubscriptionWorker_ReconcileOnce(t *testing.T) {
	logger.Init("test")
	db := helpers.NewTestDB(t)
	sc := services.NewServiceContainer(services.ContainerOptions{CacheTTL: time.Minute})
	worker := workers.NewSubscriptionWorker(db, sc, time.Minute, time.Minute)
	ctx := context.Background()

	plan := helpers.CreatePlan(t, db, "Worker plan", 5)
	future := time.Now().UTC().Add(24 * time.Hour)
	helpers.CreateSubscription(t, db, "user-1", plan.ID, 5, &future)

	role, err := sc.PrequalificationService.Create(ctx, db, "user-1", &dto.CreatePrequalificationRoleRequest{
		RoleFields: dto.RoleFields{Title: "Account Manager"},
	})
	require.NoError(t, err)

	affected, err := worker.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, affected, "индекс согласован")

	require.NoError(t, db.Unscoped().
		Where("prequalification_role_id = ?", role.ID).
		Delete(&models.RoleIndexEntry{}).Error)

	affected, err = worker.ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	var count int64
	require.NoError(t, db.Model(&models.RoleIndexEntry{}).
		Where("prequalification_role_id = ?", role.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
