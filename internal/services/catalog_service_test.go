package services_test

import (
	"testing"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"
	"recruitportal_backend/test/helpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultPlans_Idempotent(t *testing.T) {
	f := newFixture(t)

	created, err := f.sc.CatalogService.SeedDefaultPlans(f.ctx, f.db, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	created, err = f.sc.CatalogService.SeedDefaultPlans(f.ctx, f.db, "EUR")
	require.NoError(t, err)
	assert.Zero(t, created)

	plans, err := f.sc.CatalogService.ListPlans(f.ctx, f.db, true)
	require.NoError(t, err)
	require.Len(t, plans, 5)

	tags := map[models.ServiceTag]bool{}
	for _, p := range plans {
		assert.Equal(t, "EUR", p.Currency)
		tags[p.ServiceTag] = true
	}
	for _, tag := range models.AllServiceTags() {
		assert.True(t, tags[tag], "план для услуги %s", tag.DisplayName())
	}
}

func TestCatalog_ReadsAreCachedAndEditsInvalidate(t *testing.T) {
	f := newFixture(t)
	helpers.CreatePlan(t, f.db, "Starter", 3)

	plans, err := f.sc.CatalogService.ListPlans(f.ctx, f.db, false)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	// 1. Запись в обход сервиса не видна, пока кэш жив
	helpers.CreatePlan(t, f.db, "Hidden", 3)
	plans, err = f.sc.CatalogService.ListPlans(f.ctx, f.db, false)
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	// 2. Правка через сервис сбрасывает кэш
	created, err := f.sc.CatalogService.CreatePlan(f.ctx, f.db, &dto.CreatePlanRequest{
		Title:          "Scale",
		ServiceTag:     models.ServiceTagDirect,
		MonthlyPrice:   decimal.NewFromInt(900),
		MonthlyCredits: 30,
		Features:       []string{"Dedicated partner"},
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", created.Currency)
	assert.True(t, created.IsActive)
	assert.Equal(t, "360/Direct", created.ServiceName)

	plans, err = f.sc.CatalogService.ListPlans(f.ctx, f.db, false)
	require.NoError(t, err)
	assert.Len(t, plans, 3)

	// 3. Отключенный план пропадает из активного списка
	inactive := false
	updated, err := f.sc.CatalogService.UpdatePlan(f.ctx, f.db, created.ID, &dto.UpdatePlanRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	active, err := f.sc.CatalogService.ListPlans(f.ctx, f.db, true)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	single, err := f.sc.CatalogService.GetPlan(f.ctx, f.db, created.ID)
	require.NoError(t, err)
	assert.False(t, single.IsActive)
	assert.Equal(t, []string{"Dedicated partner"}, single.Features)
}

func TestCatalog_TitleConflictAndMissingPlan(t *testing.T) {
	f := newFixture(t)
	existing := helpers.CreatePlan(t, f.db, "Starter", 3)
	other := helpers.CreatePlan(t, f.db, "Growth", 3)

	_, err := f.sc.CatalogService.CreatePlan(f.ctx, f.db, &dto.CreatePlanRequest{Title: "Starter"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	title := existing.Title
	_, err = f.sc.CatalogService.UpdatePlan(f.ctx, f.db, other.ID, &dto.UpdatePlanRequest{Title: &title})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = f.sc.CatalogService.GetPlan(f.ctx, f.db, "00000000-0000-0000-0000-000000000000")
	assert.True(t, apperrors.Is(err, apperrors.ErrPlanNotFound))
}
