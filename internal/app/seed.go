package app

import (
	"context"

	"recruitportal_backend/internal/config"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/services"

	"gorm.io/gorm"
)

// seedDefaultPlans заполняет каталог при первом запуске. Повторный запуск ничего не меняет.
func seedDefaultPlans(ctx context.Context, db *gorm.DB, sc *services.ServiceContainer, cfg *config.Config) error {
	created, err := sc.CatalogService.SeedDefaultPlans(ctx, db, cfg.Billing.DefaultCurrency)
	if err != nil {
		return err
	}
	if created == 0 {
		logger.Info("Default plans already present, skipping seeding")
	}
	return nil
}
