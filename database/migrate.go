package database

import (
	"fmt"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"

	"gorm.io/gorm"
)

// Models - все сущности, которыми управляет миграция, в порядке зависимостей
func Models() []interface{} {
	return []interface{}{
		&models.Plan{},
		&models.UserSubscription{},
		&models.CreditEvent{},
		&models.CvSourcingRole{},
		&models.PrequalificationRole{},
		&models.DirectRole{},
		&models.LeadGenerationRole{},
		&models.RoleIndexEntry{},
	}
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logger.Info("AutoMigrate completed", "driver", db.Dialector.Name(), "tables", len(Models()))
	return nil
}
