package repositories

import (
	"recruitportal_backend/internal/models"

	"gorm.io/gorm"
)

// CreditEventRepository - журнал кредитов. Методов изменения и удаления нет намеренно.
type CreditEventRepository interface {
	Create(db *gorm.DB, event *models.CreditEvent) error
	FindByUser(db *gorm.DB, userID string, limit int) ([]models.CreditEvent, error)
	FindByUserAndService(db *gorm.DB, userID string, tag models.ServiceTag, limit int) ([]models.CreditEvent, error)
	FindBySubscription(db *gorm.DB, subscriptionID string) ([]models.CreditEvent, error)
	SumBySubscription(db *gorm.DB, subscriptionID string) (int, error)
}

type CreditEventRepositoryImpl struct{}

func NewCreditEventRepository() CreditEventRepository {
	return &CreditEventRepositoryImpl{}
}

func (r *CreditEventRepositoryImpl) Create(db *gorm.DB, event *models.CreditEvent) error {
	return db.Create(event).Error
}

func (r *CreditEventRepositoryImpl) FindByUser(db *gorm.DB, userID string, limit int) ([]models.CreditEvent, error) {
	var events []models.CreditEvent
	query := db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

func (r *CreditEventRepositoryImpl) FindByUserAndService(db *gorm.DB, userID string, tag models.ServiceTag, limit int) ([]models.CreditEvent, error) {
	var events []models.CreditEvent
	query := db.Where("user_id = ? AND service_tag = ?", userID, tag).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&events).Error
	return events, err
}

func (r *CreditEventRepositoryImpl) FindBySubscription(db *gorm.DB, subscriptionID string) ([]models.CreditEvent, error) {
	var events []models.CreditEvent
	err := db.Where("subscription_id = ?", subscriptionID).Order("created_at DESC").Find(&events).Error
	return events, err
}

// SumBySubscription - сумма CreditAmount по записи реестра (для сверки)
func (r *CreditEventRepositoryImpl) SumBySubscription(db *gorm.DB, subscriptionID string) (int, error) {
	var total int64
	err := db.Model(&models.CreditEvent{}).
		Where("subscription_id = ?", subscriptionID).
		Select("COALESCE(SUM(credit_amount), 0)").
		Scan(&total).Error
	return int(total), err
}
