package repositories

import (
	"errors"
	"time"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// UserSubscriptionRepository - доступ к записям реестра.
// Все изменения кредитов и статусов - условные UPDATE одним выражением,
// результат проверяется по RowsAffected.
type UserSubscriptionRepository interface {
	Create(db *gorm.DB, sub *models.UserSubscription) error
	FindByID(db *gorm.DB, id string) (*models.UserSubscription, error)
	FindByUser(db *gorm.DB, userID string) ([]models.UserSubscription, error)
	FindActiveByUserID(db *gorm.DB, userID string) ([]models.UserSubscription, error)
	FindUsableByUserID(db *gorm.DB, userID string, now time.Time) ([]models.UserSubscription, error)
	FindActiveAdhoc(db *gorm.DB, userID, planID string) (*models.UserSubscription, error)
	FindActiveEndedBefore(db *gorm.DB, now time.Time) ([]models.UserSubscription, error)
	SumRemainingActive(db *gorm.DB, userID string) (int, error)
	SumRemainingUsable(db *gorm.DB, userID string, now time.Time) (int, error)

	// Атомарные изменения
	ConsumeCredits(db *gorm.DB, id string, amount int, now time.Time) (bool, error)
	RestoreCredits(db *gorm.DB, id string, amount int) (bool, error)
	TopUpCredits(db *gorm.DB, id string, credits int, paid decimal.Decimal) (bool, error)
	TransitionStatus(db *gorm.DB, id string, to models.SubscriptionStatus, extra map[string]interface{}) (bool, error)
	CancelActiveForUser(db *gorm.DB, userID string, now time.Time) (int64, error)
}

type UserSubscriptionRepositoryImpl struct{}

func NewUserSubscriptionRepository() UserSubscriptionRepository {
	return &UserSubscriptionRepositoryImpl{}
}

func (r *UserSubscriptionRepositoryImpl) Create(db *gorm.DB, sub *models.UserSubscription) error {
	return db.Create(sub).Error
}

func (r *UserSubscriptionRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	if err := db.Preload("Plan").First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *UserSubscriptionRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *UserSubscriptionRepositoryImpl) FindActiveByUserID(db *gorm.DB, userID string) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

// FindUsableByUserID - активные записи, период которых еще не закончился
func (r *UserSubscriptionRepositoryImpl) FindUsableByUserID(db *gorm.DB, userID string, now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := db.
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Where("end_date IS NULL OR end_date > ?", now).
		Find(&subs).Error
	return subs, err
}

func (r *UserSubscriptionRepositoryImpl) FindActiveAdhoc(db *gorm.DB, userID, planID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := database.ForUpdate(db).
		Where("user_id = ? AND plan_id = ? AND billing_cycle = ? AND status = ?",
			userID, planID, models.BillingCycleAdhoc, models.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindActiveEndedBefore - кандидаты для перевода в expired
func (r *UserSubscriptionRepositoryImpl) FindActiveEndedBefore(db *gorm.DB, now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := db.
		Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.SubscriptionStatusActive, now).
		Order("end_date ASC").
		Find(&subs).Error
	return subs, err
}

func (r *UserSubscriptionRepositoryImpl) SumRemainingActive(db *gorm.DB, userID string) (int, error) {
	var total int64
	err := db.Model(&models.UserSubscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Select("COALESCE(SUM(remaining_credits), 0)").
		Scan(&total).Error
	return int(total), err
}

// SumRemainingUsable - остаток, который реально можно списать: без записей с прошедшим end_date
func (r *UserSubscriptionRepositoryImpl) SumRemainingUsable(db *gorm.DB, userID string, now time.Time) (int, error) {
	var total int64
	err := db.Model(&models.UserSubscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Where("end_date IS NULL OR end_date > ?", now).
		Select("COALESCE(SUM(remaining_credits), 0)").
		Scan(&total).Error
	return int(total), err
}

// ConsumeCredits - списание с полом в нуле. Условие в WHERE исключает двойное списание:
// из двух конкурентных запросов на последний кредит строку обновит только один.
func (r *UserSubscriptionRepositoryImpl) ConsumeCredits(db *gorm.DB, id string, amount int, now time.Time) (bool, error) {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ? AND remaining_credits >= ?", id, models.SubscriptionStatusActive, amount).
		Where("end_date IS NULL OR end_date > ?", now).
		Updates(map[string]interface{}{
			"used_credits":      gorm.Expr("used_credits + ?", amount),
			"remaining_credits": gorm.Expr("remaining_credits - ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// RestoreCredits - возврат ранее списанных кредитов (компенсация)
func (r *UserSubscriptionRepositoryImpl) RestoreCredits(db *gorm.DB, id string, amount int) (bool, error) {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND used_credits >= ?", id, amount).
		Updates(map[string]interface{}{
			"used_credits":      gorm.Expr("used_credits - ?", amount),
			"remaining_credits": gorm.Expr("remaining_credits + ?", amount),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TopUpCredits - докупка кредитов в активную запись
func (r *UserSubscriptionRepositoryImpl) TopUpCredits(db *gorm.DB, id string, credits int, paid decimal.Decimal) (bool, error) {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"total_credits":     gorm.Expr("total_credits + ?", credits),
			"remaining_credits": gorm.Expr("remaining_credits + ?", credits),
			"paid_amount":       gorm.Expr("paid_amount + ?", paid),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TransitionStatus меняет статус только если текущий статус допускает переход в to
func (r *UserSubscriptionRepositoryImpl) TransitionStatus(db *gorm.DB, id string, to models.SubscriptionStatus, extra map[string]interface{}) (bool, error) {
	from := to.AllowedSources()
	if len(from) == 0 {
		return false, nil
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CancelActiveForUser переводит все активные записи пользователя в cancelled
func (r *UserSubscriptionRepositoryImpl) CancelActiveForUser(db *gorm.DB, userID string, now time.Time) (int64, error) {
	result := db.Model(&models.UserSubscription{}).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"cancelled_at": now,
		})
	return result.RowsAffected, result.Error
}
