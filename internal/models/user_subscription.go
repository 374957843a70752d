package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserSubscription - запись реестра: одна покупка плана пользователем.
// Инвариант: RemainingCredits = TotalCredits - UsedCredits, RemainingCredits >= 0.
// Записи не удаляются физически, меняется только статус.
type UserSubscription struct {
	BaseModel
	UserID             string             `gorm:"size:36;not null;index:idx_user_subscriptions_user_status" json:"userId"`
	PlanID             string             `gorm:"size:36;not null;index" json:"planId"`
	BillingCycle       BillingCycle       `gorm:"size:16;not null" json:"billingCycle"`
	PaidAmount         decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"paidAmount"`
	Currency           string             `gorm:"size:3;not null" json:"currency"`
	TotalCredits       int                `gorm:"not null" json:"totalCredits"`
	UsedCredits        int                `gorm:"not null" json:"usedCredits"`
	RemainingCredits   int                `gorm:"not null" json:"remainingCredits"`
	StartDate          time.Time          `gorm:"not null" json:"startDate"`
	EndDate            *time.Time         `gorm:"index" json:"endDate"`
	DueDate            *time.Time         `json:"dueDate"`
	NextRenewalDate    *time.Time         `json:"nextRenewalDate"`
	Status             SubscriptionStatus `gorm:"size:16;not null;index:idx_user_subscriptions_user_status" json:"status"`
	AutoRenew          bool               `gorm:"not null" json:"autoRenew"`
	ExternalPaymentRef string             `gorm:"size:255" json:"externalPaymentRef,omitempty"`
	CancelledAt        *time.Time         `json:"cancelledAt,omitempty"`

	// Relations
	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (s *UserSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// IsUsableAt - запись активна и ее период не закончился
func (s *UserSubscription) IsUsableAt(now time.Time) bool {
	return s.IsActive() && (s.EndDate == nil || s.EndDate.After(now))
}

// IsConsistent проверяет инвариант счетчиков кредитов
func (s *UserSubscription) IsConsistent() bool {
	return s.RemainingCredits >= 0 && s.RemainingCredits == s.TotalCredits-s.UsedCredits
}
