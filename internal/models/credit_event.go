package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrCreditEventImmutable = errors.New("credit events are append-only")

// CreditEvent - запись журнала кредитов. Только добавление, без изменений и удаления.
// CreditAmount со знаком: отрицательный для used.
type CreditEvent struct {
	ID                    string            `gorm:"size:36;primaryKey" json:"id"`
	UserID                string            `gorm:"size:36;not null;index:idx_credit_events_user_created" json:"userId"`
	SubscriptionID        string            `gorm:"size:36;not null;index" json:"subscriptionId"`
	ActionType            CreditActionType  `gorm:"size:16;not null" json:"actionType"`
	CreditAmount          int               `gorm:"not null" json:"creditAmount"`
	RemainingCreditsAfter int               `gorm:"not null" json:"remainingCreditsAfter"`
	ServiceTag            ServiceTag        `gorm:"not null;index" json:"serviceType"`
	ServiceTitle          string            `gorm:"size:120;not null" json:"serviceTitle"`
	RoleTitle             *string           `gorm:"size:255" json:"roleTitle,omitempty"`
	RoleID                *string           `gorm:"size:36" json:"roleId,omitempty"`
	Description           string            `gorm:"size:500" json:"description"`
	Metadata              datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt             time.Time         `gorm:"not null;index:idx_credit_events_user_created" json:"createdAt"`
}

func (e *CreditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	// имя услуги всегда берется из таблицы тегов
	e.ServiceTitle = e.ServiceTag.DisplayName()
	return nil
}

func (e *CreditEvent) BeforeUpdate(tx *gorm.DB) error {
	return ErrCreditEventImmutable
}

func (e *CreditEvent) BeforeDelete(tx *gorm.DB) error {
	return ErrCreditEventImmutable
}
