package dto

import (
	"time"

	"recruitportal_backend/internal/models"

	"github.com/shopspring/decimal"
)

// =======================
// Каталог
// =======================

type CreatePlanRequest struct {
	Title           string            `json:"title" validate:"required,min=2,max=120"`
	Description     string            `json:"description" validate:"max=2000"`
	ServiceTag      models.ServiceTag `json:"serviceTag" validate:"omitempty,service-tag"`
	MonthlyPrice    decimal.Decimal   `json:"monthlyPrice" validate:"gte=0"`
	MonthlyCredits  int               `json:"monthlyCredits" validate:"gte=0"`
	AnnualPrice     decimal.Decimal   `json:"annualPrice" validate:"gte=0"`
	AnnualCredits   int               `json:"annualCredits" validate:"gte=0"`
	AdhocPrice      decimal.Decimal   `json:"adhocPrice" validate:"gte=0"`
	AdhocCredits    int               `json:"adhocCredits" validate:"gte=0"`
	CreditUnitPrice decimal.Decimal   `json:"creditUnitPrice" validate:"gte=0"`
	Currency        string            `json:"currency" validate:"omitempty,iso4217"`
	Features        []string          `json:"features" validate:"max=50,dive,max=200"`
	IsActive        *bool             `json:"isActive"`
	SortOrder       int               `json:"sortOrder"`
}

type UpdatePlanRequest struct {
	Title           *string          `json:"title" validate:"omitempty,min=2,max=120"`
	Description     *string          `json:"description" validate:"omitempty,max=2000"`
	MonthlyPrice    *decimal.Decimal `json:"monthlyPrice" validate:"omitempty,gte=0"`
	MonthlyCredits  *int             `json:"monthlyCredits" validate:"omitempty,gte=0"`
	AnnualPrice     *decimal.Decimal `json:"annualPrice" validate:"omitempty,gte=0"`
	AnnualCredits   *int             `json:"annualCredits" validate:"omitempty,gte=0"`
	AdhocPrice      *decimal.Decimal `json:"adhocPrice" validate:"omitempty,gte=0"`
	AdhocCredits    *int             `json:"adhocCredits" validate:"omitempty,gte=0"`
	CreditUnitPrice *decimal.Decimal `json:"creditUnitPrice" validate:"omitempty,gte=0"`
	Features        []string         `json:"features" validate:"omitempty,max=50,dive,max=200"`
	IsActive        *bool            `json:"isActive"`
	SortOrder       *int             `json:"sortOrder"`
}

type PlanResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	ServiceTag      models.ServiceTag `json:"serviceTag"`
	ServiceName     string            `json:"serviceName"`
	MonthlyPrice    decimal.Decimal   `json:"monthlyPrice"`
	MonthlyCredits  int               `json:"monthlyCredits"`
	AnnualPrice     decimal.Decimal   `json:"annualPrice"`
	AnnualCredits   int               `json:"annualCredits"`
	AdhocPrice      decimal.Decimal   `json:"adhocPrice"`
	AdhocCredits    int               `json:"adhocCredits"`
	CreditUnitPrice decimal.Decimal   `json:"creditUnitPrice"`
	Currency        string            `json:"currency"`
	Features        []string          `json:"features"`
	IsActive        bool              `json:"isActive"`
	SortOrder       int               `json:"sortOrder"`
}

// =======================
// Реестр подписок
// =======================

// PurchaseRequest - покупка плана. Платеж подтверждается снаружи, сюда приходят
// только сумма и ссылка на платеж.
type PurchaseRequest struct {
	PlanID       string                    `json:"planId" validate:"required,uuid"`
	BillingCycle models.BillingCycle       `json:"billingCycle" validate:"required,billing-cycle"`
	PaidAmount   decimal.Decimal           `json:"paidAmount" validate:"gte=0"`
	Currency     string                    `json:"currency" validate:"omitempty,iso4217"`
	PaymentRef   string                    `json:"paymentRef" validate:"max=255"`
	Status       models.SubscriptionStatus `json:"status" validate:"omitempty,oneof=active pending"`
	AutoRenew    bool                      `json:"autoRenew"`
}

type AddAdhocCreditsRequest struct {
	PlanID     string          `json:"planId" validate:"required,uuid"`
	Credits    int             `json:"credits" validate:"required,gt=0,max=100000"`
	PaidAmount decimal.Decimal `json:"paidAmount" validate:"gte=0"`
	PaymentRef string          `json:"paymentRef" validate:"max=255"`
}

type ConsumeCreditsRequest struct {
	Amount int `json:"amount" validate:"required,gt=0,max=1000"`
}

type ConsumeCreditsResponse struct {
	Consumed         bool `json:"consumed"`
	RemainingCredits int  `json:"remainingCredits"`
}

// SubscriptionEntry - строка реестра для генератора счетов
type SubscriptionEntry struct {
	ID                 string                    `json:"id"`
	PlanID             string                    `json:"planId"`
	PlanTitle          string                    `json:"planTitle"`
	BillingCycle       models.BillingCycle       `json:"billingCycle"`
	Status             models.SubscriptionStatus `json:"status"`
	PaidAmount         decimal.Decimal           `json:"paidAmount"`
	Currency           string                    `json:"currency"`
	TotalCredits       int                       `json:"totalCredits"`
	UsedCredits        int                       `json:"usedCredits"`
	RemainingCredits   int                       `json:"remainingCredits"`
	StartDate          time.Time                 `json:"startDate"`
	EndDate            *time.Time                `json:"endDate"`
	DueDate            *time.Time                `json:"dueDate"`
	NextRenewalDate    *time.Time                `json:"nextRenewalDate"`
	AutoRenew          bool                      `json:"autoRenew"`
	ExternalPaymentRef string                    `json:"externalPaymentRef,omitempty"`
}

// SubscriptionSummary - сводка по пользователю
type SubscriptionSummary struct {
	UserID                string                     `json:"userId"`
	ActiveSubscriptions   int                        `json:"activeSubscriptions"`
	TotalRemainingCredits int                        `json:"totalRemainingCredits"`
	TotalUsedCredits      int                        `json:"totalUsedCredits"`
	TotalPaid             map[string]decimal.Decimal `json:"totalPaid"` // по валютам
	NextRenewalDate       *time.Time                 `json:"nextRenewalDate"`
	NextDueDate           *time.Time                 `json:"nextDueDate"`
	ByStatus              map[string]int             `json:"byStatus"`
	Entries               []SubscriptionEntry        `json:"entries"`
}

// =======================
// История кредитов
// =======================

type CreditEventResponse struct {
	ID                    string                  `json:"id"`
	SubscriptionID        string                  `json:"subscriptionId"`
	ActionType            models.CreditActionType `json:"actionType"`
	CreditAmount          int                     `json:"creditAmount"`
	RemainingCreditsAfter int                     `json:"remainingCreditsAfter"`
	ServiceType           models.ServiceTag       `json:"serviceType"`
	ServiceTitle          string                  `json:"serviceTitle"`
	RoleTitle             *string                 `json:"roleTitle,omitempty"`
	RoleID                *string                 `json:"roleId,omitempty"`
	Description           string                  `json:"description"`
	CreatedAt             time.Time               `json:"createdAt"`
}

// ReconcileReport - сравнение журнала с состоянием записи реестра
type ReconcileReport struct {
	SubscriptionID   string `json:"subscriptionId"`
	EventCount       int    `json:"eventCount"`
	EventSum         int    `json:"eventSum"`
	RemainingCredits int    `json:"remainingCredits"`
	Consistent       bool   `json:"consistent"`
}

// =======================
// Гейткипер
// =======================

// DeductionResult - результат проверки и списания кредита.
// Success=false при нехватке кредитов - это штатный исход, не ошибка.
type DeductionResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	RemainingCredits int    `json:"remainingCredits"`
	SubscriptionID   string `json:"subscriptionId,omitempty"`
}

type CheckAndDeductRequest struct {
	ServiceTag models.ServiceTag `json:"serviceTag" validate:"required,service-tag"`
	RoleTitle  string            `json:"roleTitle" validate:"required,max=255"`
}
