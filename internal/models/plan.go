package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Plan - позиция каталога подписок
type Plan struct {
	BaseModel
	Title           string          `gorm:"size:120;not null;uniqueIndex" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	ServiceTag      ServiceTag      `gorm:"not null;default:0" json:"serviceTag"`
	MonthlyPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthlyPrice"`
	MonthlyCredits  int             `gorm:"not null" json:"monthlyCredits"`
	AnnualPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"annualPrice"`
	AnnualCredits   int             `gorm:"not null" json:"annualCredits"`
	AdhocPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"adhocPrice"`
	AdhocCredits    int             `gorm:"not null" json:"adhocCredits"`
	CreditUnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"creditUnitPrice"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`
	Features        datatypes.JSON  `json:"features"` // ["Unlimited roles", ...]
	IsActive        bool            `gorm:"not null" json:"isActive"`
	SortOrder       int             `gorm:"not null" json:"sortOrder"`
}

// CreditsFor - количество кредитов, которое дает покупка плана в данном цикле
func (p *Plan) CreditsFor(cycle BillingCycle) int {
	switch cycle {
	case BillingCycleMonthly:
		return p.MonthlyCredits
	case BillingCycleAnnual:
		return p.AnnualCredits
	case BillingCycleAdhoc:
		return p.AdhocCredits
	}
	return 0
}

func (p *Plan) PriceFor(cycle BillingCycle) decimal.Decimal {
	switch cycle {
	case BillingCycleMonthly:
		return p.MonthlyPrice
	case BillingCycleAnnual:
		return p.AnnualPrice
	case BillingCycleAdhoc:
		return p.AdhocPrice
	}
	return decimal.Zero
}

// FeatureList распаковывает JSON со списком возможностей
func (p *Plan) FeatureList() []string {
	var features []string
	if len(p.Features) == 0 {
		return features
	}
	_ = json.Unmarshal(p.Features, &features)
	return features
}

// SetFeatures упаковывает список возможностей в JSON
func (p *Plan) SetFeatures(features []string) error {
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return err
	}
	p.Features = datatypes.JSON(raw)
	return nil
}
