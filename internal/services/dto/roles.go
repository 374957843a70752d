package dto

import (
	"recruitportal_backend/internal/models"

	"github.com/shopspring/decimal"
)

// RoleFields - общие поля создания роли любой услуги
type RoleFields struct {
	Title       string            `json:"title" validate:"required,min=2,max=255"`
	Location    string            `json:"location" validate:"max=255"`
	Description string            `json:"description" validate:"max=10000"`
	Status      models.RoleStatus `json:"status" validate:"omitempty,role-status"`
}

// RolePatch - общие поля частичного обновления
type RolePatch struct {
	Title       *string            `json:"title" validate:"omitempty,min=2,max=255"`
	Location    *string            `json:"location" validate:"omitempty,max=255"`
	Description *string            `json:"description" validate:"omitempty,max=10000"`
	Status      *models.RoleStatus `json:"status" validate:"omitempty,role-status"`
}

// --- CV Sourcing ---

type CreateCvSourcingRoleRequest struct {
	RoleFields
	EmploymentType string          `json:"employmentType" validate:"omitempty,oneof=full_time part_time contract temporary"`
	Seniority      string          `json:"seniority" validate:"omitempty,oneof=junior middle senior lead executive"`
	SalaryMin      decimal.Decimal `json:"salaryMin" validate:"gte=0"`
	SalaryMax      decimal.Decimal `json:"salaryMax" validate:"gte=0"`
	SalaryCurrency string          `json:"salaryCurrency" validate:"omitempty,iso4217"`
	RequiredSkills []string        `json:"requiredSkills" validate:"max=50,dive,min=1,max=100"`
}

type UpdateCvSourcingRoleRequest struct {
	RolePatch
	EmploymentType *string          `json:"employmentType" validate:"omitempty,oneof=full_time part_time contract temporary"`
	Seniority      *string          `json:"seniority" validate:"omitempty,oneof=junior middle senior lead executive"`
	SalaryMin      *decimal.Decimal `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax      *decimal.Decimal `json:"salaryMax" validate:"omitempty,gte=0"`
	SalaryCurrency *string          `json:"salaryCurrency" validate:"omitempty,iso4217"`
	RequiredSkills []string         `json:"requiredSkills" validate:"omitempty,max=50,dive,min=1,max=100"`
}

// --- Prequalification ---

type CreatePrequalificationRoleRequest struct {
	RoleFields
	ScreeningQuestions []string `json:"screeningQuestions" validate:"max=30,dive,min=3,max=500"`
	MinExperienceYears int      `json:"minExperienceYears" validate:"gte=0,max=50"`
}

type UpdatePrequalificationRoleRequest struct {
	RolePatch
	ScreeningQuestions []string `json:"screeningQuestions" validate:"omitempty,max=30,dive,min=3,max=500"`
	MinExperienceYears *int     `json:"minExperienceYears" validate:"omitempty,gte=0,max=50"`
}

// --- 360 / Direct ---

type CreateDirectRoleRequest struct {
	RoleFields
	ClientCompany string          `json:"clientCompany" validate:"required,max=255"`
	FeePercent    decimal.Decimal `json:"feePercent" validate:"gte=0,lte=100"`
	SalaryMin     decimal.Decimal `json:"salaryMin" validate:"gte=0"`
	SalaryMax     decimal.Decimal `json:"salaryMax" validate:"gte=0"`
}

type UpdateDirectRoleRequest struct {
	RolePatch
	ClientCompany *string          `json:"clientCompany" validate:"omitempty,max=255"`
	FeePercent    *decimal.Decimal `json:"feePercent" validate:"omitempty,gte=0,lte=100"`
	SalaryMin     *decimal.Decimal `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax     *decimal.Decimal `json:"salaryMax" validate:"omitempty,gte=0"`
}

// --- Lead Generation ---

type CreateLeadGenerationRoleRequest struct {
	RoleFields
	TargetIndustry string `json:"targetIndustry" validate:"required,max=120"`
	TargetRegion   string `json:"targetRegion" validate:"max=120"`
}

type UpdateLeadGenerationRoleRequest struct {
	RolePatch
	TargetIndustry *string `json:"targetIndustry" validate:"omitempty,max=120"`
	TargetRegion   *string `json:"targetRegion" validate:"omitempty,max=120"`
}

// --- Счетчики кандидатов ---

// UpdateCountsRequest - абсолютные значения счетчиков
type UpdateCountsRequest struct {
	Counts map[string]int `json:"counts" validate:"required,min=1,counter-keys"`
}

// AddResultRequest - приращения счетчиков от конвейера результатов
type AddResultRequest struct {
	Counts map[string]int `json:"counts" validate:"required,min=1,counter-keys"`
}

// RoleIndexEntryResponse - строка общей таблицы ролей
type RoleIndexEntryResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"displayName"`
	ClientNo    int               `json:"clientNo"`
	ServiceTag  models.ServiceTag `json:"serviceTag"`
	UserID      string            `json:"userId"`
	RoleID      string            `json:"roleId"`
	IsDeleted   bool              `json:"isDeleted"`
}

// IndexReconcileReport - итог прохода сверки индекса
type IndexReconcileReport struct {
	Created  int `json:"created"`
	Restored int `json:"restored"`
	Deleted  int `json:"deleted"`
}
