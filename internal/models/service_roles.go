package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrUnknownCounter  = errors.New("unknown candidate counter")
	ErrNegativeCounter = errors.New("candidate counter must not be negative")
)

// ServiceRole - общий протокол ролей всех услуг
type ServiceRole interface {
	GetID() string
	GetUserID() string
	GetTitle() string
	IsDeleted() bool
	ServiceTag() ServiceTag
	// Counters - указатели на счетчики кандидатов по ключу API
	Counters() map[string]*int
	// ChannelKeys - счетчики, из которых складывается TotalCandidates
	ChannelKeys() []string
	RecalculateTotals()
}

// RoleBase - поля, общие для ролей всех услуг
type RoleBase struct {
	BaseModelWithDeleted
	UserID          string     `gorm:"size:36;not null;index" json:"userId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Status          RoleStatus `gorm:"size:16;not null" json:"status"`
	Location        string     `gorm:"size:255" json:"location"`
	Description     string     `gorm:"type:text" json:"description"`
	TotalCandidates int        `gorm:"not null" json:"totalCandidates"`
}

func (r *RoleBase) GetID() string     { return r.ID }
func (r *RoleBase) GetUserID() string { return r.UserID }
func (r *RoleBase) GetTitle() string  { return r.Title }

// ApplyCounts - частичное обновление счетчиков с пересчетом итога.
// Все ключи проверяются до изменения, поэтому ошибка не оставляет роль наполовину обновленной.
func ApplyCounts(role ServiceRole, counts map[string]int) error {
	counters := role.Counters()
	for key, value := range counts {
		if _, ok := counters[key]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCounter, key)
		}
		if value < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeCounter, key)
		}
	}
	for key, value := range counts {
		*counters[key] = value
	}
	role.RecalculateTotals()
	return nil
}

// AddCounts - инкремент счетчиков (поступление результатов)
func AddCounts(role ServiceRole, deltas map[string]int) error {
	counters := role.Counters()
	for key, delta := range deltas {
		ptr, ok := counters[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCounter, key)
		}
		if *ptr+delta < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeCounter, key)
		}
	}
	for key, delta := range deltas {
		*counters[key] += delta
	}
	role.RecalculateTotals()
	return nil
}

func sumChannels(role ServiceRole) int {
	counters := role.Counters()
	total := 0
	for _, key := range role.ChannelKeys() {
		total += *counters[key]
	}
	return total
}

// =======================
// CV Sourcing
// =======================

type CvSourcingRole struct {
	RoleBase
	EmploymentType  string          `gorm:"size:32" json:"employmentType"`
	Seniority       string          `gorm:"size:32" json:"seniority"`
	SalaryMin       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salaryMin"`
	SalaryMax       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salaryMax"`
	SalaryCurrency  string          `gorm:"size:3" json:"salaryCurrency"`
	RequiredSkills  datatypes.JSON  `json:"requiredSkills"`
	LinkedinSourced int             `gorm:"not null" json:"linkedinSourced"`
	JobBoardSourced int             `gorm:"not null" json:"jobBoardSourced"`
	DatabaseSourced int             `gorm:"not null" json:"databaseSourced"`
	ReferralSourced int             `gorm:"not null" json:"referralSourced"`
	Shortlisted     int             `gorm:"not null" json:"shortlisted"`
	Rejected        int             `gorm:"not null" json:"rejected"`
}

func (r *CvSourcingRole) ServiceTag() ServiceTag { return ServiceTagCvSourcing }

func (r *CvSourcingRole) Counters() map[string]*int {
	return map[string]*int{
		"linkedinSourced": &r.LinkedinSourced,
		"jobBoardSourced": &r.JobBoardSourced,
		"databaseSourced": &r.DatabaseSourced,
		"referralSourced": &r.ReferralSourced,
		"shortlisted":     &r.Shortlisted,
		"rejected":        &r.Rejected,
	}
}

func (r *CvSourcingRole) ChannelKeys() []string {
	return []string{"linkedinSourced", "jobBoardSourced", "databaseSourced", "referralSourced"}
}

func (r *CvSourcingRole) RecalculateTotals() { r.TotalCandidates = sumChannels(r) }

func (r *CvSourcingRole) BeforeSave(tx *gorm.DB) error {
	r.RecalculateTotals()
	return nil
}

// =======================
// Prequalification
// =======================

type PrequalificationRole struct {
	RoleBase
	ScreeningQuestions    datatypes.JSON `json:"screeningQuestions"`
	MinExperienceYears    int            `gorm:"not null" json:"minExperienceYears"`
	PhoneScreened         int            `gorm:"not null" json:"phoneScreened"`
	VideoScreened         int            `gorm:"not null" json:"videoScreened"`
	QuestionnaireScreened int            `gorm:"not null" json:"questionnaireScreened"`
	Qualified             int            `gorm:"not null" json:"qualified"`
	Rejected              int            `gorm:"not null" json:"rejected"`
}

func (r *PrequalificationRole) ServiceTag() ServiceTag { return ServiceTagPrequalification }

func (r *PrequalificationRole) Counters() map[string]*int {
	return map[string]*int{
		"phoneScreened":         &r.PhoneScreened,
		"videoScreened":         &r.VideoScreened,
		"questionnaireScreened": &r.QuestionnaireScreened,
		"qualified":             &r.Qualified,
		"rejected":              &r.Rejected,
	}
}

func (r *PrequalificationRole) ChannelKeys() []string {
	return []string{"phoneScreened", "videoScreened", "questionnaireScreened"}
}

func (r *PrequalificationRole) RecalculateTotals() { r.TotalCandidates = sumChannels(r) }

func (r *PrequalificationRole) BeforeSave(tx *gorm.DB) error {
	r.RecalculateTotals()
	return nil
}

// =======================
// 360 / Direct
// =======================

type DirectRole struct {
	RoleBase
	ClientCompany        string          `gorm:"size:255" json:"clientCompany"`
	FeePercent           decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"feePercent"`
	SalaryMin            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salaryMin"`
	SalaryMax            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"salaryMax"`
	HeadhuntedCandidates int             `gorm:"not null" json:"headhuntedCandidates"`
	ReferredCandidates   int             `gorm:"not null" json:"referredCandidates"`
	AppliedCandidates    int             `gorm:"not null" json:"appliedCandidates"`
	Interviewed          int             `gorm:"not null" json:"interviewed"`
	Offered              int             `gorm:"not null" json:"offered"`
	Placed               int             `gorm:"not null" json:"placed"`
}

func (r *DirectRole) ServiceTag() ServiceTag { return ServiceTagDirect }

func (r *DirectRole) Counters() map[string]*int {
	return map[string]*int{
		"headhuntedCandidates": &r.HeadhuntedCandidates,
		"referredCandidates":   &r.ReferredCandidates,
		"appliedCandidates":    &r.AppliedCandidates,
		"interviewed":          &r.Interviewed,
		"offered":              &r.Offered,
		"placed":               &r.Placed,
	}
}

func (r *DirectRole) ChannelKeys() []string {
	return []string{"headhuntedCandidates", "referredCandidates", "appliedCandidates"}
}

func (r *DirectRole) RecalculateTotals() { r.TotalCandidates = sumChannels(r) }

func (r *DirectRole) BeforeSave(tx *gorm.DB) error {
	r.RecalculateTotals()
	return nil
}

// =======================
// Lead Generation
// =======================

type LeadGenerationRole struct {
	RoleBase
	TargetIndustry string `gorm:"size:120" json:"targetIndustry"`
	TargetRegion   string `gorm:"size:120" json:"targetRegion"`
	EmailLeads     int    `gorm:"not null" json:"emailLeads"`
	LinkedinLeads  int    `gorm:"not null" json:"linkedinLeads"`
	PhoneLeads     int    `gorm:"not null" json:"phoneLeads"`
	QualifiedLeads int    `gorm:"not null" json:"qualifiedLeads"`
	Converted      int    `gorm:"not null" json:"converted"`
}

func (r *LeadGenerationRole) ServiceTag() ServiceTag { return ServiceTagLeadGeneration }

func (r *LeadGenerationRole) Counters() map[string]*int {
	return map[string]*int{
		"emailLeads":     &r.EmailLeads,
		"linkedinLeads":  &r.LinkedinLeads,
		"phoneLeads":     &r.PhoneLeads,
		"qualifiedLeads": &r.QualifiedLeads,
		"converted":      &r.Converted,
	}
}

func (r *LeadGenerationRole) ChannelKeys() []string {
	return []string{"emailLeads", "linkedinLeads", "phoneLeads"}
}

func (r *LeadGenerationRole) RecalculateTotals() { r.TotalCandidates = sumChannels(r) }

func (r *LeadGenerationRole) BeforeSave(tx *gorm.DB) error {
	r.RecalculateTotals()
	return nil
}
