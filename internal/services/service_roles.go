package services

import (
	"encoding/json"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type (
	CvSourcingService       = ServiceRoleService[models.CvSourcingRole, dto.CreateCvSourcingRoleRequest, dto.UpdateCvSourcingRoleRequest]
	PrequalificationService = ServiceRoleService[models.PrequalificationRole, dto.CreatePrequalificationRoleRequest, dto.UpdatePrequalificationRoleRequest]
	DirectService           = ServiceRoleService[models.DirectRole, dto.CreateDirectRoleRequest, dto.UpdateDirectRoleRequest]
	LeadGenerationService   = ServiceRoleService[models.LeadGenerationRole, dto.CreateLeadGenerationRoleRequest, dto.UpdateLeadGenerationRoleRequest]
)

func NewCvSourcingService(index RoleIndexService, gatekeeper CreditGatekeeper) CvSourcingService {
	return newRoleService[models.CvSourcingRole](models.ServiceTagCvSourcing, index, gatekeeper, buildCvSourcingRole, patchCvSourcingRole)
}

func NewPrequalificationService(index RoleIndexService, gatekeeper CreditGatekeeper) PrequalificationService {
	return newRoleService[models.PrequalificationRole](models.ServiceTagPrequalification, index, gatekeeper, buildPrequalificationRole, patchPrequalificationRole)
}

func NewDirectService(index RoleIndexService, gatekeeper CreditGatekeeper) DirectService {
	return newRoleService[models.DirectRole](models.ServiceTagDirect, index, gatekeeper, buildDirectRole, patchDirectRole)
}

func NewLeadGenerationService(index RoleIndexService, gatekeeper CreditGatekeeper) LeadGenerationService {
	return newRoleService[models.LeadGenerationRole](models.ServiceTagLeadGeneration, index, gatekeeper, buildLeadGenerationRole, patchLeadGenerationRole)
}

// =======================
// Общие поля
// =======================

func newRoleBase(userID string, f *dto.RoleFields) models.RoleBase {
	status := f.Status
	if status == "" {
		status = models.RoleStatusActive
	}
	return models.RoleBase{
		UserID:      userID,
		Title:       f.Title,
		Status:      status,
		Location:    f.Location,
		Description: f.Description,
	}
}

func applyRolePatch(base *models.RoleBase, p *dto.RolePatch) {
	if p.Title != nil {
		base.Title = *p.Title
	}
	if p.Location != nil {
		base.Location = *p.Location
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	if p.Status != nil {
		base.Status = *p.Status
	}
}

func checkSalaryRange(salaryMin, salaryMax decimal.Decimal) error {
	if salaryMax.IsPositive() && salaryMin.GreaterThan(salaryMax) {
		return apperrors.ValidationError(map[string]string{
			"salaryMax": "Must be greater than or equal to salaryMin",
		})
	}
	return nil
}

func stringsJSON(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return datatypes.JSON(raw)
}

// =======================
// CV Sourcing
// =======================

func buildCvSourcingRole(userID string, req *dto.CreateCvSourcingRoleRequest) (*models.CvSourcingRole, error) {
	if err := checkSalaryRange(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}
	return &models.CvSourcingRole{
		RoleBase:       newRoleBase(userID, &req.RoleFields),
		EmploymentType: req.EmploymentType,
		Seniority:      req.Seniority,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: req.SalaryCurrency,
		RequiredSkills: stringsJSON(req.RequiredSkills),
	}, nil
}

func patchCvSourcingRole(role *models.CvSourcingRole, req *dto.UpdateCvSourcingRoleRequest) error {
	applyRolePatch(&role.RoleBase, &req.RolePatch)
	if req.EmploymentType != nil {
		role.EmploymentType = *req.EmploymentType
	}
	if req.Seniority != nil {
		role.Seniority = *req.Seniority
	}
	if req.SalaryMin != nil {
		role.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		role.SalaryMax = *req.SalaryMax
	}
	if req.SalaryCurrency != nil {
		role.SalaryCurrency = *req.SalaryCurrency
	}
	if req.RequiredSkills != nil {
		role.RequiredSkills = stringsJSON(req.RequiredSkills)
	}
	return checkSalaryRange(role.SalaryMin, role.SalaryMax)
}

// =======================
// Prequalification
// =======================

func buildPrequalificationRole(userID string, req *dto.CreatePrequalificationRoleRequest) (*models.PrequalificationRole, error) {
	return &models.PrequalificationRole{
		RoleBase:           newRoleBase(userID, &req.RoleFields),
		ScreeningQuestions: stringsJSON(req.ScreeningQuestions),
		MinExperienceYears: req.MinExperienceYears,
	}, nil
}

func patchPrequalificationRole(role *models.PrequalificationRole, req *dto.UpdatePrequalificationRoleRequest) error {
	applyRolePatch(&role.RoleBase, &req.RolePatch)
	if req.ScreeningQuestions != nil {
		role.ScreeningQuestions = stringsJSON(req.ScreeningQuestions)
	}
	if req.MinExperienceYears != nil {
		role.MinExperienceYears = *req.MinExperienceYears
	}
	return nil
}

// =======================
// 360 / Direct
// =======================

func buildDirectRole(userID string, req *dto.CreateDirectRoleRequest) (*models.DirectRole, error) {
	if err := checkSalaryRange(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}
	return &models.DirectRole{
		RoleBase:      newRoleBase(userID, &req.RoleFields),
		ClientCompany: req.ClientCompany,
		FeePercent:    req.FeePercent,
		SalaryMin:     req.SalaryMin,
		SalaryMax:     req.SalaryMax,
	}, nil
}

func patchDirectRole(role *models.DirectRole, req *dto.UpdateDirectRoleRequest) error {
	applyRolePatch(&role.RoleBase, &req.RolePatch)
	if req.ClientCompany != nil {
		role.ClientCompany = *req.ClientCompany
	}
	if req.FeePercent != nil {
		role.FeePercent = *req.FeePercent
	}
	if req.SalaryMin != nil {
		role.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		role.SalaryMax = *req.SalaryMax
	}
	return checkSalaryRange(role.SalaryMin, role.SalaryMax)
}

// =======================
// Lead Generation
// =======================

func buildLeadGenerationRole(userID string, req *dto.CreateLeadGenerationRoleRequest) (*models.LeadGenerationRole, error) {
	return &models.LeadGenerationRole{
		RoleBase:       newRoleBase(userID, &req.RoleFields),
		TargetIndustry: req.TargetIndustry,
		TargetRegion:   req.TargetRegion,
	}, nil
}

func patchLeadGenerationRole(role *models.LeadGenerationRole, req *dto.UpdateLeadGenerationRoleRequest) error {
	applyRolePatch(&role.RoleBase, &req.RolePatch)
	if req.TargetIndustry != nil {
		role.TargetIndustry = *req.TargetIndustry
	}
	if req.TargetRegion != nil {
		role.TargetRegion = *req.TargetRegion
	}
	return nil
}
