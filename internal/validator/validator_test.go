package validator_test

import (
	"testing"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PurchaseRequest(t *testing.T) {
	v := validator.New()

	valid := &dto.PurchaseRequest{
		PlanID:       "2b1f7f4e-3a52-4c1e-9a7e-0f3b9c7d1a20",
		BillingCycle: models.BillingCycleAnnual,
		PaidAmount:   decimal.NewFromInt(1000),
		Currency:     "EUR",
	}
	assert.NoError(t, v.Validate(valid))

	invalid := &dto.PurchaseRequest{
		PlanID:       "not-a-uuid",
		BillingCycle: "weekly",
		PaidAmount:   decimal.NewFromInt(-5),
		Status:       models.SubscriptionStatusExpired,
	}
	err := v.Validate(invalid)
	require.Error(t, err)

	vErr, ok := err.(*validator.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be a valid UUID", vErr.Errors["planId"])
	assert.Equal(t, "Must be one of: monthly, annual, adhoc", vErr.Errors["billingCycle"])
	assert.Contains(t, vErr.Errors, "paidAmount")
	assert.Contains(t, vErr.Errors, "status")
}

func TestValidate_RoleRequests(t *testing.T) {
	v := validator.New()

	req := &dto.CreateCvSourcingRoleRequest{
		RoleFields:     dto.RoleFields{Title: "Go Developer", Status: models.RoleStatusOnHold},
		EmploymentType: "full_time",
		SalaryCurrency: "USD",
		RequiredSkills: []string{"go", "postgres"},
	}
	assert.NoError(t, v.Validate(req))

	req.Status = "archived"
	req.RequiredSkills = []string{""}
	err := v.Validate(req)
	require.Error(t, err)
	vErr := err.(*validator.ValidationError)
	assert.Equal(t, "Must be one of: active, on_hold, filled, closed", vErr.Errors["status"])
	assert.Contains(t, vErr.Error(), "Validation failed")

	direct := &dto.CreateDirectRoleRequest{
		RoleFields: dto.RoleFields{Title: "CTO"},
		FeePercent: decimal.NewFromInt(150),
	}
	err = v.Validate(direct)
	require.Error(t, err)
	vErr = err.(*validator.ValidationError)
	assert.Contains(t, vErr.Errors, "clientCompany")
	assert.Contains(t, vErr.Errors, "feePercent")
}

func TestValidate_CountersAndServiceTag(t *testing.T) {
	v := validator.New()

	assert.NoError(t, v.Validate(&dto.UpdateCountsRequest{Counts: map[string]int{"shortlisted": 2}}))

	err := v.Validate(&dto.UpdateCountsRequest{Counts: map[string]int{"shortlisted": -1}})
	require.Error(t, err)
	assert.Contains(t, err.(*validator.ValidationError).Errors, "counts")

	assert.Error(t, v.Validate(&dto.AddResultRequest{}))

	assert.NoError(t, v.Validate(&dto.CheckAndDeductRequest{ServiceTag: models.ServiceTagDirect, RoleTitle: "CFO"}))
	err = v.Validate(&dto.CheckAndDeductRequest{ServiceTag: 1234, RoleTitle: "CFO"})
	require.Error(t, err)
	assert.Equal(t, "Must be a known service tag", err.(*validator.ValidationError).Errors["serviceTag"])
}
