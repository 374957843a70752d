package services_test

import (
	"testing"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRole_SpendsCreditAndIndexesRole(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 2)

	// 1. Действие
	role, err := f.sc.CvSourcingService.Create(f.ctx, f.db, "user-1", cvRequest("Backend Engineer"))

	// 2. Проверка роли и кредита
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.Equal(t, models.RoleStatusActive, role.Status)
	assert.Equal(t, 1, f.remaining(t, "user-1"))

	// 3. Проверка строки индекса
	entries, err := f.sc.RoleIndexService.ListForUser(f.ctx, f.db, "user-1", false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CV Sourcing", entries[0].DisplayName)
	assert.Equal(t, models.ServiceTagCvSourcing, entries[0].ServiceTag)
	assert.Equal(t, role.ID, entries[0].RoleID)
	assert.Equal(t, 1, entries[0].ClientNo)

	events, err := f.sc.CreditHistoryService.FindByUserAndService(f.ctx, f.db, "user-1", models.ServiceTagCvSourcing, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].RoleTitle)
	assert.Equal(t, "Backend Engineer", *events[0].RoleTitle)
}

func TestCreateRole_WithoutCreditsCreatesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.sc.DirectService.Create(f.ctx, f.db, "user-1", &dto.CreateDirectRoleRequest{
		RoleFields:    dto.RoleFields{Title: "CFO"},
		ClientCompany: "Acme",
	})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientCredits))

	var roles, entries int64
	require.NoError(t, f.db.Unscoped().Model(&models.DirectRole{}).Count(&roles).Error)
	require.NoError(t, f.db.Unscoped().Model(&models.RoleIndexEntry{}).Count(&entries).Error)
	assert.Zero(t, roles)
	assert.Zero(t, entries)
}

func TestCreateRole_ValidationFailsBeforeCredit(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 2)

	req := cvRequest("Backend Engineer")
	req.SalaryMin = decimal.NewFromInt(9000)
	req.SalaryMax = decimal.NewFromInt(5000)

	_, err := f.sc.CvSourcingService.Create(f.ctx, f.db, "user-1", req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-1", cvRequest("   "))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	assert.Equal(t, 2, f.remaining(t, "user-1"), "кредит не списан")
	events, err := f.sc.CreditHistoryService.FindByUser(f.ctx, f.db, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, events, 1, "только покупка")
}

func TestClientNo_StablePerUserAndService(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-a", 10)
	f.purchase(t, "user-b", 10)

	first, err := f.sc.CvSourcingService.Create(f.ctx, f.db, "user-a", cvRequest("Role A1"))
	require.NoError(t, err)
	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-a", cvRequest("Role A2"))
	require.NoError(t, err)
	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-b", cvRequest("Role B1"))
	require.NoError(t, err)
	_, err = f.sc.LeadGenerationService.Create(f.ctx, f.db, "user-b", &dto.CreateLeadGenerationRoleRequest{
		RoleFields:     dto.RoleFields{Title: "Fintech leads"},
		TargetIndustry: "fintech",
	})
	require.NoError(t, err)

	clientNo := func(userID string, tag models.ServiceTag) []int {
		entries, err := f.sc.RoleIndexService.ListForUser(f.ctx, f.db, userID, true)
		require.NoError(t, err)
		var numbers []int
		for _, e := range entries {
			if e.ServiceTag == tag {
				numbers = append(numbers, e.ClientNo)
			}
		}
		return numbers
	}

	assert.Equal(t, []int{1, 1}, clientNo("user-a", models.ServiceTagCvSourcing))
	assert.Equal(t, []int{2}, clientNo("user-b", models.ServiceTagCvSourcing))
	assert.Equal(t, []int{1}, clientNo("user-b", models.ServiceTagLeadGeneration), "нумерация своя у каждой услуги")

	// После удаления всех ролей номер пары сохраняется
	require.NoError(t, f.sc.CvSourcingService.SoftDelete(f.ctx, f.db, "user-a", first.ID))
	roles, err := f.sc.CvSourcingService.List(f.ctx, f.db, "user-a", false)
	require.NoError(t, err)
	for _, r := range roles {
		require.NoError(t, f.sc.CvSourcingService.SoftDelete(f.ctx, f.db, "user-a", r.ID))
	}

	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-a", cvRequest("Role A3"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, clientNo("user-a", models.ServiceTagCvSourcing))

	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-c", cvRequest("Role C1"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientCredits))
	f.purchase(t, "user-c", 1)
	_, err = f.sc.CvSourcingService.Create(f.ctx, f.db, "user-c", cvRequest("Role C1"))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, clientNo("user-c", models.ServiceTagCvSourcing))
}

func TestSoftDeleteRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 2)

	created, err := f.sc.PrequalificationService.Create(f.ctx, f.db, "user-1", &dto.CreatePrequalificationRoleRequest{
		RoleFields:         dto.RoleFields{Title: "Registered Nurse"},
		ScreeningQuestions: []string{"Do you hold a valid license?"},
		MinExperienceYears: 2,
	})
	require.NoError(t, err)
	before, err := f.sc.PrequalificationService.Get(f.ctx, f.db, "user-1", created.ID)
	require.NoError(t, err)

	// 1. Удаление скрывает роль и строку индекса
	require.NoError(t, f.sc.PrequalificationService.SoftDelete(f.ctx, f.db, "user-1", created.ID))

	_, err = f.sc.PrequalificationService.Get(f.ctx, f.db, "user-1", created.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrRoleNotFound))

	live, err := f.sc.RoleIndexService.ListForUser(f.ctx, f.db, "user-1", false)
	require.NoError(t, err)
	assert.Empty(t, live)

	withDeleted, err := f.sc.RoleIndexService.ListForUser(f.ctx, f.db, "user-1", true)
	require.NoError(t, err)
	require.Len(t, withDeleted, 1)
	assert.True(t, withDeleted[0].IsDeleted)

	// 2. Восстановление возвращает обе записи без изменения updated_at
	restored, err := f.sc.PrequalificationService.Restore(f.ctx, f.db, "user-1", created.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
	assert.True(t, before.UpdatedAt.Equal(restored.UpdatedAt))
	assert.Equal(t, before.Title, restored.Title)

	live, err = f.sc.RoleIndexService.ListForUser(f.ctx, f.db, "user-1", false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, 1, live[0].ClientNo)

	// Удаление и восстановление кредиты не трогают
	assert.Equal(t, 1, f.remaining(t, "user-1"))
}

func TestHardDelete_RemovesRoleAndIndexEntry(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 1)

	role, err := f.sc.LeadGenerationService.Create(f.ctx, f.db, "user-1", &dto.CreateLeadGenerationRoleRequest{
		RoleFields:     dto.RoleFields{Title: "Healthcare leads"},
		TargetIndustry: "healthcare",
		TargetRegion:   "EMEA",
	})
	require.NoError(t, err)

	err = f.sc.LeadGenerationService.HardDelete(f.ctx, f.db, "user-2", role.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrRoleNotFound), "чужую роль удалить нельзя")

	require.NoError(t, f.sc.LeadGenerationService.HardDelete(f.ctx, f.db, "user-1", role.ID))

	var roles, entries int64
	require.NoError(t, f.db.Unscoped().Model(&models.LeadGenerationRole{}).Count(&roles).Error)
	require.NoError(t, f.db.Unscoped().Model(&models.RoleIndexEntry{}).Count(&entries).Error)
	assert.Zero(t, roles)
	assert.Zero(t, entries)

	_, err = f.sc.LeadGenerationService.Restore(f.ctx, f.db, "user-1", role.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrRoleNotFound))
}

func TestCandidateCounts_TotalIsRecomputed(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 1)

	role, err := f.sc.CvSourcingService.Create(f.ctx, f.db, "user-1", cvRequest("Platform Engineer"))
	require.NoError(t, err)
	assert.Zero(t, role.TotalCandidates)

	// 1. Абсолютные значения: shortlisted в итог не входит
	role, err = f.sc.CvSourcingService.UpdateCandidateCounts(f.ctx, f.db, "user-1", role.ID, map[string]int{
		"linkedinSourced": 3,
		"referralSourced": 2,
		"shortlisted":     1,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, role.TotalCandidates)

	// 2. Приращения от конвейера результатов (административный доступ)
	role, err = f.sc.CvSourcingService.AddResult(f.ctx, f.db, "", role.ID, map[string]int{"jobBoardSourced": 4})
	require.NoError(t, err)
	assert.Equal(t, 9, role.TotalCandidates)

	// 3. Неизвестный счетчик не меняет роль
	_, err = f.sc.CvSourcingService.UpdateCandidateCounts(f.ctx, f.db, "user-1", role.ID, map[string]int{
		"linkedinSourced": 100,
		"unknown":         1,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownCounter))

	_, err = f.sc.CvSourcingService.AddResult(f.ctx, f.db, "", role.ID, map[string]int{"referralSourced": -5})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	stored, err := f.sc.CvSourcingService.Get(f.ctx, f.db, "user-1", role.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.LinkedinSourced)
	assert.Equal(t, 9, stored.TotalCandidates)

	// 4. Правка полей тоже пересчитывает итог
	title := "Staff Platform Engineer"
	updated, err := f.sc.CvSourcingService.Update(f.ctx, f.db, "user-1", role.ID, &dto.UpdateCvSourcingRoleRequest{
		RolePatch: dto.RolePatch{Title: &title},
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 9, updated.TotalCandidates)
}

func TestUpdateRole_OwnershipAndSalaryRange(t *testing.T) {
	f := newFixture(t)
	f.purchase(t, "user-1", 1)

	role, err := f.sc.DirectService.Create(f.ctx, f.db, "user-1", &dto.CreateDirectRoleRequest{
		RoleFields:    dto.RoleFields{Title: "VP Engineering"},
		ClientCompany: "Acme",
		FeePercent:    decimal.NewFromInt(20),
		SalaryMin:     decimal.NewFromInt(150000),
		SalaryMax:     decimal.NewFromInt(200000),
	})
	require.NoError(t, err)

	company := "Globex"
	_, err = f.sc.DirectService.Update(f.ctx, f.db, "user-2", role.ID, &dto.UpdateDirectRoleRequest{ClientCompany: &company})
	assert.True(t, apperrors.Is(err, apperrors.ErrRoleNotFound))

	low := decimal.NewFromInt(100000)
	_, err = f.sc.DirectService.Update(f.ctx, f.db, "user-1", role.ID, &dto.UpdateDirectRoleRequest{SalaryMax: &low})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	stored, err := f.sc.DirectService.Get(f.ctx, f.db, "", role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.ClientCompany)
	assert.True(t, stored.SalaryMax.Equal(decimal.NewFromInt(200000)))
}
