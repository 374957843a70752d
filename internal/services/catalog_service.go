package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recruitportal_backend/internal/cache"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	planListAllKey    = cache.PrefixPlan + "list:all"
	planListActiveKey = cache.PrefixPlan + "list:active"
)

// CatalogService - каталог планов подписки
type CatalogService interface {
	ListPlans(ctx context.Context, db *gorm.DB, activeOnly bool) ([]dto.PlanResponse, error)
	GetPlan(ctx context.Context, db *gorm.DB, planID string) (*dto.PlanResponse, error)
	CreatePlan(ctx context.Context, db *gorm.DB, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	SeedDefaultPlans(ctx context.Context, db *gorm.DB, currency string) (int, error)
}

type catalogService struct {
	planRepo repositories.PlanRepository
	cache    cache.Cache
	ttl      time.Duration
}

func NewCatalogService(planRepo repositories.PlanRepository, c cache.Cache, ttl time.Duration) CatalogService {
	return &catalogService{
		planRepo: planRepo,
		cache:    c,
		ttl:      ttl,
	}
}

func (s *catalogService) ListPlans(ctx context.Context, db *gorm.DB, activeOnly bool) ([]dto.PlanResponse, error) {
	key := planListAllKey
	if activeOnly {
		key = planListActiveKey
	}

	if cached, found := s.cache.Get(ctx, key); found {
		if plans, ok := cache.UnmarshalCacheValue[[]dto.PlanResponse](cached); ok {
			return *plans, nil
		}
	}

	plans, err := s.planRepo.FindAll(db.WithContext(ctx), activeOnly)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	responses := lo.Map(plans, func(p models.Plan, _ int) dto.PlanResponse {
		return buildPlanResponse(&p)
	})
	s.cache.Set(ctx, key, &responses, s.ttl)
	return responses, nil
}

func (s *catalogService) GetPlan(ctx context.Context, db *gorm.DB, planID string) (*dto.PlanResponse, error) {
	key := cache.PrefixPlan + planID
	if cached, found := s.cache.Get(ctx, key); found {
		if plan, ok := cache.UnmarshalCacheValue[dto.PlanResponse](cached); ok {
			return plan, nil
		}
	}

	plan, err := s.planRepo.FindByID(db.WithContext(ctx), planID)
	if err != nil {
		return nil, handleLedgerError(err)
	}

	response := buildPlanResponse(plan)
	s.cache.Set(ctx, key, &response, s.ttl)
	return &response, nil
}

func (s *catalogService) CreatePlan(ctx context.Context, db *gorm.DB, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	db = db.WithContext(ctx)

	if _, err := s.planRepo.FindByTitle(db, req.Title); err == nil {
		return nil, apperrors.ErrConflict(nil, "plan", fmt.Sprintf("Plan %q already exists", req.Title))
	} else if !errors.Is(err, repositories.ErrPlanNotFound) {
		return nil, apperrors.DatabaseError(err)
	}

	plan := &models.Plan{
		Title:           req.Title,
		Description:     req.Description,
		ServiceTag:      req.ServiceTag,
		MonthlyPrice:    req.MonthlyPrice,
		MonthlyCredits:  req.MonthlyCredits,
		AnnualPrice:     req.AnnualPrice,
		AnnualCredits:   req.AnnualCredits,
		AdhocPrice:      req.AdhocPrice,
		AdhocCredits:    req.AdhocCredits,
		CreditUnitPrice: req.CreditUnitPrice,
		Currency:        lo.Ternary(req.Currency != "", req.Currency, "USD"),
		IsActive:        lo.FromPtrOr(req.IsActive, true),
		SortOrder:       req.SortOrder,
	}
	if err := plan.SetFeatures(req.Features); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.planRepo.Create(db, plan); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.invalidate(ctx, plan.ID)
	logger.CtxInfo(ctx, "Plan created", "plan_id", plan.ID, "title", plan.Title)

	response := buildPlanResponse(plan)
	return &response, nil
}

func (s *catalogService) UpdatePlan(ctx context.Context, db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	db = db.WithContext(ctx)

	plan, err := s.planRepo.FindByID(db, planID)
	if err != nil {
		return nil, handleLedgerError(err)
	}

	if req.Title != nil && *req.Title != plan.Title {
		if _, err := s.planRepo.FindByTitle(db, *req.Title); err == nil {
			return nil, apperrors.ErrConflict(nil, "plan", fmt.Sprintf("Plan %q already exists", *req.Title))
		}
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.MonthlyPrice != nil {
		plan.MonthlyPrice = *req.MonthlyPrice
	}
	if req.MonthlyCredits != nil {
		plan.MonthlyCredits = *req.MonthlyCredits
	}
	if req.AnnualPrice != nil {
		plan.AnnualPrice = *req.AnnualPrice
	}
	if req.AnnualCredits != nil {
		plan.AnnualCredits = *req.AnnualCredits
	}
	if req.AdhocPrice != nil {
		plan.AdhocPrice = *req.AdhocPrice
	}
	if req.AdhocCredits != nil {
		plan.AdhocCredits = *req.AdhocCredits
	}
	if req.CreditUnitPrice != nil {
		plan.CreditUnitPrice = *req.CreditUnitPrice
	}
	if req.Features != nil {
		if err := plan.SetFeatures(req.Features); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		plan.SortOrder = *req.SortOrder
	}

	// Уже купленные записи реестра не пересчитываются: кредиты фиксируются при покупке
	if err := s.planRepo.Update(db, plan); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	s.invalidate(ctx, plan.ID)
	logger.CtxInfo(ctx, "Plan updated", "plan_id", plan.ID)

	response := buildPlanResponse(plan)
	return &response, nil
}

// SeedDefaultPlans создает планы по умолчанию. Существующие по названию не трогает.
func (s *catalogService) SeedDefaultPlans(ctx context.Context, db *gorm.DB, currency string) (int, error) {
	db = db.WithContext(ctx)
	created := 0

	for _, plan := range defaultPlans(currency) {
		_, err := s.planRepo.FindByTitle(db, plan.Title)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrPlanNotFound) {
			return created, apperrors.DatabaseError(err)
		}
		if err := s.planRepo.Create(db, plan); err != nil {
			return created, apperrors.DatabaseError(err)
		}
		created++
	}

	if created > 0 {
		s.cache.DeleteByPrefix(ctx, cache.PrefixPlan)
		logger.CtxInfo(ctx, "Default plans seeded", "created", created)
	}
	return created, nil
}

func (s *catalogService) invalidate(ctx context.Context, planID string) {
	s.cache.Delete(ctx, cache.PrefixPlan+planID)
	s.cache.Delete(ctx, planListAllKey)
	s.cache.Delete(ctx, planListActiveKey)
}

func defaultPlans(currency string) []*models.Plan {
	if currency == "" {
		currency = "USD"
	}

	type seed struct {
		title    string
		tag      models.ServiceTag
		monthly  int64
		credits  int
		unit     int64
		features []string
	}
	seeds := []seed{
		{"Starter", models.ServiceTagNone, 199, 5, 45, []string{"Any recruitment service", "Email support"}},
		{"CV Sourcing", models.ServiceTagCvSourcing, 299, 10, 35, []string{"Multi-channel sourcing", "Shortlist reports"}},
		{"Prequalification", models.ServiceTagPrequalification, 399, 10, 45, []string{"Phone and video screening", "Custom questionnaires"}},
		{"360/Direct", models.ServiceTagDirect, 999, 5, 220, []string{"Dedicated consultant", "Offer management"}},
		{"Lead Generation", models.ServiceTagLeadGeneration, 249, 15, 20, []string{"Email and LinkedIn leads", "Qualified lead export"}},
	}

	plans := make([]*models.Plan, 0, len(seeds))
	for i, sd := range seeds {
		monthly := decimal.NewFromInt(sd.monthly)
		plan := &models.Plan{
			Title:           sd.title,
			Description:     fmt.Sprintf("%s plan", sd.title),
			ServiceTag:      sd.tag,
			MonthlyPrice:    monthly,
			MonthlyCredits:  sd.credits,
			AnnualPrice:     monthly.Mul(decimal.NewFromInt(10)),
			AnnualCredits:   sd.credits * 12,
			AdhocPrice:      decimal.NewFromInt(sd.unit),
			AdhocCredits:    1,
			CreditUnitPrice: decimal.NewFromInt(sd.unit),
			Currency:        currency,
			IsActive:        true,
			SortOrder:       i + 1,
		}
		_ = plan.SetFeatures(sd.features)
		plans = append(plans, plan)
	}
	return plans
}

func buildPlanResponse(p *models.Plan) dto.PlanResponse {
	return dto.PlanResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		ServiceTag:      p.ServiceTag,
		ServiceName:     p.ServiceTag.DisplayName(),
		MonthlyPrice:    p.MonthlyPrice,
		MonthlyCredits:  p.MonthlyCredits,
		AnnualPrice:     p.AnnualPrice,
		AnnualCredits:   p.AnnualCredits,
		AdhocPrice:      p.AdhocPrice,
		AdhocCredits:    p.AdhocCredits,
		CreditUnitPrice: p.CreditUnitPrice,
		Currency:        p.Currency,
		Features:        p.FeatureList(),
		IsActive:        p.IsActive,
		SortOrder:       p.SortOrder,
	}
}
