package services

import (
	"context"
	"time"

	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

// CreditHistoryService - журнал операций с кредитами (только добавление и чтение)
type CreditHistoryService interface {
	Record(ctx context.Context, db *gorm.DB, event *models.CreditEvent) error
	FindByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]*dto.CreditEventResponse, error)
	FindByUserAndService(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, limit int) ([]*dto.CreditEventResponse, error)
	FindBySubscription(ctx context.Context, db *gorm.DB, subscriptionID string) ([]*dto.CreditEventResponse, error)
	Reconcile(ctx context.Context, db *gorm.DB, subscriptionID string) (*dto.ReconcileReport, error)
}

type creditHistoryService struct {
	eventRepo repositories.CreditEventRepository
	subRepo   repositories.UserSubscriptionRepository
	now       func() time.Time
}

func NewCreditHistoryService(
	eventRepo repositories.CreditEventRepository,
	subRepo repositories.UserSubscriptionRepository,
	now func() time.Time,
) CreditHistoryService {
	return &creditHistoryService{
		eventRepo: eventRepo,
		subRepo:   subRepo,
		now:       now,
	}
}

// Record добавляет событие. Вызывается внутри транзакции, изменившей реестр,
// поэтому db здесь - это tx вызывающего.
func (s *creditHistoryService) Record(ctx context.Context, db *gorm.DB, event *models.CreditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := s.eventRepo.Create(db.WithContext(ctx), event); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

func (s *creditHistoryService) FindByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]*dto.CreditEventResponse, error) {
	events, err := s.eventRepo.FindByUser(db.WithContext(ctx), userID, normalizeLimit(limit))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(events, func(e models.CreditEvent, _ int) *dto.CreditEventResponse {
		return buildCreditEventResponse(&e)
	}), nil
}

func (s *creditHistoryService) FindByUserAndService(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, limit int) ([]*dto.CreditEventResponse, error) {
	if !tag.IsValid() {
		return nil, apperrors.ErrUnknownServiceTag
	}
	events, err := s.eventRepo.FindByUserAndService(db.WithContext(ctx), userID, tag, normalizeLimit(limit))
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(events, func(e models.CreditEvent, _ int) *dto.CreditEventResponse {
		return buildCreditEventResponse(&e)
	}), nil
}

func (s *creditHistoryService) FindBySubscription(ctx context.Context, db *gorm.DB, subscriptionID string) ([]*dto.CreditEventResponse, error) {
	events, err := s.eventRepo.FindBySubscription(db.WithContext(ctx), subscriptionID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(events, func(e models.CreditEvent, _ int) *dto.CreditEventResponse {
		return buildCreditEventResponse(&e)
	}), nil
}

// Reconcile сверяет сумму событий с остатком записи реестра.
// Покупки и докупки дают плюс, списания минус, возвраты плюс, истечение 0,
// поэтому сумма обязана совпасть с RemainingCredits.
func (s *creditHistoryService) Reconcile(ctx context.Context, db *gorm.DB, subscriptionID string) (*dto.ReconcileReport, error) {
	db = db.WithContext(ctx)

	sub, err := s.subRepo.FindByID(db, subscriptionID)
	if err != nil {
		return nil, handleLedgerError(err)
	}

	events, err := s.eventRepo.FindBySubscription(db, subscriptionID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	sum := lo.SumBy(events, func(e models.CreditEvent) int { return e.CreditAmount })

	return &dto.ReconcileReport{
		SubscriptionID:   subscriptionID,
		EventCount:       len(events),
		EventSum:         sum,
		RemainingCredits: sub.RemainingCredits,
		Consistent:       sum == sub.RemainingCredits && sub.IsConsistent(),
	}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultHistoryLimit
	}
	return limit
}

func buildCreditEventResponse(e *models.CreditEvent) *dto.CreditEventResponse {
	return &dto.CreditEventResponse{
		ID:                    e.ID,
		SubscriptionID:        e.SubscriptionID,
		ActionType:            e.ActionType,
		CreditAmount:          e.CreditAmount,
		RemainingCreditsAfter: e.RemainingCreditsAfter,
		ServiceType:           e.ServiceTag,
		ServiceTitle:          e.ServiceTag.DisplayName(),
		RoleTitle:             e.RoleTitle,
		RoleID:                e.RoleID,
		Description:           e.Description,
		CreatedAt:             e.CreatedAt,
	}
}
