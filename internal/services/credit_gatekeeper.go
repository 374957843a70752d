package services

import (
	"context"
	"fmt"
	"time"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// Стоимость создания одной роли в кредитах
const roleCreditCost = 1

// CreateFunc создает роль внутри переданной транзакции и возвращает ее id
type CreateFunc func(tx *gorm.DB) (string, error)

// RefundRequest - возврат кредита, списанного под роль
type RefundRequest struct {
	SubscriptionID string
	UserID         string
	ServiceTag     models.ServiceTag
	RoleTitle      string
	RoleID         string
	Reason         string
}

// CreditGatekeeper - проверка и списание кредита перед созданием роли
type CreditGatekeeper interface {
	CheckAndDeduct(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, roleTitle string) (*dto.DeductionResult, error)
	Refund(ctx context.Context, db *gorm.DB, req RefundRequest) error
	WithCredit(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, roleTitle string, create CreateFunc) (string, error)
}

type creditGatekeeper struct {
	ledger        UserSubscriptionService
	history       CreditHistoryService
	refundRetries uint64
	newBackOff    func() backoff.BackOff
}

func NewCreditGatekeeper(ledger UserSubscriptionService, history CreditHistoryService, refundRetries int) CreditGatekeeper {
	if refundRetries <= 0 {
		refundRetries = 1
	}
	return &creditGatekeeper{
		ledger:        ledger,
		history:       history,
		refundRetries: uint64(refundRetries),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			b.MaxElapsedTime = 15 * time.Second
			return b
		},
	}
}

// CheckAndDeduct списывает один кредит в одной транзакции с записью события.
// Нехватка кредитов - штатный исход: Success=false и текущий остаток, без ошибки.
func (g *creditGatekeeper) CheckAndDeduct(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, roleTitle string) (*dto.DeductionResult, error) {
	if !tag.IsValid() {
		return nil, apperrors.ErrUnknownServiceTag
	}
	ctx = logger.WithOperation(ctx, "check_and_deduct")

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	sub, err := g.ledger.DeductTx(ctx, tx, userID, roleCreditCost)
	if err != nil {
		return nil, err
	}

	if sub == nil {
		// Соединение освобождаем до чтения остатка
		tx.Rollback()
		remaining, err := g.ledger.UsableCredits(ctx, db, userID)
		if err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "Credit deduction refused", "service", tag.DisplayName(), "remaining", remaining)
		return &dto.DeductionResult{
			Success:          false,
			Message:          fmt.Sprintf("Insufficient credits to create a %s role", tag.DisplayName()),
			RemainingCredits: remaining,
		}, nil
	}

	title := roleTitle
	event := &models.CreditEvent{
		UserID:                userID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionUsed,
		CreditAmount:          -roleCreditCost,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            tag,
		RoleTitle:             &title,
		Description:           fmt.Sprintf("Created %s role: %s", tag.DisplayName(), roleTitle),
	}
	if err := g.history.Record(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Credit deducted",
		"subscription_id", sub.ID,
		"service", tag.DisplayName(),
		"remaining", sub.RemainingCredits,
	)
	return &dto.DeductionResult{
		Success:          true,
		Message:          "Credit deducted",
		RemainingCredits: sub.RemainingCredits,
		SubscriptionID:   sub.ID,
	}, nil
}

func (g *creditGatekeeper) Refund(ctx context.Context, db *gorm.DB, req RefundRequest) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	sub, err := g.ledger.RestoreTx(ctx, tx, req.SubscriptionID, roleCreditCost)
	if err != nil {
		return err
	}

	title := req.RoleTitle
	event := &models.CreditEvent{
		UserID:                req.UserID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionRefunded,
		CreditAmount:          roleCreditCost,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            req.ServiceTag,
		RoleTitle:             &title,
		Description:           fmt.Sprintf("Refund for %s role: %s", req.ServiceTag.DisplayName(), req.RoleTitle),
	}
	if req.RoleID != "" {
		roleID := req.RoleID
		event.RoleID = &roleID
	}
	if req.Reason != "" {
		event.Metadata = map[string]interface{}{"reason": req.Reason}
	}
	if err := g.history.Record(ctx, tx, event); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// WithCredit - сага создания роли: списание, создание в своей транзакции,
// при неудаче возврат кредита с повторами. Вызывающий получает исходную ошибку.
func (g *creditGatekeeper) WithCredit(ctx context.Context, db *gorm.DB, userID string, tag models.ServiceTag, roleTitle string, create CreateFunc) (string, error) {
	result, err := g.CheckAndDeduct(ctx, db, userID, tag, roleTitle)
	if err != nil {
		return "", err
	}
	if !result.Success {
		return "", apperrors.ErrInsufficientCredits(result.RemainingCredits)
	}

	roleID, createErr := runInTx(ctx, db, create)
	if createErr == nil {
		return roleID, nil
	}

	logger.CtxWithError(ctx, "Role creation failed after credit deduction", createErr,
		"subscription_id", result.SubscriptionID,
		"service", tag.DisplayName(),
	)

	refund := RefundRequest{
		SubscriptionID: result.SubscriptionID,
		UserID:         userID,
		ServiceTag:     tag,
		RoleTitle:      roleTitle,
		Reason:         createErr.Error(),
	}
	if err := g.refundWithRetry(ctx, db, refund); err != nil {
		// Кредит потерян: в журнале останется used без refunded
		logger.CtxWithError(ctx, "Credit refund failed", err,
			"subscription_id", result.SubscriptionID,
			"user_id", userID,
		)
	}
	return "", createErr
}

func (g *creditGatekeeper) refundWithRetry(ctx context.Context, db *gorm.DB, req RefundRequest) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), g.refundRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := g.Refund(ctx, db, req)
		if err == nil {
			return nil
		}
		if apperrors.HasCode(err, apperrors.CodeInvalidOperation) {
			return backoff.Permanent(err)
		}
		logger.CtxWarn(ctx, "Refund attempt failed", "attempt", attempt, "error", err)
		return err
	}, policy)
}

func runInTx(ctx context.Context, db *gorm.DB, create CreateFunc) (string, error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return "", apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	id, err := create(tx)
	if err != nil {
		return "", err
	}
	if err := tx.Commit().Error; err != nil {
		return "", apperrors.DatabaseError(err)
	}
	return id, nil
}
