package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/repositories"
	"recruitportal_backend/internal/services/dto"
	"recruitportal_backend/pkg/apperrors"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Сроки оплаты относительно конца периода
const (
	monthlyDueDaysBeforeEnd = 3
	annualDueDaysBeforeEnd  = 7
	deductPasses            = 2
)

// UserSubscriptionService - реестр подписок пользователя.
// Единственное место, где меняются статусы и счетчики кредитов.
type UserSubscriptionService interface {
	Purchase(ctx context.Context, db *gorm.DB, userID string, req *dto.PurchaseRequest) (*models.UserSubscription, error)
	AddAdhocCredits(ctx context.Context, db *gorm.DB, userID string, req *dto.AddAdhocCreditsRequest) (*models.UserSubscription, error)
	ConsumeCredits(ctx context.Context, db *gorm.DB, userID string, amount int) (bool, error)
	TotalRemainingCredits(ctx context.Context, db *gorm.DB, userID string) (int, error)
	UsableCredits(ctx context.Context, db *gorm.DB, userID string) (int, error)
	SweepExpired(ctx context.Context, db *gorm.DB, now time.Time) (int, error)

	// Переходы статусов
	Activate(ctx context.Context, db *gorm.DB, subscriptionID string) (*models.UserSubscription, error)
	Cancel(ctx context.Context, db *gorm.DB, userID, subscriptionID string) (*models.UserSubscription, error)

	// Чтение (генератор счетов)
	GetByID(ctx context.Context, db *gorm.DB, userID, subscriptionID string) (*dto.SubscriptionEntry, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]dto.SubscriptionEntry, error)
	FindActiveByUserID(ctx context.Context, db *gorm.DB, userID string) ([]dto.SubscriptionEntry, error)
	GetSubscriptionSummary(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionSummary, error)

	// Операции внутри чужой транзакции (гейткипер)
	DeductTx(ctx context.Context, tx *gorm.DB, userID string, amount int) (*models.UserSubscription, error)
	RestoreTx(ctx context.Context, tx *gorm.DB, subscriptionID string, amount int) (*models.UserSubscription, error)
}

type userSubscriptionService struct {
	subRepo     repositories.UserSubscriptionRepository
	planRepo    repositories.PlanRepository
	history     CreditHistoryService
	now         func() time.Time
	lockTimeout time.Duration
}

func NewUserSubscriptionService(
	subRepo repositories.UserSubscriptionRepository,
	planRepo repositories.PlanRepository,
	history CreditHistoryService,
	now func() time.Time,
	lockTimeout time.Duration,
) UserSubscriptionService {
	return &userSubscriptionService{
		subRepo:     subRepo,
		planRepo:    planRepo,
		history:     history,
		now:         now,
		lockTimeout: lockTimeout,
	}
}

// =======================
// Покупка
// =======================

func (s *userSubscriptionService) Purchase(ctx context.Context, db *gorm.DB, userID string, req *dto.PurchaseRequest) (*models.UserSubscription, error) {
	if !req.BillingCycle.IsValid() {
		return nil, apperrors.ErrInvalidBillingCycle
	}
	ctx = logger.WithOperation(ctx, "purchase")

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := database.AdvisoryLock(tx, database.LockScopeUserLedger, userID, s.lockTimeout); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	sub, err := s.purchaseTx(ctx, tx, userID, req, 0)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Subscription purchased",
		"subscription_id", sub.ID,
		"plan_id", sub.PlanID,
		"cycle", sub.BillingCycle,
		"credits", sub.TotalCredits,
		"status", sub.Status,
	)
	return sub, nil
}

// purchaseTx создает запись реестра. creditsOverride > 0 заменяет кредиты из плана
// (докупка adhoc без существующей записи).
func (s *userSubscriptionService) purchaseTx(ctx context.Context, tx *gorm.DB, userID string, req *dto.PurchaseRequest, creditsOverride int) (*models.UserSubscription, error) {
	plan, err := s.loadPurchasablePlan(tx, req.PlanID)
	if err != nil {
		return nil, err
	}

	credits := plan.CreditsFor(req.BillingCycle)
	if creditsOverride > 0 {
		credits = creditsOverride
	}
	if credits <= 0 {
		return nil, apperrors.ErrInvalidOperation("plan",
			fmt.Sprintf("Plan %q does not offer the %s billing cycle", plan.Title, req.BillingCycle))
	}

	status := req.Status
	if status == "" {
		status = models.SubscriptionStatusActive
	}
	if status != models.SubscriptionStatusActive && status != models.SubscriptionStatusPending {
		return nil, apperrors.ErrInvalidStatus("subscription", "New subscriptions start as active or pending")
	}

	now := s.now()

	// Предыдущие активные записи пользователя отменяются
	cancelled, err := s.subRepo.CancelActiveForUser(tx, userID, now)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if cancelled > 0 {
		logger.CtxInfo(ctx, "Previous active subscriptions cancelled", "count", cancelled)
	}

	currency := req.Currency
	if currency == "" {
		currency = plan.Currency
	}

	end, due, next := ComputeBillingDates(now, req.BillingCycle)
	sub := &models.UserSubscription{
		UserID:             userID,
		PlanID:             plan.ID,
		BillingCycle:       req.BillingCycle,
		PaidAmount:         req.PaidAmount,
		Currency:           currency,
		TotalCredits:       credits,
		UsedCredits:        0,
		RemainingCredits:   credits,
		StartDate:          now,
		EndDate:            end,
		DueDate:            due,
		NextRenewalDate:    next,
		Status:             status,
		AutoRenew:          req.AutoRenew && req.BillingCycle != models.BillingCycleAdhoc,
		ExternalPaymentRef: req.PaymentRef,
	}
	if err := s.subRepo.Create(tx, sub); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	event := &models.CreditEvent{
		UserID:                userID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionPurchased,
		CreditAmount:          credits,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            plan.ServiceTag,
		Description:           fmt.Sprintf("Purchased %s (%s), %d credits", plan.Title, req.BillingCycle, credits),
	}
	if err := s.history.Record(ctx, tx, event); err != nil {
		return nil, err
	}

	sub.Plan = plan
	return sub, nil
}

func (s *userSubscriptionService) AddAdhocCredits(ctx context.Context, db *gorm.DB, userID string, req *dto.AddAdhocCreditsRequest) (*models.UserSubscription, error) {
	if req.Credits <= 0 {
		return nil, apperrors.ErrInvalidCreditAmount
	}
	ctx = logger.WithOperation(ctx, "add_adhoc_credits")

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := database.AdvisoryLock(tx, database.LockScopeUserLedger, userID, s.lockTimeout); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	existing, err := s.subRepo.FindActiveAdhoc(tx, userID, req.PlanID)
	if err != nil && !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, apperrors.DatabaseError(err)
	}

	var sub *models.UserSubscription
	if existing == nil {
		// Активной adhoc-записи нет: обычная покупка в цикле adhoc
		sub, err = s.purchaseTx(ctx, tx, userID, &dto.PurchaseRequest{
			PlanID:       req.PlanID,
			BillingCycle: models.BillingCycleAdhoc,
			PaidAmount:   req.PaidAmount,
			PaymentRef:   req.PaymentRef,
		}, req.Credits)
		if err != nil {
			return nil, err
		}
	} else {
		sub, err = s.topUpTx(ctx, tx, existing, req)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Adhoc credits added", "subscription_id", sub.ID, "credits", req.Credits, "remaining", sub.RemainingCredits)
	return sub, nil
}

func (s *userSubscriptionService) topUpTx(ctx context.Context, tx *gorm.DB, existing *models.UserSubscription, req *dto.AddAdhocCreditsRequest) (*models.UserSubscription, error) {
	plan, err := s.loadPurchasablePlan(tx, existing.PlanID)
	if err != nil {
		return nil, err
	}

	ok, err := s.subRepo.TopUpCredits(tx, existing.ID, req.Credits, req.PaidAmount)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidStatus("subscription", "Subscription is no longer active")
	}

	sub, err := s.subRepo.FindByID(tx, existing.ID)
	if err != nil {
		return nil, handleLedgerError(err)
	}

	if req.PaymentRef != "" {
		if err := tx.Model(sub).UpdateColumn("external_payment_ref", req.PaymentRef).Error; err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		sub.ExternalPaymentRef = req.PaymentRef
	}

	event := &models.CreditEvent{
		UserID:                sub.UserID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionPurchased,
		CreditAmount:          req.Credits,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            plan.ServiceTag,
		Description:           fmt.Sprintf("Added %d adhoc credits to %s", req.Credits, plan.Title),
	}
	if err := s.history.Record(ctx, tx, event); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *userSubscriptionService) loadPurchasablePlan(tx *gorm.DB, planID string) (*models.Plan, error) {
	plan, err := s.planRepo.FindByID(tx, planID)
	if err != nil {
		return nil, handleLedgerError(err)
	}
	if !plan.IsActive {
		return nil, apperrors.ErrPlanInactive
	}
	return plan, nil
}

// ComputeBillingDates - конец периода, дата оплаты и следующего продления.
// Для adhoc все даты пустые.
func ComputeBillingDates(start time.Time, cycle models.BillingCycle) (end, due, next *time.Time) {
	var endDate, dueDate time.Time
	switch cycle {
	case models.BillingCycleMonthly:
		endDate = start.AddDate(0, 1, 0)
		dueDate = endDate.AddDate(0, 0, -monthlyDueDaysBeforeEnd)
	case models.BillingCycleAnnual:
		endDate = start.AddDate(1, 0, 0)
		dueDate = endDate.AddDate(0, 0, -annualDueDaysBeforeEnd)
	default:
		return nil, nil, nil
	}
	renewal := endDate
	return &endDate, &dueDate, &renewal
}

// =======================
// Списание
// =======================

func (s *userSubscriptionService) ConsumeCredits(ctx context.Context, db *gorm.DB, userID string, amount int) (bool, error) {
	if amount <= 0 {
		return false, apperrors.ErrInvalidCreditAmount
	}
	ctx = logger.WithOperation(ctx, "consume_credits")

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	sub, err := s.DeductTx(ctx, tx, userID, amount)
	if err != nil {
		return false, err
	}
	if sub == nil {
		// Кредитов не хватает: ничего не меняем
		return false, nil
	}

	event := &models.CreditEvent{
		UserID:                userID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionUsed,
		CreditAmount:          -amount,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            models.ServiceTagNone,
		Description:           fmt.Sprintf("Consumed %d credits", amount),
	}
	if err := s.history.Record(ctx, tx, event); err != nil {
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, apperrors.DatabaseError(err)
	}
	return true, nil
}

// DeductTx списывает amount кредитов с одной из пригодных записей пользователя.
// Возвращает nil без ошибки, если кредитов не хватает ни на одной записи.
// Порядок выбора: сначала запись, которая раньше истекает; adhoc без даты последней.
func (s *userSubscriptionService) DeductTx(ctx context.Context, tx *gorm.DB, userID string, amount int) (*models.UserSubscription, error) {
	now := s.now()

	for pass := 0; pass < deductPasses; pass++ {
		candidates, err := s.subRepo.FindUsableByUserID(tx, userID, now)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}

		eligible := lo.Filter(candidates, func(sub models.UserSubscription, _ int) bool {
			return sub.RemainingCredits >= amount
		})
		if len(eligible) == 0 {
			return nil, nil
		}
		sortByConsumptionOrder(eligible)

		for _, candidate := range eligible {
			ok, err := s.subRepo.ConsumeCredits(tx, candidate.ID, amount, now)
			if err != nil {
				return nil, apperrors.DatabaseError(err)
			}
			if !ok {
				// Запись опустошил конкурентный запрос, пробуем следующую
				logger.CtxDebug(ctx, "Credit entry changed concurrently", "subscription_id", candidate.ID)
				continue
			}
			sub, err := s.subRepo.FindByID(tx, candidate.ID)
			if err != nil {
				return nil, handleLedgerError(err)
			}
			return sub, nil
		}
	}
	return nil, nil
}

// RestoreTx возвращает кредиты на запись (компенсация списания)
func (s *userSubscriptionService) RestoreTx(ctx context.Context, tx *gorm.DB, subscriptionID string, amount int) (*models.UserSubscription, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidCreditAmount
	}
	ok, err := s.subRepo.RestoreCredits(tx, subscriptionID, amount)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidOperation("subscription", "Nothing to restore on this subscription")
	}
	sub, err := s.subRepo.FindByID(tx, subscriptionID)
	if err != nil {
		return nil, handleLedgerError(err)
	}
	return sub, nil
}

func sortByConsumptionOrder(subs []models.UserSubscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		switch {
		case a.EndDate == nil && b.EndDate != nil:
			return false
		case a.EndDate != nil && b.EndDate == nil:
			return true
		case a.EndDate != nil && b.EndDate != nil && !a.EndDate.Equal(*b.EndDate):
			return a.EndDate.Before(*b.EndDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (s *userSubscriptionService) TotalRemainingCredits(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	total, err := s.subRepo.SumRemainingActive(db.WithContext(ctx), userID)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return total, nil
}

// UsableCredits - остаток по записям, с которых еще можно списывать.
// Записи с прошедшим end_date до прохода SweepExpired сюда не входят.
func (s *userSubscriptionService) UsableCredits(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	total, err := s.subRepo.SumRemainingUsable(db.WithContext(ctx), userID, s.now())
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	return total, nil
}

// =======================
// Истечение и переходы статусов
// =======================

// SweepExpired переводит в expired активные записи с истекшим периодом.
// Повторный запуск ничего не меняет: условный UPDATE срабатывает только для active.
func (s *userSubscriptionService) SweepExpired(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	ctx = logger.WithOperation(ctx, "sweep_expired")
	db = db.WithContext(ctx)

	candidates, err := s.subRepo.FindActiveEndedBefore(db, now)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	expired := 0
	for _, candidate := range candidates {
		flipped, err := s.expireOne(ctx, db, candidate.ID, now)
		if err != nil {
			logger.CtxWithError(ctx, "Failed to expire subscription", err, "subscription_id", candidate.ID)
			continue
		}
		if flipped {
			expired++
		}
	}
	return expired, nil
}

func (s *userSubscriptionService) expireOne(ctx context.Context, db *gorm.DB, id string, now time.Time) (bool, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return false, tx.Error
	}
	defer tx.Rollback()

	ok, err := s.subRepo.TransitionStatus(tx, id, models.SubscriptionStatusExpired, nil)
	if err != nil || !ok {
		return false, err
	}

	sub, err := s.subRepo.FindByID(tx, id)
	if err != nil {
		return false, err
	}

	// Остаток сгорает, но сумма журнала должна сходиться с RemainingCredits,
	// поэтому событие несет 0 и снимок остатка.
	event := &models.CreditEvent{
		UserID:                sub.UserID,
		SubscriptionID:        sub.ID,
		ActionType:            models.CreditActionExpired,
		CreditAmount:          0,
		RemainingCreditsAfter: sub.RemainingCredits,
		ServiceTag:            models.ServiceTagNone,
		Description:           fmt.Sprintf("Subscription period ended, %d unused credits forfeited", sub.RemainingCredits),
		CreatedAt:             now,
	}
	if err := s.history.Record(ctx, tx, event); err != nil {
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *userSubscriptionService) Activate(ctx context.Context, db *gorm.DB, subscriptionID string) (*models.UserSubscription, error) {
	ctx = logger.WithOperation(ctx, "activate_subscription")
	db = db.WithContext(ctx)

	sub, err := s.subRepo.FindByID(db, subscriptionID)
	if err != nil {
		return nil, handleLedgerError(err)
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := database.AdvisoryLock(tx, database.LockScopeUserLedger, sub.UserID, s.lockTimeout); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	// Подтвержденная покупка становится единственной активной, как и при Purchase
	now := s.now()
	cancelled, err := s.subRepo.CancelActiveForUser(tx, sub.UserID, now)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	// Период считается с момента подтверждения оплаты
	end, due, next := ComputeBillingDates(now, sub.BillingCycle)
	ok, err := s.subRepo.TransitionStatus(tx, subscriptionID, models.SubscriptionStatusActive, map[string]interface{}{
		"start_date":        now,
		"end_date":          end,
		"due_date":          due,
		"next_renewal_date": next,
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidStatus("subscription",
			fmt.Sprintf("Cannot activate subscription in status %s", sub.Status))
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "Subscription activated", "subscription_id", subscriptionID, "cancelled_previous", cancelled)
	return s.reload(db, subscriptionID)
}

func (s *userSubscriptionService) Cancel(ctx context.Context, db *gorm.DB, userID, subscriptionID string) (*models.UserSubscription, error) {
	db = db.WithContext(ctx)

	sub, err := s.subRepo.FindByID(db, subscriptionID)
	if err != nil {
		return nil, handleLedgerError(err)
	}
	if sub.UserID != userID {
		return nil, apperrors.ErrSubscriptionNotFound
	}

	ok, err := s.subRepo.TransitionStatus(db, subscriptionID, models.SubscriptionStatusCancelled, map[string]interface{}{
		"cancelled_at": s.now(),
		"auto_renew":   false,
	})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !ok {
		return nil, apperrors.ErrInvalidStatus("subscription",
			fmt.Sprintf("Cannot cancel subscription in status %s", sub.Status))
	}

	logger.CtxInfo(ctx, "Subscription cancelled", "subscription_id", subscriptionID)
	return s.reload(db, subscriptionID)
}

func (s *userSubscriptionService) reload(db *gorm.DB, id string) (*models.UserSubscription, error) {
	sub, err := s.subRepo.FindByID(db, id)
	if err != nil {
		return nil, handleLedgerError(err)
	}
	return sub, nil
}

// =======================
// Чтение
// =======================

func (s *userSubscriptionService) GetByID(ctx context.Context, db *gorm.DB, userID, subscriptionID string) (*dto.SubscriptionEntry, error) {
	sub, err := s.subRepo.FindByID(db.WithContext(ctx), subscriptionID)
	if err != nil {
		return nil, handleLedgerError(err)
	}
	if userID != "" && sub.UserID != userID {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	entry := BuildSubscriptionEntry(sub)
	return &entry, nil
}

func (s *userSubscriptionService) FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]dto.SubscriptionEntry, error) {
	subs, err := s.subRepo.FindByUser(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(subs, func(sub models.UserSubscription, _ int) dto.SubscriptionEntry {
		return BuildSubscriptionEntry(&sub)
	}), nil
}

func (s *userSubscriptionService) FindActiveByUserID(ctx context.Context, db *gorm.DB, userID string) ([]dto.SubscriptionEntry, error) {
	subs, err := s.subRepo.FindActiveByUserID(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	return lo.Map(subs, func(sub models.UserSubscription, _ int) dto.SubscriptionEntry {
		return BuildSubscriptionEntry(&sub)
	}), nil
}

func (s *userSubscriptionService) GetSubscriptionSummary(ctx context.Context, db *gorm.DB, userID string) (*dto.SubscriptionSummary, error) {
	subs, err := s.subRepo.FindByUser(db.WithContext(ctx), userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	active := lo.Filter(subs, func(sub models.UserSubscription, _ int) bool { return sub.IsActive() })

	summary := &dto.SubscriptionSummary{
		UserID:                userID,
		ActiveSubscriptions:   len(active),
		TotalRemainingCredits: lo.SumBy(active, func(sub models.UserSubscription) int { return sub.RemainingCredits }),
		TotalUsedCredits:      lo.SumBy(subs, func(sub models.UserSubscription) int { return sub.UsedCredits }),
		TotalPaid:             map[string]decimal.Decimal{},
		ByStatus:              lo.CountValuesBy(subs, func(sub models.UserSubscription) string { return string(sub.Status) }),
		Entries: lo.Map(subs, func(sub models.UserSubscription, _ int) dto.SubscriptionEntry {
			return BuildSubscriptionEntry(&sub)
		}),
	}

	for _, sub := range subs {
		summary.TotalPaid[sub.Currency] = summary.TotalPaid[sub.Currency].Add(sub.PaidAmount)
	}

	for _, sub := range active {
		summary.NextRenewalDate = earliest(summary.NextRenewalDate, sub.NextRenewalDate)
		summary.NextDueDate = earliest(summary.NextDueDate, sub.DueDate)
	}

	return summary, nil
}

func earliest(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.Before(*current) {
		return candidate
	}
	return current
}

// BuildSubscriptionEntry - представление записи реестра для API
func BuildSubscriptionEntry(sub *models.UserSubscription) dto.SubscriptionEntry {
	entry := dto.SubscriptionEntry{
		ID:                 sub.ID,
		PlanID:             sub.PlanID,
		BillingCycle:       sub.BillingCycle,
		Status:             sub.Status,
		PaidAmount:         sub.PaidAmount,
		Currency:           sub.Currency,
		TotalCredits:       sub.TotalCredits,
		UsedCredits:        sub.UsedCredits,
		RemainingCredits:   sub.RemainingCredits,
		StartDate:          sub.StartDate,
		EndDate:            sub.EndDate,
		DueDate:            sub.DueDate,
		NextRenewalDate:    sub.NextRenewalDate,
		AutoRenew:          sub.AutoRenew,
		ExternalPaymentRef: sub.ExternalPaymentRef,
	}
	if sub.Plan != nil {
		entry.PlanTitle = sub.Plan.Title
	}
	return entry
}

// handleLedgerError переводит ошибки репозиториев в AppError
func handleLedgerError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrSubscriptionNotFound):
		return apperrors.ErrSubscriptionNotFound
	case errors.Is(err, repositories.ErrPlanNotFound):
		return apperrors.ErrPlanNotFound
	default:
		return apperrors.DatabaseError(err)
	}
}
