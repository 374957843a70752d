package workers

import (
	"context"
	"time"

	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/services"

	"github.com/sourcegraph/conc"
	"gorm.io/gorm"
)

const workerName = "subscription_worker"

// SubscriptionWorker - фоновые проходы: истечение подписок и сверка индекса ролей
type SubscriptionWorker struct {
	db                *gorm.DB
	ledger            services.UserSubscriptionService
	index             services.RoleIndexService
	sources           []services.RoleSource
	sweepInterval     time.Duration
	reconcileInterval time.Duration
	now               func() time.Time
}

func NewSubscriptionWorker(
	db *gorm.DB,
	sc *services.ServiceContainer,
	sweepInterval, reconcileInterval time.Duration,
) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:                db,
		ledger:            sc.SubscriptionService,
		index:             sc.RoleIndexService,
		sources:           sc.RoleSources(),
		sweepInterval:     sweepInterval,
		reconcileInterval: reconcileInterval,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Start блокируется до отмены ctx. Оба прохода выполняются сразу при старте,
// потом по своим интервалам.
func (w *SubscriptionWorker) Start(ctx context.Context) {
	var wg conc.WaitGroup
	wg.Go(func() { w.loop(ctx, "expiry_sweep", w.sweepInterval, w.SweepOnce) })
	wg.Go(func() { w.loop(ctx, "index_reconcile", w.reconcileInterval, w.ReconcileOnce) })
	wg.Wait()
	logger.Info("Subscription worker stopped")
}

func (w *SubscriptionWorker) loop(ctx context.Context, name string, interval time.Duration, run func(context.Context) (int, error)) {
	log := logger.With("worker", workerName, "operation", name)
	if interval <= 0 {
		log.Warn("Worker loop disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		affected, err := run(ctx)
		if err == nil && affected == 0 {
			// Пустые проходы идут каждый тик, в info они только шумят
			logger.Debug("Worker pass found nothing", "worker", workerName, "operation", name)
		} else {
			logger.WorkerLog(workerName, name, affected, err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SweepOnce переводит истекшие подписки в expired
func (w *SubscriptionWorker) SweepOnce(ctx context.Context) (int, error) {
	return w.ledger.SweepExpired(ctx, w.db, w.now())
}

// ReconcileOnce чинит расхождения между ролями и общей таблицей roles
func (w *SubscriptionWorker) ReconcileOnce(ctx context.Context) (int, error) {
	report, err := w.index.Reconcile(ctx, w.db, w.sources)
	if report == nil {
		return 0, err
	}
	return report.Created + report.Restored + report.Deleted, err
}
