package services

import (
	"time"

	"recruitportal_backend/internal/cache"
	"recruitportal_backend/internal/repositories"
)

// ContainerOptions - зависимости и настройки, общие для сервисов
type ContainerOptions struct {
	Cache         cache.Cache
	CacheTTL      time.Duration
	LockTimeout   time.Duration
	RefundRetries int
	Now           func() time.Time
}

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	CatalogService          CatalogService
	SubscriptionService     UserSubscriptionService
	CreditHistoryService    CreditHistoryService
	CreditGatekeeper        CreditGatekeeper
	RoleIndexService        RoleIndexService
	CvSourcingService       CvSourcingService
	PrequalificationService PrequalificationService
	DirectService           DirectService
	LeadGenerationService   LeadGenerationService
}

func NewServiceContainer(opts ContainerOptions) *ServiceContainer {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewInMemoryCache(opts.CacheTTL)
	}

	// --- Репозитории ---
	planRepo := repositories.NewPlanRepository()
	subRepo := repositories.NewUserSubscriptionRepository()
	eventRepo := repositories.NewCreditEventRepository()
	indexRepo := repositories.NewRoleIndexRepository()

	// --- Сервисы ---
	history := NewCreditHistoryService(eventRepo, subRepo, opts.Now)
	ledger := NewUserSubscriptionService(subRepo, planRepo, history, opts.Now, opts.LockTimeout)
	gatekeeper := NewCreditGatekeeper(ledger, history, opts.RefundRetries)
	index := NewRoleIndexService(indexRepo, opts.LockTimeout)

	return &ServiceContainer{
		CatalogService:          NewCatalogService(planRepo, opts.Cache, opts.CacheTTL),
		SubscriptionService:     ledger,
		CreditHistoryService:    history,
		CreditGatekeeper:        gatekeeper,
		RoleIndexService:        index,
		CvSourcingService:       NewCvSourcingService(index, gatekeeper),
		PrequalificationService: NewPrequalificationService(index, gatekeeper),
		DirectService:           NewDirectService(index, gatekeeper),
		LeadGenerationService:   NewLeadGenerationService(index, gatekeeper),
	}
}

// RoleSources - источники ролей всех услуг для сверки индекса
func (c *ServiceContainer) RoleSources() []RoleSource {
	return []RoleSource{
		c.CvSourcingService,
		c.PrequalificationService,
		c.DirectService,
		c.LeadGenerationService,
	}
}
