package handlers

import (
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar - обработчик, который сам регистрирует свои маршруты
type RouteRegistrar interface {
	RegisterRoutes(r *gin.RouterGroup, guards RouteGuards)
}

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	CatalogHandler          *CatalogHandler
	SubscriptionHandler     *SubscriptionHandler
	CreditHandler           *CreditHandler
	RoleIndexHandler        *RoleIndexHandler
	CvSourcingHandler       *RoleHandler[models.CvSourcingRole, dto.CreateCvSourcingRoleRequest, dto.UpdateCvSourcingRoleRequest]
	PrequalificationHandler *RoleHandler[models.PrequalificationRole, dto.CreatePrequalificationRoleRequest, dto.UpdatePrequalificationRoleRequest]
	DirectHandler           *RoleHandler[models.DirectRole, dto.CreateDirectRoleRequest, dto.UpdateDirectRoleRequest]
	LeadGenerationHandler   *RoleHandler[models.LeadGenerationRole, dto.CreateLeadGenerationRoleRequest, dto.UpdateLeadGenerationRoleRequest]
}

func NewAppHandlers(base *BaseHandler, sc *services.ServiceContainer) *AppHandlers {
	return &AppHandlers{
		CatalogHandler:          NewCatalogHandler(base, sc.CatalogService),
		SubscriptionHandler:     NewSubscriptionHandler(base, sc.SubscriptionService),
		CreditHandler:           NewCreditHandler(base, sc.CreditHistoryService, sc.SubscriptionService),
		RoleIndexHandler:        NewRoleIndexHandler(base, sc.RoleIndexService, sc.RoleSources()),
		CvSourcingHandler:       NewRoleHandler(base, sc.CvSourcingService),
		PrequalificationHandler: NewRoleHandler(base, sc.PrequalificationService),
		DirectHandler:           NewRoleHandler(base, sc.DirectService),
		LeadGenerationHandler:   NewRoleHandler(base, sc.LeadGenerationService),
	}
}

// All - обработчики в порядке регистрации маршрутов
func (h *AppHandlers) All() []RouteRegistrar {
	return []RouteRegistrar{
		h.CatalogHandler,
		h.SubscriptionHandler,
		h.CreditHandler,
		h.RoleIndexHandler,
		h.CvSourcingHandler,
		h.PrequalificationHandler,
		h.DirectHandler,
		h.LeadGenerationHandler,
	}
}
