package handlers

import (
	"net/http"

	"recruitportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	*BaseHandler
	historyService      services.CreditHistoryService
	subscriptionService services.UserSubscriptionService
}

func NewCreditHandler(base *BaseHandler, historyService services.CreditHistoryService, subscriptionService services.UserSubscriptionService) *CreditHandler {
	return &CreditHandler{
		BaseHandler:         base,
		historyService:      historyService,
		subscriptionService: subscriptionService,
	}
}

func (h *CreditHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	credits := r.Group("/credits")
	credits.Use(guards.Auth)
	{
		credits.GET("/history", h.GetHistory)
		credits.GET("/subscriptions/:subscriptionId/events", h.GetSubscriptionEvents)
		credits.GET("/subscriptions/:subscriptionId/reconcile", h.ReconcileSubscription)
	}
}

// GetHistory godoc
// @Summary История операций с кредитами
// @Tags credits
// @Produce json
// @Param limit query int false "Размер выборки (по умолчанию 50)"
// @Param service query string false "Услуга: slug или тег"
// @Success 200 {array} dto.CreditEventResponse
// @Security BearerAuth
// @Router /credits/history [get]
func (h *CreditHandler) GetHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	limit := ParseQueryInt(c, "limit", 0)

	if raw := c.Query("service"); raw != "" {
		tag, err := ParseServiceParam(raw)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		events, err := h.historyService.FindByUserAndService(ctx, h.GetDB(c), userID, tag, limit)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
		return
	}

	events, err := h.historyService.FindByUser(ctx, h.GetDB(c), userID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

func (h *CreditHandler) GetSubscriptionEvents(c *gin.Context) {
	subscriptionID, ok := h.authorizeSubscription(c)
	if !ok {
		return
	}

	events, err := h.historyService.FindBySubscription(c.Request.Context(), h.GetDB(c), subscriptionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

func (h *CreditHandler) ReconcileSubscription(c *gin.Context) {
	subscriptionID, ok := h.authorizeSubscription(c)
	if !ok {
		return
	}

	report, err := h.historyService.Reconcile(c.Request.Context(), h.GetDB(c), subscriptionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// authorizeSubscription - запись реестра принадлежит пользователю (админ видит все)
func (h *CreditHandler) authorizeSubscription(c *gin.Context) (string, bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return "", false
	}
	if h.IsAdmin(c) {
		userID = ""
	}

	subscriptionID := c.Param("subscriptionId")
	if _, err := h.subscriptionService.GetByID(c.Request.Context(), h.GetDB(c), userID, subscriptionID); err != nil {
		h.HandleServiceError(c, err)
		return "", false
	}
	return subscriptionID, true
}
