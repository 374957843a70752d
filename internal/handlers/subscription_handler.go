package handlers

import (
	"net/http"
	"time"

	"recruitportal_backend/internal/auth"
	"recruitportal_backend/internal/middleware"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.UserSubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.UserSubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(guards.Auth)
	{
		subscriptions.GET("/my", h.GetMySubscriptions)
		subscriptions.GET("/my/active", h.GetMyActiveSubscriptions)
		subscriptions.GET("/my/summary", h.GetMySummary)
		subscriptions.GET("/my/credits", h.GetMyCredits)
		subscriptions.GET("/:subscriptionId", h.GetSubscription)
		subscriptions.POST("/:subscriptionId/cancel", h.CancelSubscription)

		buy := subscriptions.Group("", middleware.RequirePermission(auth.PermissionSubscriptionBuy))
		buy.POST("/purchase", h.Purchase)
		buy.POST("/adhoc", h.AddAdhocCredits)
		buy.POST("/consume", guards.RateLimit, h.ConsumeCredits)
	}

	// Чтение для генератора счетов и ручные переходы статусов
	admin := r.Group("/admin")
	admin.Use(guards.Auth, middleware.RequirePermission(auth.PermissionLedgerAdmin))
	{
		admin.GET("/users/:userId/subscriptions", h.AdminListUserSubscriptions)
		admin.GET("/users/:userId/summary", h.AdminUserSummary)
		admin.GET("/subscriptions/:subscriptionId", h.AdminGetSubscription)
		admin.POST("/subscriptions/:subscriptionId/activate", h.ActivateSubscription)
		admin.POST("/subscriptions/sweep", h.SweepExpired)
	}
}

// Purchase godoc
// @Summary Купить план
// @Description Отменяет текущие активные подписки пользователя и создает новую запись с кредитами плана
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body dto.PurchaseRequest true "Покупка"
// @Success 201 {object} dto.SubscriptionEntry
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/purchase [post]
func (h *SubscriptionHandler) Purchase(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.Purchase(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, services.BuildSubscriptionEntry(sub))
}

func (h *SubscriptionHandler) AddAdhocCredits(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.AddAdhocCreditsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.AddAdhocCredits(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.BuildSubscriptionEntry(sub))
}

// ConsumeCredits godoc
// @Summary Списать кредиты
// @Description Нехватка кредитов возвращает consumed=false без изменений
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param request body dto.ConsumeCreditsRequest true "Количество"
// @Success 200 {object} dto.ConsumeCreditsResponse
// @Security BearerAuth
// @Router /subscriptions/consume [post]
func (h *SubscriptionHandler) ConsumeCredits(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ConsumeCreditsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)

	consumed, err := h.subscriptionService.ConsumeCredits(ctx, db, userID, req.Amount)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	remaining, err := h.subscriptionService.UsableCredits(ctx, db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConsumeCreditsResponse{
		Consumed:         consumed,
		RemainingCredits: remaining,
	})
}

func (h *SubscriptionHandler) GetMySubscriptions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	entries, err := h.subscriptionService.FindByUser(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": entries,
		"total":         len(entries),
	})
}

func (h *SubscriptionHandler) GetMyActiveSubscriptions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	entries, err := h.subscriptionService.FindActiveByUserID(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": entries,
		"total":         len(entries),
	})
}

func (h *SubscriptionHandler) GetMySummary(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	summary, err := h.subscriptionService.GetSubscriptionSummary(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SubscriptionHandler) GetMyCredits(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	remaining, err := h.subscriptionService.TotalRemainingCredits(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remainingCredits": remaining})
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	entry, err := h.subscriptionService.GetByID(c.Request.Context(), h.GetDB(c), userID, c.Param("subscriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sub, err := h.subscriptionService.Cancel(c.Request.Context(), h.GetDB(c), userID, c.Param("subscriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.BuildSubscriptionEntry(sub))
}

// --- Admin ---

func (h *SubscriptionHandler) AdminListUserSubscriptions(c *gin.Context) {
	entries, err := h.subscriptionService.FindByUser(c.Request.Context(), h.GetDB(c), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscriptions": entries,
		"total":         len(entries),
	})
}

func (h *SubscriptionHandler) AdminUserSummary(c *gin.Context) {
	summary, err := h.subscriptionService.GetSubscriptionSummary(c.Request.Context(), h.GetDB(c), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *SubscriptionHandler) AdminGetSubscription(c *gin.Context) {
	entry, err := h.subscriptionService.GetByID(c.Request.Context(), h.GetDB(c), "", c.Param("subscriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *SubscriptionHandler) ActivateSubscription(c *gin.Context) {
	sub, err := h.subscriptionService.Activate(c.Request.Context(), h.GetDB(c), c.Param("subscriptionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.BuildSubscriptionEntry(sub))
}

func (h *SubscriptionHandler) SweepExpired(c *gin.Context) {
	expired, err := h.subscriptionService.SweepExpired(c.Request.Context(), h.GetDB(c), time.Now().UTC())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}
