package handlers

import (
	"net/http"

	"recruitportal_backend/internal/auth"
	"recruitportal_backend/internal/middleware"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	*BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(base *BaseHandler, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    base,
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	plans := r.Group("/plans")
	{
		plans.GET("", h.ListPlans)
		plans.GET("/:planId", h.GetPlan)
	}

	adminPlans := r.Group("/admin/plans")
	adminPlans.Use(guards.Auth, middleware.RequirePermission(auth.PermissionPlansManage))
	{
		adminPlans.GET("", h.ListAllPlans)
		adminPlans.POST("", h.CreatePlan)
		adminPlans.PUT("/:planId", h.UpdatePlan)
	}
}

// ListPlans godoc
// @Summary Активные планы подписки
// @Tags plans
// @Produce json
// @Success 200 {array} dto.PlanResponse
// @Router /plans [get]
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	plans, err := h.catalogService.ListPlans(c.Request.Context(), h.GetDB(c), true)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"total": len(plans),
	})
}

func (h *CatalogHandler) ListAllPlans(c *gin.Context) {
	plans, err := h.catalogService.ListPlans(c.Request.Context(), h.GetDB(c), false)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"total": len(plans),
	})
}

// GetPlan godoc
// @Summary План по ID
// @Tags plans
// @Produce json
// @Param planId path string true "ID плана"
// @Success 200 {object} dto.PlanResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /plans/{planId} [get]
func (h *CatalogHandler) GetPlan(c *gin.Context) {
	plan, err := h.catalogService.GetPlan(c.Request.Context(), h.GetDB(c), c.Param("planId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *CatalogHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.catalogService.CreatePlan(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (h *CatalogHandler) UpdatePlan(c *gin.Context) {
	var req dto.UpdatePlanRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	plan, err := h.catalogService.UpdatePlan(c.Request.Context(), h.GetDB(c), c.Param("planId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
