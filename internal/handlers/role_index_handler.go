package handlers

import (
	"net/http"

	"recruitportal_backend/internal/auth"
	"recruitportal_backend/internal/middleware"
	"recruitportal_backend/internal/models"
	"recruitportal_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type RoleIndexHandler struct {
	*BaseHandler
	indexService services.RoleIndexService
	sources      []services.RoleSource
}

func NewRoleIndexHandler(base *BaseHandler, indexService services.RoleIndexService, sources []services.RoleSource) *RoleIndexHandler {
	return &RoleIndexHandler{
		BaseHandler:  base,
		indexService: indexService,
		sources:      sources,
	}
}

func (h *RoleIndexHandler) RegisterRoutes(r *gin.RouterGroup, guards RouteGuards) {
	r.GET("/services", h.ListServices)

	roles := r.Group("/roles")
	roles.Use(guards.Auth)
	{
		roles.GET("", h.ListMyRoles)
	}

	admin := r.Group("/admin/roles")
	admin.Use(guards.Auth, middleware.RequirePermission(auth.PermissionIndexReconcile))
	{
		admin.GET("/:service", h.ListByService)
		admin.POST("/reconcile", h.Reconcile)
	}
}

// ListServices - справочник услуг: тег, название, slug
func (h *RoleIndexHandler) ListServices(c *gin.Context) {
	type serviceInfo struct {
		Tag  models.ServiceTag `json:"serviceTag"`
		Name string            `json:"name"`
		Slug string            `json:"slug"`
	}
	list := lo.Map(models.AllServiceTags(), func(tag models.ServiceTag, _ int) serviceInfo {
		return serviceInfo{Tag: tag, Name: tag.DisplayName(), Slug: tag.Slug()}
	})
	c.JSON(http.StatusOK, gin.H{"services": list})
}

// ListMyRoles godoc
// @Summary Роли пользователя по всем услугам
// @Tags roles
// @Produce json
// @Param includeDeleted query bool false "Включить мягко удаленные"
// @Success 200 {array} dto.RoleIndexEntryResponse
// @Security BearerAuth
// @Router /roles [get]
func (h *RoleIndexHandler) ListMyRoles(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	entries, err := h.indexService.ListForUser(c.Request.Context(), h.GetDB(c), userID, ParseQueryBool(c, "includeDeleted"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": entries, "total": len(entries)})
}

func (h *RoleIndexHandler) ListByService(c *gin.Context) {
	tag, err := ParseServiceParam(c.Param("service"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	entries, err := h.indexService.ListByService(c.Request.Context(), h.GetDB(c), tag, ParseQueryBool(c, "includeDeleted"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": entries, "total": len(entries)})
}

func (h *RoleIndexHandler) Reconcile(c *gin.Context) {
	report, err := h.indexService.Reconcile(c.Request.Context(), h.GetDB(c), h.sources)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
