package handlers

import (
	"net/http"

	"finley_backend/internal/auth"
	"finley_backend/internal/middleware"
	"finley_backend/internal/models"
	"finley_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CatalogHandler lists reference data: teams, assignable talent and project categories.
type CatalogHandler struct {
	*BaseHandler
	teams      services.TeamService
	categories services.CategoryService
}

func NewCatalogHandler(base *BaseHandler, teams services.TeamService, categories services.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: base,
		teams:       teams,
		categories:  categories,
	}
}

func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	// public
	r.GET("/categories", h.ListCategories)

	teams := r.Group("/teams")
	teams.Use(h.Auth())
	{
		teams.GET("", h.ListTeams)
	}

	talent := r.Group("/talent")
	talent.Use(h.Auth(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		talent.GET("", middleware.RequirePermission(auth.PermProjectAssign), h.ListTalent)
	}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CatalogHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.ListTeams(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *CatalogHandler) ListTalent(c *gin.Context) {
	talent, err := h.teams.ListTalent(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"talent": talent})
}
