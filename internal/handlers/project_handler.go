package handlers

import (
	"net/http"

	"finley_backend/internal/auth"
	"finley_backend/internal/middleware"
	"finley_backend/internal/services"
	"finley_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ProjectHandler serves the client and assignee side of the project lifecycle.
type ProjectHandler struct {
	*BaseHandler
	lifecycle services.LifecycleService
	query     services.QueryService
}

func NewProjectHandler(base *BaseHandler, lifecycle services.LifecycleService, query services.QueryService) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler: base,
		lifecycle:   lifecycle,
		query:       query,
	}
}

func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	projects := r.Group("/projects")
	projects.Use(h.Auth())
	{
		projects.POST("", middleware.RequirePermission(auth.PermProjectSubmit), h.Submit)
		projects.GET("/:projectId", h.GetProject)
		projects.POST("/:projectId/resubmit", middleware.RequirePermission(auth.PermProjectSubmit), h.Resubmit)
	}

	requests := r.Group("/requests")
	requests.Use(h.Auth(), middleware.RequirePermission(auth.PermRequestsRead))
	{
		requests.GET("", h.ListRequests)
	}
}

func (h *ProjectHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitProjectRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	project, err := h.lifecycle.Submit(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	project, err := h.lifecycle.GetProject(c.Request.Context(), h.GetDB(c), caller, c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Resubmit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req *dto.UpdateProjectRequest
	// edits are optional
	if c.Request.ContentLength > 0 {
		req = &dto.UpdateProjectRequest{}
		if !h.BindAndValidate_JSON(c, req) {
			return
		}
	}

	project, err := h.lifecycle.Resubmit(c.Request.Context(), h.GetDB(c), c.Param("projectId"), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// ListRequests is the caller's work list.
func (h *ProjectHandler) ListRequests(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	list, err := h.query.ListForUser(c.Request.Context(), h.GetDB(c), caller)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
