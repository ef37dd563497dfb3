package handlers

import (
	"net/http"

	"finley_backend/internal/auth"
	"finley_backend/internal/middleware"
	"finley_backend/internal/models"
	"finley_backend/internal/services"
	"finley_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// AdminProjectHandler exposes the admin side: review, SOW drafting,
// finalization, assignment, publish and cancel.
type AdminProjectHandler struct {
	*BaseHandler
	lifecycle   services.LifecycleService
	query       services.QueryService
	sows        services.SOWService
	assignments services.AssignmentService
	attachments services.AttachmentService
}

func NewAdminProjectHandler(
	base *BaseHandler,
	lifecycle services.LifecycleService,
	query services.QueryService,
	sows services.SOWService,
	assignments services.AssignmentService,
	attachments services.AttachmentService,
) *AdminProjectHandler {
	return &AdminProjectHandler{
		BaseHandler: base,
		lifecycle:   lifecycle,
		query:       query,
		sows:        sows,
		assignments: assignments,
		attachments: attachments,
	}
}

func (h *AdminProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin/projects")
	admin.Use(h.Auth(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("", middleware.RequirePermission(auth.PermProjectListAll), h.ListAll)
		admin.POST("/:projectId/review", middleware.RequirePermission(auth.PermProjectReview), h.Review)

		admin.GET("/:projectId/sow", middleware.RequirePermission(auth.PermSOWWrite), h.SOWHistory)
		admin.POST("/:projectId/sow", middleware.RequirePermission(auth.PermSOWWrite), h.SaveDraft)
		admin.POST("/:projectId/sow/generate", middleware.RequirePermission(auth.PermSOWWrite), h.GenerateDraft)

		admin.POST("/:projectId/finalize", middleware.RequirePermission(auth.PermProjectFinalize), h.Finalize)
		admin.PUT("/:projectId/assignment", middleware.RequirePermission(auth.PermProjectAssign), h.Assign)
		admin.DELETE("/:projectId/assignment", middleware.RequirePermission(auth.PermProjectAssign), h.Unassign)
		admin.POST("/:projectId/publish", middleware.RequirePermission(auth.PermProjectFinalize), h.Publish)
		admin.POST("/:projectId/cancel", middleware.RequirePermission(auth.PermProjectFinalize), h.Cancel)

		admin.POST("/:projectId/attachments", middleware.RequirePermission(auth.PermAttachmentSign), h.SignAttachmentUpload)
	}
}

func (h *AdminProjectHandler) ListAll(c *gin.Context) {
	list, err := h.query.ListForAdmin(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminProjectHandler) Review(c *gin.Context) {
	reviewerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	project, err := h.lifecycle.Review(c.Request.Context(), h.GetDB(c), c.Param("projectId"), reviewerID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// --- SOW ---

func (h *AdminProjectHandler) SOWHistory(c *gin.Context) {
	history, err := h.sows.History(c.Request.Context(), h.GetDB(c), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sows": history})
}

func (h *AdminProjectHandler) SaveDraft(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SaveDraftRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	sow, err := h.lifecycle.Draft(c.Request.Context(), h.GetDB(c), c.Param("projectId"), authorID, req.Body)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sow)
}

func (h *AdminProjectHandler) GenerateDraft(c *gin.Context) {
	authorID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	sow, err := h.lifecycle.GenerateDraft(c.Request.Context(), h.GetDB(c), c.Param("projectId"), authorID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sow)
}

// --- Finalize and assignment ---

func (h *AdminProjectHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.lifecycle.FinalizeAndSend(c.Request.Context(), h.GetDB(c), c.Param("projectId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AdminProjectHandler) Assign(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}
	var req dto.AssignRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)
	project, err := h.assignments.Assign(ctx, db, c.Param("projectId"), req.AssignmentTarget)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respondProject(c, caller, project.ID)
}

func (h *AdminProjectHandler) Unassign(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	project, err := h.assignments.Unassign(c.Request.Context(), h.GetDB(c), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.respondProject(c, caller, project.ID)
}

func (h *AdminProjectHandler) Publish(c *gin.Context) {
	project, err := h.lifecycle.Publish(c.Request.Context(), h.GetDB(c), c.Param("projectId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *AdminProjectHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	// the body is optional
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	project, err := h.lifecycle.Cancel(c.Request.Context(), h.GetDB(c), c.Param("projectId"), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// --- Attachments ---

func (h *AdminProjectHandler) SignAttachmentUpload(c *gin.Context) {
	uploaderID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SignUploadRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.attachments.SignUpload(c.Request.Context(), h.GetDB(c), c.Param("projectId"), uploaderID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AdminProjectHandler) respondProject(c *gin.Context, caller services.Caller, projectID string) {
	resp, err := h.lifecycle.GetProject(c.Request.Context(), h.GetDB(c), caller, projectID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
