package handlers

import (
	"net/http"

	"finley_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	*BaseHandler
	attachments services.AttachmentService
}

func NewAttachmentHandler(base *BaseHandler, attachments services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		BaseHandler: base,
		attachments: attachments,
	}
}

func (h *AttachmentHandler) RegisterRoutes(r *gin.RouterGroup) {
	attachments := r.Group("/attachments")
	attachments.Use(h.Auth())
	{
		attachments.GET("/:attachmentId/url", h.SignDownload)
	}
}

// SignDownload returns a short-lived URL for an attachment the caller can see.
func (h *AttachmentHandler) SignDownload(c *gin.Context) {
	caller, ok := h.GetCaller(c)
	if !ok {
		return
	}

	resp, err := h.attachments.SignDownload(c.Request.Context(), h.GetDB(c), caller, c.Param("attachmentId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
