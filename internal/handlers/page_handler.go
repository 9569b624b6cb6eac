package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"site-builder-backend/internal/service"
)

type PageHandler struct {
	builderService *service.BuilderService
}

func NewPageHandler(builderService *service.BuilderService) *PageHandler {
	return &PageHandler{builderService: builderService}
}

// List returns saved pages without their documents.
// GET /api/v1/pages
func (h *PageHandler) List(c *gin.Context) {
	pages, err := h.builderService.SavedPages(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list pages", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pages": pages,
		"total": len(pages),
	})
}

// Delete removes a saved page and its backup.
// DELETE /api/v1/pages/:pageId
func (h *PageHandler) Delete(c *gin.Context) {
	pageID := c.Param("pageId")
	if err := h.builderService.DeleteSavedPage(c.Request.Context(), pageID); err != nil {
		respondError(c, err, "Failed to delete page", map[string]interface{}{"page_id": pageID})
		return
	}
	c.Status(http.StatusNoContent)
}
