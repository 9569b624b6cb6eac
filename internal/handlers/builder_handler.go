package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"site-builder-backend/internal/builder"
	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/preview"
	"site-builder-backend/internal/service"
	"site-builder-backend/pkg/logger"
)

const (
	maxImportBytes = 1 << 20
	jobWaitTimeout = 30 * time.Second
)

type BuilderHandler struct {
	builderService *service.BuilderService
	hub            *preview.Hub
}

func NewBuilderHandler(builderService *service.BuilderService, hub *preview.Hub) *BuilderHandler {
	return &BuilderHandler{
		builderService: builderService,
		hub:            hub,
	}
}

func stateResponse(sessionID string, state builder.State) gin.H {
	return gin.H{
		"session_id": sessionID,
		"mode":       state.Mode(),
		"state":      state,
	}
}

// CreateSession opens a builder on a catalog template.
// POST /api/v1/builder/sessions
func (h *BuilderHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, state, err := h.builderService.CreateSession(req)
	if err != nil {
		respondError(c, err, "Failed to create builder session", map[string]interface{}{"template_id": req.TemplateID})
		return
	}

	c.JSON(http.StatusCreated, stateResponse(session.ID, state))
}

// ImportSession opens a builder on a page configuration sent as the body.
// POST /api/v1/builder/sessions/import
func (h *BuilderHandler) ImportSession(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "page configuration is too large"})
		return
	}

	session, state, err := h.builderService.ImportSession(body)
	if err != nil {
		respondError(c, err, "Failed to import page configuration", nil)
		return
	}

	c.JSON(http.StatusCreated, stateResponse(session.ID, state))
}

// RestoreSession reopens a saved page.
// POST /api/v1/builder/sessions/restore/:pageId
func (h *BuilderHandler) RestoreSession(c *gin.Context) {
	pageID := c.Param("pageId")

	session, state, err := h.builderService.RestoreSession(c.Request.Context(), pageID)
	if err != nil {
		respondError(c, err, "Failed to restore page", map[string]interface{}{"page_id": pageID})
		return
	}

	c.JSON(http.StatusCreated, stateResponse(session.ID, state))
}

// GetSession returns the current builder state.
// GET /api/v1/builder/sessions/:id
func (h *BuilderHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	state, err := h.builderService.State(id)
	h.respondState(c, id, state, err, "Failed to load builder session")
}

// CloseSession discards a session.
// DELETE /api/v1/builder/sessions/:id
func (h *BuilderHandler) CloseSession(c *gin.Context) {
	if err := h.builderService.CloseSession(c.Param("id")); err != nil {
		respondError(c, err, "Failed to close builder session", map[string]interface{}{"session_id": c.Param("id")})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BuilderHandler) respondState(c *gin.Context, sessionID string, state builder.State, err error, msg string) {
	if err != nil {
		respondError(c, err, msg, map[string]interface{}{"session_id": sessionID})
		return
	}
	c.JSON(http.StatusOK, stateResponse(sessionID, state))
}

// AddSection appends a new section of the requested type.
// POST /api/v1/builder/sessions/:id/sections
func (h *BuilderHandler) AddSection(c *gin.Context) {
	id := c.Param("id")

	var req models.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, section, err := h.builderService.AddSection(id, req)
	if err != nil {
		respondError(c, err, "Failed to add section", map[string]interface{}{"session_id": id, "type": req.Type})
		return
	}

	response := stateResponse(id, state)
	response["section"] = section
	c.JSON(http.StatusCreated, response)
}

// UpdateSection replaces the data and/or visibility of a section.
// PATCH /api/v1/builder/sessions/:id/sections/:sectionId
func (h *BuilderHandler) UpdateSection(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.builderService.UpdateSection(id, c.Param("sectionId"), req)
	h.respondState(c, id, state, err, "Failed to update section")
}

// DeleteSection removes a section.
// DELETE /api/v1/builder/sessions/:id/sections/:sectionId
func (h *BuilderHandler) DeleteSection(c *gin.Context) {
	id := c.Param("id")
	state, err := h.builderService.DeleteSection(id, c.Param("sectionId"))
	h.respondState(c, id, state, err, "Failed to delete section")
}

// DuplicateSection inserts a copy of a section after it.
// POST /api/v1/builder/sessions/:id/sections/:sectionId/duplicate
func (h *BuilderHandler) DuplicateSection(c *gin.Context) {
	id := c.Param("id")
	state, err := h.builderService.DuplicateSection(id, c.Param("sectionId"))
	h.respondState(c, id, state, err, "Failed to duplicate section")
}

// ToggleSectionVisibility flips the visibility of a section.
// POST /api/v1/builder/sessions/:id/sections/:sectionId/toggle-visibility
func (h *BuilderHandler) ToggleSectionVisibility(c *gin.Context) {
	id := c.Param("id")
	state, err := h.builderService.ToggleSectionVisibility(id, c.Param("sectionId"))
	h.respondState(c, id, state, err, "Failed to toggle section visibility")
}

// ReorderSections moves a section by index or by drag ids.
// POST /api/v1/builder/sessions/:id/sections/reorder
func (h *BuilderHandler) ReorderSections(c *gin.Context) {
	id := c.Param("id")

	var req models.ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.builderService.ReorderSections(id, req)
	h.respondState(c, id, state, err, "Failed to reorder sections")
}

// SelectSection selects a section; an empty id clears the selection.
// PUT /api/v1/builder/sessions/:id/selection
func (h *BuilderHandler) SelectSection(c *gin.Context) {
	id := c.Param("id")

	var req models.SelectSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.builderService.SelectSection(id, req.SectionID)
	h.respondState(c, id, state, err, "Failed to select section")
}

// UpdateMetadata merges a partial metadata update.
// PATCH /api/v1/builder/sessions/:id/metadata
func (h *BuilderHandler) UpdateMetadata(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.builderService.UpdateMetadata(id, req.ToUpdate())
	h.respondState(c, id, state, err, "Failed to update metadata")
}

// SetPreviewMode switches preview mode.
// PUT /api/v1/builder/sessions/:id/preview
func (h *BuilderHandler) SetPreviewMode(c *gin.Context) {
	id := c.Param("id")

	var req models.SetPreviewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.builderService.SetPreviewMode(id, *req.Enabled)
	h.respondState(c, id, state, err, "Failed to set preview mode")
}

// Reset empties the builder.
// POST /api/v1/builder/sessions/:id/reset
func (h *BuilderHandler) Reset(c *gin.Context) {
	id := c.Param("id")
	state, err := h.builderService.Reset(id)
	h.respondState(c, id, state, err, "Failed to reset builder")
}

// Save persists the page in the background. With ?wait=true the request
// blocks until the job finishes.
// POST /api/v1/builder/sessions/:id/save
func (h *BuilderHandler) Save(c *gin.Context) {
	id := c.Param("id")

	handle, err := h.builderService.Save(id)
	if err != nil {
		respondError(c, err, "Failed to schedule save", map[string]interface{}{"session_id": id})
		return
	}
	h.respondJob(c, id, handle, "Failed to save page")
}

// Publish saves, marks published and announces the page.
// POST /api/v1/builder/sessions/:id/publish
func (h *BuilderHandler) Publish(c *gin.Context) {
	id := c.Param("id")

	handle, err := h.builderService.Publish(id)
	if err != nil {
		respondError(c, err, "Failed to schedule publish", map[string]interface{}{"session_id": id})
		return
	}
	h.respondJob(c, id, handle, "Failed to publish page")
}

func (h *BuilderHandler) respondJob(c *gin.Context, sessionID string, handle *service.JobHandle, msg string) {
	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	if !wait {
		c.JSON(http.StatusAccepted, gin.H{
			"session_id": sessionID,
			"page_id":    handle.PageID,
			"job":        handle.Name,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), jobWaitTimeout)
	defer cancel()

	if err := handle.Wait(ctx); err != nil {
		respondError(c, err, msg, map[string]interface{}{"session_id": sessionID, "page_id": handle.PageID})
		return
	}

	state, err := h.builderService.State(sessionID)
	h.respondState(c, sessionID, state, err, msg)
}

// Export downloads the page as config JSON, data JSON or standalone HTML.
// GET /api/v1/builder/sessions/:id/export?format=html
func (h *BuilderHandler) Export(c *gin.Context) {
	id := c.Param("id")

	format, err := codec.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err, "Failed to export page", nil)
		return
	}

	out, err := h.builderService.Export(id, format)
	if err != nil {
		respondError(c, err, "Failed to export page", map[string]interface{}{"session_id": id, "format": format})
		return
	}

	filename := "page" + format.Extension()
	if state, err := h.builderService.State(id); err == nil && state.Page != nil {
		filename = state.Page.ID + format.Extension()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), out)
}

// Preview upgrades to a websocket streaming the session's state.
// GET /api/v1/builder/sessions/:id/preview/ws
func (h *BuilderHandler) Preview(c *gin.Context) {
	id := c.Param("id")

	session, err := h.builderService.Session(id)
	if err != nil {
		respondError(c, err, "Failed to open preview", map[string]interface{}{"session_id": id})
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, session.Store); err != nil {
		logger.Warn("Preview upgrade failed", map[string]interface{}{"session_id": id, "error": err.Error()})
	}
}
