package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"site-builder-backend/internal/service"
)

type CatalogHandler struct {
	builderService *service.BuilderService
}

func NewCatalogHandler(builderService *service.BuilderService) *CatalogHandler {
	return &CatalogHandler{builderService: builderService}
}

// ListSections returns every section type the builder offers.
// GET /api/v1/sections
func (h *CatalogHandler) ListSections(c *gin.Context) {
	definitions := h.builderService.Sections()
	c.JSON(http.StatusOK, gin.H{
		"sections": definitions,
		"total":    len(definitions),
	})
}

// GetSection returns one section definition with its schema and defaults.
// GET /api/v1/sections/:type
func (h *CatalogHandler) GetSection(c *gin.Context) {
	definition, err := h.builderService.Section(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"section": definition})
}

// ListTemplates returns template summaries, optionally filtered by category.
// GET /api/v1/templates?category=conference
func (h *CatalogHandler) ListTemplates(c *gin.Context) {
	summaries := h.builderService.Templates(c.Query("category"))
	c.JSON(http.StatusOK, gin.H{
		"templates": summaries,
		"total":     len(summaries),
	})
}

// GetTemplate returns a full template.
// GET /api/v1/templates/:id
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.builderService.Template(c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load template", map[string]interface{}{"template_id": c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"template": tmpl})
}
