package handlers

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers of the API.
type Handlers struct {
	Builder *BuilderHandler
	Catalog *CatalogHandler
	Pages   *PageHandler
}

// OperationGuard returns middleware limiting one expensive operation. A nil
// guard, or a nil handler for an operation, disables the extra limit.
type OperationGuard func(operation string) gin.HandlerFunc

// RegisterRoutes mounts the v1 API on api.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, guard OperationGuard) {
	limit := func(operation string) gin.HandlerFunc {
		if guard != nil {
			if handler := guard(operation); handler != nil {
				return handler
			}
		}
		return func(c *gin.Context) { c.Next() }
	}

	api.GET("/sections", h.Catalog.ListSections)
	api.GET("/sections/:type", h.Catalog.GetSection)
	api.GET("/templates", h.Catalog.ListTemplates)
	api.GET("/templates/:id", h.Catalog.GetTemplate)

	api.GET("/pages", h.Pages.List)
	api.DELETE("/pages/:pageId", h.Pages.Delete)

	sessions := api.Group("/builder/sessions")
	{
		sessions.POST("", h.Builder.CreateSession)
		sessions.POST("/import", limit("import"), h.Builder.ImportSession)
		sessions.POST("/restore/:pageId", h.Builder.RestoreSession)

		sessions.GET("/:id", h.Builder.GetSession)
		sessions.DELETE("/:id", h.Builder.CloseSession)

		sessions.POST("/:id/sections", h.Builder.AddSection)
		sessions.POST("/:id/sections/reorder", h.Builder.ReorderSections)
		sessions.PATCH("/:id/sections/:sectionId", h.Builder.UpdateSection)
		sessions.DELETE("/:id/sections/:sectionId", h.Builder.DeleteSection)
		sessions.POST("/:id/sections/:sectionId/duplicate", h.Builder.DuplicateSection)
		sessions.POST("/:id/sections/:sectionId/toggle-visibility", h.Builder.ToggleSectionVisibility)

		sessions.PUT("/:id/selection", h.Builder.SelectSection)
		sessions.PATCH("/:id/metadata", h.Builder.UpdateMetadata)
		sessions.PUT("/:id/preview", h.Builder.SetPreviewMode)
		sessions.POST("/:id/reset", h.Builder.Reset)

		sessions.POST("/:id/save", limit("save"), h.Builder.Save)
		sessions.POST("/:id/publish", limit("publish"), h.Builder.Publish)
		sessions.GET("/:id/export", limit("export"), h.Builder.Export)
		sessions.GET("/:id/preview/ws", h.Builder.Preview)
	}
}
