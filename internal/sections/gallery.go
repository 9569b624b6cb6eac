package sections

import "site-builder-backend/internal/models"

func galleryDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypeGallery).
		WithName("Gallery").
		WithDescription("Grid, masonry or carousel of event photos").
		WithCategory(SectionCategoryMedia).
		WithIcon("images").
		AddStringField("title", "Title", false).
		AddArrayField("images", "Images", "image").
		AddEnumField("layout", "Layout", GalleryLayouts...).
		AddNumberField("columns", "Columns", 2, 4).
		WithDefaultData(&models.GalleryData{
			Title:   "Gallery",
			Images:  []models.GalleryImage{},
			Layout:  "grid",
			Columns: DefaultColumns,
		})
}
