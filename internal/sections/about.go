package sections

import "site-builder-backend/internal/models"

func aboutDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypeAbout).
		WithName("About").
		WithDescription("Rich text describing the event with an optional side image").
		WithCategory(SectionCategoryLayout).
		WithIcon("info").
		AddStringField("title", "Title", true).
		AddTextField("content", "Content", true).
		AddImageField("image", "Image").
		AddEnumField("imagePosition", "Image position", AboutImagePositions...).
		WithDefaultData(&models.AboutData{
			Title:         "About the event",
			Content:       "<p>Tell your audience what makes this event special.</p>",
			ImagePosition: "left",
		})
}
