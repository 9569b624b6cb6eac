package sections

import "site-builder-backend/internal/models"

func contactDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypeContact).
		WithName("Contact").
		WithDescription("Organiser contact details, map link and social profiles").
		WithCategory(SectionCategoryLayout).
		WithIcon("mail").
		AddStringField("title", "Title", true).
		AddStringField("email", "Email", false).
		AddStringField("phone", "Phone", false).
		AddStringField("address", "Address", false).
		AddStringField("mapUrl", "Map link", false).
		AddArrayField("socialLinks", "Social links", "socialLink").
		WithDefaultData(&models.ContactData{
			Title:       "Contact",
			Email:       "hello@example.com",
			SocialLinks: []models.SocialLink{},
		})
}
