package sections

import "site-builder-backend/internal/models"

func heroDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypeHero).
		WithName("Hero").
		WithDescription("Full-width banner with the event title, a tagline and a call-to-action button").
		WithCategory(SectionCategoryLayout).
		WithIcon("star").
		AddStringField("title", "Title", true).
		AddStringField("subtitle", "Subtitle", false).
		AddImageField("backgroundImage", "Background image").
		AddStringField("ctaText", "Button text", false).
		AddStringField("ctaLink", "Button link", false).
		AddEnumField("layout", "Layout", HeroLayouts...).
		AddBooleanField("overlay", "Darken background").
		WithDefaultData(&models.HeroData{
			Title:    "Your event title",
			Subtitle: "A short line that sells the experience",
			CTAText:  "Get tickets",
			CTALink:  "#pricing",
			Layout:   "centered",
			Overlay:  true,
		})
}
