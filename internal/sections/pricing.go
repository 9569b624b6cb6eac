package sections

import "site-builder-backend/internal/models"

func pricingDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypePricing).
		WithName("Pricing").
		WithDescription("Ticket tiers with price, perks and availability").
		WithCategory(SectionCategoryEvent).
		WithIcon("ticket").
		AddStringField("title", "Title", true).
		AddTextField("description", "Description", false).
		AddArrayField("tickets", "Tickets", "ticket").
		AddNumberField("columns", "Columns", 2, 4).
		WithDefaultData(&models.PricingData{
			Title: "Tickets",
			Tickets: []models.PricingTicket{
				{
					ID:        "general",
					Name:      "General",
					Price:     25,
					Currency:  "EUR",
					Features:  []string{"Event access"},
					Available: true,
				},
				{
					ID:        "vip",
					Name:      "VIP",
					Price:     60,
					Currency:  "EUR",
					Features:  []string{"Event access", "Front row", "Welcome drink"},
					Available: true,
				},
			},
			Columns: DefaultColumns,
		})
}
