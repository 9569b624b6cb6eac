package sections

import "site-builder-backend/internal/models"

func scheduleDefinition() *DefinitionBuilder {
	return NewDefinitionBuilder(models.SectionTypeSchedule).
		WithName("Schedule").
		WithDescription("Agenda of talks, performances and breaks").
		WithCategory(SectionCategoryEvent).
		WithIcon("calendar").
		AddStringField("title", "Title", true).
		AddArrayField("events", "Events", "event").
		AddEnumField("layout", "Layout", ScheduleLayouts...).
		WithDefaultData(&models.ScheduleData{
			Title: "Schedule",
			Events: []models.ScheduleEvent{
				{ID: "opening", Time: "18:00", Title: "Doors open"},
				{ID: "main", Time: "19:00", Title: "Main act"},
			},
			Layout: "timeline",
		})
}
