package service

import (
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/sections"
	"site-builder-backend/pkg/validator"
)

// sanitizeSectionData returns a copy of data with markup stripped from plain
// text fields, rich text reduced to safe HTML and unusable links dropped.
// Unknown layout options are replaced by the first allowed one; empty ones
// are left for the renderer to default.
func sanitizeSectionData(data models.SectionData) models.SectionData {
	if data == nil {
		return nil
	}

	text := validator.SanitizeString
	link := func(value string) string {
		if validator.IsSafeURL(value) {
			return value
		}
		return ""
	}
	option := func(value string, options []string) string {
		if value == "" {
			return ""
		}
		return sections.FirstOr(value, options)
	}
	columns := func(value int) int {
		if value == 0 {
			return 0
		}
		return sections.ColumnsOr(value)
	}

	switch d := data.CloneData().(type) {
	case *models.HeroData:
		d.Title = text(d.Title)
		d.Subtitle = text(d.Subtitle)
		d.CTAText = text(d.CTAText)
		d.CTALink = link(d.CTALink)
		d.BackgroundImage = link(d.BackgroundImage)
		d.Layout = option(d.Layout, sections.HeroLayouts)
		return d
	case *models.PricingData:
		d.Title = text(d.Title)
		d.Description = text(d.Description)
		for i := range d.Tickets {
			ticket := &d.Tickets[i]
			ticket.Name = text(ticket.Name)
			ticket.Description = text(ticket.Description)
			for j := range ticket.Features {
				ticket.Features[j] = text(ticket.Features[j])
			}
		}
		d.Columns = columns(d.Columns)
		return d
	case *models.GalleryData:
		d.Title = text(d.Title)
		for i := range d.Images {
			image := &d.Images[i]
			image.URL = link(image.URL)
			image.Alt = text(image.Alt)
			image.Caption = text(image.Caption)
		}
		d.Layout = option(d.Layout, sections.GalleryLayouts)
		d.Columns = columns(d.Columns)
		return d
	case *models.AboutData:
		d.Title = text(d.Title)
		d.Content = validator.SanitizeHTML(d.Content)
		d.Image = link(d.Image)
		d.ImagePosition = option(d.ImagePosition, sections.AboutImagePositions)
		return d
	case *models.ScheduleData:
		d.Title = text(d.Title)
		for i := range d.Events {
			event := &d.Events[i]
			event.Time = text(event.Time)
			event.Title = text(event.Title)
			event.Description = text(event.Description)
			event.Speaker = text(event.Speaker)
			event.Location = text(event.Location)
		}
		d.Layout = option(d.Layout, sections.ScheduleLayouts)
		return d
	case *models.ContactData:
		d.Title = text(d.Title)
		d.Phone = text(d.Phone)
		d.Address = text(d.Address)
		d.MapURL = link(d.MapURL)
		if d.Email != "" && !validator.ValidateEmail(d.Email) {
			d.Email = ""
		}
		for i := range d.SocialLinks {
			social := &d.SocialLinks[i]
			social.Platform = text(social.Platform)
			social.URL = link(social.URL)
		}
		return d
	default:
		return d
	}
}

// sanitizePage sanitises every section and the free-text metadata of page in
// place.
func sanitizePage(page *models.PageConfig) {
	if page == nil {
		return
	}
	page.Name = validator.SanitizeString(page.Name)
	page.Metadata.Title = validator.SanitizeString(page.Metadata.Title)
	page.Metadata.Description = validator.SanitizeString(page.Metadata.Description)
	for i := range page.Sections {
		page.Sections[i].Data = sanitizeSectionData(page.Sections[i].Data)
	}
}

func sanitizeMetadataUpdate(update models.MetadataUpdate) models.MetadataUpdate {
	if update.Title != nil {
		title := validator.SanitizeString(*update.Title)
		update.Title = &title
	}
	if update.Description != nil {
		description := validator.SanitizeString(*update.Description)
		update.Description = &description
	}
	return update
}
