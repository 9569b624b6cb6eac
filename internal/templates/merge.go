package templates

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"site-builder-backend/internal/models"
)

// now is replaced in tests.
var now = func() time.Time {
	return time.Now().UTC()
}

// Merge builds a page from a template and caller supplied data. A section's
// payload comes from pageData when present, else from the template defaults,
// else it is the empty record of its kind. Template orders are trusted and
// not renumbered.
func Merge(tmpl *models.Template, pageData *models.PageData) (*models.PageConfig, error) {
	if tmpl == nil {
		return nil, models.NewValidationError(models.ErrMalformedTemplate, "", "template is nil")
	}
	if tmpl.Sections == nil {
		return nil, models.NewValidationError(models.ErrMalformedTemplate, "sections", "must be an array")
	}
	if pageData == nil {
		pageData = &models.PageData{}
	}

	skeletons := append([]models.TemplateSectionConfig{}, tmpl.Sections...)
	sort.SliceStable(skeletons, func(i, j int) bool {
		return skeletons[i].Order < skeletons[j].Order
	})

	sections := make([]models.Section, 0, len(skeletons))
	for _, skeleton := range skeletons {
		raw, ok := pageData.SectionData.Lookup(skeleton.ID)
		if !ok {
			raw, _ = tmpl.DefaultData.Lookup(skeleton.ID)
		}

		data, err := models.DecodeSectionData(skeleton.Type, raw)
		if err != nil {
			return nil, models.NewValidationError(models.ErrMalformedTemplate, fmt.Sprintf("sections[%s]", skeleton.ID), err.Error())
		}

		sections = append(sections, models.Section{
			ID:        skeleton.ID,
			Type:      skeleton.Type,
			Order:     skeleton.Order,
			IsVisible: true,
			Data:      data,
		})
	}

	ts := now()
	return &models.PageConfig{
		ID:        pageData.PageID,
		Name:      tmpl.Name,
		Metadata:  tmpl.Metadata.Override(pageData.Metadata),
		Sections:  sections,
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// Instantiate merges a template for a brand new page. A missing page id is
// generated and missing overrides fall back to the template.
func Instantiate(tmpl *models.Template, overrides models.PageData) (*models.PageConfig, error) {
	if overrides.PageID == "" {
		overrides.PageID = NewPageID()
	}
	if overrides.SectionData == nil {
		overrides.SectionData = models.SectionDataMap{}
	}
	return Merge(tmpl, &overrides)
}

// NewPageID generates a page identifier.
func NewPageID() string {
	return "page-" + uuid.NewString()
}
