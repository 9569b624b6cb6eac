package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Theme is the colour scheme of a built page.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// PageMetadata holds page-level settings shared by every section.
type PageMetadata struct {
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	Favicon        string `json:"favicon,omitempty"`
	Theme          Theme  `json:"theme,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
	FontFamily     string `json:"fontFamily,omitempty"`
}

// Override returns m with every non-empty field of other applied on top.
func (m PageMetadata) Override(other PageMetadata) PageMetadata {
	merged := m
	if other.Title != "" {
		merged.Title = other.Title
	}
	if other.Description != "" {
		merged.Description = other.Description
	}
	if other.Favicon != "" {
		merged.Favicon = other.Favicon
	}
	if other.Theme != "" {
		merged.Theme = other.Theme
	}
	if other.PrimaryColor != "" {
		merged.PrimaryColor = other.PrimaryColor
	}
	if other.SecondaryColor != "" {
		merged.SecondaryColor = other.SecondaryColor
	}
	if other.FontFamily != "" {
		merged.FontFamily = other.FontFamily
	}
	return merged
}

// MetadataUpdate is a partial PageMetadata; nil fields are left untouched.
type MetadataUpdate struct {
	Title          *string `json:"title,omitempty"`
	Description    *string `json:"description,omitempty"`
	Favicon        *string `json:"favicon,omitempty"`
	Theme          *Theme  `json:"theme,omitempty"`
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
	FontFamily     *string `json:"fontFamily,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (u MetadataUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Favicon == nil && u.Theme == nil &&
		u.PrimaryColor == nil && u.SecondaryColor == nil && u.FontFamily == nil
}

// Apply merges the update shallowly into m.
func (u MetadataUpdate) Apply(m PageMetadata) PageMetadata {
	if u.Title != nil {
		m.Title = *u.Title
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Favicon != nil {
		m.Favicon = *u.Favicon
	}
	if u.Theme != nil {
		m.Theme = *u.Theme
	}
	if u.PrimaryColor != nil {
		m.PrimaryColor = *u.PrimaryColor
	}
	if u.SecondaryColor != nil {
		m.SecondaryColor = *u.SecondaryColor
	}
	if u.FontFamily != nil {
		m.FontFamily = *u.FontFamily
	}
	return m
}

// PageConfig is the buildable page document.
type PageConfig struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Metadata  PageMetadata `json:"metadata"`
	Sections  []Section    `json:"sections"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy of the page.
func (p *PageConfig) Clone() *PageConfig {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.Sections != nil {
		cloned.Sections = make([]Section, len(p.Sections))
		for i, section := range p.Sections {
			cloned.Sections[i] = section.Clone()
		}
	}
	return &cloned
}

// IndexOf returns the array position of the section with the given id, or -1.
func (p *PageConfig) IndexOf(sectionID string) int {
	if p == nil {
		return -1
	}
	for i := range p.Sections {
		if p.Sections[i].ID == sectionID {
			return i
		}
	}
	return -1
}

// SortedSections returns a copy of the sections in ascending order.
func (p *PageConfig) SortedSections() []Section {
	if p == nil {
		return nil
	}
	sorted := make([]Section, len(p.Sections))
	copy(sorted, p.Sections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// VisibleSections is the preview projection of the page: visible sections in
// ascending order.
func (p *PageConfig) VisibleSections() []Section {
	sorted := p.SortedSections()
	visible := make([]Section, 0, len(sorted))
	for _, section := range sorted {
		if section.IsVisible {
			visible = append(visible, section)
		}
	}
	return visible
}

// SectionDataMap maps a section id to its still-encoded data payload. The
// payload is decoded once the owning section's type is known.
type SectionDataMap map[string]json.RawMessage

// Lookup returns the payload for id, treating a JSON null as absent.
func (m SectionDataMap) Lookup(id string) (json.RawMessage, bool) {
	raw, ok := m[id]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

// PageData is the customisation input merged against a template.
type PageData struct {
	PageID      string         `json:"pageId"`
	Metadata    PageMetadata   `json:"metadata"`
	SectionData SectionDataMap `json:"sectionData"`
}

// TemplateCategory groups catalog templates.
type TemplateCategory string

const (
	TemplateCategoryEvent      TemplateCategory = "event"
	TemplateCategoryConference TemplateCategory = "conference"
	TemplateCategoryConcert    TemplateCategory = "concert"
	TemplateCategoryCustom     TemplateCategory = "custom"
)

// TemplateSectionConfig is a section skeleton of a template.
type TemplateSectionConfig struct {
	ID    string      `json:"id"`
	Type  SectionType `json:"type"`
	Order int         `json:"order"`
}

// Template is a read-only catalog entry describing a starting page.
type Template struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Thumbnail   string                  `json:"thumbnail,omitempty"`
	Category    TemplateCategory        `json:"category"`
	Metadata    PageMetadata            `json:"metadata"`
	Sections    []TemplateSectionConfig `json:"sections"`
	DefaultData SectionDataMap          `json:"defaultData"`
}
