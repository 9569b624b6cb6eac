package models

import "encoding/json"

// CreateSessionRequest starts a builder session from a catalog template.
type CreateSessionRequest struct {
	TemplateID  string         `json:"templateId" binding:"required"`
	PageID      string         `json:"pageId,omitempty"`
	Metadata    PageMetadata   `json:"metadata"`
	SectionData SectionDataMap `json:"sectionData,omitempty"`
}

// AddSectionRequest adds a registry-built section of the given type.
type AddSectionRequest struct {
	Type string `json:"type" binding:"required"`
	ID   string `json:"id,omitempty"`
}

// UpdateSectionRequest replaces the data record and/or visibility of a section.
type UpdateSectionRequest struct {
	Data      json.RawMessage `json:"data,omitempty"`
	IsVisible *bool           `json:"isVisible,omitempty"`
}

// ReorderSectionsRequest moves a section either by index or by drag ids.
type ReorderSectionsRequest struct {
	SourceIndex      *int   `json:"sourceIndex,omitempty"`
	DestinationIndex *int   `json:"destinationIndex,omitempty"`
	ActiveID         string `json:"activeId,omitempty"`
	OverID           string `json:"overId,omitempty"`
}

// SelectSectionRequest selects a section; an empty id clears the selection.
type SelectSectionRequest struct {
	SectionID string `json:"sectionId"`
}

// UpdateMetadataRequest is a partial metadata update.
type UpdateMetadataRequest struct {
	Title          *string `json:"title,omitempty" binding:"omitempty,max=200"`
	Description    *string `json:"description,omitempty" binding:"omitempty,max=500"`
	Favicon        *string `json:"favicon,omitempty"`
	Theme          *string `json:"theme,omitempty" binding:"omitempty,oneof=light dark auto"`
	PrimaryColor   *string `json:"primaryColor,omitempty" binding:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondaryColor,omitempty" binding:"omitempty,hexcolor"`
	FontFamily     *string `json:"fontFamily,omitempty" binding:"omitempty,max=200"`
}

// ToUpdate converts the request to a metadata update.
func (r UpdateMetadataRequest) ToUpdate() MetadataUpdate {
	update := MetadataUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Favicon:        r.Favicon,
		PrimaryColor:   r.PrimaryColor,
		SecondaryColor: r.SecondaryColor,
		FontFamily:     r.FontFamily,
	}
	if r.Theme != nil {
		theme := Theme(*r.Theme)
		update.Theme = &theme
	}
	return update
}

// SetPreviewModeRequest toggles preview mode.
type SetPreviewModeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SectionSchemaField describes one editable field of a section type.
type SectionSchemaField struct {
	Type     string   `json:"type"`
	Label    string   `json:"label,omitempty"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
	ItemType string   `json:"itemType,omitempty"`
	Min      int      `json:"min,omitempty"`
	Max      int      `json:"max,omitempty"`
}

// SectionDefinition describes a section type offered by the builder.
type SectionDefinition struct {
	Type        SectionType                   `json:"type"`
	Name        string                        `json:"name"`
	Description string                        `json:"description"`
	Category    string                        `json:"category"`
	Icon        string                        `json:"icon"`
	Schema      map[string]SectionSchemaField `json:"schema,omitempty"`
	DefaultData SectionData                   `json:"defaultData"`
}

// TemplateSummary is the gallery view of a template.
type TemplateSummary struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Thumbnail    string           `json:"thumbnail,omitempty"`
	Category     TemplateCategory `json:"category"`
	SectionCount int              `json:"sectionCount"`
}
