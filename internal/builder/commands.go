package builder

import (
	"site-builder-backend/internal/models"
)

// Command is one mutation intent. The set is closed: only this package can
// implement it.
type Command interface {
	Name() string
	apply(State) (State, error)
}

// sectionTarget is implemented by commands addressing one section.
type sectionTarget interface {
	targetID() string
}

// SetPage loads a document, replacing any current one. A nil page is ignored.
type SetPage struct {
	Page *models.PageConfig
}

// AddSection appends a section. Its order is ignored and recomputed.
type AddSection struct {
	Section models.Section
}

// SectionUpdate is the part of a section a caller may change in place.
type SectionUpdate struct {
	Data      models.SectionData
	IsVisible *bool
}

// IsEmpty reports whether the update changes nothing.
func (u SectionUpdate) IsEmpty() bool {
	return u.Data == nil && u.IsVisible == nil
}

// UpdateSection replaces the data and/or visibility of a section.
type UpdateSection struct {
	SectionID string
	Update    SectionUpdate
}

// DeleteSection removes a section.
type DeleteSection struct {
	SectionID string
}

// ReorderSections moves the section at SourceIndex to DestinationIndex.
type ReorderSections struct {
	SourceIndex      int
	DestinationIndex int
}

// MoveSection is the drag-and-drop form of ReorderSections: the dragged
// section takes the position of the section it was dropped over.
type MoveSection struct {
	ActiveID string
	OverID   string
}

// DuplicateSection inserts a copy of a section right after it.
type DuplicateSection struct {
	SectionID string
	NewID     string
}

// ToggleSectionVisibility flips the visibility of a section.
type ToggleSectionVisibility struct {
	SectionID string
}

// SelectSection selects a section; an empty id clears the selection.
type SelectSection struct {
	SectionID string
}

// UpdateMetadata merges a partial metadata update into the page.
type UpdateMetadata struct {
	Update models.MetadataUpdate
}

// SetPreviewMode switches preview mode on or off.
type SetPreviewMode struct {
	Enabled bool
}

// Reset returns to the empty state.
type Reset struct{}

func (SetPage) Name() string                 { return "set_page" }
func (AddSection) Name() string              { return "add_section" }
func (UpdateSection) Name() string           { return "update_section" }
func (DeleteSection) Name() string           { return "delete_section" }
func (ReorderSections) Name() string         { return "reorder_sections" }
func (MoveSection) Name() string             { return "move_section" }
func (DuplicateSection) Name() string        { return "duplicate_section" }
func (ToggleSectionVisibility) Name() string { return "toggle_section_visibility" }
func (SelectSection) Name() string           { return "select_section" }
func (UpdateMetadata) Name() string          { return "update_metadata" }
func (SetPreviewMode) Name() string          { return "set_preview_mode" }
func (Reset) Name() string                   { return "reset" }

func (c AddSection) targetID() string              { return c.Section.ID }
func (c UpdateSection) targetID() string           { return c.SectionID }
func (c DeleteSection) targetID() string           { return c.SectionID }
func (c MoveSection) targetID() string             { return c.ActiveID }
func (c DuplicateSection) targetID() string        { return c.SectionID }
func (c ToggleSectionVisibility) targetID() string { return c.SectionID }
func (c SelectSection) targetID() string           { return c.SectionID }
