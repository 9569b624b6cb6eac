package builder

import "site-builder-backend/internal/models"

// Mode is the coarse lifecycle state of a builder.
type Mode string

const (
	ModeEmpty      Mode = "empty"
	ModeLoaded     Mode = "loaded"
	ModePreviewing Mode = "previewing"
)

// State is the authoritative document being edited plus the UI flags around
// it. States are values: a transition never mutates the page of its input.
type State struct {
	Page              *models.PageConfig `json:"page"`
	SelectedSectionID string             `json:"selectedSectionId,omitempty"`
	IsDirty           bool               `json:"isDirty"`
	PreviewMode       bool               `json:"previewMode"`
}

// InitialState is the empty builder.
func InitialState() State {
	return State{}
}

// Mode reports where the state sits in the builder lifecycle.
func (s State) Mode() Mode {
	switch {
	case s.Page == nil:
		return ModeEmpty
	case s.PreviewMode:
		return ModePreviewing
	default:
		return ModeLoaded
	}
}

// Clone returns a state that shares nothing with s.
func (s State) Clone() State {
	s.Page = s.Page.Clone()
	return s
}

// Projection returns the page as a viewer should see it: in preview mode
// hidden sections are dropped.
func (s State) Projection() *models.PageConfig {
	if s.Page == nil {
		return nil
	}
	page := s.Page.Clone()
	if s.PreviewMode {
		page.Sections = page.VisibleSections()
	} else {
		page.Sections = page.SortedSections()
	}
	return page
}
