package builder

import (
	"errors"
	"sort"

	"site-builder-backend/internal/models"
)

// Reasons a command is ignored.
var (
	errNilCommand   = errors.New("nil command")
	errNilPage      = errors.New("nil page")
	errInvalidID    = errors.New("section id is empty or already used")
	errInvalidType  = errors.New("section type is unknown")
	errKindMismatch = errors.New("section data kind does not match section type")
	errInvalidIndex = errors.New("section index out of range")
	errEmptyUpdate  = errors.New("update carries no change")
	errUnchanged    = errors.New("state already matches")
)

// Reduce applies cmd to state and returns the next state. It is pure: the
// input state and its page are never modified. Commands that do not apply
// (missing page, unknown section id, invalid index) return the input
// unchanged.
func Reduce(state State, cmd Command) State {
	next, _ := reduce(state, cmd)
	return next
}

// reduce is Reduce that also reports why a command was ignored.
func reduce(state State, cmd Command) (State, error) {
	if cmd == nil {
		return state, errNilCommand
	}
	return cmd.apply(state)
}

// renumber makes every order equal to its array index.
func renumber(sections []models.Section) {
	for i := range sections {
		sections[i].Order = i
	}
}

// edit clones the page of s so the caller can mutate it freely, and marks
// the state dirty.
func edit(s State) (State, *models.PageConfig) {
	page := s.Page.Clone()
	s.Page = page
	s.IsDirty = true
	return s, page
}

func (c SetPage) apply(s State) (State, error) {
	if c.Page == nil {
		return s, errNilPage
	}

	page := c.Page.Clone()
	if page.Sections == nil {
		page.Sections = []models.Section{}
	}
	sort.SliceStable(page.Sections, func(i, j int) bool {
		return page.Sections[i].Order < page.Sections[j].Order
	})
	renumber(page.Sections)

	s.Page = page
	s.IsDirty = false
	if s.SelectedSectionID != "" && page.IndexOf(s.SelectedSectionID) < 0 {
		s.SelectedSectionID = ""
	}
	return s, nil
}

func (c AddSection) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}

	section := c.Section.Clone()
	if section.ID == "" || s.Page.IndexOf(section.ID) >= 0 {
		return s, errInvalidID
	}
	if !section.Type.IsKnown() {
		return s, errInvalidType
	}
	if section.Data == nil {
		data, err := models.NewSectionData(section.Type)
		if err != nil {
			return s, err
		}
		section.Data = data
	}
	if section.Data.SectionType() != section.Type {
		return s, errKindMismatch
	}

	s, page := edit(s)
	section.Order = len(page.Sections)
	page.Sections = append(page.Sections, section)
	return s, nil
}

func (c UpdateSection) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}
	if c.Update.IsEmpty() {
		return s, errEmptyUpdate
	}

	index := s.Page.IndexOf(c.SectionID)
	if index < 0 {
		return s, models.ErrNotFound
	}
	if c.Update.Data != nil && c.Update.Data.SectionType() != s.Page.Sections[index].Type {
		return s, errKindMismatch
	}

	s, page := edit(s)
	if c.Update.Data != nil {
		page.Sections[index].Data = c.Update.Data.CloneData()
	}
	if c.Update.IsVisible != nil {
		page.Sections[index].IsVisible = *c.Update.IsVisible
	}
	return s, nil
}

func (c DeleteSection) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}

	index := s.Page.IndexOf(c.SectionID)
	if index < 0 {
		return s, models.ErrNotFound
	}

	s, page := edit(s)
	page.Sections = append(page.Sections[:index], page.Sections[index+1:]...)
	renumber(page.Sections)
	if s.SelectedSectionID == c.SectionID {
		s.SelectedSectionID = ""
	}
	return s, nil
}

func (c ReorderSections) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}

	n := len(s.Page.Sections)
	from, to := c.SourceIndex, c.DestinationIndex
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return s, errInvalidIndex
	}

	s, page := edit(s)
	moved := page.Sections[from]
	page.Sections = append(page.Sections[:from], page.Sections[from+1:]...)
	page.Sections = append(page.Sections[:to], append([]models.Section{moved}, page.Sections[to:]...)...)
	renumber(page.Sections)
	return s, nil
}

func (c MoveSection) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}

	from := s.Page.IndexOf(c.ActiveID)
	to := s.Page.IndexOf(c.OverID)
	if from < 0 || to < 0 {
		return s, models.ErrNotFound
	}
	return ReorderSections{SourceIndex: from, DestinationIndex: to}.apply(s)
}

func (c DuplicateSection) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}
	if c.NewID == "" || s.Page.IndexOf(c.NewID) >= 0 {
		return s, errInvalidID
	}

	index := s.Page.IndexOf(c.SectionID)
	if index < 0 {
		return s, models.ErrNotFound
	}

	s, page := edit(s)
	copied := page.Sections[index].Clone()
	copied.ID = c.NewID

	sections := make([]models.Section, 0, len(page.Sections)+1)
	sections = append(sections, page.Sections[:index+1]...)
	sections = append(sections, copied)
	sections = append(sections, page.Sections[index+1:]...)
	renumber(sections)
	page.Sections = sections
	return s, nil
}

func (c ToggleSectionVisibility) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}

	index := s.Page.IndexOf(c.SectionID)
	if index < 0 {
		return s, models.ErrNotFound
	}

	s, page := edit(s)
	page.Sections[index].IsVisible = !page.Sections[index].IsVisible
	return s, nil
}

func (c SelectSection) apply(s State) (State, error) {
	if s.SelectedSectionID == c.SectionID {
		return s, errUnchanged
	}
	s.SelectedSectionID = c.SectionID
	return s, nil
}

func (c UpdateMetadata) apply(s State) (State, error) {
	if s.Page == nil {
		return s, models.ErrNoPage
	}
	if c.Update.IsEmpty() {
		return s, errEmptyUpdate
	}

	s, page := edit(s)
	page.Metadata = c.Update.Apply(page.Metadata)
	return s, nil
}

func (c SetPreviewMode) apply(s State) (State, error) {
	if s.PreviewMode == c.Enabled {
		return s, errUnchanged
	}
	s.PreviewMode = c.Enabled
	return s, nil
}

func (Reset) apply(s State) (State, error) {
	return InitialState(), nil
}
