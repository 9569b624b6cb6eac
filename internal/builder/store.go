package builder

import (
	"reflect"
	"sync"

	"site-builder-backend/internal/models"
	"site-builder-backend/internal/sections"
	"site-builder-backend/pkg/logger"
)

// Listener receives every state a store transitions to.
type Listener func(State)

// Store is a single-writer container around Reduce. Dispatches are
// serialised and each one runs to completion, listeners included, before the
// next is accepted. Listeners must not dispatch.
type Store struct {
	id string

	dispatchMu sync.Mutex
	mu         sync.RWMutex
	state      State

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int
}

// NewStore creates an empty store. id only labels log lines.
func NewStore(id string) *Store {
	initMetrics()
	return &Store{
		id:        id,
		state:     InitialState(),
		listeners: make(map[int]Listener),
	}
}

// ID returns the store label.
func (s *Store) ID() string {
	return s.id
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies cmd and returns the resulting state. Ignored commands are
// logged at debug level and do not notify listeners.
func (s *Store) Dispatch(cmd Command) State {
	if cmd == nil {
		return s.State()
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	next, err := reduce(s.state, cmd)
	s.state = next
	s.mu.Unlock()

	recordCommand(cmd.Name(), err == nil)
	if err != nil {
		fields := map[string]interface{}{
			"store":   s.id,
			"command": cmd.Name(),
			"reason":  err.Error(),
		}
		if target, ok := cmd.(sectionTarget); ok {
			fields["section_id"] = target.targetID()
		}
		logger.Debug("Builder command ignored", fields)
		return next.Clone()
	}

	s.notify(next)
	return next.Clone()
}

// Subscribe registers a listener and returns a function removing it.
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}

	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.listenersMu.Unlock()
	storeSubscribers.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
			storeSubscribers.Dec()
		})
	}
}

func (s *Store) notify(state State) {
	s.listenersMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(state.Clone())
	}
}

// CommitIfUnchanged reloads snapshot through SetPage when the live page still
// equals it, which clears the dirty flag after a successful save. It reports
// whether the commit happened.
func (s *Store) CommitIfUnchanged(snapshot *models.PageConfig) bool {
	if snapshot == nil {
		return false
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if !reflect.DeepEqual(s.state.Page, snapshot) {
		s.mu.Unlock()
		recordCommand(SetPage{}.Name(), false)
		return false
	}
	next, err := reduce(s.state, SetPage{Page: snapshot})
	s.state = next
	s.mu.Unlock()

	recordCommand(SetPage{}.Name(), err == nil)
	if err != nil {
		return false
	}
	s.notify(next)
	return true
}

func (s *Store) SetPage(page *models.PageConfig) State {
	return s.Dispatch(SetPage{Page: page})
}

func (s *Store) AddSection(section models.Section) State {
	return s.Dispatch(AddSection{Section: section})
}

// AddSectionOfType creates a section from the registry and appends it. An
// empty id is generated.
func (s *Store) AddSectionOfType(reg *sections.Registry, sectionType, id string) (State, models.Section, error) {
	section, err := reg.CreateSection(sectionType, id)
	if err != nil {
		return s.State(), models.Section{}, err
	}
	return s.AddSection(section), section, nil
}

func (s *Store) UpdateSection(sectionID string, update SectionUpdate) State {
	return s.Dispatch(UpdateSection{SectionID: sectionID, Update: update})
}

func (s *Store) DeleteSection(sectionID string) State {
	return s.Dispatch(DeleteSection{SectionID: sectionID})
}

func (s *Store) ReorderSections(sourceIndex, destinationIndex int) State {
	return s.Dispatch(ReorderSections{SourceIndex: sourceIndex, DestinationIndex: destinationIndex})
}

func (s *Store) MoveSection(activeID, overID string) State {
	return s.Dispatch(MoveSection{ActiveID: activeID, OverID: overID})
}

// DuplicateSection copies a section under a freshly generated id.
func (s *Store) DuplicateSection(sectionID string) State {
	current := s.State()
	index := current.Page.IndexOf(sectionID)
	if index < 0 {
		return s.Dispatch(DuplicateSection{SectionID: sectionID})
	}
	newID := sections.NewSectionID(current.Page.Sections[index].Type)
	return s.Dispatch(DuplicateSection{SectionID: sectionID, NewID: newID})
}

func (s *Store) ToggleSectionVisibility(sectionID string) State {
	return s.Dispatch(ToggleSectionVisibility{SectionID: sectionID})
}

func (s *Store) SelectSection(sectionID string) State {
	return s.Dispatch(SelectSection{SectionID: sectionID})
}

func (s *Store) UpdateMetadata(update models.MetadataUpdate) State {
	return s.Dispatch(UpdateMetadata{Update: update})
}

func (s *Store) SetPreviewMode(enabled bool) State {
	return s.Dispatch(SetPreviewMode{Enabled: enabled})
}

func (s *Store) Reset() State {
	return s.Dispatch(Reset{})
}
