package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"site-builder-backend/internal/background"
	"site-builder-backend/internal/builder"
	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/repository"
	"site-builder-backend/internal/sections"
	"site-builder-backend/internal/templates"
	"site-builder-backend/pkg/cache"
	"site-builder-backend/pkg/logger"
)

var (
	ErrTooManySessions = errors.New("too many open builder sessions")
	ErrJobPending      = errors.New("a job for this page is already pending")
)

// BuilderConfig tunes the builder service.
type BuilderConfig struct {
	ExportLang  string
	MaxSessions int
	JobTimeout  time.Duration
	JobRetries  int
}

// Session is one open builder: a store plus the bookkeeping of the host.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *builder.Store
}

// BuilderService hosts builder sessions and connects them to the catalog,
// persistence and publishing.
type BuilderService struct {
	registry  *sections.Registry
	catalog   *templates.Catalog
	repo      repository.PageRepository
	backups   BackupStore
	publisher PagePublisher
	jobs      background.Runner
	config    BuilderConfig

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time
}

func NewBuilderService(
	registry *sections.Registry,
	catalog *templates.Catalog,
	repo repository.PageRepository,
	backups BackupStore,
	publisher PagePublisher,
	jobs background.Runner,
	config BuilderConfig,
) *BuilderService {
	if config.ExportLang == "" {
		config.ExportLang = codec.DefaultLang
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = 30 * time.Second
	}

	return &BuilderService{
		registry:  registry,
		catalog:   catalog,
		repo:      repo,
		backups:   backups,
		publisher: publisher,
		jobs:      jobs,
		config:    config,
		sessions:  make(map[string]*Session),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Sections lists the section types offered by the builder.
func (s *BuilderService) Sections() []models.SectionDefinition {
	return s.registry.All()
}

// Section returns one section definition.
func (s *BuilderService) Section(sectionType string) (models.SectionDefinition, error) {
	def, ok := s.registry.Get(sectionType)
	if !ok {
		return models.SectionDefinition{}, fmt.Errorf("%w: %s", models.ErrUnknownSectionType, sectionType)
	}
	return def, nil
}

// Templates lists catalog templates of a category; "" or "all" lists every one.
func (s *BuilderService) Templates(category string) []models.TemplateSummary {
	return s.catalog.Summaries(category)
}

// Template returns a full catalog template.
func (s *BuilderService) Template(id string) (*models.Template, error) {
	return s.catalog.Get(id)
}

// CreateSession opens a builder on a page instantiated from a template.
func (s *BuilderService) CreateSession(req models.CreateSessionRequest) (*Session, builder.State, error) {
	tmpl, err := s.catalog.Get(req.TemplateID)
	if err != nil {
		return nil, builder.State{}, err
	}

	page, err := templates.Instantiate(tmpl, models.PageData{
		PageID:      req.PageID,
		Metadata:    req.Metadata,
		SectionData: req.SectionData,
	})
	if err != nil {
		return nil, builder.State{}, err
	}

	return s.open(page)
}

// ImportSession opens a builder on a serialised page configuration.
func (s *BuilderService) ImportSession(data []byte) (*Session, builder.State, error) {
	page, err := codec.ParsePageConfig(data)
	if err != nil {
		return nil, builder.State{}, err
	}
	return s.open(page)
}

// RestoreSession reopens a saved page. The backup store is tried first and
// the repository second.
func (s *BuilderService) RestoreSession(ctx context.Context, pageID string) (*Session, builder.State, error) {
	page, err := s.loadPage(ctx, pageID)
	if err != nil {
		return nil, builder.State{}, err
	}
	return s.open(page)
}

func (s *BuilderService) loadPage(ctx context.Context, pageID string) (*models.PageConfig, error) {
	if s.backups != nil {
		text, err := s.backups.Get(ctx, pageID)
		switch {
		case err == nil:
			page, parseErr := codec.ParsePageConfig([]byte(text))
			if parseErr == nil {
				return page, nil
			}
			logger.Warn("Discarding unreadable page backup", map[string]interface{}{
				"page_id": pageID,
				"error":   parseErr.Error(),
			})
		case errors.Is(err, cache.ErrCacheMiss), errors.Is(err, cache.ErrDisabled):
		default:
			logger.Error(err, "Failed to read page backup", map[string]interface{}{"page_id": pageID})
		}
	}

	record, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	page, err := codec.ParsePageConfig([]byte(record.Document))
	if err != nil {
		return nil, fmt.Errorf("stored page %s is corrupt: %w", pageID, err)
	}
	return page, nil
}

func (s *BuilderService) open(page *models.PageConfig) (*Session, builder.State, error) {
	sanitizePage(page)

	s.mu.Lock()
	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		return nil, builder.State{}, ErrTooManySessions
	}
	id := uuid.NewString()
	session := &Session{
		ID:        id,
		CreatedAt: s.now(),
		Store:     builder.NewStore(id),
	}
	s.sessions[id] = session
	s.mu.Unlock()

	state := session.Store.SetPage(page)

	logger.Info("Builder session opened", map[string]interface{}{
		"session_id": id,
		"page_id":    page.ID,
		"sections":   len(page.Sections),
	})
	return session, state, nil
}

// Session returns an open session.
func (s *BuilderService) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return session, nil
}

// SessionCount returns the number of open sessions.
func (s *BuilderService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseSession discards a session. Unsaved changes are lost.
func (s *BuilderService) CloseSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return models.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// State returns the current state of a session.
func (s *BuilderService) State(id string) (builder.State, error) {
	session, err := s.Session(id)
	if err != nil {
		return builder.State{}, err
	}
	return session.Store.State(), nil
}

func (s *BuilderService) dispatch(id string, cmd builder.Command) (builder.State, error) {
	session, err := s.Session(id)
	if err != nil {
		return builder.State{}, err
	}
	return session.Store.Dispatch(cmd), nil
}

// AddSection creates a section of the requested type from the registry and
// appends it. The created section is returned even when the builder ignored
// it, e.g. because no page is loaded.
func (s *BuilderService) AddSection(id string, req models.AddSectionRequest) (builder.State, models.Section, error) {
	session, err := s.Session(id)
	if err != nil {
		return builder.State{}, models.Section{}, err
	}

	return session.Store.AddSectionOfType(s.registry, req.Type, req.ID)
}

// UpdateSection replaces the data and/or visibility of a section. The data
// is decoded against the section's current type.
func (s *BuilderService) UpdateSection(id, sectionID string, req models.UpdateSectionRequest) (builder.State, error) {
	session, err := s.Session(id)
	if err != nil {
		return builder.State{}, err
	}

	update := builder.SectionUpdate{IsVisible: req.IsVisible}
	if len(req.Data) > 0 {
		current := session.Store.State()
		index := current.Page.IndexOf(sectionID)
		if index >= 0 {
			data, err := models.DecodeSectionData(current.Page.Sections[index].Type, req.Data)
			if err != nil {
				return current, models.NewValidationError(models.ErrInvalidPageData, "data", err.Error())
			}
			update.Data = sanitizeSectionData(data)
		}
	}

	return session.Store.UpdateSection(sectionID, update), nil
}

func (s *BuilderService) DeleteSection(id, sectionID string) (builder.State, error) {
	return s.dispatch(id, builder.DeleteSection{SectionID: sectionID})
}

// ReorderSections accepts either an index pair or a drag pair of ids.
func (s *BuilderService) ReorderSections(id string, req models.ReorderSectionsRequest) (builder.State, error) {
	if req.ActiveID != "" || req.OverID != "" {
		return s.dispatch(id, builder.MoveSection{ActiveID: req.ActiveID, OverID: req.OverID})
	}
	if req.SourceIndex == nil || req.DestinationIndex == nil {
		return builder.State{}, models.NewValidationError(models.ErrInvalidPageData, "sourceIndex", "index pair or id pair is required")
	}
	return s.dispatch(id, builder.ReorderSections{
		SourceIndex:      *req.SourceIndex,
		DestinationIndex: *req.DestinationIndex,
	})
}

func (s *BuilderService) DuplicateSection(id, sectionID string) (builder.State, error) {
	session, err := s.Session(id)
	if err != nil {
		return builder.State{}, err
	}
	return session.Store.DuplicateSection(sectionID), nil
}

func (s *BuilderService) ToggleSectionVisibility(id, sectionID string) (builder.State, error) {
	return s.dispatch(id, builder.ToggleSectionVisibility{SectionID: sectionID})
}

func (s *BuilderService) SelectSection(id, sectionID string) (builder.State, error) {
	return s.dispatch(id, builder.SelectSection{SectionID: sectionID})
}

func (s *BuilderService) UpdateMetadata(id string, update models.MetadataUpdate) (builder.State, error) {
	return s.dispatch(id, builder.UpdateMetadata{Update: sanitizeMetadataUpdate(update)})
}

func (s *BuilderService) SetPreviewMode(id string, enabled bool) (builder.State, error) {
	return s.dispatch(id, builder.SetPreviewMode{Enabled: enabled})
}

func (s *BuilderService) Reset(id string) (builder.State, error) {
	return s.dispatch(id, builder.Reset{})
}

// Export serialises the current page of a session.
func (s *BuilderService) Export(id string, format codec.Format) ([]byte, error) {
	state, err := s.State(id)
	if err != nil {
		return nil, err
	}
	if state.Page == nil {
		return nil, models.ErrNoPage
	}
	return codec.Export(state.Page, format, codec.WithLang(s.config.ExportLang))
}

// SavedPages lists persisted pages without their documents.
func (s *BuilderService) SavedPages(ctx context.Context) ([]models.PageRecord, error) {
	return s.repo.GetAll(ctx)
}

// DeleteSavedPage removes a persisted page and its backup.
func (s *BuilderService) DeleteSavedPage(ctx context.Context, pageID string) error {
	if err := s.repo.Delete(ctx, pageID); err != nil {
		return err
	}
	if s.backups != nil {
		if err := s.backups.Remove(ctx, pageID); err != nil {
			logger.Error(err, "Failed to remove page backup", map[string]interface{}{"page_id": pageID})
		}
	}
	return nil
}
