package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"site-builder-backend/internal/background"
	"site-builder-backend/internal/codec"
	"site-builder-backend/internal/events"
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/repository"
	"site-builder-backend/internal/sections"
	"site-builder-backend/internal/service/mocks"
	"site-builder-backend/internal/templates"
	"site-builder-backend/pkg/cache"
)

// syncRunner runs jobs inline.
type syncRunner struct{}

func (syncRunner) Schedule(job background.Job) error {
	err := job.Run(context.Background())
	if job.OnFinish != nil {
		job.OnFinish(err)
	}
	return nil
}

func (r syncRunner) ScheduleUnique(job background.Job) error {
	return r.Schedule(job)
}

// deferredRunner holds jobs until run is called.
type deferredRunner struct {
	mu     sync.Mutex
	queued []background.Job
	active map[string]bool
}

func (r *deferredRunner) Schedule(job background.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, job)
	return nil
}

func (r *deferredRunner) ScheduleUnique(job background.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[string]bool)
	}
	if r.active[job.Name] {
		return background.ErrJobAlreadyScheduled
	}
	r.active[job.Name] = true
	r.queued = append(r.queued, job)
	return nil
}

func (r *deferredRunner) run() {
	r.mu.Lock()
	jobs := r.queued
	r.queued = nil
	r.active = nil
	r.mu.Unlock()

	for _, job := range jobs {
		err := job.Run(context.Background())
		if job.OnFinish != nil {
			job.OnFinish(err)
		}
	}
}

type fixture struct {
	service   *BuilderService
	repo      *repository.MemoryPageRepository
	backups   *mocks.MockBackupStore
	publisher *mocks.MockPagePublisher
}

func newFixture(t *testing.T, runner background.Runner, cfg BuilderConfig) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := fixture{
		repo:      repository.NewMemoryPageRepository(),
		backups:   mocks.NewMockBackupStore(ctrl),
		publisher: mocks.NewMockPagePublisher(ctrl),
	}
	if runner == nil {
		runner = syncRunner{}
	}
	f.service = NewBuilderService(sections.Default(), templates.Default(), f.repo, f.backups, f.publisher, runner, cfg)
	return f
}

func createBasic(t *testing.T, svc *BuilderService) *Session {
	t.Helper()
	session, state, err := svc.CreateSession(models.CreateSessionRequest{TemplateID: "basic-event", PageID: "page-summer"})
	require.NoError(t, err)
	require.NotNil(t, state.Page)
	return session
}

func TestCreateSessionFromTemplate(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	title := "Summer Fest"
	session, state, err := f.service.CreateSession(models.CreateSessionRequest{
		TemplateID: "basic-event",
		Metadata:   models.PageMetadata{Title: title},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.True(t, strings.HasPrefix(state.Page.ID, "page-"))
	assert.Equal(t, title, state.Page.Metadata.Title)
	assert.False(t, state.IsDirty)
	require.Len(t, state.Page.Sections, 4)
	for i, section := range state.Page.Sections {
		assert.Equal(t, i, section.Order)
	}
	assert.Equal(t, 1, f.service.SessionCount())
}

func TestCreateSessionUnknownTemplate(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	_, _, err := f.service.CreateSession(models.CreateSessionRequest{TemplateID: "nope"})
	assert.ErrorIs(t, err, models.ErrTemplateNotFound)
}

func TestCreateSessionHonoursSessionLimit(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{MaxSessions: 1})
	createBasic(t, f.service)

	_, _, err := f.service.CreateSession(models.CreateSessionRequest{TemplateID: "blank"})
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestImportSessionRejectsInvalidConfig(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	_, _, err := f.service.ImportSession([]byte(`{"id":"p","name":"n","metadata":{},"sections":{}}`))
	assert.ErrorIs(t, err, models.ErrInvalidPageConfig)
	assert.Equal(t, 0, f.service.SessionCount())
}

func TestImportSessionSanitisesContent(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	doc := `{"id":"p1","name":"Imported","metadata":{"title":"<i>Hi</i>"},"sections":[
		{"id":"about-1","type":"about","order":0,"data":{"title":"About","content":"<p>ok</p><script>x()</script>"}}
	]}`
	_, state, err := f.service.ImportSession([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Hi", state.Page.Metadata.Title)
	about := state.Page.Sections[0].Data.(*models.AboutData)
	assert.Equal(t, "<p>ok</p>", about.Content)
	assert.True(t, state.Page.Sections[0].IsVisible)
}

func TestAddSectionByType(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	state, section, err := f.service.AddSection(session.ID, models.AddSectionRequest{Type: "gallery"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(section.ID, "gallery-"))
	require.Len(t, state.Page.Sections, 5)
	assert.Equal(t, section.ID, state.Page.Sections[4].ID)
	assert.Equal(t, 4, state.Page.Sections[4].Order)
	assert.True(t, state.IsDirty)

	_, _, err = f.service.AddSection(session.ID, models.AddSectionRequest{Type: "video"})
	assert.ErrorIs(t, err, models.ErrUnknownSectionType)
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	_, err := f.service.State("missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = f.service.DeleteSection("missing", "hero-1")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.ErrorIs(t, f.service.CloseSession("missing"), models.ErrSessionNotFound)
}

func TestUpdateSectionDecodesAndSanitises(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	state, err := f.service.UpdateSection(session.ID, "hero-1", models.UpdateSectionRequest{
		Data: json.RawMessage(`{"title":"<b>Launch</b>","ctaText":"Buy","ctaLink":"javascript:alert(1)","layout":"left"}`),
	})
	require.NoError(t, err)

	hero := state.Page.Sections[state.Page.IndexOf("hero-1")].Data.(*models.HeroData)
	assert.Equal(t, "Launch", hero.Title)
	assert.Empty(t, hero.CTALink)
	assert.Equal(t, "left", hero.Layout)
	assert.True(t, state.IsDirty)
}

func TestUpdateSectionNormalisesLayoutOptions(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	state, err := f.service.UpdateSection(session.ID, "pricing-1", models.UpdateSectionRequest{
		Data: json.RawMessage(`{"title":"Tickets","tickets":[],"columns":9}`),
	})
	require.NoError(t, err)
	pricing := state.Page.Sections[state.Page.IndexOf("pricing-1")].Data.(*models.PricingData)
	assert.Equal(t, sections.DefaultColumns, pricing.Columns)

	state, err = f.service.UpdateSection(session.ID, "about-1", models.UpdateSectionRequest{
		Data: json.RawMessage(`{"title":"About","content":"<p>Hi</p>","imagePosition":"top"}`),
	})
	require.NoError(t, err)
	about := state.Page.Sections[state.Page.IndexOf("about-1")].Data.(*models.AboutData)
	assert.Equal(t, "left", about.ImagePosition)
	assert.Equal(t, "<p>Hi</p>", about.Content)
}

func TestUpdateSectionRejectsUndecodableData(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	_, err := f.service.UpdateSection(session.ID, "hero-1", models.UpdateSectionRequest{
		Data: json.RawMessage(`{"title":42}`),
	})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, models.ErrInvalidPageData)

	state, err := f.service.State(session.ID)
	require.NoError(t, err)
	assert.False(t, state.IsDirty)
}

func TestUpdateSectionVisibilityOnly(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	hidden := false
	state, err := f.service.UpdateSection(session.ID, "about-1", models.UpdateSectionRequest{IsVisible: &hidden})
	require.NoError(t, err)
	assert.False(t, state.Page.Sections[state.Page.IndexOf("about-1")].IsVisible)
}

func TestReorderSectionsRequestForms(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	from, to := 0, 2
	state, err := f.service.ReorderSections(session.ID, models.ReorderSectionsRequest{SourceIndex: &from, DestinationIndex: &to})
	require.NoError(t, err)
	assert.Equal(t, "hero-1", state.Page.Sections[2].ID)

	state, err = f.service.ReorderSections(session.ID, models.ReorderSectionsRequest{ActiveID: "hero-1", OverID: "about-1"})
	require.NoError(t, err)
	assert.Equal(t, "hero-1", state.Page.Sections[0].ID)

	_, err = f.service.ReorderSections(session.ID, models.ReorderSectionsRequest{SourceIndex: &from})
	assert.ErrorIs(t, err, models.ErrInvalidPageData)
}

func TestSaveWritesRepositoryAndBackupThenClearsDirty(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)
	_, err := f.service.ToggleSectionVisibility(session.ID, "about-1")
	require.NoError(t, err)

	var backedUp string
	f.backups.EXPECT().Set(gomock.Any(), "page-summer", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, text string) error {
			backedUp = text
			return nil
		})

	handle, err := f.service.Save(session.ID)
	require.NoError(t, err)
	require.NoError(t, handle.Wait(context.Background()))

	record, err := f.repo.GetByID(context.Background(), "page-summer")
	require.NoError(t, err)
	assert.JSONEq(t, record.Document, backedUp)

	saved, err := codec.ParsePageConfig([]byte(record.Document))
	require.NoError(t, err)
	assert.False(t, saved.Sections[saved.IndexOf("about-1")].IsVisible)

	state, err := f.service.State(session.ID)
	require.NoError(t, err)
	assert.False(t, state.IsDirty)
}

func TestSaveKeepsDirtyWhenEditedMeanwhile(t *testing.T) {
	runner := &deferredRunner{}
	f := newFixture(t, runner, BuilderConfig{})
	session := createBasic(t, f.service)
	_, err := f.service.ToggleSectionVisibility(session.ID, "about-1")
	require.NoError(t, err)

	f.backups.EXPECT().Set(gomock.Any(), "page-summer", gomock.Any()).Return(nil)

	handle, err := f.service.Save(session.ID)
	require.NoError(t, err)

	_, err = f.service.DeleteSection(session.ID, "contact-1")
	require.NoError(t, err)

	runner.run()
	require.NoError(t, handle.Wait(context.Background()))

	state, err := f.service.State(session.ID)
	require.NoError(t, err)
	assert.True(t, state.IsDirty)
}

func TestSaveRejectsPendingDuplicate(t *testing.T) {
	runner := &deferredRunner{}
	f := newFixture(t, runner, BuilderConfig{})
	session := createBasic(t, f.service)

	_, err := f.service.Save(session.ID)
	require.NoError(t, err)

	_, err = f.service.Save(session.ID)
	assert.ErrorIs(t, err, ErrJobPending)
}

func TestSaveFailureKeepsDirty(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)
	_, err := f.service.SelectSection(session.ID, "hero-1")
	require.NoError(t, err)
	_, err = f.service.ToggleSectionVisibility(session.ID, "hero-1")
	require.NoError(t, err)

	f.backups.EXPECT().Set(gomock.Any(), "page-summer", gomock.Any()).Return(errors.New("redis down"))

	handle, err := f.service.Save(session.ID)
	require.NoError(t, err)
	assert.Error(t, handle.Wait(context.Background()))

	state, err := f.service.State(session.ID)
	require.NoError(t, err)
	assert.True(t, state.IsDirty)
	assert.Equal(t, "hero-1", state.SelectedSectionID)
}

func TestSaveAndExportRequireAPage(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)
	_, err := f.service.Reset(session.ID)
	require.NoError(t, err)

	_, err = f.service.Save(session.ID)
	assert.ErrorIs(t, err, models.ErrNoPage)
	_, err = f.service.Publish(session.ID)
	assert.ErrorIs(t, err, models.ErrNoPage)
	_, err = f.service.Export(session.ID, codec.FormatHTML)
	assert.ErrorIs(t, err, models.ErrNoPage)
}

func TestPublishMarksRecordAndAnnounces(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	f.backups.EXPECT().Set(gomock.Any(), "page-summer", gomock.Any()).Return(nil)

	var announced events.PageEvent
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event events.PageEvent) error {
			announced = event
			return nil
		})

	handle, err := f.service.Publish(session.ID)
	require.NoError(t, err)
	require.NoError(t, handle.Wait(context.Background()))

	assert.Equal(t, events.TypePagePublished, announced.Type)
	assert.Equal(t, "page-summer", announced.PageID)

	announcedPage, err := codec.ParsePageConfig(announced.Config)
	require.NoError(t, err)
	assert.Len(t, announcedPage.Sections, 4)

	record, err := f.repo.GetByID(context.Background(), "page-summer")
	require.NoError(t, err)
	assert.True(t, record.Published)
	require.NotNil(t, record.PublishedAt)
	assert.True(t, record.PublishedAt.Equal(announced.PublishedAt))
}

func TestPublishFailureIsReported(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)
	_, err := f.service.DeleteSection(session.ID, "about-1")
	require.NoError(t, err)

	f.backups.EXPECT().Set(gomock.Any(), "page-summer", gomock.Any()).Return(nil)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("nats unavailable"))

	handle, err := f.service.Publish(session.ID)
	require.NoError(t, err)
	assert.Error(t, handle.Wait(context.Background()))

	state, err := f.service.State(session.ID)
	require.NoError(t, err)
	assert.True(t, state.IsDirty)
}

func TestRestorePrefersBackup(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	backup := `{"id":"page-summer","name":"From backup","metadata":{"title":"B"},"sections":[]}`
	f.backups.EXPECT().Get(gomock.Any(), "page-summer").Return(backup, nil)

	_, state, err := f.service.RestoreSession(context.Background(), "page-summer")
	require.NoError(t, err)
	assert.Equal(t, "From backup", state.Page.Name)
	assert.Empty(t, state.Page.Sections)
}

func TestRestoreFallsBackToRepository(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	require.NoError(t, f.repo.Save(context.Background(), &models.PageRecord{
		ID:       "page-summer",
		Name:     "Stored",
		Document: `{"id":"page-summer","name":"Stored","metadata":{"title":"S"},"sections":[]}`,
	}))
	f.backups.EXPECT().Get(gomock.Any(), "page-summer").Return("", cache.ErrCacheMiss)

	_, state, err := f.service.RestoreSession(context.Background(), "page-summer")
	require.NoError(t, err)
	assert.Equal(t, "Stored", state.Page.Name)
}

func TestRestoreSkipsCorruptBackup(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})

	require.NoError(t, f.repo.Save(context.Background(), &models.PageRecord{
		ID:       "page-summer",
		Name:     "Stored",
		Document: `{"id":"page-summer","name":"Stored","metadata":{},"sections":[]}`,
	}))
	f.backups.EXPECT().Get(gomock.Any(), "page-summer").Return("{broken", nil)

	_, state, err := f.service.RestoreSession(context.Background(), "page-summer")
	require.NoError(t, err)
	assert.Equal(t, "Stored", state.Page.Name)
}

func TestRestoreMissingPage(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	f.backups.EXPECT().Get(gomock.Any(), "page-ghost").Return("", cache.ErrDisabled)

	_, _, err := f.service.RestoreSession(context.Background(), "page-ghost")
	assert.ErrorIs(t, err, models.ErrPageNotFound)
}

func TestExportUsesConfiguredLanguage(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{ExportLang: "en"})
	session := createBasic(t, f.service)

	out, err := f.service.Export(session.ID, codec.FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<html lang="en">`)

	out, err = f.service.Export(session.ID, codec.FormatData)
	require.NoError(t, err)
	data, err := codec.ParsePageData(out)
	require.NoError(t, err)
	assert.Equal(t, "page-summer", data.PageID)
	assert.Len(t, data.SectionData, 4)
}

func TestDeleteSavedPageRemovesBackup(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	require.NoError(t, f.repo.Save(context.Background(), &models.PageRecord{ID: "page-summer", Name: "x", Document: "{}"}))
	f.backups.EXPECT().Remove(gomock.Any(), "page-summer").Return(nil)

	require.NoError(t, f.service.DeleteSavedPage(context.Background(), "page-summer"))

	pages, err := f.service.SavedPages(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, nil, BuilderConfig{})
	session := createBasic(t, f.service)

	require.NoError(t, f.service.CloseSession(session.ID))
	_, err := f.service.Session(session.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}
