package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-builder-backend/internal/background"
	"site-builder-backend/internal/events"
	"site-builder-backend/internal/preview"
	"site-builder-backend/internal/repository"
	"site-builder-backend/internal/sections"
	"site-builder-backend/internal/service"
	"site-builder-backend/internal/templates"
)

type inlineRunner struct{}

func (inlineRunner) Schedule(job background.Job) error {
	err := job.Run(context.Background())
	if job.OnFinish != nil {
		job.OnFinish(err)
	}
	return nil
}

func (r inlineRunner) ScheduleUnique(job background.Job) error {
	return r.Schedule(job)
}

type stateBody struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
	State     struct {
		IsDirty           bool   `json:"isDirty"`
		PreviewMode       bool   `json:"previewMode"`
		SelectedSectionID string `json:"selectedSectionId"`
		Page              *struct {
			ID       string `json:"id"`
			Metadata struct {
				Title string `json:"title"`
			} `json:"metadata"`
			Sections []struct {
				ID        string `json:"id"`
				Type      string `json:"type"`
				Order     int    `json:"order"`
				IsVisible bool   `json:"isVisible"`
			} `json:"sections"`
		} `json:"page"`
	} `json:"state"`
}

type testAPI struct {
	router *gin.Engine
	repo   *repository.MemoryPageRepository
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryPageRepository()
	svc := service.NewBuilderService(
		sections.Default(),
		templates.Default(),
		repo,
		nil,
		events.NoopPublisher{},
		inlineRunner{},
		service.BuilderConfig{ExportLang: "es"},
	)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), Handlers{
		Builder: NewBuilderHandler(svc, preview.NewHub()),
		Catalog: NewCatalogHandler(svc),
		Pages:   NewPageHandler(svc),
	}, nil)

	return testAPI{router: router, repo: repo}
}

func (a testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateBody {
	t.Helper()
	var body stateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (a testAPI) createSession(t *testing.T) stateBody {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/builder/sessions", `{"templateId":"basic-event","pageId":"page-demo"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeState(t, rec)
}

func TestCreateSessionEndpoint(t *testing.T) {
	api := newTestAPI(t)

	body := api.createSession(t)
	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, "loaded", body.Mode)
	require.NotNil(t, body.State.Page)
	assert.Equal(t, "page-demo", body.State.Page.ID)
	assert.Len(t, body.State.Page.Sections, 4)
}

func TestCreateSessionValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/builder/sessions", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/builder/sessions", `{"templateId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionNotFound(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/builder/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionLifecycleEndpoints(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID
	base := "/api/v1/builder/sessions/" + id

	rec := api.do(t, http.MethodPost, base+"/sections", `{"type":"schedule"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeState(t, rec)
	require.Len(t, body.State.Page.Sections, 5)
	assert.True(t, body.State.IsDirty)
	added := body.State.Page.Sections[4].ID
	assert.True(t, strings.HasPrefix(added, "schedule-"))

	rec = api.do(t, http.MethodPost, base+"/sections/reorder", `{"sourceIndex":4,"destinationIndex":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, added, decodeState(t, rec).State.Page.Sections[0].ID)

	rec = api.do(t, http.MethodPost, base+"/sections/"+added+"/toggle-visibility", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeState(t, rec).State.Page.Sections[0].IsVisible)

	rec = api.do(t, http.MethodPost, base+"/sections/hero-1/duplicate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeState(t, rec).State.Page.Sections, 6)

	rec = api.do(t, http.MethodDelete, base+"/sections/"+added, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeState(t, rec)
	require.Len(t, body.State.Page.Sections, 5)
	for i, section := range body.State.Page.Sections {
		assert.Equal(t, i, section.Order)
	}
}

func TestAddUnknownSectionType(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID

	rec := api.do(t, http.MethodPost, "/api/v1/builder/sessions/"+id+"/sections", `{"type":"video"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateSectionEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID

	rec := api.do(t, http.MethodPatch, "/api/v1/builder/sessions/"+id+"/sections/hero-1", `{"data":{"title":"Summer"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Summer"`)

	rec = api.do(t, http.MethodPatch, "/api/v1/builder/sessions/"+id+"/sections/hero-1", `{"data":{"title":7}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"data"`)
}

func TestMetadataSelectionAndPreviewEndpoints(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID
	base := "/api/v1/builder/sessions/" + id

	rec := api.do(t, http.MethodPatch, base+"/metadata", `{"title":"Launch","primaryColor":"#112233"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Launch", decodeState(t, rec).State.Page.Metadata.Title)

	rec = api.do(t, http.MethodPatch, base+"/metadata", `{"primaryColor":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, base+"/selection", `{"sectionId":"about-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "about-1", decodeState(t, rec).State.SelectedSectionID)

	rec = api.do(t, http.MethodPut, base+"/preview", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, base+"/preview", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeState(t, rec)
	assert.True(t, body.State.PreviewMode)
	assert.Equal(t, "previewing", body.Mode)
}

func TestSaveWaitsAndClearsDirty(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID
	base := "/api/v1/builder/sessions/" + id

	api.do(t, http.MethodPost, base+"/sections/about-1/toggle-visibility", "")

	rec := api.do(t, http.MethodPost, base+"/save?wait=true", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decodeState(t, rec).State.IsDirty)

	record, err := api.repo.GetByID(context.Background(), "page-demo")
	require.NoError(t, err)
	assert.Contains(t, record.Document, `"about-1"`)

	rec = api.do(t, http.MethodGet, "/api/v1/pages", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
}

func TestPublishIsAccepted(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID

	rec := api.do(t, http.MethodPost, "/api/v1/builder/sessions/"+id+"/publish", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"job":"publish:page-demo"`)

	record, err := api.repo.GetByID(context.Background(), "page-demo")
	require.NoError(t, err)
	assert.True(t, record.Published)
}

func TestResetThenSaveConflicts(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID
	base := "/api/v1/builder/sessions/" + id

	rec := api.do(t, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", decodeState(t, rec).Mode)

	rec = api.do(t, http.MethodPost, base+"/save", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID
	base := "/api/v1/builder/sessions/" + id

	rec := api.do(t, http.MethodGet, base+"/export?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="page-demo.html"`)
	assert.Contains(t, rec.Body.String(), `<html lang="es">`)

	rec = api.do(t, http.MethodGet, base+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="page-demo.json"`)
	assert.Contains(t, rec.Body.String(), `"sections": [`)

	rec = api.do(t, http.MethodGet, base+"/export?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportAndRestoreEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/builder/sessions/import", `{"id":"page-x","name":"X","metadata":{},"sections":[]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeState(t, rec).SessionID

	rec = api.do(t, http.MethodPost, "/api/v1/builder/sessions/import", `{"id":"page-x","metadata":{},"sections":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"name"`)

	rec = api.do(t, http.MethodPost, "/api/v1/builder/sessions/restore/page-x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/builder/sessions/"+id+"/save?wait=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/builder/sessions/restore/page-x", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "page-x", decodeState(t, rec).State.Page.ID)

	rec = api.do(t, http.MethodDelete, "/api/v1/pages/page-x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCloseSessionEndpoint(t *testing.T) {
	api := newTestAPI(t)
	id := api.createSession(t).SessionID

	rec := api.do(t, http.MethodDelete, "/api/v1/builder/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, "/api/v1/builder/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"hero"`)

	rec = api.do(t, http.MethodGet, "/api/v1/sections/gallery", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/sections/video", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"basic-event"`)

	rec = api.do(t, http.MethodGet, "/api/v1/templates/conference", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/templates/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
