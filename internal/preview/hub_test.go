package preview

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-builder-backend/internal/builder"
	"site-builder-backend/internal/models"
)

func testPage() *models.PageConfig {
	return &models.PageConfig{
		ID:   "page-1",
		Name: "Launch",
		Sections: []models.Section{
			{ID: "hero-1", Type: models.SectionTypeHero, Order: 0, IsVisible: true, Data: &models.HeroData{Title: "Hi"}},
			{ID: "about-1", Type: models.SectionTypeAbout, Order: 1, IsVisible: false, Data: &models.AboutData{Title: "About"}},
		},
	}
}

func startPreview(t *testing.T, hub *Hub, store *builder.Store) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, store)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestNewFrameProjectsPreview(t *testing.T) {
	state := builder.Reduce(builder.InitialState(), builder.SetPage{Page: testPage()})

	frame := NewFrame("s1", state)
	assert.Equal(t, builder.ModeLoaded, frame.Mode)
	assert.Len(t, frame.Page.Sections, 2)

	state = builder.Reduce(state, builder.SetPreviewMode{Enabled: true})
	frame = NewFrame("s1", state)
	assert.Equal(t, builder.ModePreviewing, frame.Mode)
	require.Len(t, frame.Page.Sections, 1)
	assert.Equal(t, "hero-1", frame.Page.Sections[0].ID)
}

func TestNewFrameEmptyBuilder(t *testing.T) {
	frame := NewFrame("s1", builder.InitialState())
	assert.Equal(t, builder.ModeEmpty, frame.Mode)
	assert.Nil(t, frame.Page)
}

func TestHubStreamsStateChanges(t *testing.T) {
	store := builder.NewStore("session-1")
	store.SetPage(testPage())

	hub := NewHub()
	conn := startPreview(t, hub, store)

	initial := readFrame(t, conn)
	assert.Equal(t, "session-1", initial.SessionID)
	assert.False(t, initial.IsDirty)
	require.NotNil(t, initial.Page)
	assert.Len(t, initial.Page.Sections, 2)

	store.SetPreviewMode(true)
	frame := readFrame(t, conn)
	assert.True(t, frame.PreviewMode)
	require.Len(t, frame.Page.Sections, 1)

	store.ToggleSectionVisibility("about-1")
	frame = readFrame(t, conn)
	assert.True(t, frame.IsDirty)
	assert.Len(t, frame.Page.Sections, 2)

	assert.Equal(t, 1, hub.Connections())
}

func TestHubUnsubscribesOnDisconnect(t *testing.T) {
	store := builder.NewStore("session-2")
	store.SetPage(testPage())

	hub := NewHub()
	conn := startPreview(t, hub, store)
	readFrame(t, conn)

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)

	// Dispatching after the viewer left must not block.
	done := make(chan struct{})
	go func() {
		store.ToggleSectionVisibility("hero-1")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked after preview client left")
	}
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	store := builder.NewStore("session-3")
	hub := NewHub(WithAllowedOrigins([]string{"https://builder.example"}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, store)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
