package builder

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-builder-backend/internal/models"
	"site-builder-backend/internal/sections"
)

func newLoadedStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	store := NewStore("test")
	store.SetPage(loaded(ids...).Page)
	return store
}

func TestStore_NotifiesListenersOnAppliedCommands(t *testing.T) {
	store := newLoadedStore(t, "a", "b")

	var received []State
	unsubscribe := store.Subscribe(func(s State) {
		received = append(received, s)
	})

	store.DeleteSection("a")
	store.DeleteSection("missing")
	store.SelectSection("b")

	require.Len(t, received, 2, "ignored commands must not notify")
	assert.Equal(t, []string{"b"}, ids(received[0]))
	assert.Equal(t, "b", received[1].SelectedSectionID)

	unsubscribe()
	unsubscribe()
	store.SetPreviewMode(true)
	assert.Len(t, received, 2)
}

func TestStore_StateIsACopy(t *testing.T) {
	store := newLoadedStore(t, "a")

	snapshot := store.State()
	snapshot.Page.Sections[0].ID = "changed"

	assert.Equal(t, "a", store.State().Page.Sections[0].ID)
}

func TestStore_AddSectionOfType(t *testing.T) {
	store := newLoadedStore(t, "about-1")

	state, created, err := store.AddSectionOfType(sections.Default(), "hero", "")
	require.NoError(t, err)
	require.Len(t, state.Page.Sections, 2)
	assert.Equal(t, created.ID, state.Page.Sections[1].ID)
	assert.Equal(t, 1, state.Page.Sections[1].Order)
	assert.True(t, state.IsDirty)

	_, _, err = store.AddSectionOfType(sections.Default(), "countdown", "")
	assert.ErrorIs(t, err, models.ErrUnknownSectionType)
	assert.Len(t, store.State().Page.Sections, 2)
}

func TestStore_DuplicateSectionGeneratesID(t *testing.T) {
	store := newLoadedStore(t, "a", "b")

	state := store.DuplicateSection("a")
	require.Len(t, state.Page.Sections, 3)
	assert.True(t, strings.HasPrefix(state.Page.Sections[1].ID, "about-"))
	assertDense(t, state)

	assert.Len(t, store.DuplicateSection("missing").Page.Sections, 3)
}

func TestStore_CommitIfUnchanged(t *testing.T) {
	store := newLoadedStore(t, "a", "b")
	store.ToggleSectionVisibility("a")
	require.True(t, store.State().IsDirty)

	snapshot := store.State().Page
	assert.True(t, store.CommitIfUnchanged(snapshot))
	assert.False(t, store.State().IsDirty)

	store.ToggleSectionVisibility("b")
	stale := store.State().Page
	store.DeleteSection("a")
	assert.False(t, store.CommitIfUnchanged(stale))
	assert.True(t, store.State().IsDirty)

	assert.False(t, store.CommitIfUnchanged(nil))
}

func TestStore_ConcurrentDispatchKeepsInvariant(t *testing.T) {
	store := newLoadedStore(t, "a", "b", "c", "d")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 3 {
				case 0:
					store.ReorderSections(j%4, (j+1)%4)
				case 1:
					store.DuplicateSection("a")
				default:
					state := store.State()
					if n := len(state.Page.Sections); n > 4 {
						store.DeleteSection(state.Page.Sections[n-1].ID)
					}
				}
			}
		}(i)
	}
	wg.Wait()

	assertDense(t, store.State())
}

func TestStore_ResetReturnsToEmpty(t *testing.T) {
	store := newLoadedStore(t, "a")
	store.SetPreviewMode(true)

	state := store.Reset()
	assert.Equal(t, ModeEmpty, state.Mode())
	assert.Nil(t, store.State().Page)
}
