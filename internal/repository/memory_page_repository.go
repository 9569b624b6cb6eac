package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"site-builder-backend/internal/models"
)

// MemoryPageRepository keeps page records in process memory. It backs the
// service when no database is configured.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[string]models.PageRecord
	now   func() time.Time
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages: make(map[string]models.PageRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryPageRepository) Save(_ context.Context, page *models.PageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now()
	stored := *page
	if existing, ok := r.pages[page.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.Published = existing.Published
		stored.PublishedAt = existing.PublishedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = ts
	}
	stored.UpdatedAt = ts
	r.pages[page.ID] = stored

	page.CreatedAt = stored.CreatedAt
	page.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *MemoryPageRepository) GetByID(_ context.Context, id string) (*models.PageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, ok := r.pages[id]
	if !ok {
		return nil, models.ErrPageNotFound
	}
	return &page, nil
}

func (r *MemoryPageRepository) GetAll(_ context.Context) ([]models.PageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pages := make([]models.PageRecord, 0, len(r.pages))
	for _, page := range r.pages {
		page.Document = ""
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].UpdatedAt.Equal(pages[j].UpdatedAt) {
			return pages[i].ID < pages[j].ID
		}
		return pages[i].UpdatedAt.After(pages[j].UpdatedAt)
	})
	return pages, nil
}

func (r *MemoryPageRepository) MarkPublished(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, ok := r.pages[id]
	if !ok {
		return models.ErrPageNotFound
	}
	page.Published = true
	page.PublishedAt = &at
	r.pages[id] = page
	return nil
}

func (r *MemoryPageRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pages[id]; !ok {
		return models.ErrPageNotFound
	}
	delete(r.pages, id)
	return nil
}
