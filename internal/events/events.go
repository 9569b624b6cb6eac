package events

import (
	"context"
	"encoding/json"
	"time"

	"site-builder-backend/internal/models"
	"site-builder-backend/pkg/logger"
)

// TypePagePublished is the type of the event emitted when a page is published.
const TypePagePublished = "page.published"

// PageEvent is the payload sent to subscribers of the page subject.
type PageEvent struct {
	Type        string          `json:"type"`
	PageID      string          `json:"pageId"`
	Name        string          `json:"name"`
	PublishedAt time.Time       `json:"publishedAt"`
	Config      json.RawMessage `json:"config"`
}

// NewPagePublished builds the event for a published page. config is the
// exported page configuration.
func NewPagePublished(page *models.PageConfig, config []byte, at time.Time) PageEvent {
	event := PageEvent{
		Type:        TypePagePublished,
		PublishedAt: at.UTC(),
		Config:      json.RawMessage(config),
	}
	if page != nil {
		event.PageID = page.ID
		event.Name = page.Name
	}
	return event
}

// Publisher delivers page events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event PageEvent) error
	Close() error
}

// NoopPublisher drops events. It is used when NATS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, event PageEvent) error {
	logger.Debug("Page event dropped, publisher disabled", map[string]interface{}{
		"type":    event.Type,
		"page_id": event.PageID,
	})
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
