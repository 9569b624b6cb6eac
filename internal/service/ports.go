package service

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

import (
	"context"

	"site-builder-backend/internal/events"
)

// PagePublisher announces published pages to downstream consumers.
type PagePublisher interface {
	Publish(ctx context.Context, event events.PageEvent) error
}

// BackupStore keeps the latest serialised configuration of each saved page.
// Get returns cache.ErrCacheMiss or cache.ErrDisabled when nothing is stored.
type BackupStore interface {
	Get(ctx context.Context, pageID string) (string, error)
	Set(ctx context.Context, pageID, text string) error
	Remove(ctx context.Context, pageID string) error
}
