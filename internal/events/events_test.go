package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"site-builder-backend/internal/models"
)

func TestNewPagePublished(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	page := &models.PageConfig{ID: "page-1", Name: "Launch"}

	event := NewPagePublished(page, []byte(`{"id":"page-1"}`), at)

	if event.Type != TypePagePublished {
		t.Fatalf("expected type %q, got %q", TypePagePublished, event.Type)
	}
	if event.PageID != "page-1" || event.Name != "Launch" {
		t.Fatalf("unexpected identity: %+v", event)
	}
	if event.PublishedAt.Location() != time.UTC || !event.PublishedAt.Equal(at) {
		t.Fatalf("expected UTC timestamp equal to input, got %v", event.PublishedAt)
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(decoded["config"]) != `{"id":"page-1"}` {
		t.Fatalf("config should be embedded verbatim, got %s", decoded["config"])
	}
}

func TestNoopPublisher(t *testing.T) {
	var publisher Publisher = NoopPublisher{}
	if err := publisher.Publish(context.Background(), PageEvent{Type: TypePagePublished}); err != nil {
		t.Fatalf("noop publish returned error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("noop close returned error: %v", err)
	}
}

func TestNATSPublisherSubject(t *testing.T) {
	p := &NATSPublisher{subject: DefaultSubject}
	if got := p.Subject(TypePagePublished); got != "site_builder.pages.page.published" {
		t.Fatalf("unexpected subject %q", got)
	}
	if got := p.Subject(""); got != DefaultSubject {
		t.Fatalf("unexpected subject %q", got)
	}
}

func TestNewNATSPublisherRequiresURL(t *testing.T) {
	if _, err := NewNATSPublisher(NATSConfig{}); err == nil {
		t.Fatal("expected error for empty url")
	}
}
