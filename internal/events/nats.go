package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"site-builder-backend/pkg/logger"
)

const (
	DefaultStream  = "SITE_BUILDER_PAGES"
	DefaultSubject = "site_builder.pages"

	setupTimeout   = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// NATSConfig configures the JetStream publisher.
type NATSConfig struct {
	URL     string
	Subject string
	Stream  string
}

// NATSPublisher publishes page events to a JetStream stream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and makes sure the stream covering the
// subject exists.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("site-builder-backend"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.Stream,
		Description: "Published site builder pages",
		Subjects:    []string{cfg.Subject, cfg.Subject + ".>"},
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	logger.Info("NATS publisher initialized", map[string]interface{}{
		"url":     cfg.URL,
		"subject": cfg.Subject,
		"stream":  cfg.Stream,
	})

	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// Subject returns the subject a page event of the given type is sent to.
func (p *NATSPublisher) Subject(eventType string) string {
	if eventType == "" {
		return p.subject
	}
	return p.subject + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event PageEvent) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publishTimeout)
		defer cancel()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.Subject(event.Type), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Published page event", map[string]interface{}{
		"type":    event.Type,
		"page_id": event.PageID,
	})
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
