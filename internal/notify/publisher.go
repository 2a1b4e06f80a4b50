package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sphinxbuild/internal/config"
	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

const (
	connectTimeout = 2 * time.Second
	flushTimeout   = 5 * time.Second
)

// Publisher delivers invocation events.
type Publisher interface {
	Publish(ctx context.Context, event *InvocationEvent) error
	Close()
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *InvocationEvent) error { return nil }
func (NoopPublisher) Close()                                        {}

// NATSPublisher publishes events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to the configured server.
func NewNATSPublisher(cfg *config.NotifyConfig) (*NATSPublisher, error) {
	if cfg == nil {
		return nil, ferrors.NotifyError("notify config is required").Build()
	}
	if !cfg.Enabled {
		return nil, ferrors.NotifyError("event publishing is disabled").Build()
	}

	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("sphinxbuild"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNotify, "failed to connect to NATS").
			Warning().
			WithContext("url", cfg.NATSURL).
			Build()
	}

	slog.Info("NATS publisher initialized", "url", cfg.NATSURL, "subject", cfg.Subject)
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends the event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, event *InvocationEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := event.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to publish event").
			Warning().
			WithContext("subject", p.subject).
			Build()
	}

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(flushCtx); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotify, "failed to flush event").
			Warning().
			WithContext("subject", p.subject).
			Build()
	}

	slog.Debug("Published invocation event",
		"subject", p.subject,
		"invocation_id", event.InvocationID,
		"state", event.State)
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
