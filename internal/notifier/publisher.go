// Package notifier announces newly persisted sample blocks on the
// message bus.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/cortexa-systems/cortexa-ingest/internal/models"
)

// Publisher publishes block notifications. A publish is one attempt;
// implementations never retry or queue locally.
type Publisher interface {
	PublishBlock(ctx context.Context, n models.BlockNotification) error
	IsConnected() bool
	Close()
}

// Config holds the broker settings for the JetStream publisher.
type Config struct {
	URL      string
	Username string
	Password string

	// Stream is the durable stream capturing block notifications.
	Stream string

	// Subject is the fixed subject all notifications publish under.
	Subject string
}

// JetStreamPublisher publishes notifications to a durable JetStream
// stream over a long-lived connection.
type JetStreamPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewJetStreamPublisher connects to NATS and ensures the notification
// stream exists. Messages on the stream are file-backed, so an accepted
// publish survives broker restarts.
func NewJetStreamPublisher(ctx context.Context, cfg Config) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.Name("cortexa-ingest"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.Timeout(5 * time.Second),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		MaxAge:    24 * time.Hour,
		Retention: jetstream.InterestPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create/update stream %s: %w", cfg.Stream, err)
	}

	return &JetStreamPublisher{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
	}, nil
}

// PublishBlock makes exactly one publish attempt for n and waits for
// the broker acknowledgment.
func (p *JetStreamPublisher) PublishBlock(ctx context.Context, n models.BlockNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *JetStreamPublisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close releases the broker connection.
func (p *JetStreamPublisher) Close() {
	p.conn.Close()
}
