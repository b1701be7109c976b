// Package events publishes analysis results to NATS so other processes can
// react to verdicts without polling.
//
// Subjects:
//
//	{prefix}.verdict   execution reports
//	{prefix}.intent    conversation analyses
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Kind selects the subject suffix of an event.
type Kind string

const (
	KindVerdict Kind = "verdict"
	KindIntent  Kind = "intent"
)

// Event is the envelope published for every analysis.
type Event struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Config configures the NATS publisher.
type Config struct {
	Enabled       bool
	URL           string
	Token         string
	SubjectPrefix string
	Timeout       time.Duration
}

// NATSPublisher publishes events as JSON on a NATS connection.
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	timeout time.Duration
	owned   bool
}

// Connect dials cfg.URL and returns a publisher that owns the connection.
func Connect(cfg Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("outcomed"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1 * time.Second),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.URL, err)
	}
	p := NewNATSPublisher(nc, cfg.SubjectPrefix, cfg.Timeout)
	p.owned = true
	return p, nil
}

// NewNATSPublisher wraps an existing connection. The caller keeps ownership
// of nc.
func NewNATSPublisher(nc *nats.Conn, prefix string, timeout time.Duration) *NATSPublisher {
	if prefix == "" {
		prefix = "outcomed"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &NATSPublisher{nc: nc, prefix: prefix, timeout: timeout}
}

// Subject returns the subject an event of kind k is published on.
func (p *NATSPublisher) Subject(k Kind) string {
	return p.prefix + "." + string(k)
}

// Publish sends ev and flushes so delivery errors surface to the caller.
func (p *NATSPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(ev.Kind), data); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s event: %w", ev.Kind, err)
	}
	return nil
}

// Close drains the connection when the publisher owns it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.nc.Drain()
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// New returns a NATS publisher when cfg is enabled and Nop otherwise.
func New(cfg Config) (Publisher, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	return Connect(cfg)
}

var (
	_ Publisher = (*NATSPublisher)(nil)
	_ Publisher = Nop{}
)
