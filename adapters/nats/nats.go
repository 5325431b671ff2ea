package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// DefaultSubjectPrefix is used when a Sink is built without a prefix.
const DefaultSubjectPrefix = "eventbus"

// Client is a minimal NATS-like publisher interface decoupled from any concrete library.
// Users can provide a wrapper around their NATS connection to satisfy this.
type Client interface {
	// Publish publishes a message to a subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error
}

// Sink publishes every record as JSON on "<prefix>.<bus>.<event>".
type Sink struct {
	Client     Client
	Prefix     string
	Propagator ev.HeaderPropagator
}

var _ ev.Sink = (*Sink)(nil)

// New creates a NATS sink with the provided client and subject prefix.
func New(c Client, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}

	return &Sink{Client: c, Prefix: prefix, Propagator: ev.NopHeaderPropagator{}}
}

// Post serializes rec and publishes it.
func (s *Sink) Post(ctx context.Context, level string, rec ev.LogRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	body, err := mustJSON(rec)
	if err != nil {
		return fmt.Errorf("nats post serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	headers := rec.Headers(level)
	if s.Propagator != nil {
		s.Propagator.Inject(ctx, headers)
	}

	return s.publish(s.Subject(rec), body, headers)
}

// Subject returns the subject rec is published on.
func (s *Sink) Subject(rec ev.LogRecord) string {
	return s.Prefix + "." + token(rec.BusName) + "." + token(rec.EventName)
}

func (s *Sink) publish(subject string, body []byte, headers map[string]string) error {
	if err := s.Client.Publish(subject, body, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("nats post publish: %w", errors.Join(berr.ErrPostFailed, err))
	}

	return nil
}

func (s *Sink) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.Client == nil {
		return fmt.Errorf("nats post: %w", berr.ErrSinkNotConfigured)
	}

	return nil
}

// helpers

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_", "\n", "_", "\r", "_")

// token makes s usable as a single subject token.
func token(s string) string {
	if s == "" {
		return "_"
	}

	return tokenReplacer.Replace(s)
}

func mustJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return b, nil
}
