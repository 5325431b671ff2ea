package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// DefaultTopic is used when a Sink is built without a topic.
const DefaultTopic = "eventbus.log"

// Writer is a minimal Kafka-like writer interface.
// Users can adapt segmentio/kafka-go or any other client to this.
type Writer interface {
	Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Sink produces every record as JSON to a single topic keyed by event name, so that records of
// one event keep their order within a partition.
type Sink struct {
	Writer     Writer
	Topic      string
	Propagator ev.HeaderPropagator
}

var _ ev.Sink = (*Sink)(nil)

// New creates a Kafka sink with the provided writer and topic.
func New(w Writer, topic string) *Sink {
	if topic == "" {
		topic = DefaultTopic
	}

	return &Sink{Writer: w, Topic: topic, Propagator: ev.NopHeaderPropagator{}}
}

// Post serializes rec and writes it.
func (s *Sink) Post(ctx context.Context, level string, rec ev.LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.Writer == nil {
		return fmt.Errorf("kafka post: %w", berr.ErrSinkNotConfigured)
	}

	val, err := mustJSON(rec)
	if err != nil {
		return fmt.Errorf("kafka post serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	headers := rec.Headers(level)
	if s.Propagator != nil {
		s.Propagator.Inject(ctx, headers)
	}

	if err = s.Writer.Write(ctx, s.Topic, []byte(rec.EventName), val, headers); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("kafka post write to %q: %w", s.Topic, errors.Join(berr.ErrPostFailed, err))
	}

	return nil
}

func mustJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return b, nil
}
