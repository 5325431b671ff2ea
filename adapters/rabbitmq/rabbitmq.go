package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// DefaultExchange is used when a Sink is built without an exchange.
const DefaultExchange = "eventbus"

type PubMsg struct {
	Exchange   string
	RoutingKey string
	Body       []byte
	Headers    map[string]string
}

type Publisher interface {
	Publish(ctx context.Context, m PubMsg) error
}

// Sink publishes every record to a topic exchange with routing key "<bus>.<triggerType>.<event>".
type Sink struct {
	Publisher  Publisher
	Exchange   string
	Propagator ev.HeaderPropagator // optional, for context propagation into headers
}

var _ ev.Sink = (*Sink)(nil)

func New(p Publisher, exchange string) *Sink {
	if exchange == "" {
		exchange = DefaultExchange
	}

	return &Sink{Publisher: p, Exchange: exchange}
}

// NewWithPropagator allows configuring a HeaderPropagator for context propagation.
func NewWithPropagator(p Publisher, exchange string, hp ev.HeaderPropagator) *Sink {
	s := New(p, exchange)
	s.Propagator = hp

	return s
}

// Post serializes rec and publishes it.
func (s *Sink) Post(ctx context.Context, level string, rec ev.LogRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	body, err := mustJSON(rec)
	if err != nil {
		return fmt.Errorf("rabbitmq post serialize: %w", errors.Join(berr.ErrSerializationFailed, err))
	}

	headers := rec.Headers(level)
	if s.Propagator != nil {
		s.Propagator.Inject(ctx, headers)
	}

	msg := PubMsg{
		Exchange:   s.Exchange,
		RoutingKey: RoutingKey(rec),
		Body:       body,
		Headers:    headers,
	}

	if err := s.Publisher.Publish(ctx, msg); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		return fmt.Errorf("rabbitmq post publish: %w", errors.Join(berr.ErrPostFailed, err))
	}

	return nil
}

func (s *Sink) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.Publisher == nil {
		return fmt.Errorf("rabbitmq post: %w", berr.ErrSinkNotConfigured)
	}

	return nil
}

var wordReplacer = strings.NewReplacer(".", "_", "*", "_", "#", "_")

// RoutingKey returns "<bus>.<triggerType>.<event>" with topic wildcards and dots inside each word
// replaced by "_", so consumers can bind on patterns like "*.triggerThen.#".
func RoutingKey(rec ev.LogRecord) string {
	return wordReplacer.Replace(rec.BusName) + "." +
		string(rec.TriggerType) + "." +
		wordReplacer.Replace(rec.EventName)
}

func mustJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return b, nil
}

func amqpHeaders(m map[string]string) amqp.Table {
	if len(m) == 0 {
		return nil
	}

	h := make(amqp.Table, len(m))
	for k, v := range m {
		h[k] = v
	}

	return h
}

type amqpChannelPublisher struct{ ch *amqp.Channel }

func (p amqpChannelPublisher) Publish(ctx context.Context, m PubMsg) error {
	return p.ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			Headers:     amqpHeaders(m.Headers),
			Body:        m.Body,
			ContentType: "application/json",
		},
	)
}

// NewWithAMQPChannel publishes on a caller-managed channel. The exchange must already exist.
func NewWithAMQPChannel(ch *amqp.Channel, exchange string) *Sink {
	return New(amqpChannelPublisher{ch: ch}, exchange)
}
