package rabbitmq

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

// Concrete AMQP connection-backed constructor and publisher wrapper with auto-reconnect.

const exchangeKind = "topic"

type Config struct {
	URL         string
	Exchange    string
	ConnTimeout time.Duration
}

type reconnectingPublisher struct {
	cfg    Config
	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed chan struct{}
}

func newReconnectingPublisher(cfg Config) (*reconnectingPublisher, func()) {
	rp := &reconnectingPublisher{
		cfg:    cfg,
		closed: make(chan struct{}),
	}

	go rp.run()

	return rp, rp.close
}

// channel returns the live channel, failing at once while the publisher is closed or reconnecting.
func (rp *reconnectingPublisher) channel() (*amqp.Channel, error) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	select {
	case <-rp.closed:
		return nil, fmt.Errorf("%w: rabbitmq publisher closed", berr.ErrPostFailed)
	default:
	}

	if rp.ch == nil {
		return nil, fmt.Errorf("%w: rabbitmq not connected", berr.ErrPostFailed)
	}

	return rp.ch, nil
}

func (rp *reconnectingPublisher) Publish(ctx context.Context, m PubMsg) error {
	ch, err := rp.channel()
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		m.Exchange,
		m.RoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Headers:      amqpHeaders(m.Headers),
			ContentType:  "application/json",
			Body:         m.Body,
		},
	)
}

func (rp *reconnectingPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(rp.cfg.URL, amqp.Config{
		Locale:     "en_US",
		Properties: amqp.Table{"product": "scg-logged-events"},
		Dial:       amqp.DefaultDial(rp.cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, nil, err
	}

	if err := ch.ExchangeDeclare(rp.cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, err
	}

	return conn, ch, nil
}

func (rp *reconnectingPublisher) run() {
	backoff := time.Second

	const maxBackoff = 30 * time.Second
	// #nosec G404 -- non-crypto RNG is acceptable for backoff jitter
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // non-crypto RNG is acceptable for backoff jitter

	for {
		select {
		case <-rp.closed:
			return
		default:
		}

		conn, ch, err := rp.dial()
		if err != nil {
			// exponential backoff with jitter
			sleep := min(backoff+time.Duration(rng.Int63n(int64(backoff/2))), maxBackoff)

			t := time.NewTimer(sleep)
			select {
			case <-rp.closed:
				t.Stop()

				return
			case <-t.C:
			}

			backoff = min(backoff*2, maxBackoff)

			continue
		}

		backoff = time.Second
		notify := conn.NotifyClose(make(chan *amqp.Error, 1))

		rp.mu.Lock()
		rp.conn, rp.ch = conn, ch
		rp.mu.Unlock()

		select {
		case <-rp.closed:
			_ = ch.Close()
			_ = conn.Close()

			return
		case <-notify:
		}

		rp.mu.Lock()
		rp.conn, rp.ch = nil, nil
		rp.mu.Unlock()

		_ = ch.Close()
		_ = conn.Close()
	}
}

func (rp *reconnectingPublisher) close() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	select {
	case <-rp.closed:
		return
	default:
		close(rp.closed)
	}

	if rp.ch != nil {
		_ = rp.ch.Close()
		rp.ch = nil
	}

	if rp.conn != nil {
		_ = rp.conn.Close()
		rp.conn = nil
	}
}

// NewWithAMQPConn dials RabbitMQ with auto-reconnect, declares the exchange, and returns a Sink and cleanup.
// Records posted while no channel is up fail at once with ErrPostFailed; they are not buffered.
func NewWithAMQPConn(cfg Config) (*Sink, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: rabbitmq url required", berr.ErrSinkNotConfigured)
	}

	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	pub, cleanup := newReconnectingPublisher(cfg)

	return New(pub, cfg.Exchange), cleanup, nil
}
