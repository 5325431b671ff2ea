package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

// Concrete franz-go based constructor and writer wrapper.

const (
	defaultDeliveryTimeout = 30 * time.Second
	defaultFlushTimeout    = 5 * time.Second
)

// SASLConfig selects one of PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
type SASLConfig struct {
	Mechanism string
	Username  string
	Password  string
}

type Config struct {
	Brokers     []string
	Topic       string
	TLS         *tls.Config
	SASL        *SASLConfig
	Acks        kgo.Acks
	Idempotent  bool
	ClientID    string
	Compression kgo.CompressionCodec

	// DeliveryTimeout bounds how long a buffered record may wait for the brokers (default 30s).
	DeliveryTimeout time.Duration
	// FlushTimeout bounds the flush done by the cleanup function (default 5s).
	FlushTimeout time.Duration
	// Logger receives asynchronous delivery failures. Nil discards them.
	Logger *slog.Logger
}

// kgoWriter produces asynchronously: Write only buffers the record, dropping it when the buffer is
// full, and delivery failures are reported to the logger. An unreachable cluster never blocks Write.
type kgoWriter struct {
	cl     *kgo.Client
	logger *slog.Logger
}

func (w kgoWriter) Write(ctx context.Context, topic string, key, value []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if len(headers) > 0 {
		rec.Headers = make([]kgo.RecordHeader, 0, len(headers))
		for k, v := range headers {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
	}

	w.cl.TryProduce(context.WithoutCancel(ctx), rec, func(r *kgo.Record, err error) {
		if err != nil {
			w.logger.Warn("kafka delivery failed", "topic", r.Topic, "key", string(r.Key), "error", err)
		}
	})

	return nil
}

// NewWithKgo builds a franz-go client based Sink. Posts are buffered and produced asynchronously.
// The returned cleanup flushes, bounded by FlushTimeout, and closes the client.
func NewWithKgo(cfg Config) (*Sink, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("%w: kafka brokers required", berr.ErrSinkNotConfigured)
	}

	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}

	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = defaultFlushTimeout
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}

	if cfg.Idempotent {
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	} else {
		opts = append(opts, kgo.DisableIdempotentWrite())
		if cfg.Acks != (kgo.Acks{}) {
			opts = append(opts, kgo.RequiredAcks(cfg.Acks))
		}
	}

	if cfg.Compression != (kgo.CompressionCodec{}) {
		opts = append(opts, kgo.ProducerBatchCompression(cfg.Compression))
	}

	if cfg.SASL != nil && cfg.SASL.Mechanism != "" {
		mech, err := saslMechanism(cfg.SASL)
		if err != nil {
			return nil, nil, err
		}

		opts = append(opts, kgo.SASL(mech))
	}

	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: kafka client init: %w", berr.ErrSinkNotConfigured, err)
	}

	sink := New(kgoWriter{cl: cl, logger: cfg.Logger}, cfg.Topic)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.FlushTimeout)
		defer cancel()

		if err := cl.Flush(ctx); err != nil {
			cfg.Logger.Warn("kafka flush on shutdown", "error", err)
		}

		cl.Close()
	}

	return sink, cleanup, nil
}

func saslMechanism(c *SASLConfig) (sasl.Mechanism, error) {
	switch strings.ToUpper(c.Mechanism) {
	case "PLAIN":
		return plain.Auth{User: c.Username, Pass: c.Password}.AsMechanism(), nil
	case "SCRAM-SHA-256":
		return scram.Auth{User: c.Username, Pass: c.Password}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return scram.Auth{User: c.Username, Pass: c.Password}.AsSha512Mechanism(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported SASL mechanism %q", berr.ErrSinkNotConfigured, c.Mechanism)
	}
}
