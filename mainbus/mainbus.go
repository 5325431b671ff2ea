// Package mainbus builds the application's main event bus from configuration.
package mainbus

import (
	"fmt"
	"log/slog"

	"github.com/google/wire"

	"github.com/next-trace/scg-logged-events/adapters/inmemory"
	"github.com/next-trace/scg-logged-events/adapters/kafka"
	"github.com/next-trace/scg-logged-events/adapters/nats"
	"github.com/next-trace/scg-logged-events/adapters/rabbitmq"
	"github.com/next-trace/scg-logged-events/adapters/slogsink"
	"github.com/next-trace/scg-logged-events/adapters/zapsink"
	"github.com/next-trace/scg-logged-events/config"
	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
	"github.com/next-trace/scg-logged-events/eventbus"
	"github.com/next-trace/scg-logged-events/scrub"
)

// Name is the name of the main bus.
const Name = "mainEventbus"

// ProviderSet is the wire provider set for the main bus.
var ProviderSet = wire.NewSet(config.Load, New)

// New constructs the main bus with the sink selected by cfg and a key scrubber over cfg.Keys().
// The cleanup closes the bus and then releases the sink's connection.
func New(cfg config.Config, logger *slog.Logger) (*eventbus.Bus, func(), error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sink, release, err := NewSink(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	name := cfg.BusName
	if name == "" {
		name = Name
	}

	opts := []eventbus.Option{eventbus.WithName(name), eventbus.WithPostTimeout(cfg.PostTimeout)}
	if cfg.BusLogLevel != "" {
		opts = append(opts, eventbus.WithLogLevel(cfg.BusLogLevel))
	}

	if keys := cfg.Keys(); len(keys) > 0 {
		opts = append(opts, eventbus.WithScrubber(scrub.Keys(keys...)))
	}

	bus := eventbus.New(nil, sink, nil, logger, opts...)

	logger.Info("event bus ready", "bus", name, "sink", cfg.Sink)

	cleanup := func() {
		if err := bus.Close(); err != nil {
			logger.Warn("event bus close", "bus", name, "error", err)
		}

		release()
	}

	return bus, cleanup, nil
}

// NewSink builds the sink named by cfg.Sink. Log sinks are built at the bus log level so that
// every posted record is written.
func NewSink(cfg config.Config, logger *slog.Logger) (ev.Sink, func(), error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	nop := func() {}

	switch cfg.Sink {
	case config.SinkMemory:
		return inmemory.New(), nop, nil
	case "", config.SinkSlog:
		return slogsink.New(cfg.LoggerAt(cfg.BusLogLevel)), nop, nil
	case config.SinkZap:
		return zapsink.NewFromConfig(cfg.Environment, cfg.BusLogLevel)
	case config.SinkNATS:
		return nats.NewWithNATS(nats.Config{
			URL:           cfg.NATSURL,
			Name:          cfg.BusName,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		})
	case config.SinkKafka:
		return kafka.NewWithKgo(kafka.Config{
			Brokers:  cfg.Brokers(),
			Topic:    cfg.KafkaTopic,
			ClientID: cfg.KafkaClientID,
			Logger:   logger,
		})
	case config.SinkRabbitMQ:
		return rabbitmq.NewWithAMQPConn(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.RabbitMQExchange,
		})
	default:
		logger.Error("unknown event sink", "sink", cfg.Sink)

		return nil, nil, fmt.Errorf("event sink %q: %w", cfg.Sink, berr.ErrInvalidArgument)
	}
}
