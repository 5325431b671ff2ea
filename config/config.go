// Package config loads bus settings from the environment and an optional .env file.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/next-trace/scg-logged-events/adapters/slogsink"
	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

// Sink kinds accepted by EVENTBUS_SINK.
const (
	SinkMemory   = "memory"
	SinkSlog     = "slog"
	SinkZap      = "zap"
	SinkNATS     = "nats"
	SinkKafka    = "kafka"
	SinkRabbitMQ = "rabbitmq"
)

type Config struct {
	BusName     string        `mapstructure:"EVENTBUS_NAME"`
	BusLogLevel string        `mapstructure:"EVENTBUS_LOG_LEVEL"` // severity tag of posted records
	Sink        string        `mapstructure:"EVENTBUS_SINK"`
	ScrubKeys   string        `mapstructure:"EVENTBUS_SCRUB_KEYS"`   // comma separated, empty disables scrubbing
	PostTimeout time.Duration `mapstructure:"EVENTBUS_POST_TIMEOUT"` // bound on one sink post, e.g. "5s"

	Environment string `mapstructure:"ENVIRONMENT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"` // ambient logger level (debug, info, warn, error)

	NATSURL           string `mapstructure:"NATS_URL"`
	NATSSubjectPrefix string `mapstructure:"NATS_SUBJECT_PREFIX"`

	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"` // comma separated host:port list
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	KafkaClientID string `mapstructure:"KAFKA_CLIENT_ID"`

	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string `mapstructure:"RABBITMQ_EXCHANGE"`
}

// Load reads .env when present, then the environment, applies defaults and validates the result.
// A nil logger discards the loader's own messages.
func Load(logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logger.DebugContext(ctx, "no .env file found, using environment variables only")
	} else {
		logger.DebugContext(ctx, "loaded .env file")
	}

	v := viper.New()

	v.SetDefault("EVENTBUS_NAME", "mainEventbus")
	v.SetDefault("EVENTBUS_LOG_LEVEL", "debug")
	v.SetDefault("EVENTBUS_SINK", SinkSlog)
	v.SetDefault("EVENTBUS_SCRUB_KEYS", "password,token,secret")
	v.SetDefault("EVENTBUS_POST_TIMEOUT", 5*time.Second)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT_PREFIX", "eventbus")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "eventbus.log")
	v.SetDefault("KAFKA_CLIENT_ID", "scg-logged-events")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "eventbus")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal configuration: %w", err)
	}

	cfg.Sink = strings.ToLower(strings.TrimSpace(cfg.Sink))

	if err := cfg.Validate(); err != nil {
		logger.ErrorContext(ctx, "configuration validation failed", "error", err)

		return Config{}, err
	}

	logger.InfoContext(ctx, "configuration loaded",
		"bus", cfg.BusName,
		"sink", cfg.Sink,
		"environment", cfg.Environment,
	)

	return cfg, nil
}

// Validate checks that the selected sink is known and has its connection settings.
func (c Config) Validate() error {
	switch c.Sink {
	case SinkMemory, SinkSlog, SinkZap:
		return nil
	case SinkNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats sink: %w", berr.ErrSinkNotConfigured)
		}
	case SinkKafka:
		if len(c.Brokers()) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for the kafka sink: %w", berr.ErrSinkNotConfigured)
		}
	case SinkRabbitMQ:
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required for the rabbitmq sink: %w", berr.ErrSinkNotConfigured)
		}
	default:
		return fmt.Errorf("unknown sink %q: %w", c.Sink, berr.ErrInvalidArgument)
	}

	return nil
}

// Brokers splits KafkaBrokers.
func (c Config) Brokers() []string { return splitList(c.KafkaBrokers) }

// Keys splits ScrubKeys.
func (c Config) Keys() []string { return splitList(c.ScrubKeys) }

// Logger builds the ambient logger at LogLevel.
func (c Config) Logger() *slog.Logger { return c.LoggerAt(c.LogLevel) }

// LoggerAt builds a stderr logger at level: text output in development, JSON elsewhere.
func (c Config) LoggerAt(level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slogsink.ParseLevel(level)}

	if c.Environment == "development" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}
