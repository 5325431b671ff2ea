package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
)

// Concrete NATS connection-backed Client and constructor.

type Config struct {
	URL           string
	Name          string
	SubjectPrefix string
	ConnTimeout   time.Duration
	MaxReconnects int
}

type natsClient struct{ nc *nats.Conn }

func (c natsClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := &nats.Msg{Subject: subject, Data: data}

	if len(headers) > 0 {
		msg.Header = nats.Header{}
		for k, v := range headers {
			msg.Header.Add(k, v)
		}
	}

	return c.nc.PublishMsg(msg)
}

// NewWithNATS creates a real NATS connection and returns a Sink and a cleanup that drains it.
func NewWithNATS(cfg Config) (*Sink, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", berr.ErrSinkNotConfigured)
	}

	opts := []nats.Option{}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}

	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", berr.ErrPostFailed, err)
	}

	sink := New(natsClient{nc: nc}, cfg.SubjectPrefix)
	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain() //nolint:errcheck // best-effort shutdown; cannot return error here
		}
	}

	return sink, cleanup, nil
}
