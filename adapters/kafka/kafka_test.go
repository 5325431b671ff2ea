package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/next-trace/scg-logged-events/adapters/kafka"
	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

type write struct {
	topic   string
	key     []byte
	value   []byte
	headers map[string]string
}

type fakeWriter struct {
	calls []write
	err   error
}

func (f *fakeWriter) Write(_ context.Context, topic string, key, value []byte, headers map[string]string) error {
	f.calls = append(f.calls, write{topic, key, value, headers})

	return f.err
}

func rec() ev.LogRecord {
	return ev.LogRecord{
		BusName:     "mainEventbus",
		TriggerType: ev.TriggerThen,
		EventName:   "order:placed",
		Params:      []any{map[string]any{"id": 7}},
		Results:     []any{"ok"},
	}
}

func TestKafka_Post(t *testing.T) {
	fw := &fakeWriter{}
	s := kafka.New(fw, "")

	if err := s.Post(t.Context(), "warn", rec()); err != nil {
		t.Fatalf("post: %v", err)
	}

	if len(fw.calls) != 1 {
		t.Fatalf("expected 1 write, got %d", len(fw.calls))
	}

	w := fw.calls[0]
	if w.topic != kafka.DefaultTopic || string(w.key) != "order:placed" {
		t.Fatalf("topic/key mismatch: %s %s", w.topic, w.key)
	}

	if w.headers[ev.HeaderLevel] != "warn" || w.headers[ev.HeaderBusName] != "mainEventbus" {
		t.Fatalf("headers: %+v", w.headers)
	}

	var body map[string]any
	if err := json.Unmarshal(w.value, &body); err != nil {
		t.Fatalf("body: %v", err)
	}

	if body["triggerType"] != "triggerThen" || body["results"] == nil {
		t.Fatalf("body: %v", body)
	}
}

func TestKafka_CustomTopic(t *testing.T) {
	fw := &fakeWriter{}
	if err := kafka.New(fw, "audit").Post(t.Context(), "info", rec()); err != nil {
		t.Fatalf("post: %v", err)
	}

	if fw.calls[0].topic != "audit" {
		t.Fatalf("topic: %s", fw.calls[0].topic)
	}
}

func TestKafka_Errors(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	s := kafka.New(fw, "t")

	if err := s.Post(t.Context(), "info", rec()); !errors.Is(err, berr.ErrPostFailed) {
		t.Fatalf("want ErrPostFailed, got %v", err)
	}

	fw.err = context.Canceled
	if err := s.Post(t.Context(), "info", rec()); !errors.Is(err, context.Canceled) || errors.Is(err, berr.ErrPostFailed) {
		t.Fatalf("want bare canceled, got %v", err)
	}

	bad := rec()
	bad.Results = func() {}

	if err := s.Post(t.Context(), "info", bad); !errors.Is(err, berr.ErrSerializationFailed) {
		t.Fatalf("want ErrSerializationFailed, got %v", err)
	}

	if err := (&kafka.Sink{}).Post(t.Context(), "info", rec()); !errors.Is(err, berr.ErrSinkNotConfigured) {
		t.Fatalf("want ErrSinkNotConfigured, got %v", err)
	}
}

func TestNewWithKgo_Validation(t *testing.T) {
	if _, _, err := kafka.NewWithKgo(kafka.Config{}); !errors.Is(err, berr.ErrSinkNotConfigured) {
		t.Fatalf("want ErrSinkNotConfigured, got %v", err)
	}

	cfg := kafka.Config{
		Brokers: []string{"localhost:9092"},
		SASL:    &kafka.SASLConfig{Mechanism: "GSSAPI"},
	}
	if _, _, err := kafka.NewWithKgo(cfg); !errors.Is(err, berr.ErrSinkNotConfigured) {
		t.Fatalf("want ErrSinkNotConfigured for unsupported SASL, got %v", err)
	}
}

func TestNewWithKgo_PostDoesNotWaitForBrokers(t *testing.T) {
	cfg := kafka.Config{
		Brokers:         []string{"127.0.0.1:1"},
		Topic:           "audit",
		ClientID:        "scg-logged-events",
		SASL:            &kafka.SASLConfig{Mechanism: "plain", Username: "u", Password: "p"},
		DeliveryTimeout: 100 * time.Millisecond,
		FlushTimeout:    100 * time.Millisecond,
	}

	s, cleanup, err := kafka.NewWithKgo(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	defer cleanup()

	if s.Topic != "audit" {
		t.Fatalf("topic: %s", s.Topic)
	}

	start := time.Now()

	if err := s.Post(context.Background(), "info", rec()); err != nil {
		t.Fatalf("post: %v", err)
	}

	if d := time.Since(start); d > time.Second {
		t.Fatalf("post blocked for %v on an unreachable cluster", d)
	}
}
