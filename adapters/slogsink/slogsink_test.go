package slogsink_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/next-trace/scg-logged-events/adapters/slogsink"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"info+2", slog.LevelInfo + 2},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		if got := slogsink.ParseLevel(tc.in); got != tc.want {
			t.Fatalf("ParseLevel(%q)=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestSink_PostWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := slogsink.New(logger)
	rec := ev.LogRecord{
		BusName:     "mainEventbus",
		TriggerType: ev.TriggerResults,
		EventName:   "sum",
		Params:      []any{1, "a"},
		Results:     []any{1, 2},
	}

	if err := s.Post(t.Context(), "debug", rec); err != nil {
		t.Fatalf("post: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v (%s)", err, buf.String())
	}

	if entry["level"] != "DEBUG" || entry["msg"] != slogsink.Message {
		t.Fatalf("unexpected entry: %v", entry)
	}

	if entry["busName"] != "mainEventbus" || entry["triggerType"] != "triggerResults" || entry["eventName"] != "sum" {
		t.Fatalf("unexpected fields: %v", entry)
	}

	if res, ok := entry["results"].([]any); !ok || len(res) != 2 {
		t.Fatalf("results missing: %v", entry)
	}
}

func TestSink_LevelGatingBelongsToHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	s := slogsink.New(logger)
	_ = s.Post(t.Context(), "debug", ev.LogRecord{EventName: "quiet"})

	if buf.Len() != 0 {
		t.Fatalf("debug record should be filtered by the handler, got %q", buf.String())
	}

	_ = s.Post(t.Context(), "warn", ev.LogRecord{EventName: "loud"})

	if !bytes.Contains(buf.Bytes(), []byte("eventName=loud")) {
		t.Fatalf("warn record missing: %q", buf.String())
	}

	if bytes.Contains(buf.Bytes(), []byte("results=")) {
		t.Fatalf("absent results must not be logged: %q", buf.String())
	}
}
