package inmemory

import (
	"context"
	"sync"

	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Posted is one recorded Post call.
type Posted struct {
	Level  string
	Record ev.LogRecord
}

// Sink is a thread-safe in-memory implementation of events.Sink.
// It records posted log records for testing and examples.
type Sink struct {
	mu     sync.Mutex
	posted []Posted
	err    error
}

// Ensure Sink implements the contract.
var _ ev.Sink = (*Sink)(nil)

// New creates a new in-memory sink instance.
func New() *Sink { return &Sink{} }

// Post records level and rec. When FailWith was set the record is dropped and that error returned.
func (s *Sink) Post(ctx context.Context, level string, rec ev.LogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.posted = append(s.posted, Posted{Level: level, Record: rec})

	return nil
}

// FailWith makes every following Post fail with err. A nil err restores recording.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Posted returns a copy of everything recorded so far, oldest first.
func (s *Sink) Posted() []Posted {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Posted(nil), s.posted...)
}

// Records returns only the recorded log records, oldest first.
func (s *Sink) Records() []ev.LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]ev.LogRecord, len(s.posted))
	for i, p := range s.posted {
		recs[i] = p.Record
	}

	return recs
}

// Len returns the number of recorded posts.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.posted)
}

// Reset forgets every recorded post.
func (s *Sink) Reset() {
	s.mu.Lock()
	s.posted = nil
	s.mu.Unlock()
}
