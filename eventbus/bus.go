package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	ev "github.com/next-trace/scg-logged-events/contract/events"
	"github.com/next-trace/scg-logged-events/registry"
	"github.com/next-trace/scg-logged-events/scheduler"
)

const (
	// DefaultName is the bus name used until SetName is called.
	DefaultName = "unknown"
	// DefaultLogLevel is the severity tag attached to posted records by default.
	DefaultLogLevel = "debug"
	// DefaultPostTimeout bounds a single Sink.Post call.
	DefaultPostTimeout = 5 * time.Second
)

// Bus dispatches events to handlers held by a Registry and posts a LogRecord per dispatch.
//
// Bus is safe for concurrent use and contains no global state; construct one per logical bus
// and pass it to the components that need it.
type Bus struct {
	mu sync.RWMutex

	name     string
	level    string
	scrubber ev.Scrubber
	closed   bool
	timeout  time.Duration

	reg    ev.Registry
	sink   ev.Sink
	sched  ev.Scheduler
	owned  *scheduler.Queue // set when the bus created its own scheduler
	logger *slog.Logger
}

// Option configures a Bus instance.
type Option func(*Bus)

// WithName sets the bus name reported in every LogRecord.
func WithName(name string) Option {
	return func(b *Bus) { b.name = name }
}

// WithLogLevel sets the severity tag passed to the sink.
func WithLogLevel(level string) Option {
	return func(b *Bus) { b.level = level }
}

// WithPostTimeout bounds how long a dispatch waits for the sink. A post still running when d
// elapses is abandoned and logged; its context is cancelled. d <= 0 keeps DefaultPostTimeout.
func WithPostTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithScrubber installs a scrubber at construction time. A nil scrubber leaves scrubbing off.
func WithScrubber(s ev.Scrubber) Option {
	return func(b *Bus) { b.scrubber = s }
}

// New constructs a Bus. A nil registry, sink or scheduler is replaced by an in-memory registry,
// a discarding sink and a started scheduler owned by the bus. A nil logger discards ambient logs.
func New(reg ev.Registry, sink ev.Sink, sched ev.Scheduler, logger *slog.Logger, opts ...Option) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Bus{
		name:    DefaultName,
		level:   DefaultLogLevel,
		timeout: DefaultPostTimeout,
		reg:     reg,
		sink:    sink,
		sched:   sched,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.reg == nil {
		b.reg = registry.New(logger)
	}

	if b.sink == nil {
		b.sink = ev.NopSink{}
	}

	if b.sched == nil {
		q := scheduler.New(scheduler.WithLogger(logger))
		_ = q.Start() // a fresh queue cannot be stopped yet
		b.sched = q
		b.owned = q
	}

	return b
}

// Name returns the bus name.
func (b *Bus) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.name
}

// SetName changes the bus name used by subsequent records.
func (b *Bus) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

// LogLevel returns the severity tag attached to posted records.
func (b *Bus) LogLevel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.level
}

// SetLogLevel changes the severity tag. It never gates posting.
func (b *Bus) SetLogLevel(level string) {
	b.mu.Lock()
	b.level = level
	b.mu.Unlock()
}

// Registry returns the registry the bus dispatches from.
func (b *Bus) Registry() ev.Registry { return b.reg }

// Sink returns the sink records are posted to.
func (b *Bus) Sink() ev.Sink { return b.sink }

// On registers a persistent handler on the bus registry.
func (b *Bus) On(name string, h ev.Handler, opts ...ev.SubscribeOption) (string, error) {
	return b.reg.On(name, h, opts...)
}

// Once registers a handler that fires on at most one dispatch.
func (b *Bus) Once(name string, h ev.Handler, opts ...ev.SubscribeOption) (string, error) {
	return b.reg.Once(name, h, opts...)
}

// Off removes every handler for name, or for every event when name is empty.
func (b *Bus) Off(name string) int { return b.reg.Off(name) }

// Closed reports whether Close was called.
func (b *Bus) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.closed
}

// Close tears the bus down. Deferred dispatches that have not run yet are dropped and further
// TriggerDefer calls fail with ErrBusClosed. Direct triggers keep working against the registry.
// Close stops the scheduler only when the bus created it.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()

		return nil
	}

	b.closed = true
	b.mu.Unlock()

	if b.owned != nil {
		return b.owned.Stop(context.Background())
	}

	return nil
}
