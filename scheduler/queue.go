package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	berr "github.com/next-trace/scg-logged-events/contract/errors"
	ev "github.com/next-trace/scg-logged-events/contract/events"
)

// Queue is an unbounded FIFO of tasks with exactly one consumer at a time.
type Queue struct {
	mu      sync.Mutex
	tasks   []func()
	running bool
	stopped bool

	// turn serialises consumers so that FIFO order holds across RunPending and the loop.
	turn sync.Mutex

	wake chan struct{}
	quit chan struct{}
	done chan struct{}

	logger *slog.Logger
}

var _ ev.Scheduler = (*Queue)(nil)

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// New creates a stopped-loop Queue. Call Start to run tasks on a dedicated goroutine, or
// RunPending to run them on the caller's goroutine.
func New(opts ...Option) *Queue {
	q := &Queue{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Enqueue appends task to the queue. It fails with ErrSchedulerStopped once Stop was called.
func (q *Queue) Enqueue(task func()) error {
	if task == nil {
		return berr.ErrInvalidArgument
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()

		return berr.ErrSchedulerStopped
	}

	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return nil
}

// Start launches the loop goroutine. Calling Start on a running queue is a no-op.
func (q *Queue) Start() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return berr.ErrSchedulerStopped
	}

	if q.running {
		return nil
	}

	q.running = true

	go q.loop()

	return nil
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		select {
		case <-q.wake:
			for q.RunPending() > 0 {
			}
		case <-q.quit:
			for q.RunPending() > 0 {
			}

			return
		}
	}
}

// Stop rejects further tasks, lets already queued tasks run, and waits for the loop to exit or
// for ctx to be done. Without a running loop the remaining tasks run on the caller's goroutine.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()

		return berr.ErrSchedulerStopped
	}

	q.stopped = true
	running := q.running
	q.mu.Unlock()

	close(q.quit)

	if !running {
		for q.RunPending() > 0 {
		}

		return nil
	}

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunPending runs, in order, the tasks that were queued when it was called and returns how many
// ran. Tasks queued meanwhile wait for the next turn.
func (q *Queue) RunPending() int {
	q.turn.Lock()
	defer q.turn.Unlock()

	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, task := range batch {
		q.run(task)
	}

	return len(batch)
}

func (q *Queue) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("deferred task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	task()
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}
