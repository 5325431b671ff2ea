package events

// Scheduler accepts zero-delay tasks and runs them on a later turn, first in first out.
// A task is never run on the goroutine that enqueued it while Enqueue is still on the stack.
type Scheduler interface {
	Enqueue(task func()) error
}
