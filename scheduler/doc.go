/*
Package scheduler provides a cooperative, single-consumer work queue for zero-delay tasks.

Tasks run strictly after the Enqueue call that submitted them and in submission order. The queue
can be driven by its own loop goroutine (Start/Stop) or by a host that calls RunPending on each turn.
*/
package scheduler
