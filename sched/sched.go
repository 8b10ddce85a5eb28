// Package sched defines the runtime contract the concurrency kernel
// (ring, queue, future) requires from a host cooperative scheduler.
//
// The kernel never owns an executor. It suspends and resumes tasks
// purely through the Handle interface: Trigger marks a task runnable,
// TriggerAwait suspends the calling task until triggered, and Wake
// nudges an idle event loop. All three must be safe to call from any
// OS thread, since a release-side goroutine commonly lives on a
// different thread than the parked task it wakes.
package sched

// TaskID identifies a task within a single Handle. It carries no
// meaning outside the scheduler that issued it.
type TaskID uint64

// Handle is the scheduler-facing half of the runtime contract.
// Implementations must make every method safe to call concurrently
// from any goroutine, including one that does not belong to the
// scheduler itself.
type Handle interface {
	// Trigger marks task runnable. It is idempotent: triggering a task
	// that is already runnable (or that has already completed) must
	// not panic or block.
	Trigger(task TaskID)

	// TriggerAwait suspends the calling task until some other task or
	// thread calls Trigger with its TaskID. It returns on any trigger,
	// spurious or not — callers must re-test whatever condition they
	// were waiting on.
	TriggerAwait()

	// Wake nudges the scheduler's event loop if it is idle waiting on
	// I/O. Safe to call from any thread, including when the loop is
	// already awake.
	Wake()
}

// Context carries the identity of "the current task" through an
// operation that may need to park it.
type Context struct {
	TaskID    TaskID
	Scheduler Handle
}
