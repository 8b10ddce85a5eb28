// Package goroutine is a minimal reference implementation of the
// sched.Handle / sched.Context runtime contract, backed by one native
// goroutine per task.
//
// It is not the host cooperative runtime the kernel (ring, queue,
// future) assumes exists externally — it exists only so this repo's
// own tests have something concrete to park tasks on. Only the queue
// and future test files import this package; no non-test code under
// ring, queue, or future does.
package goroutine

import "github.com/dustyrockpyle/tardy-http-client/sched"

// Scheduler is a registry of parked tasks, each represented by a
// buffered notification channel. It has no run loop of its own: every
// "task" is simply whichever goroutine is currently blocked in
// TriggerAwait on its own channel.
type Scheduler struct {
	tasks  chan map[sched.TaskID]chan struct{}
	nextID chan sched.TaskID
}

// New creates an empty Scheduler.
func New() *Scheduler {
	s := &Scheduler{
		tasks:  make(chan map[sched.TaskID]chan struct{}, 1),
		nextID: make(chan sched.TaskID, 1),
	}
	s.tasks <- make(map[sched.TaskID]chan struct{})
	s.nextID <- 1
	return s
}

// handle is the per-task view of a Scheduler: TriggerAwait parks the
// goroutine that owns it, while Trigger/Wake reach into the shared
// registry to release any task by id.
type handle struct {
	sched *Scheduler
	park  chan struct{}
}

// NewTask registers a new task and returns the Context the caller
// should thread through queue/future operations on this
// goroutine.
func (s *Scheduler) NewTask() sched.Context {
	id := <-s.nextID
	s.nextID <- id + 1

	park := make(chan struct{}, 1)
	tasks := <-s.tasks
	tasks[id] = park
	s.tasks <- tasks

	return sched.Context{TaskID: id, Scheduler: &handle{sched: s, park: park}}
}

// Forget removes a completed task from the registry. Callers should
// invoke this once a task will never be triggered again, to avoid
// unbounded growth of the registry.
func (s *Scheduler) Forget(task sched.TaskID) {
	tasks := <-s.tasks
	delete(tasks, task)
	s.tasks <- tasks
}

func (h *handle) Trigger(task sched.TaskID) {
	tasks := <-h.sched.tasks
	ch, ok := tasks[task]
	h.sched.tasks <- tasks
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
		// Already runnable; Trigger is idempotent.
	}
}

func (h *handle) TriggerAwait() {
	<-h.park
}

func (h *handle) Wake() {
	// No event loop to nudge: every task is a real goroutine already
	// scheduled by the Go runtime.
}
