// Package queue implements BlockingChannel, an async-aware MPMC channel
// built from three ring instances: one ring.Ring[T] holding items, and
// two ring.Ring[Waiter] holding parked-waiter records for each side.
//
// BlockingChannel never owns threads or an executor. Parking and
// releasing a task flow entirely through the sched.Handle a caller
// supplies in its sched.Context: a park attempt enqueues a Waiter
// record (not a task pointer) into the relevant pending ring, then
// calls TriggerAwait; a successful nonblocking push or pop pops one
// waiter off the opposite pending ring and calls Trigger followed by
// Wake on its scheduler.
package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/dustyrockpyle/tardy-http-client/ring"
	"github.com/dustyrockpyle/tardy-http-client/sched"
)

// Waiter identifies a parked task to be released: the task id plus the
// scheduler handle that owns it. Waiter is a plain value carried
// through a ring.Ring[Waiter] — never aliased, never allocated beyond
// the ring's own backing array.
type Waiter struct {
	TaskID    sched.TaskID
	Scheduler sched.Handle
}

// BlockingChannel is an async-aware bounded MPMC channel of values of
// type T.
type BlockingChannel[T any] struct {
	items         *ring.Ring[T]
	pendingPops   *ring.Ring[Waiter]
	pendingPushes *ring.Ring[Waiter]
	running       atomix.Bool
	parking       atomix.Int64
}

// New creates a BlockingChannel with the given item capacity and a
// pending-waiter ring of waiterCapacity slots on each side. Both
// capacities round up to the next power of two via ring.New.
func New[T any](itemCapacity, waiterCapacity int) *BlockingChannel[T] {
	c := &BlockingChannel[T]{
		items:         ring.New[T](itemCapacity),
		pendingPops:   ring.New[Waiter](waiterCapacity),
		pendingPushes: ring.New[Waiter](waiterCapacity),
	}
	c.running.StoreRelease(true)
	return c
}

// PushNowait attempts to enqueue v without parking. On success it
// releases one parked consumer, if any.
func (c *BlockingChannel[T]) PushNowait(v T) error {
	if err := c.items.Push(v); err != nil {
		return err
	}
	c.releaseOne(c.pendingPops)
	return nil
}

// PopNowait attempts to dequeue a value without parking. On success it
// releases one parked producer, if any.
func (c *BlockingChannel[T]) PopNowait() (T, error) {
	v, err := c.items.Pop()
	if err != nil {
		return v, err
	}
	c.releaseOne(c.pendingPushes)
	return v, nil
}

// Push enqueues v, parking the calling task on ctx if the item ring is
// full. It returns ErrShutdownWhileFull if the channel is shut down
// while still unable to push, or ErrNotifyCapacity if the pending-push
// ring itself has no room to record the park attempt.
func (c *BlockingChannel[T]) Push(ctx sched.Context, v T) error {
	if err := c.PushNowait(v); err == nil {
		return nil
	}

	c.parking.AddAcqRel(1)
	defer c.parking.AddAcqRel(-1)

	for {
		if !c.running.LoadAcquire() {
			return ErrShutdownWhileFull
		}

		w := Waiter{TaskID: ctx.TaskID, Scheduler: ctx.Scheduler}
		if err := c.pendingPushes.Push(w); err != nil {
			return ErrNotifyCapacity
		}

		ctx.Scheduler.TriggerAwait()

		if !c.running.LoadAcquire() {
			return ErrShutdownWhileFull
		}
		if err := c.PushNowait(v); err == nil {
			return nil
		}
		// Spurious wakeup or lost race against another pusher: retry.
	}
}

// Pop dequeues a value, parking the calling task on ctx if the item
// ring is empty. It returns ErrShutdown once the channel is shut down
// and empty, or ErrNotifyCapacity if the pending-pop ring itself has no
// room to record the park attempt.
func (c *BlockingChannel[T]) Pop(ctx sched.Context) (T, error) {
	if v, err := c.PopNowait(); err == nil {
		return v, nil
	}

	c.parking.AddAcqRel(1)
	defer c.parking.AddAcqRel(-1)

	var zero T
	for {
		if !c.running.LoadAcquire() {
			return zero, ErrShutdown
		}

		w := Waiter{TaskID: ctx.TaskID, Scheduler: ctx.Scheduler}
		if err := c.pendingPops.Push(w); err != nil {
			return zero, ErrNotifyCapacity
		}

		ctx.Scheduler.TriggerAwait()

		if !c.running.LoadAcquire() {
			return zero, ErrShutdown
		}
		if v, err := c.PopNowait(); err == nil {
			return v, nil
		}
	}
}

// DrainNowait repeatedly calls PopNowait into out until it is full or
// the channel is empty, returning the number of values written.
func (c *BlockingChannel[T]) DrainNowait(out []T) int {
	n := 0
	for n < len(out) {
		v, err := c.PopNowait()
		if err != nil {
			break
		}
		out[n] = v
		n++
	}
	return n
}

// ApproxLen returns an advisory count of items currently in the
// channel.
func (c *BlockingChannel[T]) ApproxLen() int {
	return c.items.ApproxLen()
}

// Shutdown transitions the channel to not-running and releases every
// waiter parked at or after the moment of the call. It loops draining
// both pending rings until they are empty and no task is mid-park,
// closing the window where a task enqueues its Waiter just after the
// running flag flips but is never subsequently triggered.
func (c *BlockingChannel[T]) Shutdown() {
	c.running.StoreRelease(false)

	sw := spin.Wait{}
	for {
		drainedPush := c.drainWaiters(c.pendingPushes)
		drainedPop := c.drainWaiters(c.pendingPops)
		if !drainedPush && !drainedPop && c.parking.LoadAcquire() == 0 {
			return
		}
		sw.Once()
	}
}

// drainWaiters pops and releases every waiter currently in pending,
// returning whether it released at least one.
func (c *BlockingChannel[T]) drainWaiters(pending *ring.Ring[Waiter]) bool {
	released := false
	for {
		w, err := pending.Pop()
		if err != nil {
			return released
		}
		w.Scheduler.Trigger(w.TaskID)
		w.Scheduler.Wake()
		released = true
	}
}

// releaseOne pops a single waiter from pending, if any, and releases
// it. Spurious wakeups are expected and tolerated: a released waiter
// always re-tests its nonblocking operation before parking again.
func (c *BlockingChannel[T]) releaseOne(pending *ring.Ring[Waiter]) {
	w, err := pending.Pop()
	if err != nil {
		return
	}
	w.Scheduler.Trigger(w.TaskID)
	w.Scheduler.Wake()
}
