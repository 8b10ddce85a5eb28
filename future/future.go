// Package future implements Future, a single-shot result cell with at
// most one registered waiter. It is the counterpart to queue's
// many-to-many BlockingChannel: wherever exactly one task produces a
// result and exactly one task consumes it, a Future carries that
// result across goroutines without an intervening channel.
//
// A Future moves through at most four states: pending, setting_result
// (a brief transitional state while a producer writes the value),
// ready, and cancelled. Every producer method (SetOK, SetErr,
// SetCancelled) is a single-shot CAS out of pending; only the first
// caller wins.
package future

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"github.com/dustyrockpyle/tardy-http-client/sched"
)

type state int32

const (
	statePending state = iota
	stateSettingResult
	stateReady
	stateCancelled
)

// waiterRecord identifies the single task allowed to await a Future.
type waiterRecord struct {
	taskID    sched.TaskID
	scheduler sched.Handle
}

// Future holds a result of type T or an error of type E, delivered
// exactly once to exactly one waiter. The zero value is not usable;
// construct one with New or NewNotifying.
type Future[T any, E error] struct {
	state  atomix.Int32
	waiter atomic.Pointer[waiterRecord]

	value  T
	err    E
	hasErr bool
}

// New returns an unset Future with no pre-registered waiter.
func New[T any, E error]() *Future[T, E] {
	return &Future[T, E]{}
}

// NewNotifying returns an unset Future with ctx pre-registered as its
// waiter, so a producer's SetOK/SetErr/SetCancelled notifies ctx even
// before anyone calls AwaitResult.
func NewNotifying[T any, E error](ctx sched.Context) *Future[T, E] {
	f := &Future[T, E]{}
	f.waiter.Store(&waiterRecord{taskID: ctx.TaskID, scheduler: ctx.Scheduler})
	return f
}

// Done reports whether the future has left the pending state, in
// either direction (a result is being written, ready, or cancelled).
func (f *Future[T, E]) Done() bool {
	return state(f.state.LoadAcquire()) != statePending
}

// Cancelled reports whether the future was cancelled.
func (f *Future[T, E]) Cancelled() bool {
	return state(f.state.LoadAcquire()) == stateCancelled
}

// SetOK delivers v as the future's successful result. It returns
// ErrAlreadySet if a result was already set, or ErrCancelled if the
// future was cancelled first.
func (f *Future[T, E]) SetOK(v T) error {
	return f.setResult(v, *new(E), false)
}

// SetErr delivers err as the future's failed result. It returns
// ErrAlreadySet if a result was already set, or ErrCancelled if the
// future was cancelled first.
func (f *Future[T, E]) SetErr(err E) error {
	var zero T
	return f.setResult(zero, err, true)
}

func (f *Future[T, E]) setResult(v T, err E, hasErr bool) error {
	if !f.state.CompareAndSwapAcqRel(int32(statePending), int32(stateSettingResult)) {
		if state(f.state.LoadAcquire()) == stateCancelled {
			return ErrCancelled
		}
		return ErrAlreadySet
	}
	f.value = v
	f.err = err
	f.hasErr = hasErr
	f.state.StoreRelease(int32(stateReady))
	f.notify()
	return nil
}

// SetCancelled marks the future as cancelled. It returns
// ErrAlreadyCancelled if the future was already cancelled, or
// ErrAlreadySet if a result was already delivered.
func (f *Future[T, E]) SetCancelled() error {
	if !f.state.CompareAndSwapAcqRel(int32(statePending), int32(stateCancelled)) {
		if state(f.state.LoadAcquire()) == stateCancelled {
			return ErrAlreadyCancelled
		}
		return ErrAlreadySet
	}
	f.notify()
	return nil
}

func (f *Future[T, E]) notify() {
	w := f.waiter.Load()
	if w == nil {
		return
	}
	w.scheduler.Trigger(w.taskID)
	w.scheduler.Wake()
}

// AwaitResult blocks ctx's task until the future leaves the pending
// state, then returns its result. It returns ErrCancelled if the
// future was cancelled, or ErrAlreadyAwaited if a different task is
// already registered as the waiter.
//
// A future that was already set or cancelled before AwaitResult is
// called returns immediately without suspending ctx.
func (f *Future[T, E]) AwaitResult(ctx sched.Context) (T, error) {
	mine := &waiterRecord{taskID: ctx.TaskID, scheduler: ctx.Scheduler}
	if !f.waiter.CompareAndSwap(nil, mine) {
		existing := f.waiter.Load()
		if existing == nil || existing.taskID != ctx.TaskID {
			var zero T
			return zero, ErrAlreadyAwaited
		}
	}

	sw := spin.Wait{}
	for {
		switch state(f.state.LoadAcquire()) {
		case statePending:
			ctx.Scheduler.TriggerAwait()
		case stateSettingResult:
			sw.Once()
		case stateReady:
			if f.hasErr {
				var zero T
				return zero, f.err
			}
			return f.value, nil
		case stateCancelled:
			var zero T
			return zero, ErrCancelled
		}
	}
}
