// Package future provides a one-shot, single-waiter result cell used
// wherever exactly one producer hands a value back to exactly one
// consumer across goroutines.
//
// # Quick Start
//
//	s := goroutine.New()
//	f := future.New[Result, error]()
//
//	go func() {
//	    res, err := doWork()
//	    if err != nil {
//	        f.SetErr(err)
//	        return
//	    }
//	    f.SetOK(res)
//	}()
//
//	ctx := s.NewTask()
//	res, err := f.AwaitResult(ctx)
//
// # Pre-registered Waiters
//
// NewNotifying binds a waiter at construction time rather than at the
// first AwaitResult call, so a producer that finishes before the
// consumer ever awaits still wakes it promptly instead of relying on
// the consumer's own re-check loop.
package future
