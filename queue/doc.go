// Package queue provides BlockingChannel, an async-aware MPMC channel.
//
// # Quick Start
//
//	sched := goroutine.New()
//	ch := queue.New[Job](4, 2)
//
//	// Producer
//	ctx := sched.NewTask()
//	go func() {
//	    if err := ch.Push(ctx, job); queue.IsShutdown(err) {
//	        return
//	    }
//	}()
//
//	// Consumer
//	ctx2 := sched.NewTask()
//	go func() {
//	    v, err := ch.Pop(ctx2)
//	    if queue.IsShutdown(err) {
//	        return
//	    }
//	    process(v)
//	}()
//
//	// Orderly shutdown: releases every task parked in Push/Pop.
//	ch.Shutdown()
//
// # Pending Waiter Capacity
//
// waiterCapacity, rounded up to a power of two of at least 2 like the
// item capacity, bounds how many tasks may be parked on each side at
// once. If more tasks try to park than that rounded bound, Push/Pop
// return ErrNotifyCapacity rather than silently blocking forever —
// size the channel for your expected concurrency, or don't park more
// callers than you provisioned for.
package queue
