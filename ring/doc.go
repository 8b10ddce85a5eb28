// Package ring provides a single bounded, lock-free MPMC FIFO queue.
//
// # Quick Start
//
//	r := ring.New[Job](1024)
//
//	// Producer (any number of goroutines)
//	if err := r.Push(job); ring.IsFull(err) {
//	    // backpressure: retry later
//	}
//
//	// Consumer (any number of goroutines)
//	job, err := r.Pop()
//	if ring.IsEmpty(err) {
//	    // nothing available yet
//	}
//
// # Capacity
//
// Capacity always rounds up to the next power of two, with a floor of
// 2:
//
//	ring.New[int](3).Cap()    // 4
//	ring.New[int](1000).Cap() // 1024
//
// # Length
//
// ApproxLen is advisory only. Accurate counts in a lock-free queue
// require cross-core synchronization this package deliberately avoids
// on the hot path; track counts in application logic if exactness
// matters.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but
// cannot observe the happens-before relationships this package
// establishes through acquire/release orderings on independent
// variables. Tests that would produce false positives skip themselves
// when ring.RaceEnabled is true (set by the race build tag).
package ring
