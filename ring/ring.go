// Package ring implements a fixed-capacity, lock-free, multi-producer
// multi-consumer FIFO queue.
//
// The algorithm is the classic Vyukov bounded MPMC ring: each cell
// carries a sequence number that arbitrates producer/consumer access
// without locks or a separate "full"/"empty" flag. A cell is writable
// when its sequence equals the producer's current position, and
// readable when its sequence equals that position plus one. Publishing
// a written cell bumps its sequence to position+1 (release); freeing a
// read cell bumps it to position+capacity, making it writable again
// one generation later.
//
// Progress is lock-free, not wait-free: under contention at least one
// producer (respectively consumer) always completes in a bounded
// number of steps, but a specific goroutine can in principle retry
// indefinitely if it keeps losing races. FIFO order is observed
// globally across all producers and all consumers.
package ring

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ErrFull is returned by Push when no writable cell is available.
// ErrEmpty is returned by Pop when no readable cell is available.
// Both are ordinary outcomes, not failures — callers decide how to
// react (drop, retry, park).
var (
	ErrFull  = errors.New("ring: full")
	ErrEmpty = errors.New("ring: empty")
)

// IsFull reports whether err is (or wraps) ErrFull.
func IsFull(err error) bool { return errors.Is(err, ErrFull) }

// IsEmpty reports whether err is (or wraps) ErrEmpty.
func IsEmpty(err error) bool { return errors.Is(err, ErrEmpty) }

// cell is a single slot in the ring: a sequence number plus its data.
// Padding keeps neighbouring cells off the same cache line.
type cell[T any] struct {
	sequence atomix.Uint64
	data     T
	_        padShort
}

// Ring is a bounded lock-free MPMC FIFO of values of type T.
type Ring[T any] struct {
	_        pad
	writeIdx atomix.Uint64
	_        pad
	readIdx  atomix.Uint64
	_        pad
	buffer   []cell[T]
	mask     uint64
	capacity uint64
}

// New creates a Ring whose capacity is the next power of two ≥
// max(2, minCapacity).
func New[T any](minCapacity int) *Ring[T] {
	n := uint64(roundToPow2(minCapacity))

	r := &Ring[T]{
		buffer:   make([]cell[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := uint64(0); i < n; i++ {
		r.buffer[i].sequence.StoreRelaxed(i)
	}
	return r
}

// Push attempts to publish value into the ring. It returns ErrFull if
// no cell is currently writable. A failed Push leaves the ring
// unchanged.
func (r *Ring[T]) Push(value T) error {
	sw := spin.Wait{}
	pos := r.writeIdx.LoadRelaxed()
	for {
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if r.writeIdx.CompareAndSwapRelaxed(pos, pos+1) {
				c.data = value
				c.sequence.StoreRelease(pos + 1)
				return nil
			}
			// Lost the race for this slot; reload and retry.
			pos = r.writeIdx.LoadRelaxed()
		case diff < 0:
			return ErrFull
		default:
			// Another producer has already advanced past pos.
			pos = r.writeIdx.LoadRelaxed()
		}
		sw.Once()
	}
}

// Pop attempts to consume the oldest value from the ring. It returns
// ErrEmpty if no cell is currently readable.
func (r *Ring[T]) Pop() (T, error) {
	sw := spin.Wait{}
	pos := r.readIdx.LoadRelaxed()
	for {
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if r.readIdx.CompareAndSwapRelaxed(pos, pos+1) {
				value := c.data
				var zero T
				c.data = zero
				c.sequence.StoreRelease(pos + r.capacity)
				return value, nil
			}
			pos = r.readIdx.LoadRelaxed()
		case diff < 0:
			var zero T
			return zero, ErrEmpty
		default:
			pos = r.readIdx.LoadRelaxed()
		}
		sw.Once()
	}
}

// ApproxLen returns an advisory count of items currently in the ring.
// It is a wrapping subtraction of two independently-read indices and
// may be stale the instant it is returned under concurrent use.
func (r *Ring[T]) ApproxLen() int {
	return int(r.writeIdx.LoadAcquire() - r.readIdx.LoadAcquire())
}

// Cap returns the ring's usable capacity (the rounded-up value passed
// to New).
func (r *Ring[T]) Cap() int {
	return int(r.capacity)
}

// roundToPow2 rounds n up to the next power of two, with a floor of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache-line padding to prevent false sharing between the
// independently-updated write/read indices.
type pad [64]byte

// padShort adds 56 bytes after a cell's data, so that together with the
// 8-byte sequence field every cell spans at least one 64-byte cache
// line whatever the size of T.
type padShort [64 - 8]byte
