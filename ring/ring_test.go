package ring_test

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"code.hybscloud.com/iox"

	"github.com/dustyrockpyle/tardy-http-client/ring"
)

// TestMinSize covers scenario S1: Ring<u32> with min=2 rounds up to
// capacity 2, fills, and drains in FIFO order.
func TestMinSize(t *testing.T) {
	r := ring.New[uint32](2)
	if r.Cap() != 2 {
		t.Fatalf("Cap: got %d, want 2", r.Cap())
	}

	if err := r.Push(42); err != nil {
		t.Fatalf("Push(42): %v", err)
	}
	if err := r.Push(43); err != nil {
		t.Fatalf("Push(43): %v", err)
	}
	if err := r.Push(44); !errors.Is(err, ring.ErrFull) {
		t.Fatalf("Push(44): got %v, want ErrFull", err)
	} else if !ring.IsFull(err) {
		t.Fatalf("IsFull(%v): got false, want true", err)
	}

	if v, err := r.Pop(); err != nil || v != 42 {
		t.Fatalf("Pop: got (%d, %v), want (42, nil)", v, err)
	}
	if v, err := r.Pop(); err != nil || v != 43 {
		t.Fatalf("Pop: got (%d, %v), want (43, nil)", v, err)
	}
	if _, err := r.Pop(); !errors.Is(err, ring.ErrEmpty) {
		t.Fatalf("Pop on empty: got %v, want ErrEmpty", err)
	} else if !ring.IsEmpty(err) {
		t.Fatalf("IsEmpty(%v): got false, want true", err)
	}
}

// TestWrap covers scenario S2: capacity 8, interleaved push/pop cycles
// past the point where cell sequence numbers wrap their generation.
func TestWrap(t *testing.T) {
	r := ring.New[int](8)
	if r.Cap() != 8 {
		t.Fatalf("Cap: got %d, want 8", r.Cap())
	}

	for i := 0; i < 4; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		v, err := r.Pop()
		if err != nil || v != i {
			t.Fatalf("Pop(%d): got (%d, %v)", i, v, err)
		}
	}

	for i := 4; i < 12; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := r.Push(99); !errors.Is(err, ring.ErrFull) {
		t.Fatalf("Push(99) on full: got %v, want ErrFull", err)
	}
	for i := 4; i < 12; i++ {
		v, err := r.Pop()
		if err != nil || v != i {
			t.Fatalf("Pop(%d): got (%d, %v)", i, v, err)
		}
	}
	if _, err := r.Pop(); !errors.Is(err, ring.ErrEmpty) {
		t.Fatalf("Pop on empty: got %v, want ErrEmpty", err)
	}
}

// TestRoundTripOrder covers testable property 1: pushes bounded by
// capacity come back out in the order they were pushed.
func TestRoundTripOrder(t *testing.T) {
	r := ring.New[int](16)
	for i := 0; i < 16; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < 16; i++ {
		v, err := r.Pop()
		if err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("Pop order: got %d, want %d", v, i)
		}
	}
}

// TestCapacityRoundsUp verifies the constructor rounds the requested
// minimum up to the next power of two.
func TestCapacityRoundsUp(t *testing.T) {
	cases := []struct{ min, want int }{
		{0, 2}, {1, 2}, {2, 2}, {3, 4}, {4, 4}, {5, 8}, {1000, 1024}, {1024, 1024},
	}
	for _, c := range cases {
		if got := ring.New[int](c.min).Cap(); got != c.want {
			t.Fatalf("New(%d).Cap(): got %d, want %d", c.min, got, c.want)
		}
	}
}

// TestApproxLen checks the advisory length tracks pushes and pops.
func TestApproxLen(t *testing.T) {
	r := ring.New[int](8)
	if got := r.ApproxLen(); got != 0 {
		t.Fatalf("ApproxLen: got %d, want 0", got)
	}
	for i := 0; i < 3; i++ {
		_ = r.Push(i)
	}
	if got := r.ApproxLen(); got != 3 {
		t.Fatalf("ApproxLen: got %d, want 3", got)
	}
	_, _ = r.Pop()
	if got := r.ApproxLen(); got != 2 {
		t.Fatalf("ApproxLen: got %d, want 2", got)
	}
}

// TestMPMCConservation covers scenario S3 and testable property 4: M
// producers each push a disjoint range, N consumers drain until the
// total count is reached, and the multiset popped equals the union of
// produced ranges with no duplicates or losses.
func TestMPMCConservation(t *testing.T) {
	if ring.RaceEnabled || testing.Short() {
		t.Skip("skip: lock-free stress test uses cross-variable memory ordering")
	}

	const (
		numProducers = 4
		numConsumers = 4
		perProducer  = 100_000
		capacity     = 1024
	)

	r := ring.New[int](capacity)
	total := numProducers * perProducer

	var produced, consumed []int
	var producedMu, consumedMu sync.Mutex
	var wg sync.WaitGroup

	for p := 0; p < numProducers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			local := make([]int, 0, perProducer)
			base := id * perProducer
			for i := 0; i < perProducer; i++ {
				v := base + i
				for r.Push(v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
				local = append(local, v)
			}
			producedMu.Lock()
			produced = append(produced, local...)
			producedMu.Unlock()
		}(p)
	}

	var stop sync.WaitGroup
	stop.Add(numConsumers)
	consumedCount := 0
	var countMu sync.Mutex
	for c := 0; c < numConsumers; c++ {
		go func() {
			defer stop.Done()
			backoff := iox.Backoff{}
			local := make([]int, 0, perProducer)
			for {
				countMu.Lock()
				done := consumedCount >= total
				countMu.Unlock()
				if done {
					break
				}
				v, err := r.Pop()
				if err != nil {
					backoff.Wait()
					continue
				}
				backoff.Reset()
				local = append(local, v)
				countMu.Lock()
				consumedCount++
				countMu.Unlock()
			}
			consumedMu.Lock()
			consumed = append(consumed, local...)
			consumedMu.Unlock()
		}()
	}

	wg.Wait()
	stop.Wait()

	if len(produced) != total || len(consumed) != total {
		t.Fatalf("count mismatch: produced %d, consumed %d, want %d", len(produced), len(consumed), total)
	}

	sort.Ints(produced)
	sort.Ints(consumed)
	for i := range produced {
		if produced[i] != consumed[i] {
			t.Fatalf("mismatch at %d: produced %d, consumed %d", i, produced[i], consumed[i])
		}
	}
}
