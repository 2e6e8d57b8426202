// Package queue provides the fixed-capacity single-producer/single-consumer
// ring buffers used to move work out of interrupt context and between cores.
package queue

import (
	"errors"
	"sync/atomic"
)

var (
	ErrFull      = errors.New("queue full")
	ErrCorrupted = errors.New("queue indices out of range")
)

// Ring is a circular buffer with one slot permanently reserved, so a ring
// built with capacity N holds at most N-1 items. Only the producer writes
// head and only the consumer writes tail, which is what makes it safe
// without a lock. Exactly one producer and one consumer may use an instance.
type Ring[T any] struct {
	buf  []T
	size uint32
	head atomic.Uint32 // next write position, producer only
	tail atomic.Uint32 // next read position, consumer only

	drops      atomic.Uint32
	corruption atomic.Uint32
}

// Stats reports what a ring has thrown away since it was created
type Stats struct {
	Dropped   uint32 // pushes rejected because the ring was full
	Corrupted uint32 // times the index guard reset the ring
}

// New creates a ring with the given capacity (one slot of which is
// reserved). Capacities below 2 are raised to 2.
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		size: uint32(capacity),
	}
}

// TryPush appends v, returning ErrFull if the ring has no free slot.
// It never blocks.
func (r *Ring[T]) TryPush(v T) error {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= r.size || tail >= r.size {
		r.reset()
		head, tail = 0, 0
	}

	next := head + 1
	if next == r.size {
		next = 0
	}
	if next == tail {
		r.drops.Add(1)
		return ErrFull
	}

	r.buf[head] = v
	r.head.Store(next)
	return nil
}

// TryPop removes the oldest item. The second result is false when the ring
// is empty, or when it was found corrupted and has just been reset.
func (r *Ring[T]) TryPop() (T, bool) {
	var zero T
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= r.size || tail >= r.size {
		r.reset()
		return zero, false
	}
	if head == tail {
		return zero, false
	}

	v := r.buf[tail]
	r.buf[tail] = zero
	tail++
	if tail == r.size {
		tail = 0
	}
	r.tail.Store(tail)
	return v, true
}

// Check runs the index guard and reports whether the ring had to be reset
func (r *Ring[T]) Check() bool {
	if r.head.Load() < r.size && r.tail.Load() < r.size {
		return false
	}
	r.reset()
	return true
}

// Corrupt pushes the write index out of range so the next access trips the
// guard. Used to exercise recovery in consumers.
func (r *Ring[T]) Corrupt() {
	r.head.Store(r.size)
}

// Len returns the number of queued items
func (r *Ring[T]) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= r.size || tail >= r.size {
		return 0
	}
	if head >= tail {
		return int(head - tail)
	}
	return int(r.size - tail + head)
}

// IsEmpty returns true if there is nothing to pop
func (r *Ring[T]) IsEmpty() bool {
	return r.Len() == 0
}

// Cap returns the number of items the ring can hold (capacity minus the
// reserved slot)
func (r *Ring[T]) Cap() int {
	return int(r.size) - 1
}

// Drain discards everything queued. Consumer side only.
func (r *Ring[T]) Drain() int {
	n := 0
	for {
		if _, ok := r.TryPop(); !ok {
			return n
		}
		n++
	}
}

// Stats returns the drop and corruption counters
func (r *Ring[T]) Stats() Stats {
	return Stats{
		Dropped:   r.drops.Load(),
		Corrupted: r.corruption.Load(),
	}
}

func (r *Ring[T]) reset() {
	r.tail.Store(0)
	r.head.Store(0)
	r.corruption.Add(1)
}
