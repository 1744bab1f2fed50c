// Package queueprovider is the queue transport provider spec.md §6 names
// as an external collaborator: "get_queue<T>(uid) -> handle" with
// push/pop/try_push/try_pop, timeouts honored exactly. It is backed by
// github.com/Workiva/go-datastructures/queue's lock-free RingBuffer — the
// Go analogue of the C++ SPSC ring/deque implementations spec.md treats
// as out of scope.
package queueprovider

import (
	"errors"
	"time"

	wq "github.com/Workiva/go-datastructures/queue"
)

// NoBlock and Block mirror iomanager.NoBlock/iomanager.Block bit-for-bit.
// They are redefined here, rather than imported, so that this package (a
// transport-provider collaborator) does not depend on the façade that
// consumes it.
const (
	NoBlock time.Duration = 0
	Block   time.Duration = time.Duration(1<<63 - 1)
)

// ErrTimeout is returned by Push/Pop when the timeout window elapses
// without progress. TryPush/TryPop report that case as ok=false with a
// nil error.
var ErrTimeout = errors.New("queueprovider: timed out")

// ErrClosed is returned once the queue has been disposed (by Registry.Reset).
var ErrClosed = errors.New("queueprovider: queue is closed")

// pollInterval is how long a bounded Push sleeps between Offer attempts
// while waiting for room. Workiva's RingBuffer only exposes
// a blocking Put and a non-blocking Offer on the producer side (Poll with
// a timeout exists only for the consumer side), so a bounded-wait push is
// built as a poll loop against this interval — the same "poll instead of
// an interruptible blocking call" idiom spec.md §4.4 uses for the
// callback-dispatch loop.
const pollInterval = 2 * time.Millisecond

// Queue is a typed handle onto one named ring buffer.
type Queue[T any] struct {
	rb *wq.RingBuffer
}

func newQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{rb: wq.NewRingBuffer(uint64(capacity))}
}

// Push moves v into the queue, bounded by timeout.
func (q *Queue[T]) Push(v T, timeout time.Duration) error {
	if timeout == Block {
		if err := q.rb.Put(v); err != nil {
			return ErrClosed
		}
		return nil
	}

	deadline := time.Now().Add(timeout)
	for {
		// A single-slot RingBuffer accepts an Offer even while its slot
		// still holds an unread value, so fullness is checked first.
		ok := false
		var err error
		if q.rb.Len() < q.rb.Cap() || q.rb.IsDisposed() {
			ok, err = q.rb.Offer(v)
		}
		if err != nil {
			return ErrClosed
		}
		if ok {
			return nil
		}
		if timeout == NoBlock || time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(pollInterval)
	}
}

// TryPush is identical to Push but never wraps the timeout in an error
// type the caller must inspect — it just reports success/failure.
func (q *Queue[T]) TryPush(v T, timeout time.Duration) (bool, error) {
	err := q.Push(v, timeout)
	switch {
	case err == nil:
		return true, nil
	case err == ErrTimeout:
		return false, nil
	default:
		return false, err
	}
}

// Pop removes and returns one element, bounded by timeout.
func (q *Queue[T]) Pop(timeout time.Duration) (T, error) {
	var zero T

	if timeout == Block {
		v, err := q.rb.Get()
		if err != nil {
			return zero, ErrClosed
		}
		return v.(T), nil
	}

	if timeout == NoBlock {
		v, err := q.rb.Poll(time.Nanosecond)
		if err != nil {
			if err == wq.ErrDisposed {
				return zero, ErrClosed
			}
			return zero, ErrTimeout
		}
		return v.(T), nil
	}

	v, err := q.rb.Poll(timeout)
	if err != nil {
		if err == wq.ErrDisposed {
			return zero, ErrClosed
		}
		return zero, ErrTimeout
	}
	return v.(T), nil
}

// TryPop mirrors TryPush on the consumer side.
func (q *Queue[T]) TryPop(timeout time.Duration) (T, bool, error) {
	v, err := q.Pop(timeout)
	switch {
	case err == nil:
		return v, true, nil
	case err == ErrTimeout:
		var zero T
		return zero, false, nil
	default:
		var zero T
		return zero, false, err
	}
}

// Len reports the number of elements currently queued.
func (q *Queue[T]) Len() int {
	return int(q.rb.Len())
}

func (q *Queue[T]) dispose() {
	q.rb.Dispose()
}
