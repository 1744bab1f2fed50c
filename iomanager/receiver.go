package iomanager

import (
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/sirupsen/logrus"

	"github.com/gcrone/iomanager/configs"
	"github.com/gcrone/iomanager/networkmanager"
	"github.com/gcrone/iomanager/queueprovider"
	"github.com/gcrone/iomanager/serialize"
)

// Receiver is the read-side half of one connection, parameterized on the
// message type it carries (spec.md §4.3).
type Receiver[T any] interface {
	// Receive blocks for at most timeout waiting for one value. It
	// fails with CallbackConflict if a callback is currently bound
	// (spec.md §4.4: a connection is either pulled or pushed to, never
	// both at once). On a network-backed receiver whose T is not
	// serializable, it returns a zero-value T without consulting the
	// socket at all (spec.md §4.3).
	Receive(timeout time.Duration) (T, error)

	// TryReceive is Receive without the error-on-timeout distinction.
	TryReceive(timeout time.Duration) (v T, ok bool, err error)

	// AddCallback starts a background goroutine that calls fn for every
	// value received, until RemoveCallback is called. Calling
	// AddCallback while already bound replaces the running callback
	// (the lock is held across the whole operation, matching the
	// resolved ambiguity in spec.md §9 about the callback mutex's
	// scope: the entire add/remove sequence is one critical section,
	// not just the flag flip).
	AddCallback(fn func(T))

	// RemoveCallback stops a bound callback, blocking until its
	// goroutine has observed the stop and returned. A no-op if no
	// callback is bound.
	RemoveCallback()
}

// callbackState is embedded in both queueReceiver and networkReceiver so
// the dispatch-loop bookkeeping is written once.
type callbackState struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// bind starts loop in a goroutine, holding mu across the whole
// replace-if-bound sequence. uid is only used to tag the log lines that
// mark the callback worker's lifetime.
func (c *callbackState) bind(uid string, loop func(stop <-chan struct{})) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stop)
		<-c.done
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.running = true

	tag := shortuuid.New()[:8]
	stop, done := c.stop, c.done
	go func() {
		logrus.Debugf("callback[%s-%s]: started", uid, tag)
		defer logrus.Debugf("callback[%s-%s]: stopped", uid, tag)
		defer close(done)
		loop(stop)
	}()
}

// unbind stops a running loop and waits for it to exit, holding mu across
// the whole operation.
func (c *callbackState) unbind() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	close(c.stop)
	<-c.done
	c.running = false
}

func (c *callbackState) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// queueReceiver routes T from an in-process ring buffer.
type queueReceiver[T any] struct {
	callbackState
	uid   string
	queue *queueprovider.Queue[T]
}

func (r *queueReceiver[T]) Receive(timeout time.Duration) (T, error) {
	var zero T
	if r.isRunning() {
		return zero, newError(CallbackConflict, r.uid, "a callback is bound to this receiver")
	}

	v, err := r.queue.Pop(timeout)
	switch err {
	case nil:
		return v, nil
	case queueprovider.ErrTimeout:
		return zero, newError(Timeout, r.uid, "receive timed out")
	case queueprovider.ErrClosed:
		return zero, newError(TransportFailure, r.uid, "queue was reset")
	default:
		return zero, wrapError(TransportFailure, r.uid, "queue pop failed", err)
	}
}

func (r *queueReceiver[T]) TryReceive(timeout time.Duration) (T, bool, error) {
	var zero T
	if r.isRunning() {
		return zero, false, newError(CallbackConflict, r.uid, "a callback is bound to this receiver")
	}
	v, ok, err := r.queue.TryPop(timeout)
	if err == queueprovider.ErrClosed {
		return zero, false, newError(TransportFailure, r.uid, "queue was reset")
	}
	return v, ok, nil
}

func (r *queueReceiver[T]) AddCallback(fn func(T)) {
	r.bind(r.uid, func(stop <-chan struct{}) {
		for {
			select {
			case <-stop:
				return
			default:
			}
			v, ok, err := r.queue.TryPop(configs.QueuePollInterval)
			if err != nil {
				return // queue was reset out from under the callback
			}
			if ok {
				fn(v)
			}
		}
	})
}

func (r *queueReceiver[T]) RemoveCallback() {
	r.unbind()
}

// networkReceiver routes T from a socket, decoding each frame.
type networkReceiver[T any] struct {
	callbackState
	uid    string
	socket *networkmanager.Socket
}

func (r *networkReceiver[T]) Receive(timeout time.Duration) (T, error) {
	var zero T
	if r.isRunning() {
		return zero, newError(CallbackConflict, r.uid, "a callback is bound to this receiver")
	}

	if !serialize.IsSerializable[T]() {
		// T cannot come over the wire at all; short-circuit without
		// consulting the socket rather than raising (spec.md §4.3).
		return zero, nil
	}

	data, ok := r.socket.Receive(timeout)
	if !ok {
		// A zero-length frame and a plain timeout are indistinguishable
		// here; both surface as Timeout (spec.md §9).
		return zero, newError(Timeout, r.uid, "receive timed out")
	}

	v, err := serialize.Decode[T](data)
	if err != nil {
		return zero, wrapError(NotSerializable, r.uid, "failed to decode received value", err)
	}
	return v, nil
}

func (r *networkReceiver[T]) TryReceive(timeout time.Duration) (T, bool, error) {
	v, err := r.Receive(timeout)
	if IsKind(err, Timeout) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v, true, nil
}

func (r *networkReceiver[T]) AddCallback(fn func(T)) {
	r.bind(r.uid, func(stop <-chan struct{}) {
		for {
			select {
			case <-stop:
				return
			default:
			}
			data, ok := r.socket.Receive(configs.NetworkPollInterval)
			if !ok {
				continue
			}
			v, err := serialize.Decode[T](data)
			if err != nil {
				continue // malformed frame, drop and keep polling
			}
			fn(v)
		}
	})
}

func (r *networkReceiver[T]) RemoveCallback() {
	r.unbind()
}
