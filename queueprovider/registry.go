package queueprovider

import (
	"fmt"
	"sync"
)

// Spec is the queue subset of a connection declaration, as the façade
// hands it to Configure after partitioning the full connection list by
// service type (spec.md §4.1).
type Spec struct {
	UID      string
	Capacity int
}

// ErrUnknownQueue is returned by GetQueue for a uid Configure never saw.
var ErrUnknownQueue = fmt.Errorf("queueprovider: unknown queue uid")

// ErrWrongType is returned when GetQueue[T] is called against a uid whose
// queue was already created for a different T.
var ErrWrongType = fmt.Errorf("queueprovider: queue was created for a different type")

// handle type-erases a *Queue[T] so the registry can hold heterogeneous
// queues in one map keyed by uid. A uid holds the queue built for the
// first T requested against it; GetQueue for any other T on that uid
// returns ErrWrongType rather than silently sharing the queue.
type handle struct {
	capacity int
	queue    any // *Queue[T] for the T first requested against this uid
	dispose  func()
}

// Registry is the process-wide queue provider. One per Manager.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
	open  map[string]*handle
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]Spec),
		open:  make(map[string]*handle),
	}
}

// Configure records the queue specs a later GetQueue call may resolve.
// Rejects a spec whose uid repeats, or whose capacity is non-positive.
func (r *Registry) Configure(specs []Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	specsByUID := make(map[string]Spec, len(specs))
	for _, spec := range specs {
		if _, dup := specsByUID[spec.UID]; dup {
			return fmt.Errorf("queueprovider: duplicate uid %q", spec.UID)
		}
		if spec.Capacity <= 0 {
			return fmt.Errorf("queueprovider: uid %q has non-positive capacity %d", spec.UID, spec.Capacity)
		}
		specsByUID[spec.UID] = spec
	}
	r.specs = specsByUID
	r.open = make(map[string]*handle)
	return nil
}

// GetQueue returns (creating on first call) the typed queue for uid.
func GetQueue[T any](r *Registry, uid string) (*Queue[T], error) {
	r.mu.RLock()
	if h, ok := r.open[uid]; ok {
		r.mu.RUnlock()
		q, ok := h.queue.(*Queue[T])
		if !ok {
			return nil, ErrWrongType
		}
		return q, nil
	}
	spec, known := r.specs[uid]
	r.mu.RUnlock()
	if !known {
		return nil, ErrUnknownQueue
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-checked: another goroutine may have created it between the
	// read-unlock above and this write-lock.
	if h, ok := r.open[uid]; ok {
		q, ok := h.queue.(*Queue[T])
		if !ok {
			return nil, ErrWrongType
		}
		return q, nil
	}

	q := newQueue[T](spec.Capacity)
	r.open[uid] = &handle{capacity: spec.Capacity, queue: q, dispose: q.dispose}
	return q, nil
}

// Reset disposes every open queue and forgets every spec. Safe to call
// more than once.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.open {
		h.dispose()
	}
	r.specs = make(map[string]Spec)
	r.open = make(map[string]*handle)
}
