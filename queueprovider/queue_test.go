package queueprovider

import (
	"testing"
	"time"
)

func TestQueuePushPopRoundTrip(t *testing.T) {
	q := newQueue[int](4)

	if err := q.Push(42, Block); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	v, err := q.Pop(Block)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestQueuePopTimesOutWhenEmpty(t *testing.T) {
	q := newQueue[string](2)

	_, err := q.Pop(10 * time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("got err %v, want ErrTimeout", err)
	}
}

func TestQueuePushTimesOutWhenFull(t *testing.T) {
	q := newQueue[int](1)

	if err := q.Push(1, NoBlock); err != nil {
		t.Fatalf("first push failed: %v", err)
	}
	err := q.Push(2, 10*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("got err %v, want ErrTimeout", err)
	}
}

func TestQueueTryPushTryPop(t *testing.T) {
	q := newQueue[int](1)

	ok, err := q.TryPush(1, NoBlock)
	if err != nil || !ok {
		t.Fatalf("TryPush = %v, %v, want true, nil", ok, err)
	}

	ok, err = q.TryPush(2, NoBlock)
	if err != nil || ok {
		t.Fatalf("TryPush into full queue = %v, %v, want false, nil", ok, err)
	}

	v, ok, err := q.TryPop(NoBlock)
	if err != nil || !ok || v != 1 {
		t.Fatalf("TryPop = %v, %v, %v, want 1, true, nil", v, ok, err)
	}
}

func TestQueueDisposeUnblocksWaiters(t *testing.T) {
	q := newQueue[int](1)
	done := make(chan error, 1)

	go func() {
		_, err := q.Pop(Block)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.dispose()

	select {
	case err := <-done:
		if err != ErrClosed {
			t.Fatalf("got err %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after dispose")
	}
}

func TestRegistryGetQueueIsIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Configure([]Spec{{UID: "q1", Capacity: 4}}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}

	q1, err := GetQueue[int](r, "q1")
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	q2, err := GetQueue[int](r, "q1")
	if err != nil {
		t.Fatalf("GetQueue (second call) failed: %v", err)
	}
	if q1 != q2 {
		t.Fatal("GetQueue returned different handles for the same uid")
	}
}

func TestRegistryGetQueueWrongType(t *testing.T) {
	r := NewRegistry()
	if err := r.Configure([]Spec{{UID: "q1", Capacity: 4}}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}

	if _, err := GetQueue[int](r, "q1"); err != nil {
		t.Fatalf("GetQueue[int] failed: %v", err)
	}
	if _, err := GetQueue[string](r, "q1"); err != ErrWrongType {
		t.Fatalf("got err %v, want ErrWrongType", err)
	}
}

func TestRegistryGetQueueUnknownUID(t *testing.T) {
	r := NewRegistry()
	if err := r.Configure(nil); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if _, err := GetQueue[int](r, "missing"); err != ErrUnknownQueue {
		t.Fatalf("got err %v, want ErrUnknownQueue", err)
	}
}

func TestRegistryResetDisposesQueues(t *testing.T) {
	r := NewRegistry()
	if err := r.Configure([]Spec{{UID: "q1", Capacity: 4}}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	q, err := GetQueue[int](r, "q1")
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	if err := q.Push(1, NoBlock); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	r.Reset()

	if _, err := q.Pop(10 * time.Millisecond); err != ErrClosed {
		t.Fatalf("got err %v after reset, want ErrClosed", err)
	}
	if _, err := GetQueue[int](r, "q1"); err != ErrUnknownQueue {
		t.Fatalf("GetQueue after reset = %v, want ErrUnknownQueue", err)
	}
}
