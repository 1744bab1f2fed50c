package networkmanager

import (
	"testing"
	"time"
)

func TestPushPullRoundTrip(t *testing.T) {
	m := NewManager()
	defer m.Reset()

	addr := "inproc://networkmanager-test-pushpull"
	if err := m.Configure([]Spec{
		{UID: "rx", Kind: Receiver, URI: addr},
		{UID: "tx", Kind: Sender, URI: addr},
	}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}

	rx, err := m.GetReceiver("rx")
	if err != nil {
		t.Fatalf("GetReceiver failed: %v", err)
	}
	tx, err := m.GetSender("tx")
	if err != nil {
		t.Fatalf("GetSender failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if !tx.Send([]byte("hello"), time.Second, "") {
		t.Fatal("send timed out")
	}
	data, ok := rx.Receive(time.Second)
	if !ok {
		t.Fatal("receive timed out")
	}
	if string(data) != "hello" {
		t.Fatalf("got %q, want %q", data, "hello")
	}
}

func TestPubSubTopicRouting(t *testing.T) {
	m := NewManager()
	defer m.Reset()

	addr := "inproc://networkmanager-test-pubsub"
	if err := m.Configure([]Spec{
		{UID: "weather", Kind: Publisher, URI: addr},
	}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}

	sub, err := m.GetSubscriber("weather")
	if err != nil {
		t.Fatalf("GetSubscriber failed: %v", err)
	}
	pub, err := m.GetSender("weather")
	if err != nil {
		t.Fatalf("GetSender failed: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if !pub.Send([]byte("sunny"), time.Second, "") {
		t.Fatal("publish timed out")
	}
	data, ok := sub.Receive(time.Second)
	if !ok {
		t.Fatal("subscribe receive timed out")
	}
	if string(data) != "sunny" {
		t.Fatalf("got %q, want %q", data, "sunny")
	}
}

func TestGetSubscriberUnknownTopic(t *testing.T) {
	m := NewManager()
	defer m.Reset()

	if err := m.Configure(nil); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if _, err := m.GetSubscriber("nope"); err == nil {
		t.Fatal("expected an error for an unknown topic")
	}
}

func TestResetDestroysSockets(t *testing.T) {
	m := NewManager()
	addr := "inproc://networkmanager-test-reset"
	if err := m.Configure([]Spec{{UID: "rx", Kind: Receiver, URI: addr}}); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if _, err := m.GetReceiver("rx"); err != nil {
		t.Fatalf("GetReceiver failed: %v", err)
	}

	m.Reset()

	if _, err := m.GetReceiver("rx"); err == nil {
		t.Fatal("expected an error after Reset forgot the spec")
	}
}
