package iomanager

import "testing"

func TestParseQueueURI(t *testing.T) {
	qs, err := ParseQueueURI("queue://ring:128")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if qs.Impl != "ring" || qs.Capacity != 128 {
		t.Fatalf("got %+v, want impl=ring capacity=128", qs)
	}
}

func TestParseQueueURIRejectsMissingCapacity(t *testing.T) {
	if _, err := ParseQueueURI("queue://ring"); err == nil {
		t.Fatal("expected an error for a missing capacity segment")
	}
}

func TestParseQueueURIRejectsNonPositiveCapacity(t *testing.T) {
	if _, err := ParseQueueURI("queue://ring:0"); err == nil {
		t.Fatal("expected an error for a zero capacity")
	}
}

func TestCatalogBuildRejectsDuplicateUID(t *testing.T) {
	c := newCatalog()
	err := c.build([]ConnectionId{
		{UID: "a", ServiceType: Queue, URI: "queue://ring:4"},
		{UID: "a", ServiceType: Queue, URI: "queue://ring:4"},
	})
	if err == nil {
		t.Fatal("expected a duplicate-uid error")
	}
	if !IsKind(err, Configuration) {
		t.Fatalf("got kind %v, want Configuration", err)
	}
}

func TestCatalogBuildRejectsInvalidURI(t *testing.T) {
	c := newCatalog()
	err := c.build([]ConnectionId{
		{UID: "a", ServiceType: NetSender, URI: "http://example.com"},
	})
	if err == nil {
		t.Fatal("expected an invalid-uri error")
	}
}

func TestCatalogLookupAndReset(t *testing.T) {
	c := newCatalog()
	if err := c.build([]ConnectionId{{UID: "a", ServiceType: Queue, URI: "queue://ring:4"}}); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := c.lookup("a"); !ok {
		t.Fatal("expected uid 'a' to be found")
	}
	c.reset()
	if _, ok := c.lookup("a"); ok {
		t.Fatal("expected uid 'a' to be gone after reset")
	}
}

func TestCheckDirectionRejectsMismatch(t *testing.T) {
	err := checkDirection(ConnectionRef{UID: "a", Direction: Input}, NetSender)
	if err == nil || !IsKind(err, DirectionMismatch) {
		t.Fatalf("got %v, want DirectionMismatch", err)
	}

	err = checkDirection(ConnectionRef{UID: "b", Direction: Output}, NetReceiver)
	if err == nil || !IsKind(err, DirectionMismatch) {
		t.Fatalf("got %v, want DirectionMismatch", err)
	}
}

func TestLoadConnections(t *testing.T) {
	raw := []map[string]any{
		{"UID": "a", "ServiceType": "queue", "URI": "queue://ring:8"},
		{"UID": "b", "ServiceType": "NetSender", "URI": "tcp://127.0.0.1:6000"},
	}
	conns, err := LoadConnections(raw)
	if err != nil {
		t.Fatalf("LoadConnections failed: %v", err)
	}
	if len(conns) != 2 {
		t.Fatalf("got %d connections, want 2", len(conns))
	}
	if conns[0].ServiceType != Queue || conns[1].ServiceType != NetSender {
		t.Fatalf("got %+v", conns)
	}
}

func TestLoadConnectionsRejectsUnknownServiceType(t *testing.T) {
	raw := []map[string]any{{"UID": "a", "ServiceType": "bogus", "URI": "queue://ring:8"}}
	if _, err := LoadConnections(raw); err == nil {
		t.Fatal("expected an error for an unknown service_type")
	}
}
