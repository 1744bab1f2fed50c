package iomanager

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ServiceType names the transport kind a connection is declared against.
type ServiceType int

const (
	Queue ServiceType = iota
	NetSender
	NetReceiver
	PubSub
)

func (s ServiceType) String() string {
	switch s {
	case Queue:
		return "Queue"
	case NetSender:
		return "NetSender"
	case NetReceiver:
		return "NetReceiver"
	case PubSub:
		return "PubSub"
	default:
		return "Unknown"
	}
}

// Direction marks which end of a connection a ConnectionRef names.
type Direction int

const (
	// Unspecified means the ref does not constrain direction; any
	// service type is accepted.
	Unspecified Direction = iota
	Input
	Output
)

// ConnectionId is the canonical declaration of one connection, as it lives
// in the catalog. See spec.md §3.
type ConnectionId struct {
	UID          string
	ServiceType  ServiceType
	DataTypeHint string // informational only, never type-checked
	URI          string
}

// QueueSpec is the parsed form of a queue:// uri.
type QueueSpec struct {
	Impl     string
	Capacity int
}

// ParseQueueURI parses "queue://<impl>:<capacity>".
func ParseQueueURI(uri string) (QueueSpec, error) {
	rest, ok := strings.CutPrefix(uri, "queue://")
	if !ok {
		return QueueSpec{}, fmt.Errorf("iomanager: uri %q does not have the queue:// scheme", uri)
	}
	impl, capStr, ok := strings.Cut(rest, ":")
	if !ok || impl == "" || capStr == "" {
		return QueueSpec{}, fmt.Errorf("iomanager: queue uri %q must be queue://<impl>:<capacity>", uri)
	}
	capacity, err := strconv.Atoi(capStr)
	if err != nil || capacity <= 0 {
		return QueueSpec{}, fmt.Errorf("iomanager: queue uri %q has a non-positive capacity", uri)
	}
	return QueueSpec{Impl: impl, Capacity: capacity}, nil
}

// validateURI checks that uri parses and that its scheme matches st.
func validateURI(st ServiceType, uri string) error {
	if st == Queue {
		_, err := ParseQueueURI(uri)
		return err
	}

	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("iomanager: uri %q does not parse: %w", uri, err)
	}
	switch u.Scheme {
	case "tcp", "inproc", "ipc":
		return nil
	default:
		return fmt.Errorf("iomanager: uri %q has unsupported scheme %q for a network connection", uri, u.Scheme)
	}
}

// ConnectionRef is the user-facing handle callers obtain a Sender/Receiver
// through. Multiple refs may resolve to the same uid.
type ConnectionRef struct {
	Name      string // caller-chosen, used only for logging
	UID       string
	Direction Direction
	Topic     string // only meaningful for PubSub connections
}

// catalog is the process-wide, read-mostly table of declared connections.
type catalog struct {
	byUID map[string]ConnectionId
}

func newCatalog() *catalog {
	return &catalog{byUID: make(map[string]ConnectionId)}
}

func (c *catalog) build(connections []ConnectionId) error {
	seen := make(map[string]struct{}, len(connections))
	for _, conn := range connections {
		if _, dup := seen[conn.UID]; dup {
			return newError(Configuration, conn.UID, "duplicate connection uid")
		}
		seen[conn.UID] = struct{}{}

		if err := validateURI(conn.ServiceType, conn.URI); err != nil {
			return wrapError(Configuration, conn.UID, "invalid connection uri", err)
		}
	}

	byUID := make(map[string]ConnectionId, len(connections))
	for _, conn := range connections {
		byUID[conn.UID] = conn
	}
	c.byUID = byUID
	return nil
}

func (c *catalog) lookup(uid string) (ConnectionId, bool) {
	conn, ok := c.byUID[uid]
	return conn, ok
}

func (c *catalog) reset() {
	c.byUID = make(map[string]ConnectionId)
}

// checkDirection rejects a ref whose declared direction contradicts the
// connection's service type.
func checkDirection(ref ConnectionRef, st ServiceType) error {
	switch ref.Direction {
	case Input:
		if st == NetSender {
			return newError(DirectionMismatch, ref.UID, "ref requests Input but connection is a NetSender")
		}
	case Output:
		if st == NetReceiver {
			return newError(DirectionMismatch, ref.UID, "ref requests Output but connection is a NetReceiver")
		}
	}
	return nil
}

// LoadConnections decodes a list of loosely-typed maps (as decoded from a
// JSON/TOML/YAML configuration document) into []ConnectionId, using
// mapstructure for the field-by-field conversion. service_type accepts
// either the ServiceType's String() spelling or its integer value.
func LoadConnections(raw []map[string]any) ([]ConnectionId, error) {
	out := make([]ConnectionId, 0, len(raw))
	for i, m := range raw {
		var conn ConnectionId
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &conn,
			WeaklyTypedInput: true,
			TagName:          "json",
			DecodeHook:       serviceTypeHook,
		})
		if err != nil {
			return nil, fmt.Errorf("iomanager: building decoder for connection %d: %w", i, err)
		}
		if err := dec.Decode(m); err != nil {
			return nil, fmt.Errorf("iomanager: decoding connection %d: %w", i, err)
		}
		out = append(out, conn)
	}
	return out, nil
}

var serviceTypeType = reflect.TypeOf(ServiceType(0))

func serviceTypeHook(from, to reflect.Type, data any) (any, error) {
	if to != serviceTypeType {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch strings.ToLower(s) {
	case "queue":
		return Queue, nil
	case "netsender":
		return NetSender, nil
	case "netreceiver":
		return NetReceiver, nil
	case "pubsub":
		return PubSub, nil
	default:
		return nil, fmt.Errorf("iomanager: unknown service_type %q", s)
	}
}
