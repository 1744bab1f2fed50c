package iomanager

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gcrone/iomanager/networkmanager"
	"github.com/gcrone/iomanager/queueprovider"
	"github.com/gcrone/iomanager/utils"
	"github.com/gcrone/iomanager/utils/cache"
)

// endpointKey identifies one cached Sender/Receiver by both its uid and
// the message type it was built for. Keying by uid alone would let two
// different T's that share a uid collide on the same cache slot (spec.md
// §9's design note).
type endpointKey struct {
	uid string
	typ reflect.Type
}

// Manager is the process-wide façade spec.md §2 describes: a single
// catalog of declared connections, backing a cache of live
// senders/receivers built lazily on first use and torn down wholesale on
// Reset.
type Manager struct {
	mu sync.Mutex

	cat       *catalog
	queues    *queueprovider.Registry
	network   *networkmanager.Manager
	senders   *cache.Static[endpointKey, any]
	receivers *cache.Static[endpointKey, any]
}

// global is the process-wide singleton every package-level function below
// operates on, matching the factory/catalog pattern spec.md §2 describes.
var global = newManager()

func newManager() *Manager {
	return &Manager{
		cat:       newCatalog(),
		queues:    queueprovider.NewRegistry(),
		network:   networkmanager.NewManager(),
		senders:   cache.NewStatic[endpointKey, any](),
		receivers: cache.NewStatic[endpointKey, any](),
	}
}

// Configure declares the full set of connections the façade will serve
// for this run. It replaces any connections declared by a previous
// Configure/Reset cycle.
func Configure(connections []ConnectionId) error {
	return global.configure(connections)
}

func (m *Manager) configure(connections []ConnectionId) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cat.build(connections); err != nil {
		return err
	}

	var queueSpecs []queueprovider.Spec
	var netSpecs []networkmanager.Spec
	for _, conn := range connections {
		switch conn.ServiceType {
		case Queue:
			qs, err := ParseQueueURI(conn.URI)
			if err != nil {
				return wrapError(Configuration, conn.UID, "invalid queue uri", err)
			}
			queueSpecs = append(queueSpecs, queueprovider.Spec{UID: conn.UID, Capacity: qs.Capacity})
		case NetSender:
			netSpecs = append(netSpecs, networkmanager.Spec{UID: conn.UID, Kind: networkmanager.Sender, URI: conn.URI})
		case NetReceiver:
			netSpecs = append(netSpecs, networkmanager.Spec{UID: conn.UID, Kind: networkmanager.Receiver, URI: conn.URI})
		case PubSub:
			netSpecs = append(netSpecs, networkmanager.Spec{UID: conn.UID, Kind: networkmanager.Publisher, URI: conn.URI})
		}
	}

	if err := m.queues.Configure(queueSpecs); err != nil {
		return wrapError(Configuration, "", "queue provider rejected configuration", err)
	}
	if err := m.network.Configure(netSpecs); err != nil {
		return wrapError(Configuration, "", "network provider rejected configuration", err)
	}

	m.senders.Reset()
	m.receivers.Reset()
	return nil
}

// Reset tears down every live sender/receiver and forgets every declared
// connection. Intended for test isolation between scenarios (spec.md §8).
func Reset() {
	global.reset()
}

func (m *Manager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cat.reset()
	m.queues.Reset()
	m.network.Reset()
	m.senders.Reset()
	m.receivers.Reset()
}

// GetSender resolves ref to a typed Sender, building and caching it on
// first use. Free function rather than a *Manager method: Go does not
// allow a method to carry type parameters beyond its receiver's own
// (the same constraint queueprovider.GetQueue works around).
func GetSender[T any](ref ConnectionRef) (Sender[T], error) {
	if ref.Name == "" {
		ref.Name = utils.GenConnRef()
	}
	m := global
	key := endpointKey{uid: ref.UID, typ: reflect.TypeFor[T]()}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.senders.Get(key); ok {
		s, ok := cached.(Sender[T])
		if !ok {
			return nil, newError(NotSerializable, ref.UID, "sender was already created for a different type")
		}
		return s, nil
	}

	conn, ok := m.cat.lookup(ref.UID)
	if !ok {
		return nil, newError(UnknownConnection, ref.UID, "no connection declared with this uid")
	}
	if err := checkDirection(ref, conn.ServiceType); err != nil {
		return nil, err
	}

	var sender Sender[T]
	switch conn.ServiceType {
	case Queue:
		q, err := queueprovider.GetQueue[T](m.queues, conn.UID)
		if err != nil {
			return nil, wrapError(Configuration, conn.UID, "failed to obtain queue", err)
		}
		sender = &queueSender[T]{uid: conn.UID, queue: q}
	case NetSender, PubSub:
		// The serializability of T is only checked lazily, on each Send/
		// TrySend call — a NetSender connection for a non-serializable T
		// is still constructible (spec.md §4.1).
		sock, err := m.network.GetSender(conn.UID)
		if err != nil {
			return nil, wrapError(Configuration, conn.UID, "failed to obtain network sender", err)
		}
		sender = &networkSender[T]{uid: conn.UID, socket: sock}
	default:
		return nil, newError(DirectionMismatch, conn.UID, "connection is not a sendable service type")
	}

	logrus.Debugf("iomanager: ref %q resolved new sender for uid %q", ref.Name, conn.UID)
	m.senders.Insert(key, sender)
	return sender, nil
}

// GetReceiver resolves ref to a typed Receiver, building and caching it
// on first use.
func GetReceiver[T any](ref ConnectionRef) (Receiver[T], error) {
	if ref.Name == "" {
		ref.Name = utils.GenConnRef()
	}
	m := global
	key := endpointKey{uid: ref.UID, typ: reflect.TypeFor[T]()}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.receivers.Get(key); ok {
		r, ok := cached.(Receiver[T])
		if !ok {
			return nil, newError(NotSerializable, ref.UID, "receiver was already created for a different type")
		}
		return r, nil
	}

	conn, ok := m.cat.lookup(ref.UID)
	if !ok {
		return nil, newError(UnknownConnection, ref.UID, "no connection declared with this uid")
	}
	if err := checkDirection(ref, conn.ServiceType); err != nil {
		return nil, err
	}

	var receiver Receiver[T]
	switch conn.ServiceType {
	case Queue:
		q, err := queueprovider.GetQueue[T](m.queues, conn.UID)
		if err != nil {
			return nil, wrapError(Configuration, conn.UID, "failed to obtain queue", err)
		}
		receiver = &queueReceiver[T]{uid: conn.UID, queue: q}
	case NetReceiver:
		sock, err := m.network.GetReceiver(conn.UID)
		if err != nil {
			return nil, wrapError(Configuration, conn.UID, "failed to obtain network receiver", err)
		}
		receiver = &networkReceiver[T]{uid: conn.UID, socket: sock}
	case PubSub:
		topic := ref.Topic
		if topic == "" {
			topic = conn.UID
		}
		sock, err := m.network.GetSubscriber(topic)
		if err != nil {
			return nil, wrapError(Configuration, conn.UID, "failed to obtain subscriber", err)
		}
		receiver = &networkReceiver[T]{uid: conn.UID, socket: sock}
	default:
		return nil, newError(DirectionMismatch, conn.UID, "connection is not a receivable service type")
	}

	logrus.Debugf("iomanager: ref %q resolved new receiver for uid %q", ref.Name, conn.UID)
	m.receivers.Insert(key, receiver)
	return receiver, nil
}

// AddCallback resolves ref to a Receiver and binds fn to it, matching
// spec.md §4.1's Factory-level add_callback<T>(ref, fn) operation.
func AddCallback[T any](ref ConnectionRef, fn func(T)) error {
	r, err := GetReceiver[T](ref)
	if err != nil {
		return err
	}
	r.AddCallback(fn)
	return nil
}

// RemoveCallback resolves ref to a Receiver and unbinds its callback, if
// any, matching spec.md §4.1's Factory-level remove_callback<T>(ref).
func RemoveCallback[T any](ref ConnectionRef) error {
	r, err := GetReceiver[T](ref)
	if err != nil {
		return err
	}
	r.RemoveCallback()
	return nil
}
