package iomanager

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gcrone/iomanager/configs"
	"github.com/gcrone/iomanager/networkmanager"
	"github.com/gcrone/iomanager/queueprovider"
	"github.com/gcrone/iomanager/serialize"
)

// Sender is the write-side half of one connection, parameterized on the
// message type it carries (spec.md §4.2).
type Sender[T any] interface {
	// Send moves v to the connection's other end, blocked for at most
	// timeout (NoBlock/Block are the two sentinel extremes). topic is
	// only meaningful for a network-backed publisher sender, which uses
	// it to pick a publish channel; a queue sender logs a warning and
	// proceeds if topic is non-empty (spec.md §4.2). It fails with
	// Timeout when the window elapses without progress, with
	// NotSerializable when T cannot be encoded for a network send, and
	// with TransportFailure when the connection has failed or been reset
	// or the encoded value exceeds configs.MaximumMessageSize.
	Send(v T, timeout time.Duration, topic string) error

	// TrySend is Send without the error-on-timeout distinction: ok is
	// false with a nil error when the timeout elapsed with no progress,
	// or when T failed the serialization gate. A serialization failure
	// is logged as a warning; a timeout is returned without a log line.
	TrySend(v T, timeout time.Duration, topic string) (ok bool, err error)
}

// queueSender routes T through an in-process ring buffer. Queues carry no
// notion of topic; a non-empty topic is meaningless but not fatal.
type queueSender[T any] struct {
	uid   string
	queue *queueprovider.Queue[T]
}

func (s *queueSender[T]) warnTopic(topic string) {
	if topic != "" {
		logrus.Warnf("iomanager: topic %q given to queue sender %q, ignoring", topic, s.uid)
	}
}

func (s *queueSender[T]) Send(v T, timeout time.Duration, topic string) error {
	s.warnTopic(topic)
	err := s.queue.Push(v, timeout)
	switch err {
	case nil:
		return nil
	case queueprovider.ErrTimeout:
		return newError(Timeout, s.uid, "send timed out")
	case queueprovider.ErrClosed:
		return newError(TransportFailure, s.uid, "queue was reset")
	default:
		return wrapError(TransportFailure, s.uid, "queue push failed", err)
	}
}

func (s *queueSender[T]) TrySend(v T, timeout time.Duration, topic string) (bool, error) {
	s.warnTopic(topic)
	ok, err := s.queue.TryPush(v, timeout)
	if err == queueprovider.ErrClosed {
		return false, newError(TransportFailure, s.uid, "queue was reset")
	}
	return ok, nil
}

// networkSender routes T across a socket after encoding it, failing with
// NotSerializable if T fails serialize.IsSerializable or serialize.Encode
// can't carry the value over the wire (spec.md §4.5). The check happens here, on every call, rather than at
// construction time, so a NetSender handle for a non-serializable T is
// still constructible (spec.md §4.1).
type networkSender[T any] struct {
	uid    string
	socket *networkmanager.Socket
}

func (s *networkSender[T]) encode(v T) ([]byte, error) {
	if !serialize.IsSerializable[T]() {
		return nil, newError(NotSerializable, s.uid, "type fails the serialization gate")
	}
	data, err := serialize.Encode(v)
	if err != nil {
		return nil, wrapError(NotSerializable, s.uid, "failed to encode value for network send", err)
	}
	if len(data) > configs.MaximumMessageSize {
		return nil, newError(TransportFailure, s.uid, "encoded message exceeds the maximum message size")
	}
	return data, nil
}

func (s *networkSender[T]) Send(v T, timeout time.Duration, topic string) error {
	data, err := s.encode(v)
	if err != nil {
		return err
	}
	if !s.socket.Send(data, timeout, topic) {
		return newError(Timeout, s.uid, "send timed out")
	}
	return nil
}

func (s *networkSender[T]) TrySend(v T, timeout time.Duration, topic string) (bool, error) {
	data, err := s.encode(v)
	if err != nil {
		// try_send converts NotSerializable into a logged event plus a
		// plain false, never an error (spec.md §7); all other kinds
		// still raise.
		if IsKind(err, NotSerializable) {
			logrus.Warnf("iomanager: %v", err)
			return false, nil
		}
		return false, err
	}
	return s.socket.Send(data, timeout, topic), nil
}
