// Package serialize is the compile/run-time serialization gate spec.md §4.5
// and §6 describe: a predicate partitioning message types into those that
// may cross a network transport and those that may not, plus the codec
// that does the actual encoding for the former.
//
// The predicate is checked at run time (spec.md §6 explicitly allows
// "compile-time or run-time"), by walking T's reflect.Type for the kinds
// MessagePack cannot encode: functions, channels, and unsafe pointers.
package serialize

import (
	"reflect"
	"sync"

	"github.com/ugorji/go/codec"
)

var (
	handle     codec.MsgpackHandle
	handleOnce sync.Once
)

func msgpackHandle() *codec.MsgpackHandle {
	handleOnce.Do(func() {
		handle.RawToString = true
	})
	return &handle
}

// IsSerializable reports whether T can be carried over a network
// transport. Queue transports never consult this gate — they move
// values by ownership transfer, not by encoding (spec.md §4.5).
func IsSerializable[T any]() bool {
	var zero T
	return isSerializableType(reflect.TypeOf(&zero).Elem())
}

func isSerializableType(t reflect.Type) bool {
	seen := make(map[reflect.Type]bool)
	return walk(t, seen)
}

func walk(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t == nil {
		return true
	}
	if seen[t] {
		return true // break recursive-type cycles optimistically
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Ptr:
		return walk(t.Elem(), seen)
	case reflect.Slice, reflect.Array:
		return walk(t.Elem(), seen)
	case reflect.Map:
		return walk(t.Key(), seen) && walk(t.Elem(), seen)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !walk(t.Field(i).Type, seen) {
				return false
			}
		}
		return true
	case reflect.Interface:
		// Can't know the dynamic type ahead of time; msgpack handles
		// `any` fields via reflection at encode time, so treat as
		// serializable and let Encode surface any real failure.
		return true
	default:
		return true
	}
}

// Encode serializes v using the shared MessagePack handle. This is
// spec.md §6's "one default format (a self-describing binary encoding)".
func Encode[T any](v T) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, msgpackHandle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode deserializes data into a T using the shared MessagePack handle.
func Decode[T any](data []byte) (T, error) {
	var v T
	dec := codec.NewDecoderBytes(data, msgpackHandle())
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
