package transcoder

import (
	"fmt"
	"reflect"
)

// Envelope keys, in wire order.
const (
	EnvelopeType = "_type_"
	EnvelopeData = "_data_"
)

// Transcoding binds one Go type to a stable tag name and a pair of conversion
// functions. Both functions must be pure.
type Transcoding interface {
	// Type returns the exact Go type handled.
	// An interface type matches every type implementing it when no exact
	// registration exists.
	Type() reflect.Type

	// Name returns the tag written to the envelope's _type_ key.
	// Names are part of the wire contract and must never change.
	Name() string

	// Encode converts v into a value the Transcoder can encode: a native value,
	// or a structure containing values of other registered types.
	Encode(v any) (any, error)

	// Decode rebuilds a value of Type() from the decoded _data_ payload.
	Decode(data any) (any, error)
}

// funcTranscoding adapts a typed function pair to Transcoding.
type funcTranscoding[T any] struct {
	typ    reflect.Type
	name   string
	encode func(T) any
	decode func(any) (T, error)
}

// NewTranscoding returns a Transcoding for T built from an encode/decode pair.
//
//	transcoder.NewTranscoding("mystr",
//	    func(s MyStr) any { return string(s) },
//	    func(data any) (MyStr, error) { ... },
//	)
func NewTranscoding[T any](name string, encode func(T) any, decode func(any) (T, error)) Transcoding {
	return &funcTranscoding[T]{
		typ:    reflect.TypeFor[T](),
		name:   name,
		encode: encode,
		decode: decode,
	}
}

func (t *funcTranscoding[T]) Type() reflect.Type { return t.typ }

func (t *funcTranscoding[T]) Name() string { return t.name }

func (t *funcTranscoding[T]) Encode(v any) (any, error) {
	obj, ok := v.(T)
	if !ok {
		return nil, fmt.Errorf("want %s, got %T", t.typ, v)
	}
	return t.encode(obj), nil
}

func (t *funcTranscoding[T]) Decode(data any) (any, error) {
	obj, err := t.decode(data)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// payloadError describes a _data_ payload of the wrong shape.
func payloadError(want string, got any) error {
	return fmt.Errorf("want %s payload, got %T", want, got)
}
