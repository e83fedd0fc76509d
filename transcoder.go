package transcoder

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

// ErrTypeMismatch indicates DecodeAs found a value of a different type.
var ErrTypeMismatch = errors.New("type mismatch")

// Transcoder encodes values to bytes and decodes them back, resolving
// non-native values through a Registry and delegating bytes to a Backend.
//
// A Transcoder is immutable and safe for concurrent use.
type Transcoder struct {
	registry *Registry
	backend  Backend
	maxDepth int
	signals  bool
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithMaxDepth bounds how deeply values may nest. Deeper values fail with
// ErrMaxDepth. Zero, the default, means unbounded.
func WithMaxDepth(n int) Option {
	return func(t *Transcoder) {
		t.maxDepth = n
	}
}

// WithoutSignals disables capitan signal emission for encode and decode.
func WithoutSignals() Option {
	return func(t *Transcoder) {
		t.signals = false
	}
}

// New returns a Transcoder over registry and backend.
// The registry is frozen: register every transcoding before calling New.
func New(registry *Registry, backend Backend, opts ...Option) *Transcoder {
	registry.Freeze()
	t := &Transcoder{
		registry: registry,
		backend:  backend,
		signals:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry returns the frozen registry.
func (t *Transcoder) Registry() *Registry {
	return t.registry
}

// ContentType returns the backend's content type.
func (t *Transcoder) ContentType() string {
	return t.backend.ContentType()
}

// Encode converts v to bytes.
func (t *Transcoder) Encode(v any) ([]byte, error) {
	return t.EncodeContext(context.Background(), v)
}

// Decode converts bytes produced by Encode back to a value.
func (t *Transcoder) Decode(data []byte) (any, error) {
	return t.DecodeContext(context.Background(), data)
}

// EncodeContext is Encode with a context for signal emission.
// Encoding never blocks and is not cancelled by ctx.
func (t *Transcoder) EncodeContext(ctx context.Context, v any) ([]byte, error) {
	var start time.Time
	if t.signals {
		start = time.Now()
	}

	enc := encoder{registry: t.registry, maxDepth: t.maxDepth}
	data, err := t.encode(&enc, v)

	if t.signals {
		emitEncodeComplete(ctx, t.backend.ContentType(), len(data), enc.envelopes, time.Since(start), err)
	}
	return data, err
}

func (t *Transcoder) encode(enc *encoder, v any) ([]byte, error) {
	tree, _, err := enc.encode(v, 0)
	if err != nil {
		return nil, rootPath(err)
	}
	data, err := t.backend.Render(tree)
	if err != nil {
		return nil, newCodecError(ErrRender, err)
	}
	return data, nil
}

// DecodeContext is Decode with a context for signal emission.
func (t *Transcoder) DecodeContext(ctx context.Context, data []byte) (any, error) {
	var start time.Time
	if t.signals {
		start = time.Now()
	}

	dec := decoder{registry: t.registry, maxDepth: t.maxDepth}
	v, err := t.decode(&dec, data)

	if t.signals {
		emitDecodeComplete(ctx, t.backend.ContentType(), len(data), dec.envelopes, time.Since(start), err)
	}
	return v, err
}

func (t *Transcoder) decode(dec *decoder, data []byte) (any, error) {
	tree, err := t.backend.Parse(data)
	if err != nil {
		return nil, newCodecError(ErrMalformedInput, err)
	}
	v, err := dec.decode(tree, 0)
	if err != nil {
		return nil, rootPath(err)
	}
	return v, nil
}

// DecodeAs decodes data and asserts the result is a T.
// A JSON null yields the zero T.
func DecodeAs[T any](t *Transcoder, data []byte) (T, error) {
	var zero T
	v, err := t.Decode(data)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	obj, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: want %s, got %s", ErrTypeMismatch, reflect.TypeFor[T](), reflect.TypeOf(v))
	}
	return obj, nil
}
