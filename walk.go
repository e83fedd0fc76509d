package transcoder

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
)

// encoder rewrites a value into a native tree.
//
// Containers are copied only when a descendant was rewritten, so a payload that
// is already native is returned as-is and only registered values allocate.
type encoder struct {
	registry  *Registry
	maxDepth  int
	envelopes int
}

// encode returns the native form of v and whether it differs from v.
func (e *encoder) encode(v any, depth int) (any, bool, error) {
	if e.maxDepth > 0 && depth > e.maxDepth {
		return nil, false, newTypeError(ErrMaxDepth, reflect.TypeOf(v))
	}

	// Booleans are matched before any numeric case.
	switch x := v.(type) {
	case nil, bool, string, Number:
		return v, false, nil
	case int:
		return v, false, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false, newTypeError(ErrUnsupportedValue, reflect.TypeOf(v))
		}
		return v, false, nil
	case *big.Int:
		if x == nil {
			return nil, true, nil
		}
		return v, false, nil
	case []any:
		return e.encodeSlice(x, depth)
	case *Map:
		if x == nil {
			return nil, true, nil
		}
		return e.encodeMap(x, depth)
	case map[string]any:
		return e.encodePlainMap(x, depth)
	case namedScalar:
		if _, ok := e.registry.LookupType(reflect.TypeOf(x.value)); ok {
			return e.encodeRegistered(x.value, depth)
		}
		return x.native, true, nil
	}
	return e.encodeRegistered(v, depth)
}

func (e *encoder) encodeSlice(s []any, depth int) (any, bool, error) {
	var out []any
	for i, elem := range s {
		enc, changed, err := e.encode(elem, depth+1)
		if err != nil {
			return nil, false, withPath(err, indexSegment(i))
		}
		if changed {
			if out == nil {
				out = slices.Clone(s)
			}
			out[i] = enc
		}
	}
	if out == nil {
		return s, false, nil
	}
	return out, true, nil
}

func (e *encoder) encodeMap(m *Map, depth int) (any, bool, error) {
	var out *Map
	for i := range m.Len() {
		mem := m.member(i)
		enc, changed, err := e.encode(mem.Value, depth+1)
		if err != nil {
			return nil, false, withPath(err, keySegment(mem.Key))
		}
		if changed {
			if out == nil {
				out = m.clone()
			}
			out.setAt(i, enc)
		}
	}
	if out == nil {
		return m, false, nil
	}
	return out, true, nil
}

func (e *encoder) encodePlainMap(m map[string]any, depth int) (any, bool, error) {
	var out map[string]any
	for k, v := range m {
		enc, changed, err := e.encode(v, depth+1)
		if err != nil {
			return nil, false, withPath(err, keySegment(k))
		}
		if changed {
			if out == nil {
				out = make(map[string]any, len(m))
				for k2, v2 := range m {
					out[k2] = v2
				}
			}
			out[k] = enc
		}
	}
	if out == nil {
		return m, false, nil
	}
	return out, true, nil
}

// encodeRegistered wraps v in an envelope using its registered transcoding.
// The transcoding's output is encoded recursively, so it may contain other
// registered values.
func (e *encoder) encodeRegistered(v any, depth int) (any, bool, error) {
	typ := reflect.TypeOf(v)
	t, ok := e.registry.LookupType(typ)
	if !ok {
		return nil, false, newTypeError(ErrUnsupportedType, typ)
	}

	data, err := t.Encode(v)
	if err != nil {
		return nil, false, newTranscodingError(ErrEncode, t.Name(), err)
	}
	if data != nil && reflect.TypeOf(data) == typ {
		return nil, false, newTranscodingError(ErrInvalidTranscoding, t.Name(),
			fmt.Errorf("encode returned its own type %s", typ))
	}

	enc, _, err := e.encode(data, depth+1)
	if err != nil {
		return nil, false, withPath(err, keySegment(EnvelopeData))
	}

	e.envelopes++
	return newEnvelope(t.Name(), enc), true, nil
}

// decoder rewrites a parsed native tree into application values.
// The tree is owned by the decoder, so containers are updated in place.
type decoder struct {
	registry  *Registry
	maxDepth  int
	envelopes int
}

func (d *decoder) decode(v any, depth int) (any, error) {
	if d.maxDepth > 0 && depth > d.maxDepth {
		return nil, newTypeError(ErrMaxDepth, reflect.TypeOf(v))
	}

	switch x := v.(type) {
	case []any:
		for i, elem := range x {
			dec, err := d.decode(elem, depth+1)
			if err != nil {
				return nil, withPath(err, indexSegment(i))
			}
			x[i] = dec
		}
		return x, nil
	case *Map:
		if x.isEnvelope() {
			return d.decodeEnvelope(x, depth)
		}
		for i := range x.Len() {
			mem := x.member(i)
			dec, err := d.decode(mem.Value, depth+1)
			if err != nil {
				return nil, withPath(err, keySegment(mem.Key))
			}
			x.setAt(i, dec)
		}
		return x, nil
	}
	return v, nil
}

func (d *decoder) decodeEnvelope(m *Map, depth int) (any, error) {
	tag, ok := m.member(0).Value.(string)
	if !ok {
		return nil, newTagError(fmt.Sprint(m.member(0).Value))
	}
	t, ok := d.registry.LookupName(tag)
	if !ok {
		return nil, newTagError(tag)
	}

	data, err := d.decode(m.member(1).Value, depth+1)
	if err != nil {
		return nil, withPath(err, keySegment(EnvelopeData))
	}

	obj, err := t.Decode(data)
	if err != nil {
		return nil, newTranscodingError(ErrDecode, t.Name(), err)
	}

	d.envelopes++
	return obj, nil
}
