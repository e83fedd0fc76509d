// Package json provides the canonical JSON backend.
//
// Output is compact, UTF-8 is written raw (no \u escapes, no HTML escaping),
// object members keep their order, integers of any size are written as exact
// literals and floats as their shortest round-trip literal.
package json

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"strconv"
	"sync"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/zoobzio/transcoder"
)

var (
	errNotNative    = errors.New("not a native value")
	errTrailingData = errors.New("trailing data after top-level value")
)

// jsonBackend implements transcoder.Backend for JSON.
type jsonBackend struct{}

// New returns a JSON backend.
func New() transcoder.Backend {
	return &jsonBackend{}
}

// ContentType returns the MIME type for JSON.
func (b *jsonBackend) ContentType() string {
	return "application/json"
}

var bufPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Render encodes a native tree as compact JSON.
func (b *jsonBackend) Render(tree any) ([]byte, error) {
	buf := bufPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufPool.Put(buf)
	}()

	enc := jsontext.NewEncoder(buf)
	w := writer{enc: enc}
	if err := w.value(tree); err != nil {
		return nil, err
	}

	// The encoder terminates each top-level value with a newline.
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// Parse decodes JSON into a native tree.
func (b *jsonBackend) Parse(data []byte) (any, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return nil, err
	}
	return v, nil
}

// writer emits native values as tokens.
type writer struct {
	enc     *jsontext.Encoder
	scratch []byte
}

func (w *writer) value(v any) error {
	switch x := v.(type) {
	case nil:
		return w.enc.WriteToken(jsontext.Null)
	case bool:
		return w.enc.WriteToken(jsontext.Bool(x))
	case string:
		return w.enc.WriteToken(jsontext.String(x))
	case int:
		return w.enc.WriteToken(jsontext.Int(int64(x)))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("unsupported float value %v", x)
		}
		w.scratch = AppendFloat(w.scratch[:0], x)
		return w.enc.WriteValue(jsontext.Value(w.scratch))
	case *big.Int:
		if x == nil {
			return w.enc.WriteToken(jsontext.Null)
		}
		w.scratch = x.Append(w.scratch[:0], 10)
		return w.enc.WriteValue(jsontext.Value(w.scratch))
	case transcoder.Number:
		return w.enc.WriteValue(jsontext.Value(x))
	case []any:
		return w.array(x)
	case *transcoder.Map:
		return w.object(x)
	case map[string]any:
		return w.plainObject(x)
	}
	return fmt.Errorf("%w: %T", errNotNative, v)
}

func (w *writer) array(s []any) error {
	if err := w.enc.WriteToken(jsontext.BeginArray); err != nil {
		return err
	}
	for _, elem := range s {
		if err := w.value(elem); err != nil {
			return err
		}
	}
	return w.enc.WriteToken(jsontext.EndArray)
}

func (w *writer) object(m *transcoder.Map) error {
	if m == nil {
		return w.enc.WriteToken(jsontext.Null)
	}
	if err := w.enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for k, v := range m.All() {
		if err := w.enc.WriteToken(jsontext.String(k)); err != nil {
			return err
		}
		if err := w.value(v); err != nil {
			return err
		}
	}
	return w.enc.WriteToken(jsontext.EndObject)
}

func (w *writer) plainObject(m map[string]any) error {
	if m == nil {
		return w.enc.WriteToken(jsontext.Null)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := w.enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, k := range keys {
		if err := w.enc.WriteToken(jsontext.String(k)); err != nil {
			return err
		}
		if err := w.value(m[k]); err != nil {
			return err
		}
	}
	return w.enc.WriteToken(jsontext.EndObject)
}

func readValue(dec *jsontext.Decoder) (any, error) {
	if dec.PeekKind() == '0' {
		raw, err := dec.ReadValue()
		if err != nil {
			return nil, err
		}
		return ParseNumber(raw)
	}

	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return nil, nil
	case 't', 'f':
		return tok.Bool(), nil
	case '"':
		return tok.String(), nil
	case '[':
		arr := make([]any, 0)
		for dec.PeekKind() != ']' {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		m := &transcoder.Map{}
		for dec.PeekKind() != '}' {
			tok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			// The token is only valid until the next decoder call.
			name := tok.String()
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			m.Set(name, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unexpected token kind %v", tok.Kind())
}

// AppendFloat appends the shortest literal that parses back to exactly f.
// Literals without a fraction or exponent get ".0" so they read back as floats.
func AppendFloat(b []byte, f float64) []byte {
	start := len(b)
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// Clean up e-09 to e-9.
		n := len(b)
		if n-start >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	if !bytes.ContainsAny(b[start:], ".eE") {
		b = append(b, '.', '0')
	}
	return b
}

// ParseNumber converts a JSON numeric literal to int, *big.Int or float64.
// Literals with a fraction or exponent are floats; all others are integers of
// whatever size they need.
func ParseNumber(raw []byte) (any, error) {
	s := string(raw)
	if bytes.ContainsAny(raw, ".eE") {
		return strconv.ParseFloat(s, 64)
	}
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(n), nil
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer literal %q", s)
	}
	return i, nil
}
