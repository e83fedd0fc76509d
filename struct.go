package transcoder

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Field keys come from json tags when present.
	sentinel.Tag("json")
}

// structTranscoding maps a struct's exported fields to an ordered object.
type structTranscoding struct {
	typ    reflect.Type
	name   string
	fields []structField
}

// structField describes one encoded field.
type structField struct {
	index []int  // reflect.Value.FieldByIndex access path
	key   string // object key (json tag name or field name)
}

// StructAsDict returns a Transcoding for struct type T whose payload is an
// object of T's exported fields, in declaration order.
//
// Keys follow the json tag name when present; `json:"-"` skips a field.
// Unnamed slices, arrays and string-keyed maps are written as arrays and
// objects, and pointers to non-struct values are dereferenced. Integer fields
// of any size are written as int, or as a big integer when they do not fit.
// A field of a defined scalar type (type Level int) is written through the
// Transcoding registered for that type when there is one, and as its
// underlying kind otherwise. Every other field value (nested structs and
// pointers to them, time.Time, uuid.UUID, named slices) is left to the
// Transcoder and needs its own registration.
func StructAsDict[T any](name string) (Transcoding, error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, newRegistrationError(ErrInvalidTranscoding, name, rt)
	}

	spec := sentinel.Scan[T]()
	fields := make([]structField, 0, len(spec.Fields))
	for _, field := range spec.Fields {
		sf := rt.FieldByIndex(field.Index)
		if !sf.IsExported() {
			continue
		}
		key, skip := fieldKey(sf, field.Tags["json"])
		if skip {
			continue
		}
		fields = append(fields, structField{
			index: slices.Clone(field.Index),
			key:   key,
		})
	}

	return &structTranscoding{typ: rt, name: name, fields: fields}, nil
}

// MustStructAsDict is like StructAsDict but panics on error.
func MustStructAsDict[T any](name string) Transcoding {
	t, err := StructAsDict[T](name)
	if err != nil {
		panic(err)
	}
	return t
}

// fieldKey resolves the object key for a field.
func fieldKey(sf reflect.StructField, tag string) (string, bool) {
	if tag == "" {
		tag = sf.Tag.Get("json")
	}
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return sf.Name, false
}

func (t *structTranscoding) Type() reflect.Type { return t.typ }

func (t *structTranscoding) Name() string { return t.name }

func (t *structTranscoding) Encode(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != t.typ {
		return nil, fmt.Errorf("want %s, got %T", t.typ, v)
	}

	m := &Map{members: make([]Member, 0, len(t.fields))}
	for _, f := range t.fields {
		m.Set(f.key, toNative(rv.FieldByIndex(f.index)))
	}
	return m, nil
}

func (t *structTranscoding) Decode(data any) (any, error) {
	m, ok := data.(*Map)
	if !ok {
		return nil, payloadError("object", data)
	}

	rv := reflect.New(t.typ).Elem()
	for _, f := range t.fields {
		v, ok := m.Get(f.key)
		if !ok {
			continue
		}
		if err := assign(rv.FieldByIndex(f.index), v); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	return rv.Interface(), nil
}

// toNative converts a field value into something the Transcoder can walk.
func toNative(rv reflect.Value) any {
	named := rv.Type().Name() != ""

	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		native := scalarToNative(rv)
		if rv.Type().PkgPath() != "" {
			return namedScalar{value: rv.Interface(), native: native}
		}
		return native
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		// Pointers to structs (*big.Int, registered pointer types) stay as-is.
		if rv.Type().Elem().Kind() == reflect.Struct {
			return rv.Interface()
		}
		return toNative(rv.Elem())
	case reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	case reflect.Slice:
		if named || rv.Type() == reflect.TypeFor[[]any]() {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		return sliceToNative(rv)
	case reflect.Array:
		if named {
			return rv.Interface()
		}
		return sliceToNative(rv)
	case reflect.Map:
		if named || rv.Type().Key().Kind() != reflect.String {
			return rv.Interface()
		}
		if rv.IsNil() {
			return nil
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		m := &Map{members: make([]Member, 0, len(keys))}
		for _, k := range keys {
			m.Set(k.String(), toNative(rv.MapIndex(k)))
		}
		return m
	}
	return rv.Interface()
}

// namedScalar carries a field of a defined scalar type such as MyStr.
// The encoder writes it through the Transcoding registered for its type, or
// as native when there is none.
type namedScalar struct {
	value  any
	native any
}

// scalarToNative converts a bool, string or numeric value to its native form.
// Integers become int, or *big.Int when they do not fit.
func scalarToNative(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < math.MinInt || n > math.MaxInt {
			return big.NewInt(n)
		}
		return int(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt {
			return new(big.Int).SetUint64(n)
		}
		return int(n)
	}
	return rv.Float()
}

func sliceToNative(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = toNative(rv.Index(i))
	}
	return out
}

// assign stores a decoded value into dst, converting native shapes back to
// dst's static type.
func assign(dst reflect.Value, src any) error {
	if src == nil {
		dst.SetZero()
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	// Integers that fit a native int decode as int.
	if n, ok := src.(int); ok && dst.Type() == reflect.TypeFor[*big.Int]() {
		dst.Set(reflect.ValueOf(big.NewInt(int64(n))))
		return nil
	}

	switch dst.Kind() {
	case reflect.Pointer:
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), src); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case reflect.Bool:
		if b, ok := src.(bool); ok {
			dst.SetBool(b)
			return nil
		}

	case reflect.String:
		if s, ok := src.(string); ok {
			dst.SetString(s)
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt64(src)
		if !ok || dst.OverflowInt(n) {
			break
		}
		dst.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := asUint64(src)
		if !ok || dst.OverflowUint(n) {
			break
		}
		dst.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		var f float64
		switch x := src.(type) {
		case float64:
			f = x
		case int:
			f = float64(x)
		default:
			return mismatch(dst, src)
		}
		if dst.OverflowFloat(f) {
			break
		}
		dst.SetFloat(f)
		return nil

	case reflect.Slice:
		s, ok := src.([]any)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(s), len(s))
		for i, elem := range s {
			if err := assign(out.Index(i), elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		dst.Set(out)
		return nil

	case reflect.Array:
		s, ok := src.([]any)
		if !ok || len(s) != dst.Len() {
			break
		}
		for i, elem := range s {
			if err := assign(dst.Index(i), elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil

	case reflect.Map:
		m, ok := src.(*Map)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), m.Len())
		for k, v := range m.All() {
			ev := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(ev, v); err != nil {
				return fmt.Errorf("[%q]: %w", k, err)
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(dst.Type().Key()), ev)
		}
		dst.Set(out)
		return nil
	}

	return mismatch(dst, src)
}

func asInt64(src any) (int64, bool) {
	switch x := src.(type) {
	case int:
		return int64(x), true
	case *big.Int:
		if x.IsInt64() {
			return x.Int64(), true
		}
	}
	return 0, false
}

func asUint64(src any) (uint64, bool) {
	switch x := src.(type) {
	case int:
		if x >= 0 {
			return uint64(x), true
		}
	case *big.Int:
		if x.IsUint64() {
			return x.Uint64(), true
		}
	}
	return 0, false
}

func mismatch(dst reflect.Value, src any) error {
	return fmt.Errorf("cannot assign %T to %s", src, dst.Type())
}
