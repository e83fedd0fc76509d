package transcoder_test

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zoobzio/transcoder"
	"github.com/zoobzio/transcoder/json"
	tctest "github.com/zoobzio/transcoder/testing"
)

func bigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid integer %q", s)
	}
	return i
}

func roundTrip(t *testing.T, tc *transcoder.Transcoder, v any) ([]byte, any) {
	t.Helper()
	data, err := tc.Encode(v)
	if err != nil {
		t.Fatalf("Encode(%#v) error: %v", v, err)
	}
	out, err := tc.Decode(data)
	if err != nil {
		t.Fatalf("Decode(%s) error: %v", data, err)
	}
	return data, out
}

func TestTranscoder_ExactBytes(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"list", []any{1, 2}, `[1,2]`},
		{"big int", bigInt(t, "11111111111111111111111111111111111111111111"), `11111111111111111111111111111111111111111111`},
		{"pi", 3.141592653589793, `3.141592653589793`},
		{"float", 211.7, `211.7`},
		{"integral float", 2.0, `2.0`},
		{"tiny float", 1e-7, `1e-7`},
		{"huge float", 1e21, `1e+21`},
		{"non-ascii", transcoder.NewMap(transcoder.Member{Key: "🐈", Value: "哈哈"}), "{\"\xf0\x9f\x90\x88\":\"\xe5\x93\x88\xe5\x93\x88\"}"},
		{"html", "<a href=\"x\">&</a>", `"<a href=\"x\">&</a>"`},
		{"null", nil, `null`},
		{"true", true, `true`},
		{"false", false, `false`},
		{"int min", math.MinInt64, `-9223372036854775808`},
		{"uint64 max as big", new(big.Int).SetUint64(math.MaxUint64), `18446744073709551615`},
		{"ordered", transcoder.NewMap(
			transcoder.Member{Key: "b", Value: 1},
			transcoder.Member{Key: "a", Value: 2},
		), `{"b":1,"a":2}`},
		{"plain map sorted", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"empty list", []any{}, `[]`},
		{"nil list", []any(nil), `[]`},
		{"empty map", transcoder.NewMap(), `{}`},
		{"decimal", decimal.RequireFromString("3.141592653589793"), `{"_type_":"decimal_str","_data_":"3.141592653589793"}`},
		{"mystr", tctest.MyStr("buddy"), `{"_type_":"mystr","_data_":"buddy"}`},
		{"myint", tctest.NewMyInt("11111111111111111111111111111111111"), `{"_type_":"myint","_data_":11111111111111111111111111111111111}`},
		{"tuple", transcoder.Tuple{1, "a"}, `{"_type_":"tuple_as_list","_data_":[1,"a"]}`},
		{"uuid", tctest.TestUUID, `{"_type_":"uuid_hex","_data_":"b2723fe2c01a40d2875ea3aac6a09ff5"}`},
		{"number", transcoder.Number("1.50"), `1.50`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tc.Encode(tt.v)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !bytes.Equal(data, []byte(tt.want)) {
				t.Errorf("Encode() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestTranscoder_RoundTrip(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []struct {
		name string
		v    any
	}{
		{"string", "hello"},
		{"empty string", ""},
		{"int", 42},
		{"negative int", -7},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"pi", 3.141592653589793},
		{"float", 211.7},
		{"integral float", 2.0},
		{"negative zero", math.Copysign(0, -1)},
		{"list", []any{1, 2}},
		{"nested list", []any{[]any{1, "a"}, []any{}}},
		{"map", transcoder.NewMap(
			transcoder.Member{Key: "🐈", Value: "哈哈"},
			transcoder.Member{Key: "n", Value: nil},
		)},
		{"tuple", transcoder.Tuple{1, 2, 3}},
		{"empty tuple", transcoder.Tuple{}},
		{"tuple in list", []any{transcoder.Tuple{"a"}, transcoder.Tuple{}}},
		{"mystr", tctest.MyStr("buddy")},
		{"mylist", tctest.MyList{1, "two", tctest.MyStr("three")}},
		{"mydict", tctest.MyDict{"a": 1, "b": tctest.MyStr("x")}},
		{"uuid", tctest.TestUUID},
		{"datetime", tctest.TestTimestamp},
		{"decimal", decimal.RequireFromString("3.141592653589793")},
		{"custom type 1", tctest.CustomType1{Value: tctest.TestUUID}},
		{"custom type 2", tctest.CustomType2{Value: tctest.CustomType1{Value: tctest.TestUUID}}},
		{"event state", tctest.EventState()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := roundTrip(t, tc, tt.v)
			if !reflect.DeepEqual(got, tt.v) {
				t.Errorf("round-trip mismatch:\ngot  %#v\nwant %#v", got, tt.v)
			}
		})
	}
}

func TestTranscoder_BooleansAreNotNumbers(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	_, got := roundTrip(t, tc, []any{true, 1, false, 0})
	want := []any{true, 1, false, 0}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestTranscoder_FloatBits(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	for _, f := range []float64{3.141592653589793, 211.7, 0.1, 1.0 / 3, 1e300, 5e-324, -2.5e-8} {
		_, got := roundTrip(t, tc, f)
		g, ok := got.(float64)
		if !ok {
			t.Errorf("%v decoded as %T", f, got)
			continue
		}
		if math.Float64bits(g) != math.Float64bits(f) {
			t.Errorf("%v decoded as %v", f, g)
		}
	}
}

func TestTranscoder_BigIntegers(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []struct {
		name string
		v    *big.Int
	}{
		{"46 digits", bigInt(t, "1111111111111111111111111111111111111111111111")},
		{"negative", bigInt(t, "-98765432109876543210987654321")},
		{"just above int64", bigInt(t, "9223372036854775808")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, got := roundTrip(t, tc, tt.v)

			if string(data) != tt.v.String() {
				t.Errorf("Encode() = %s, want %s", data, tt.v)
			}
			g, ok := got.(*big.Int)
			if !ok || g.Cmp(tt.v) != 0 {
				t.Errorf("Decode() = %#v, want %s", got, tt.v)
			}
		})
	}

	// Values that fit a native int decode as int.
	_, got := roundTrip(t, tc, big.NewInt(12))
	if got != 12 {
		t.Errorf("small big.Int decoded as %#v, want int 12", got)
	}
}

func TestTranscoder_MyIntRoundTrip(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())
	obj := tctest.NewMyInt("11111111111111111111111111111111111")

	_, got := roundTrip(t, tc, obj)

	g, ok := got.(*tctest.MyInt)
	if !ok {
		t.Fatalf("decoded %T, want *MyInt", got)
	}
	if g.Big().Cmp(obj.Big()) != 0 {
		t.Errorf("decoded %s, want %s", g.Big(), obj.Big())
	}
}

func TestTranscoder_TupleStaysTuple(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	_, got := roundTrip(t, tc, transcoder.Tuple{1, 2})
	if _, ok := got.(transcoder.Tuple); !ok {
		t.Errorf("decoded %T, want Tuple", got)
	}

	_, got = roundTrip(t, tc, []any{1, 2})
	if _, ok := got.([]any); !ok {
		t.Errorf("decoded %T, want []any", got)
	}
}

func TestTranscoder_Composition(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())
	obj := tctest.CustomType2{Value: tctest.CustomType1{Value: tctest.TestUUID}}

	data, got := roundTrip(t, tc, obj)

	want := `{"_type_":"custom_type2_as_dict","_data_":{"value":` +
		`{"_type_":"custom_type1_as_dict","_data_":{"value":` +
		`{"_type_":"uuid_hex","_data_":"b2723fe2c01a40d2875ea3aac6a09ff5"}}}}}`
	if string(data) != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", data, want)
	}
	if got != obj {
		t.Errorf("Decode() = %#v, want %#v", got, obj)
	}
}

func TestTranscoder_UnsupportedType(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	type point struct{ X, Y int }
	_, err := tc.Encode(transcoder.NewMap(transcoder.Member{Key: "p", Value: point{1, 2}}))

	if !errors.Is(err, transcoder.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	var te *transcoder.TypeError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TypeError, got %T", err)
	}
	if te.Type != reflect.TypeFor[point]() {
		t.Errorf("Type = %v, want point", te.Type)
	}
	if te.Path != `$["p"]` {
		t.Errorf("Path = %q", te.Path)
	}
	if !strings.Contains(err.Error(), "point") {
		t.Errorf("error should name the type: %v", err)
	}
}

func TestTranscoder_SizedIntegers(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	for _, v := range []any{int8(1), int16(1), int32(1), int64(5), uint(1), uint8(1), uint16(1), uint32(1), uint64(1 << 63)} {
		if _, err := tc.Encode(v); !errors.Is(err, transcoder.ErrUnsupportedType) {
			t.Errorf("Encode(%T) expected ErrUnsupportedType, got %v", v, err)
		}
	}
}

func TestTranscoder_SizedIntegerTranscoding(t *testing.T) {
	i64 := transcoder.NewTranscoding("i64",
		func(n int64) any { return big.NewInt(n) },
		func(data any) (int64, error) {
			switch x := data.(type) {
			case int:
				return int64(x), nil
			case *big.Int:
				if x.IsInt64() {
					return x.Int64(), nil
				}
			}
			return 0, errors.New("not an int64")
		},
	)
	r := transcoder.NewRegistry()
	if err := r.Register(i64); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	tc := transcoder.New(r, json.New(), transcoder.WithoutSignals())

	data, err := tc.Encode(int64(5))
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if want := `{"_type_":"i64","_data_":5}`; string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}
	got, err := transcoder.DecodeAs[int64](tc, data)
	if err != nil {
		t.Fatalf("DecodeAs() error: %v", err)
	}
	if got != 5 {
		t.Errorf("DecodeAs() = %d, want 5", got)
	}
}

func TestTranscoder_UnknownTag(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	_, err := tc.Decode([]byte(`[{"_type_":"mystery","_data_":1}]`))

	if !errors.Is(err, transcoder.ErrUnknownTag) {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
	var te *transcoder.TagError
	if !errors.As(err, &te) || te.Tag != "mystery" || te.Path != "$[0]" {
		t.Errorf("TagError = %+v", te)
	}
}

func TestTranscoder_EnvelopeLookalikes(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []string{
		`{"_data_":1,"_type_":"mystr"}`,
		`{"_type_":"mystr"}`,
		`{"_type_":"mystr","_data_":"x","extra":1}`,
	}

	for _, in := range tests {
		got, err := tc.Decode([]byte(in))
		if err != nil {
			t.Errorf("Decode(%s) error: %v", in, err)
			continue
		}
		if _, ok := got.(*transcoder.Map); !ok {
			t.Errorf("Decode(%s) = %T, want plain *Map", in, got)
		}
	}
}

func TestTranscoder_MalformedInput(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	for _, in := range []string{``, `{`, `[1,]`, `{"a":1}x`, `nul`, `{"a":1,"a":2}`, `NaN`, `1e400`} {
		_, err := tc.Decode([]byte(in))
		if !errors.Is(err, transcoder.ErrMalformedInput) {
			t.Errorf("Decode(%q): expected ErrMalformedInput, got %v", in, err)
		}
	}
}

func TestTranscoder_DecodeObjects(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []struct {
		in   string
		want any
	}{
		{`{"a":1}`, transcoder.NewMap(transcoder.Member{Key: "a", Value: 1})},
		{`{"a":"x"}`, transcoder.NewMap(transcoder.Member{Key: "a", Value: "x"})},
		{`{"a":{"b":1}}`, transcoder.NewMap(transcoder.Member{Key: "a", Value: transcoder.NewMap(transcoder.Member{Key: "b", Value: 1})})},
		{`{"_type_":"decimal_str","_data_":"3.14"}`, decimal.RequireFromString("3.14")},
	}

	for _, tt := range tests {
		got, err := tc.Decode([]byte(tt.in))
		if err != nil {
			t.Errorf("Decode(%s) error: %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Decode(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestTranscoder_UnsupportedValue(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := tc.Encode([]any{f})
		if !errors.Is(err, transcoder.ErrUnsupportedValue) {
			t.Errorf("Encode(%v): expected ErrUnsupportedValue, got %v", f, err)
		}
	}
}

func TestTranscoder_MaxDepth(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals(), transcoder.WithMaxDepth(3))

	if _, err := tc.Encode([]any{[]any{[]any{1}}}); err != nil {
		t.Errorf("depth 3 should fit: %v", err)
	}
	if _, err := tc.Encode([]any{[]any{[]any{[]any{1}}}}); !errors.Is(err, transcoder.ErrMaxDepth) {
		t.Errorf("Encode: expected ErrMaxDepth, got %v", err)
	}
	if _, err := tc.Decode([]byte(`[[[[1]]]]`)); !errors.Is(err, transcoder.ErrMaxDepth) {
		t.Errorf("Decode: expected ErrMaxDepth, got %v", err)
	}
}

func TestTranscoder_DecodeErrorFromTranscoding(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	tests := []string{
		`{"_type_":"uuid_hex","_data_":"not-hex"}`,
		`{"_type_":"uuid_hex","_data_":42}`,
		`{"_type_":"decimal_str","_data_":"abc"}`,
		`{"_type_":"datetime_iso","_data_":"yesterday"}`,
		`{"_type_":"mystr","_data_":1}`,
	}

	for _, in := range tests {
		_, err := tc.Decode([]byte(in))
		if !errors.Is(err, transcoder.ErrDecode) {
			t.Errorf("Decode(%s): expected ErrDecode, got %v", in, err)
		}
	}
}

func TestTranscoder_RegisteredCanonicalJSON(t *testing.T) {
	r := transcoder.NewRegistry().MustRegister(transcoder.Builtins()...)
	tc := transcoder.New(r, json.New(), transcoder.WithoutSignals())

	if tc.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q", tc.ContentType())
	}
	if tc.Registry() != r {
		t.Error("Registry() should return the registry given to New")
	}
	if !r.Frozen() {
		t.Error("New should freeze the registry")
	}
}

func TestTranscoder_IndependentRegistries(t *testing.T) {
	a := transcoder.New(transcoder.NewRegistry().MustRegister(tctest.MyStrAsStr()), json.New(), transcoder.WithoutSignals())
	b := transcoder.New(transcoder.NewRegistry(), json.New(), transcoder.WithoutSignals())

	if _, err := a.Encode(tctest.MyStr("x")); err != nil {
		t.Errorf("a.Encode() error: %v", err)
	}
	if _, err := b.Encode(tctest.MyStr("x")); !errors.Is(err, transcoder.ErrUnsupportedType) {
		t.Errorf("b.Encode(): expected ErrUnsupportedType, got %v", err)
	}
}

func TestTranscoder_Concurrent(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())
	want, err := tc.Encode(tctest.EventState())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				data, err := tc.Encode(tctest.EventState())
				if err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(data, want) {
					errs <- errors.New("non-deterministic output")
					return
				}
				if _, err := tc.Decode(data); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestDecodeAs(t *testing.T) {
	tc := tctest.NewTranscoder(transcoder.WithoutSignals())

	s, err := transcoder.DecodeAs[tctest.MyStr](tc, []byte(`{"_type_":"mystr","_data_":"buddy"}`))
	if err != nil || s != "buddy" {
		t.Errorf("DecodeAs[MyStr] = %q, %v", s, err)
	}

	m, err := transcoder.DecodeAs[*transcoder.Map](tc, []byte(`null`))
	if err != nil || m != nil {
		t.Errorf("DecodeAs(null) = %v, %v", m, err)
	}

	_, err = transcoder.DecodeAs[string](tc, []byte(`1`))
	if !errors.Is(err, transcoder.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch, got %v", err)
	}

	_, err = transcoder.DecodeAs[string](tc, []byte(`{`))
	if !errors.Is(err, transcoder.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}
