// Package testing provides test utilities for transcoder.
package testing

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/transcoder"
	"github.com/zoobzio/transcoder/json"
	"github.com/zoobzio/transcoder/mapper"
)

// TestKey returns a valid 32-byte key for testing.
func TestKey() []byte {
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestCipher returns an AES cipher configured for testing.
func TestCipher() mapper.Cipher {
	c, err := mapper.AES(TestKey())
	if err != nil {
		panic(err)
	}
	return c
}

// MyInt is an arbitrary-precision integer type distinct from *big.Int.
type MyInt big.Int

// NewMyInt parses a decimal literal into a *MyInt. It panics on bad input.
func NewMyInt(s string) *MyInt {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("invalid integer %q", s))
	}
	return (*MyInt)(i)
}

// Big returns the value as a *big.Int.
func (m *MyInt) Big() *big.Int { return (*big.Int)(m) }

// MyStr is a string type distinct from string.
type MyStr string

// MyDict is a mapping type distinct from the default mapping.
type MyDict map[string]any

// MyList is a sequence type distinct from []any.
type MyList []any

// CustomType1 is a value object holding an identifier.
type CustomType1 struct {
	Value uuid.UUID `json:"value"`
}

// CustomType2 is a value object nesting another registered type.
type CustomType2 struct {
	Value CustomType1 `json:"value"`
}

// MyIntAsInt encodes *MyInt as a bare integer.
func MyIntAsInt() transcoder.Transcoding {
	return transcoder.NewTranscoding("myint",
		func(m *MyInt) any {
			if m == nil {
				return nil
			}
			return new(big.Int).Set(m.Big())
		},
		func(data any) (*MyInt, error) {
			switch x := data.(type) {
			case nil:
				return nil, nil
			case int:
				return (*MyInt)(big.NewInt(int64(x))), nil
			case *big.Int:
				return (*MyInt)(x), nil
			}
			return nil, fmt.Errorf("want integer payload, got %T", data)
		},
	)
}

// MyStrAsStr encodes MyStr as a string.
func MyStrAsStr() transcoder.Transcoding {
	return transcoder.NewTranscoding("mystr",
		func(s MyStr) any { return string(s) },
		func(data any) (MyStr, error) {
			s, ok := data.(string)
			if !ok {
				return "", fmt.Errorf("want string payload, got %T", data)
			}
			return MyStr(s), nil
		},
	)
}

// MyDictAsDict encodes MyDict as an object with sorted keys.
func MyDictAsDict() transcoder.Transcoding {
	return transcoder.NewTranscoding("mydict",
		func(d MyDict) any { return map[string]any(d) },
		func(data any) (MyDict, error) {
			m, ok := data.(*transcoder.Map)
			if !ok {
				return nil, fmt.Errorf("want object payload, got %T", data)
			}
			d := make(MyDict, m.Len())
			for k, v := range m.All() {
				d[k] = v
			}
			return d, nil
		},
	)
}

// MyListAsList encodes MyList as an array.
func MyListAsList() transcoder.Transcoding {
	return transcoder.NewTranscoding("mylist",
		func(l MyList) any { return []any(l) },
		func(data any) (MyList, error) {
			s, ok := data.([]any)
			if !ok {
				return nil, fmt.Errorf("want array payload, got %T", data)
			}
			return MyList(s), nil
		},
	)
}

// CustomType1AsDict encodes CustomType1 with a hand-written function pair.
func CustomType1AsDict() transcoder.Transcoding {
	return transcoder.NewTranscoding("custom_type1_as_dict",
		func(c CustomType1) any {
			return transcoder.NewMap(transcoder.Member{Key: "value", Value: c.Value})
		},
		func(data any) (CustomType1, error) {
			m, ok := data.(*transcoder.Map)
			if !ok {
				return CustomType1{}, fmt.Errorf("want object payload, got %T", data)
			}
			v, _ := m.Get("value")
			id, ok := v.(uuid.UUID)
			if !ok {
				return CustomType1{}, fmt.Errorf("want uuid value, got %T", v)
			}
			return CustomType1{Value: id}, nil
		},
	)
}

// CustomType2AsDict encodes CustomType2 through struct field metadata.
func CustomType2AsDict() transcoder.Transcoding {
	return transcoder.MustStructAsDict[CustomType2]("custom_type2_as_dict")
}

// Transcodings returns the built-ins plus every fixture transcoding.
func Transcodings() []transcoder.Transcoding {
	return append(transcoder.Builtins(),
		CustomType1AsDict(),
		CustomType2AsDict(),
		MyDictAsDict(),
		MyListAsList(),
		MyIntAsInt(),
		MyStrAsStr(),
	)
}

// NewRegistry returns a registry holding Transcodings().
func NewRegistry() *transcoder.Registry {
	return transcoder.NewRegistry().MustRegister(Transcodings()...)
}

// NewTranscoder returns a JSON transcoder over NewRegistry().
func NewTranscoder(opts ...transcoder.Option) *transcoder.Transcoder {
	return transcoder.New(NewRegistry(), json.New(), opts...)
}

// TestUUID is a fixed identifier for tests.
var TestUUID = uuid.MustParse("b2723fe2-c01a-40d2-875e-a3aac6a09ff5")

// TestTimestamp is a fixed UTC instant for tests.
var TestTimestamp = time.Date(2024, time.March, 14, 15, 9, 26, 535897000, time.UTC)

// EventState returns an event-shaped value mixing native and registered types.
func EventState() *transcoder.Map {
	return transcoder.NewMap(
		transcoder.Member{Key: "originator_id", Value: uuid.NewSHA1(uuid.NameSpaceURL, []byte("some_id"))},
		transcoder.Member{Key: "originator_version", Value: 123},
		transcoder.Member{Key: "timestamp", Value: TestTimestamp},
		transcoder.Member{Key: "a_str", Value: "hello"},
		transcoder.Member{Key: "b_int", Value: 1234567},
		transcoder.Member{Key: "c_tuple", Value: transcoder.Tuple{1, 2, 3, 4, 5, 6, 7}},
		transcoder.Member{Key: "d_list", Value: []any{1, 2, 3, 4, 5, 6, 7}},
		transcoder.Member{Key: "e_dict", Value: transcoder.NewMap(
			transcoder.Member{Key: "a", Value: 1},
			transcoder.Member{Key: "b", Value: 2},
			transcoder.Member{Key: "c", Value: 3},
		)},
		transcoder.Member{Key: "f_valueobj", Value: CustomType2{Value: CustomType1{Value: TestUUID}}},
	)
}
