// Package transcoder converts Go values to and from canonical JSON bytes while
// preserving type identity that plain JSON cannot express.
//
// Values that JSON represents natively pass straight through. Everything else is
// resolved through a Registry of Transcodings and written as a two-key envelope:
//
//	{"_type_":"<name>","_data_":<encoded payload>}
//
// Decoding reverses the walk: any object with exactly the keys _type_ then _data_
// is looked up by name and handed to the matching Transcoding.
//
// # Native Values
//
// The following encode without an envelope:
//
//   - nil                      → null
//   - bool                     → true / false
//   - string                   → JSON string (raw UTF-8, never \u escaped)
//   - int                      → JSON number
//   - *big.Int                 → JSON number with its exact digits
//   - float64                  → shortest round-trip literal
//   - Number                   → the literal as given
//   - []any                    → JSON array
//   - *Map                     → JSON object in insertion order
//   - map[string]any           → JSON object in sorted key order
//
// Integer literals decode to int when they fit and to *big.Int otherwise.
// Sized integers (int8..int64, uint..uint64) are not native: they need a
// registered Transcoding like any other type.
// Objects always decode to *Map.
//
// # Basic Usage
//
//	reg := transcoder.NewRegistry()
//	reg.MustRegister(
//	    transcoder.UUIDAsHex(),
//	    transcoder.DatetimeAsISO(),
//	    transcoder.DecimalAsStr(),
//	    transcoder.TupleAsList(),
//	)
//
//	tc := transcoder.New(reg, json.New())
//
//	data, _ := tc.Encode(decimal.RequireFromString("3.141592653589793"))
//	// {"_type_":"decimal_str","_data_":"3.141592653589793"}
//
//	v, _ := tc.Decode(data)
//
// # Custom Types
//
// Any type can be supported by registering a Transcoding for it:
//
//	type Celsius float64
//
//	reg.MustRegister(transcoder.NewTranscoding("celsius",
//	    func(c Celsius) any { return float64(c) },
//	    func(data any) (Celsius, error) {
//	        f, ok := data.(float64)
//	        if !ok {
//	            return 0, fmt.Errorf("want float64, got %T", data)
//	        }
//	        return Celsius(f), nil
//	    },
//	))
//
// A Transcoding may return values of other registered types; they are encoded
// recursively into nested envelopes. Structs can use StructAsDict to map their
// exported fields to an ordered object without hand-written functions.
//
// Dispatch uses the exact runtime type. A Transcoding registered for an
// interface type acts as a fallback for every type implementing it.
//
// # Concurrency
//
// Register everything before calling New. New freezes the Registry; from then on
// the Registry and the Transcoder are read-only and safe for concurrent use.
//
// # Backends
//
// The Transcoder never touches bytes itself. A Backend renders and parses trees
// made only of native values:
//
//   - json - canonical JSON on go-json-experiment/jsontext (application/json)
//
// # Signals
//
// Registration, encode and decode emit capitan signals carrying the content
// type, sizes, durations, envelope counts and errors. See signals.go.
package transcoder
