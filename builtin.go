package transcoder

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Built-in tag names. They are part of the wire contract.
const (
	NameUUIDHex     = "uuid_hex"
	NameDatetimeISO = "datetime_iso"
	NameDecimalStr  = "decimal_str"
	NameTupleAsList = "tuple_as_list"
)

// UUIDAsHex encodes uuid.UUID as its 32 lowercase hex digits, without hyphens.
func UUIDAsHex() Transcoding {
	return NewTranscoding(NameUUIDHex,
		func(id uuid.UUID) any {
			return hex.EncodeToString(id[:])
		},
		func(data any) (uuid.UUID, error) {
			s, ok := data.(string)
			if !ok {
				return uuid.Nil, payloadError("string", data)
			}
			if len(s) != 32 {
				return uuid.Nil, fmt.Errorf("uuid hex must be 32 characters, got %d", len(s))
			}
			return uuid.Parse(s)
		},
	)
}

// naiveISO parses timestamps written without a UTC offset; they are read as UTC.
const naiveISO = "2006-01-02T15:04:05.999999999"

// DatetimeAsISO encodes time.Time as an ISO 8601 string (RFC 3339 with
// nanoseconds). The monotonic clock reading is dropped; the instant and
// offset round-trip.
func DatetimeAsISO() Transcoding {
	return NewTranscoding(NameDatetimeISO,
		func(t time.Time) any {
			return t.Format(time.RFC3339Nano)
		},
		func(data any) (time.Time, error) {
			s, ok := data.(string)
			if !ok {
				return time.Time{}, payloadError("string", data)
			}
			t, err := time.Parse(time.RFC3339Nano, s)
			if err == nil {
				return t, nil
			}
			if naive, nerr := time.Parse(naiveISO, s); nerr == nil {
				return naive, nil
			}
			return time.Time{}, err
		},
	)
}

// DecimalAsStr encodes decimal.Decimal as its exact decimal string.
func DecimalAsStr() Transcoding {
	return NewTranscoding(NameDecimalStr,
		func(d decimal.Decimal) any {
			return d.String()
		},
		func(data any) (decimal.Decimal, error) {
			s, ok := data.(string)
			if !ok {
				return decimal.Zero, payloadError("string", data)
			}
			return decimal.NewFromString(s)
		},
	)
}

// TupleAsList encodes Tuple as a JSON array. Elements are encoded recursively.
func TupleAsList() Transcoding {
	return NewTranscoding(NameTupleAsList,
		func(t Tuple) any {
			return []any(t)
		},
		func(data any) (Tuple, error) {
			s, ok := data.([]any)
			if !ok {
				return nil, payloadError("array", data)
			}
			return Tuple(s), nil
		},
	)
}

// Builtins returns every built-in transcoding.
func Builtins() []Transcoding {
	return []Transcoding{
		UUIDAsHex(),
		DatetimeAsISO(),
		DecimalAsStr(),
		TupleAsList(),
	}
}
