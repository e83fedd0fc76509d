package transcoder

import (
	"iter"
	"slices"
)

// Number is a JSON numeric literal carried verbatim.
// Backends write it as-is; the Transcoder never produces it on decode.
type Number string

// Tuple is a fixed sequence kept distinct from []any.
// It is not native: register TupleAsList to encode it.
type Tuple []any

// Member is a single key/value entry of a Map.
type Member struct {
	Key   string
	Value any
}

// Map is an insertion-ordered mapping from string keys to values.
// It is the default mapping kind: objects decode into *Map and *Map encodes
// back to an object with the same member order.
//
// The zero value is an empty map ready to use.
type Map struct {
	members []Member
	index   map[string]int // built once the map outgrows indexThreshold
}

// indexThreshold is the member count above which lookups use a hash index.
const indexThreshold = 8

// NewMap returns a Map holding members in the given order.
// A repeated key overwrites the earlier value in place.
func NewMap(members ...Member) *Map {
	m := &Map{}
	if len(members) > 0 {
		m.members = make([]Member, 0, len(members))
	}
	for _, mem := range members {
		m.Set(mem.Key, mem.Value)
	}
	return m
}

// Set stores value under key. New keys are appended; existing keys keep their position.
func (m *Map) Set(key string, value any) {
	if i, ok := m.find(key); ok {
		m.members[i].Value = value
		return
	}
	m.members = append(m.members, Member{Key: key, Value: value})
	switch {
	case m.index != nil:
		m.index[key] = len(m.members) - 1
	case len(m.members) > indexThreshold:
		m.reindex()
	}
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.find(key)
	if !ok {
		return nil, false
	}
	return m.members[i].Value, true
}

// Delete removes key, preserving the order of the remaining members.
func (m *Map) Delete(key string) {
	i, ok := m.find(key)
	if !ok {
		return
	}
	m.members = slices.Delete(m.members, i, i+1)
	if m.index == nil {
		return
	}
	if len(m.members) <= indexThreshold {
		m.index = nil
		return
	}
	m.reindex()
}

// find returns the position of key.
func (m *Map) find(key string) (int, bool) {
	if m.index != nil {
		i, ok := m.index[key]
		return i, ok
	}
	for i := range m.members {
		if m.members[i].Key == key {
			return i, true
		}
	}
	return 0, false
}

// reindex rebuilds the hash index from members.
func (m *Map) reindex() {
	m.index = make(map[string]int, len(m.members))
	for i, mem := range m.members {
		m.index[mem.Key] = i
	}
}

// Len returns the number of members.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.members)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.members))
	for i, mem := range m.members {
		keys[i] = mem.Key
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (m *Map) Members() []Member {
	if m == nil {
		return nil
	}
	return slices.Clone(m.members)
}

// All iterates over the members in insertion order.
func (m *Map) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if m == nil {
			return
		}
		for _, mem := range m.members {
			if !yield(mem.Key, mem.Value) {
				return
			}
		}
	}
}

// member returns the i-th member without copying.
func (m *Map) member(i int) Member {
	return m.members[i]
}

// setAt replaces the value of the i-th member.
func (m *Map) setAt(i int, value any) {
	m.members[i].Value = value
}

// clone returns a shallow copy sharing no member storage with m.
func (m *Map) clone() *Map {
	c := &Map{members: slices.Clone(m.members)}
	if m.index != nil {
		c.reindex()
	}
	return c
}

// newEnvelope builds the two-member {_type_, _data_} object.
func newEnvelope(name string, data any) *Map {
	return &Map{members: []Member{
		{Key: EnvelopeType, Value: name},
		{Key: EnvelopeData, Value: data},
	}}
}

// isEnvelope reports whether m is exactly {_type_, _data_} in that order.
func (m *Map) isEnvelope() bool {
	return len(m.members) == 2 &&
		m.members[0].Key == EnvelopeType &&
		m.members[1].Key == EnvelopeData
}
