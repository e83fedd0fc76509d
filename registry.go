package transcoder

import (
	"context"
	"math/big"
	"reflect"
	"slices"
	"sync/atomic"
)

// Registry indexes Transcodings by exact type and by tag name.
//
// Registration is a setup step and is not safe for concurrent use. Once frozen,
// either explicitly or by New, the Registry is read-only and may be shared by any
// number of goroutines.
type Registry struct {
	byType map[reflect.Type]Transcoding
	byName map[string]Transcoding

	// Interface-typed transcodings, consulted in registration order.
	ifaces []Transcoding

	frozen atomic.Bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]Transcoding),
		byName: make(map[string]Transcoding),
	}
}

// nativeTypes are handled by the Transcoder before the Registry is consulted,
// so registrations for them would never be reached.
var nativeTypes = map[reflect.Type]bool{
	reflect.TypeFor[bool]():           true,
	reflect.TypeFor[string]():         true,
	reflect.TypeFor[int]():            true,
	reflect.TypeFor[float64]():        true,
	reflect.TypeFor[*big.Int]():       true,
	reflect.TypeFor[Number]():         true,
	reflect.TypeFor[[]any]():          true,
	reflect.TypeFor[*Map]():           true,
	reflect.TypeFor[map[string]any](): true,
}

// Register adds t to the Registry.
// It fails with ErrDuplicateRegistration if t's type or name is already present,
// leaving the Registry unchanged.
func (r *Registry) Register(t Transcoding) error {
	if r.frozen.Load() {
		if t == nil {
			return newRegistrationError(ErrRegistryFrozen, "", nil)
		}
		return newRegistrationError(ErrRegistryFrozen, t.Name(), t.Type())
	}
	if t == nil {
		return newRegistrationError(ErrInvalidTranscoding, "", nil)
	}

	typ, name := t.Type(), t.Name()
	if typ == nil || name == "" {
		return newRegistrationError(ErrInvalidTranscoding, name, typ)
	}
	if nativeTypes[typ] {
		return newRegistrationError(ErrInvalidTranscoding, name, typ)
	}
	if _, ok := r.byType[typ]; ok {
		return newRegistrationError(ErrDuplicateRegistration, name, typ)
	}
	if _, ok := r.byName[name]; ok {
		return newRegistrationError(ErrDuplicateRegistration, name, typ)
	}

	r.byType[typ] = t
	r.byName[name] = t
	if typ.Kind() == reflect.Interface {
		r.ifaces = append(r.ifaces, t)
	}

	emitRegistered(context.Background(), name, typ.String())
	return nil
}

// RegisterAll registers each transcoding in order, stopping at the first error.
// Transcodings registered before the failure stay registered.
func (r *Registry) RegisterAll(ts ...Transcoding) error {
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like RegisterAll but panics on error.
// Returns the registry for chaining.
func (r *Registry) MustRegister(ts ...Transcoding) *Registry {
	if err := r.RegisterAll(ts...); err != nil {
		panic(err)
	}
	return r
}

// LookupType returns the Transcoding for exactly typ.
// If none exists, the first interface-typed Transcoding that typ implements is
// returned.
func (r *Registry) LookupType(typ reflect.Type) (Transcoding, bool) {
	if t, ok := r.byType[typ]; ok {
		return t, true
	}
	for _, t := range r.ifaces {
		if typ.Implements(t.Type()) {
			return t, true
		}
	}
	return nil, false
}

// LookupName returns the Transcoding registered under name.
func (r *Registry) LookupName(name string) (Transcoding, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered tag names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of registered transcodings.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Freeze makes the Registry read-only. Later Register calls fail with ErrRegistryFrozen.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// Frozen reports whether the Registry has been frozen.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
