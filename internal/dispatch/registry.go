// Package dispatch implements single dispatch on the runtime type of a value.
//
// A Registry maps Go types to handlers. Lookup resolves the most specific
// handler for a value: its own type first, then the types it embeds (the
// first anonymous struct field, repeatedly), then any registered interface
// the value implements, in registration order. Pointer and value types are
// treated as the same key.
//
// Registration is a startup activity. Once Freeze is called the registry is
// read-only and Register fails with ErrFrozen.
package dispatch

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Errors returned by Register.
var (
	ErrFrozen    = errors.New("dispatch: registry is frozen")
	ErrNilType   = errors.New("dispatch: nil type")
	ErrDuplicate = errors.New("dispatch: type already registered")
)

// Registry maps types to handlers of type H.
type Registry[H any] struct {
	name string

	mu       sync.RWMutex
	handlers map[reflect.Type]H
	ifaces   []ifaceEntry[H]
	frozen   bool
}

type ifaceEntry[H any] struct {
	typ     reflect.Type
	handler H
}

// New creates an empty registry. name labels errors and diagnostics.
func New[H any](name string) *Registry[H] {
	return &Registry[H]{
		name:     name,
		handlers: make(map[reflect.Type]H),
	}
}

// Register binds h to typ. Interface types match every implementing value
// that has no more specific concrete registration.
func (r *Registry[H]) Register(typ reflect.Type, h H) error {
	if typ == nil {
		return fmt.Errorf("%s: %w", r.name, ErrNilType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%s: register %s: %w", r.name, typ, ErrFrozen)
	}

	if typ.Kind() == reflect.Interface {
		for _, e := range r.ifaces {
			if e.typ == typ {
				return fmt.Errorf("%s: %s: %w", r.name, typ, ErrDuplicate)
			}
		}
		r.ifaces = append(r.ifaces, ifaceEntry[H]{typ: typ, handler: h})
		return nil
	}

	key := normalize(typ)
	if _, ok := r.handlers[key]; ok {
		return fmt.Errorf("%s: %s: %w", r.name, key, ErrDuplicate)
	}
	r.handlers[key] = h
	return nil
}

// Register binds h to the type parameter T.
func Register[T, H any](r *Registry[H], h H) error {
	return r.Register(reflect.TypeOf((*T)(nil)).Elem(), h)
}

// Lookup returns the most specific handler for v's runtime type.
// ok is false when nothing matches.
func (r *Registry[H]) Lookup(v any) (h H, ok bool) {
	if v == nil {
		return h, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Embedding can loop (type T struct{ *T }), so each type is tried once.
	seen := make(map[reflect.Type]bool)
	for t := normalize(reflect.TypeOf(v)); t != nil && !seen[t]; t = embedded(t) {
		seen[t] = true
		if h, ok := r.handlers[t]; ok {
			return h, true
		}
	}

	vt := reflect.TypeOf(v)
	for _, e := range r.ifaces {
		if vt.Implements(e.typ) {
			return e.handler, true
		}
	}
	return h, false
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry[H]) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry[H]) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Types returns the registered type names, sorted.
func (r *Registry[H]) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers)+len(r.ifaces))
	for t := range r.handlers {
		names = append(names, t.String())
	}
	for _, e := range r.ifaces {
		names = append(names, e.typ.String())
	}
	sort.Strings(names)
	return names
}

// normalize strips pointer indirections so *T and T share a key.
func normalize(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// embedded returns the type of the first anonymous field of a struct, the
// Go analogue of a primary base class.
func embedded(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Struct || t.NumField() == 0 {
		return nil
	}
	f := t.Field(0)
	if !f.Anonymous {
		return nil
	}
	return normalize(f.Type)
}
