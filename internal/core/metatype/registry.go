package metatype

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry assigns type identities and stores lifecycle tables and
// converters. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	types      map[ID]*Descriptor
	byName     map[string]ID
	byNative   map[reflect.Type]ID
	converters map[edge]Converter
	next       ID
}

// NewRegistry returns a registry pre-populated with the scalar, string,
// byte array and aggregate types and their converters.
func NewRegistry() *Registry {
	r := &Registry{
		types:      make(map[ID]*Descriptor),
		byName:     make(map[string]ID),
		byNative:   make(map[reflect.Type]ID),
		converters: make(map[edge]Converter),
		next:       UserType + 1,
	}
	registerBuiltins(r)
	return r
}

// Register appends a new type and returns its id. Ids are never reused.
// Registering the same name or native type twice is allowed: the newest
// entry shadows the older one in name and native lookups.
func (r *Registry) Register(t Table) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.next
	r.next++
	r.storeLocked(id, t)
	return id
}

// Define installs t at a reserved built-in id below UserType. It fails if
// the id is out of range or already taken.
func (r *Registry) Define(id ID, t Table) error {
	if id == Invalid || id >= UserType {
		return fmt.Errorf("metatype: id %d is not a reserved id", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[id]; exists {
		return fmt.Errorf("metatype: id %d already defined", id)
	}
	r.storeLocked(id, t)
	return nil
}

func (r *Registry) storeLocked(id ID, t Table) {
	d := &Descriptor{Table: t, ID: id}
	if t.Native != nil {
		d.Size = t.Native.Size()
		r.byNative[t.Native] = id
	}
	r.types[id] = d
	r.byName[t.Name] = id
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id ID) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[id]
	return d, ok
}

// IDOf resolves a type name. Unknown names yield Invalid.
func (r *Registry) IDOf(name string) ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// IDFor resolves a native Go type. Unknown types yield Invalid.
func (r *Registry) IDFor(t reflect.Type) ID {
	if t == nil {
		return Invalid
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byNative[t]
}

// Name returns the display name of id, or "" if unknown.
func (r *Registry) Name(id ID) string {
	if d, ok := r.Lookup(id); ok {
		return d.Name
	}
	return ""
}

func (r *Registry) Construct(id ID) any {
	if d, ok := r.Lookup(id); ok {
		return d.construct()
	}
	return nil
}

func (r *Registry) Clone(id ID, v any) any {
	if d, ok := r.Lookup(id); ok {
		return d.clone(v)
	}
	return nil
}

func (r *Registry) Move(id ID, v any) any {
	if d, ok := r.Lookup(id); ok {
		return d.move(v)
	}
	return nil
}

func (r *Registry) Destroy(id ID, v any) {
	if d, ok := r.Lookup(id); ok && d.Destroy != nil {
		d.Destroy(v)
	}
}

// Equal compares two payloads of type id. Unknown ids are never equal.
func (r *Registry) Equal(id ID, a, b any) bool {
	d, ok := r.Lookup(id)
	if !ok {
		return false
	}
	return d.equal(a, b)
}

// RegisterConverter installs fn as the converter from -> to. It returns
// false and leaves the registry untouched if the pair already has one.
func (r *Registry) RegisterConverter(from, to ID, fn Converter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edge{from: from, to: to}
	if _, exists := r.converters[key]; exists {
		return false
	}
	r.converters[key] = fn
	return true
}

// CanConvert reports whether a payload of from can be turned into to.
func (r *Registry) CanConvert(from, to ID) bool {
	if from == to {
		_, ok := r.Lookup(from)
		return ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.converters[edge{from: from, to: to}]
	return ok
}

// Convert turns v of type from into a payload of type to. Converting to
// the same id clones. A missing edge or a failed conversion returns false.
func (r *Registry) Convert(from, to ID, v any) (any, bool) {
	if from == to {
		d, ok := r.Lookup(from)
		if !ok {
			return nil, false
		}
		return d.clone(v), true
	}
	r.mu.RLock()
	fn, ok := r.converters[edge{from: from, to: to}]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return fn(v)
}

// Types returns a snapshot of all descriptors ordered by id.
func (r *Registry) Types() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.types))
	for _, d := range r.types {
		out = append(out, *d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
