// Package metatype is the process-wide type registry: numeric type
// identities, per-type lifecycle tables and directed converters.
package metatype

import "reflect"

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

func Register(t Table) ID              { return defaultRegistry.Register(t) }
func Define(id ID, t Table) error      { return defaultRegistry.Define(id, t) }
func Lookup(id ID) (*Descriptor, bool) { return defaultRegistry.Lookup(id) }
func IDOf(name string) ID              { return defaultRegistry.IDOf(name) }
func IDFor(t reflect.Type) ID          { return defaultRegistry.IDFor(t) }
func Name(id ID) string                { return defaultRegistry.Name(id) }
func Construct(id ID) any              { return defaultRegistry.Construct(id) }
func Clone(id ID, v any) any           { return defaultRegistry.Clone(id, v) }
func Equal(id ID, a, b any) bool       { return defaultRegistry.Equal(id, a, b) }
func CanConvert(from, to ID) bool      { return defaultRegistry.CanConvert(from, to) }
func Convert(from, to ID, v any) (any, bool) {
	return defaultRegistry.Convert(from, to, v)
}
func RegisterConverter(from, to ID, fn Converter) bool {
	return defaultRegistry.RegisterConverter(from, to, fn)
}
func Types() []Descriptor { return defaultRegistry.Types() }

// TypeOf returns the id registered for the Go type T.
func TypeOf[T any]() ID {
	return defaultRegistry.IDFor(reflect.TypeFor[T]())
}
