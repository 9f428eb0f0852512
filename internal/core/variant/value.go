// Package variant implements Value, the dynamically typed container used
// for properties, invocation arguments and serialized trees.
package variant

import (
	"math"
	"reflect"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/pkg/amath"
)

// Value is a tagged container. Booleans, integers and floats live inline
// in bits; every other type is held by reference in ref, so copying a
// Value never copies the payload. A zero Value is invalid.
type Value struct {
	typ  metatype.ID
	bits uint64
	ref  any
}

// List is an ordered list of values.
type List []Value

// Map is a name to value mapping.
type Map map[string]Value

// New wraps a Go value. Integer kinds collapse to Int and float kinds to
// Float; other types must be registered in the default registry.
func New(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int32(x))
	case int8:
		return Int(int32(x))
	case int16:
		return Int(int32(x))
	case int32:
		return Int(x)
	case int64:
		return Int(int32(x))
	case uint8:
		return Int(int32(x))
	case uint16:
		return Int(int32(x))
	case uint32:
		return Int(int32(x))
	case float32:
		return Float(x)
	case float64:
		return Float(float32(x))
	case string:
		return Value{typ: metatype.String, ref: x}
	case []byte:
		return Value{typ: metatype.ByteArray, ref: x}
	case List:
		return Value{typ: metatype.List, ref: x}
	case []Value:
		return Value{typ: metatype.List, ref: List(x)}
	case Map:
		return Value{typ: metatype.Map, ref: x}
	case map[string]Value:
		return Value{typ: metatype.Map, ref: Map(x)}
	case amath.Vector2:
		return Value{typ: metatype.Vector2, ref: x}
	case amath.Vector3:
		return Value{typ: metatype.Vector3, ref: x}
	case amath.Vector4:
		return Value{typ: metatype.Vector4, ref: x}
	case amath.Quaternion:
		return Value{typ: metatype.Quaternion, ref: x}
	case amath.Matrix3:
		return Value{typ: metatype.Matrix3, ref: x}
	case amath.Matrix4:
		return Value{typ: metatype.Matrix4, ref: x}
	}
	return From(metatype.IDFor(reflect.TypeOf(v)), v)
}

func Bool(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{typ: metatype.Bool, bits: bits}
}

func Int(i int32) Value {
	return Value{typ: metatype.Int, bits: uint64(uint32(i))}
}

func Float(f float32) Value {
	return Value{typ: metatype.Float, bits: uint64(math.Float32bits(f))}
}

// From wraps payload as a value of type id without checking that the
// payload matches the type.
func From(id metatype.ID, payload any) Value {
	switch id {
	case metatype.Invalid:
		return Value{}
	case metatype.Bool:
		b, _ := payload.(bool)
		return Bool(b)
	case metatype.Int:
		i, _ := payload.(int32)
		return Int(i)
	case metatype.Float:
		f, _ := payload.(float32)
		return Float(f)
	}
	return Value{typ: id, ref: payload}
}

// Zero returns a default-constructed value of type id.
func Zero(id metatype.ID) Value {
	if id == metatype.Invalid {
		return Value{}
	}
	return From(id, metatype.Construct(id))
}

func (v Value) Type() metatype.ID { return v.typ }
func (v Value) TypeName() string  { return metatype.Name(v.typ) }
func (v Value) IsValid() bool     { return v.typ != metatype.Invalid }

// Interface returns the payload as a Go value.
func (v Value) Interface() any {
	switch v.typ {
	case metatype.Invalid:
		return nil
	case metatype.Bool:
		return v.bits != 0
	case metatype.Int:
		return int32(uint32(v.bits))
	case metatype.Float:
		return math.Float32frombits(uint32(v.bits))
	}
	return v.ref
}

// Equal reports whether both values have the same type and the registry
// considers their payloads equal.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	if v.typ == metatype.Invalid {
		return true
	}
	if v.typ.IsScalar() {
		return v.bits == o.bits || (v.typ == metatype.Float && v.Float() == o.Float())
	}
	return metatype.Equal(v.typ, v.ref, o.ref)
}

func (v Value) CanConvert(to metatype.ID) bool {
	return metatype.CanConvert(v.typ, to)
}

// Convert returns v as type to. It returns an invalid value and false if
// no converter exists or the conversion fails.
func (v Value) Convert(to metatype.ID) (Value, bool) {
	if v.typ == metatype.Invalid {
		return Value{}, false
	}
	out, ok := metatype.Convert(v.typ, to, v.Interface())
	if !ok {
		return Value{}, false
	}
	return From(to, out), true
}

func (v Value) Bool() bool     { return As[bool](v) }
func (v Value) Int() int32     { return As[int32](v) }
func (v Value) Float() float32 { return As[float32](v) }
func (v Value) String() string { return As[string](v) }
func (v Value) Bytes() []byte  { return As[[]byte](v) }

// List returns a copy of the list payload.
func (v Value) List() List {
	l := As[List](v)
	if l == nil {
		return nil
	}
	return append(List(nil), l...)
}

// Map returns a copy of the map payload.
func (v Value) Map() Map {
	m := As[Map](v)
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, e := range m {
		out[k] = e
	}
	return out
}

// As extracts v as T, converting when v holds a different registered type.
// Mismatches yield the zero T.
func As[T any](v Value) T {
	var zero T
	want := metatype.TypeOf[T]()
	if want == metatype.Invalid || want == v.typ {
		x, _ := v.Interface().(T)
		return x
	}
	c, ok := v.Convert(want)
	if !ok {
		return zero
	}
	x, _ := c.Interface().(T)
	return x
}
