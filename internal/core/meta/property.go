package meta

import (
	"fmt"
	"reflect"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
)

type PropertyDescriptor struct {
	Name  string
	Type  metatype.ID
	Read  func(obj any) variant.Value
	Write func(obj any, v variant.Value)
	// Annotation is a free-form hint for tooling, e.g. "enum=WrapType".
	Annotation string
}

func (p *PropertyDescriptor) Readable() bool { return p.Read != nil }
func (p *PropertyDescriptor) Writable() bool { return p.Write != nil }

// Prop builds a typed property over an object of type T. A nil set makes
// the property read-only. V may be a registered type, any Go bool, integer,
// float or string kind (stored as Bool, Int, Float or String), a pointer
// to a type embedding an entity (stored as an Object reference), or
// variant.Value for untyped properties. Any other V panics.
func Prop[T any, V any](name string, get func(T) V, set func(T, V)) PropertyDescriptor {
	typ, wrap, unwrap := adapt[V](name)
	p := PropertyDescriptor{
		Name: name,
		Type: typ,
		Read: func(obj any) variant.Value {
			return wrap(get(obj.(T)))
		},
	}
	if set != nil {
		p.Write = func(obj any, v variant.Value) {
			if x, ok := unwrap(v); ok {
				set(obj.(T), x)
			}
		}
	}
	return p
}

// adapt picks the declared type of V and the functions moving a V in and
// out of a Value.
func adapt[V any](name string) (metatype.ID, func(V) variant.Value, func(variant.Value) (V, bool)) {
	if id := metatype.TypeOf[V](); id != metatype.Invalid {
		return id,
			func(x V) variant.Value { return variant.From(id, x) },
			func(v variant.Value) (V, bool) { return variant.As[V](v), true }
	}

	t := reflect.TypeFor[V]()
	if t == reflect.TypeFor[variant.Value]() {
		return metatype.Invalid,
			func(x V) variant.Value { return any(x).(variant.Value) },
			func(v variant.Value) (V, bool) {
				x, ok := any(v).(V)
				return x, ok
			}
	}
	if isEntityRef(t) {
		return metatype.Object, wrapRef[V], unwrapRef[V]
	}

	var id metatype.ID
	switch t.Kind() {
	case reflect.Bool:
		id = metatype.Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		id = metatype.Int
	case reflect.Float32, reflect.Float64:
		id = metatype.Float
	case reflect.String:
		id = metatype.String
	default:
		panic(fmt.Sprintf("meta: property %s has unsupported type %s", name, t))
	}
	return id,
		func(x V) variant.Value { return scalar(reflect.ValueOf(x)) },
		func(v variant.Value) (V, bool) {
			var out V
			c, ok := v.Convert(id)
			if !ok {
				return out, false
			}
			rv := reflect.ValueOf(&out).Elem()
			switch rv.Kind() {
			case reflect.Bool:
				rv.SetBool(c.Bool())
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				rv.SetInt(int64(c.Int()))
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				rv.SetUint(uint64(uint32(c.Int())))
			case reflect.Float32, reflect.Float64:
				rv.SetFloat(float64(c.Float()))
			case reflect.String:
				rv.SetString(c.String())
			}
			return out, true
		}
}

func scalar(rv reflect.Value) variant.Value {
	switch rv.Kind() {
	case reflect.Bool:
		return variant.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return variant.Int(int32(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return variant.Int(int32(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return variant.Float(float32(rv.Float()))
	default:
		return variant.New(rv.String())
	}
}

// isEntityRef reports whether t is a pointer whose Base method returns
// the native type registered for Object.
func isEntityRef(t reflect.Type) bool {
	d, ok := metatype.Lookup(metatype.Object)
	if !ok || d.Native == nil || t.Kind() != reflect.Pointer {
		return false
	}
	m, ok := t.MethodByName("Base")
	return ok && m.Type.NumIn() == 1 && m.Type.NumOut() == 1 && m.Type.Out(0) == d.Native
}

func wrapRef[V any](x V) variant.Value {
	rv := reflect.ValueOf(x)
	if rv.IsNil() {
		return variant.From(metatype.Object, reflect.Zero(objectNative()).Interface())
	}
	return variant.From(metatype.Object, rv.MethodByName("Base").Call(nil)[0].Interface())
}

// unwrapRef turns an Object reference back into V through the entity's
// Self method. References to entities of another type are rejected.
func unwrapRef[V any](v variant.Value) (V, bool) {
	var zero V
	if !v.IsValid() {
		return zero, true
	}
	if v.Type() != metatype.Object {
		return zero, false
	}
	rv := reflect.ValueOf(v.Interface())
	if !rv.IsValid() || rv.IsNil() {
		return zero, true
	}
	self := rv.MethodByName("Self")
	if !self.IsValid() {
		return zero, false
	}
	x, ok := self.Call(nil)[0].Interface().(V)
	return x, ok
}

func objectNative() reflect.Type {
	d, _ := metatype.Lookup(metatype.Object)
	return d.Native
}

type EnumKey struct {
	Name  string
	Value int32
}

type Enumerator struct {
	Name string
	Keys []EnumKey
}

func (e *Enumerator) Value(key string) (int32, bool) {
	for _, k := range e.Keys {
		if k.Name == key {
			return k.Value, true
		}
	}
	return 0, false
}

func (e *Enumerator) Key(value int32) (string, bool) {
	for _, k := range e.Keys {
		if k.Value == value {
			return k.Name, true
		}
	}
	return "", false
}
