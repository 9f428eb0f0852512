package variant

import (
	"reflect"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/pkg/amath"
)

func init() {
	mustDefine(metatype.Map, metatype.Table{
		Name:   "map",
		Native: reflect.TypeFor[Map](),
		New:    func() any { return Map{} },
		Clone: func(v any) any {
			m := v.(Map)
			out := make(Map, len(m))
			for k, e := range m {
				out[k] = e
			}
			return out
		},
		Equal: func(a, b any) bool {
			x, y := a.(Map), b.(Map)
			if len(x) != len(y) {
				return false
			}
			for k, e := range x {
				o, ok := y[k]
				if !ok || !e.Equal(o) {
					return false
				}
			}
			return true
		},
	})
	mustDefine(metatype.List, metatype.Table{
		Name:   "list",
		Native: reflect.TypeFor[List](),
		New:    func() any { return List{} },
		Clone:  func(v any) any { return append(List{}, v.(List)...) },
		Equal: func(a, b any) bool {
			x, y := a.(List), b.(List)
			if len(x) != len(y) {
				return false
			}
			for i := range x {
				if !x[i].Equal(y[i]) {
					return false
				}
			}
			return true
		},
	})

	for _, id := range []metatype.ID{
		metatype.Vector2, metatype.Vector3, metatype.Vector4,
		metatype.Quaternion, metatype.Matrix3, metatype.Matrix4,
	} {
		name := metatype.Name(id)
		metatype.RegisterConverter(id, metatype.List, func(v any) (any, bool) {
			f, ok := v.(amath.Flattener)
			if !ok {
				return nil, false
			}
			return FloatList(f.Floats()), true
		})
		metatype.RegisterConverter(metatype.List, id, func(v any) (any, bool) {
			l := v.(List)
			if len(l) != amath.Components(name) {
				return nil, false
			}
			f := make([]float32, len(l))
			for i, e := range l {
				c, ok := e.Convert(metatype.Float)
				if !ok {
					return nil, false
				}
				f[i] = c.Float()
			}
			return amath.FromFloats(name, f)
		})
	}
}

func mustDefine(id metatype.ID, t metatype.Table) {
	if err := metatype.Define(id, t); err != nil {
		panic(err)
	}
}

// FloatList flattens f into a list of Float values.
func FloatList(f []float32) List {
	l := make(List, len(f))
	for i, x := range f {
		l[i] = Float(x)
	}
	return l
}
