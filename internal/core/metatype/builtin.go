package metatype

import (
	"bytes"
	"math"
	"reflect"
	"strconv"

	"github.com/zeusync/thunder/pkg/amath"
)

func registerBuiltins(r *Registry) {
	scalars := []struct {
		id ID
		t  Table
	}{
		{Bool, Table{Name: "bool", Native: reflect.TypeFor[bool]()}},
		{Int, Table{Name: "int", Native: reflect.TypeFor[int32]()}},
		{Float, Table{Name: "float", Native: reflect.TypeFor[float32]()}},
		{String, Table{Name: "string", Native: reflect.TypeFor[string]()}},
		{ByteArray, Table{
			Name:   "ByteArray",
			Native: reflect.TypeFor[[]byte](),
			New:    func() any { return []byte{} },
			Clone:  func(v any) any { return bytes.Clone(v.([]byte)) },
			Equal:  func(a, b any) bool { return bytes.Equal(a.([]byte), b.([]byte)) },
		}},
		{Vector2, Table{Name: "Vector2", Native: reflect.TypeFor[amath.Vector2]()}},
		{Vector3, Table{Name: "Vector3", Native: reflect.TypeFor[amath.Vector3]()}},
		{Vector4, Table{Name: "Vector4", Native: reflect.TypeFor[amath.Vector4]()}},
		{Quaternion, Table{Name: "Quaternion", Native: reflect.TypeFor[amath.Quaternion]()}},
		{Matrix3, Table{Name: "Matrix3", Native: reflect.TypeFor[amath.Matrix3](), New: func() any { return amath.Identity3() }}},
		{Matrix4, Table{Name: "Matrix4", Native: reflect.TypeFor[amath.Matrix4](), New: func() any { return amath.Identity4() }}},
	}
	for _, s := range scalars {
		r.storeLocked(s.id, s.t)
	}

	conv := func(from, to ID, fn Converter) { r.converters[edge{from: from, to: to}] = fn }

	conv(Bool, Int, func(v any) (any, bool) { return boolTo[int32](v.(bool)), true })
	conv(Bool, Float, func(v any) (any, bool) { return boolTo[float32](v.(bool)), true })
	conv(Bool, String, func(v any) (any, bool) { return strconv.FormatBool(v.(bool)), true })

	conv(Int, Bool, func(v any) (any, bool) { return v.(int32) != 0, true })
	conv(Int, Float, func(v any) (any, bool) { return float32(v.(int32)), true })
	conv(Int, String, func(v any) (any, bool) { return strconv.FormatInt(int64(v.(int32)), 10), true })

	conv(Float, Bool, func(v any) (any, bool) { return v.(float32) != 0, true })
	conv(Float, Int, func(v any) (any, bool) { return roundHalfUp(v.(float32)), true })
	conv(Float, String, func(v any) (any, bool) {
		return strconv.FormatFloat(float64(v.(float32)), 'g', -1, 32), true
	})

	conv(String, Bool, func(v any) (any, bool) {
		b, err := strconv.ParseBool(v.(string))
		return b, err == nil
	})
	conv(String, Int, func(v any) (any, bool) {
		n, err := strconv.ParseInt(v.(string), 10, 32)
		return int32(n), err == nil
	})
	conv(String, Float, func(v any) (any, bool) {
		f, err := strconv.ParseFloat(v.(string), 32)
		return float32(f), err == nil
	})
	conv(String, ByteArray, func(v any) (any, bool) { return []byte(v.(string)), true })
	conv(ByteArray, String, func(v any) (any, bool) { return string(v.([]byte)), true })

	// Scalars splat into every vector component.
	for _, to := range []ID{Vector2, Vector3, Vector4} {
		name := r.types[to].Name
		n := amath.Components(name)
		conv(Int, to, func(v any) (any, bool) { return splat(name, n, float32(v.(int32))) })
		conv(Float, to, func(v any) (any, bool) { return splat(name, n, v.(float32)) })
	}

	conv(Vector2, Vector3, func(v any) (any, bool) {
		x := v.(amath.Vector2)
		return amath.Vector3{X: x.X, Y: x.Y}, true
	})
	conv(Vector2, Vector4, func(v any) (any, bool) {
		x := v.(amath.Vector2)
		return amath.Vector4{X: x.X, Y: x.Y}, true
	})
	conv(Vector3, Vector4, func(v any) (any, bool) {
		x := v.(amath.Vector3)
		return amath.Vector4{X: x.X, Y: x.Y, Z: x.Z}, true
	})
}

func boolTo[T int32 | float32](b bool) T {
	if b {
		return 1
	}
	return 0
}

func roundHalfUp(f float32) int32 {
	return int32(math.Floor(float64(f) + 0.5))
}

func splat(name string, n int, f float32) (any, bool) {
	c := make([]float32, n)
	for i := range c {
		c[i] = f
	}
	return amath.FromFloats(name, c)
}
