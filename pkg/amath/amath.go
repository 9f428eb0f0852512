// Package amath holds the small fixed-size numeric aggregates carried by
// variant values. They are plain value types with no behaviour beyond
// flattening to and from float slices.
package amath

type Vector2 struct{ X, Y float32 }

type Vector3 struct{ X, Y, Z float32 }

type Vector4 struct{ X, Y, Z, W float32 }

// Quaternion is a rotation stored as (x, y, z, w).
type Quaternion struct{ X, Y, Z, W float32 }

// Matrix3 is a column-major 3x3 matrix.
type Matrix3 [9]float32

// Matrix4 is a column-major 4x4 matrix.
type Matrix4 [16]float32

func Identity3() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func Identity4() Matrix4 {
	return Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func (v Vector2) Floats() []float32    { return []float32{v.X, v.Y} }
func (v Vector3) Floats() []float32    { return []float32{v.X, v.Y, v.Z} }
func (v Vector4) Floats() []float32    { return []float32{v.X, v.Y, v.Z, v.W} }
func (q Quaternion) Floats() []float32 { return []float32{q.X, q.Y, q.Z, q.W} }
func (m Matrix3) Floats() []float32    { return m[:] }
func (m Matrix4) Floats() []float32    { return m[:] }

// Flattener is implemented by every aggregate in this package.
type Flattener interface {
	Floats() []float32
}

// Components returns the number of floats an aggregate named name flattens
// to, or 0 if name is not an aggregate.
func Components(name string) int {
	switch name {
	case "Vector2":
		return 2
	case "Vector3":
		return 3
	case "Vector4", "Quaternion":
		return 4
	case "Matrix3":
		return 9
	case "Matrix4":
		return 16
	}
	return 0
}

// FromFloats builds the aggregate named name from f. Missing trailing
// components stay zero and extra ones are ignored.
func FromFloats(name string, f []float32) (any, bool) {
	at := func(i int) float32 {
		if i < len(f) {
			return f[i]
		}
		return 0
	}
	switch name {
	case "Vector2":
		return Vector2{at(0), at(1)}, true
	case "Vector3":
		return Vector3{at(0), at(1), at(2)}, true
	case "Vector4":
		return Vector4{at(0), at(1), at(2), at(3)}, true
	case "Quaternion":
		return Quaternion{at(0), at(1), at(2), at(3)}, true
	case "Matrix3":
		var m Matrix3
		copy(m[:], f)
		return m, true
	case "Matrix4":
		var m Matrix4
		copy(m[:], f)
		return m, true
	}
	return nil, false
}
