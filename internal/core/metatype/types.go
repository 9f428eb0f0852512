package metatype

import "reflect"

// ID is a dense numeric type identity. Zero is reserved for "invalid".
type ID uint32

// Built-in identities. Registered types are numbered after UserType.
const (
	Invalid   ID = 0
	Bool      ID = 1
	Int       ID = 2
	Float     ID = 3
	String    ID = 4
	Map       ID = 5
	List      ID = 6
	ByteArray ID = 7

	Vector2    ID = 10
	Vector3    ID = 11
	Vector4    ID = 12
	Quaternion ID = 13
	Matrix3    ID = 14
	Matrix4    ID = 15

	Object   ID = 30
	UserType ID = 40
)

// IsScalar reports whether values of id are stored inline.
func (id ID) IsScalar() bool {
	return id == Bool || id == Int || id == Float
}

// IsAggregate reports whether id is one of the fixed numeric aggregates.
func (id ID) IsAggregate() bool {
	return id >= Vector2 && id <= Matrix4
}

// IsComplex reports whether id is an object reference or a user type.
// Values of complex types are never inlined into serialized records.
func (id ID) IsComplex() bool {
	return id >= Object
}

type Flags uint8

const (
	// Pointer marks types whose values are references.
	Pointer Flags = 1 << iota
	// BaseObject marks references to entities of the ownership tree.
	BaseObject
)

// Table is the set of lifecycle operations a type contributes to the
// registry. Only Name is required: missing operations fall back to
// identity copies and == comparison.
type Table struct {
	Name   string
	Native reflect.Type
	Flags  Flags

	New     func() any
	Clone   func(v any) any
	Destroy func(v any)
	Move    func(v any) any
	Equal   func(a, b any) bool
}

// Descriptor is a registry entry.
type Descriptor struct {
	Table
	ID   ID
	Size uintptr
}

func (d *Descriptor) construct() any {
	if d.New != nil {
		return d.New()
	}
	if d.Native != nil {
		return reflect.Zero(d.Native).Interface()
	}
	return nil
}

func (d *Descriptor) clone(v any) any {
	if d.Clone != nil {
		return d.Clone(v)
	}
	return v
}

func (d *Descriptor) move(v any) any {
	if d.Move != nil {
		return d.Move(v)
	}
	return v
}

func (d *Descriptor) equal(a, b any) bool {
	if d.Equal != nil {
		return d.Equal(a, b)
	}
	if a == nil || b == nil {
		return a == b
	}
	ta := reflect.TypeOf(a)
	if !ta.Comparable() || ta != reflect.TypeOf(b) {
		return false
	}
	return a == b
}

// Converter transforms a payload of one type into a payload of another.
type Converter func(from any) (any, bool)

type edge struct {
	from, to ID
}
