package object

import (
	"reflect"

	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
)

// Class is the root of every class chain. It declares the destroyed()
// signal and the deleteLater() slot.
var Class = meta.NewClass(meta.Def{
	Name:    "Object",
	Factory: func() any { return &Entity{} },
	Methods: []meta.MethodDescriptor{
		meta.NewSignal("destroyed"),
		meta.NewSlot("deleteLater", func(obj any, _ []variant.Value) variant.Value {
			obj.(Object).Base().DeleteLater()
			return variant.Value{}
		}),
	},
})

func init() {
	err := metatype.Define(metatype.Object, metatype.Table{
		Name:   "Object*",
		Native: reflect.TypeFor[*Entity](),
		Flags:  metatype.Pointer | metatype.BaseObject,
		New:    func() any { return (*Entity)(nil) },
	})
	if err != nil {
		panic(err)
	}
}

// Ref wraps an entity reference in a Value.
func Ref(e *Entity) variant.Value {
	return variant.From(metatype.Object, e)
}

// IsRef reports whether values of id reference entities.
func IsRef(id metatype.ID) bool {
	d, ok := metatype.Lookup(id)
	return ok && d.Flags&metatype.BaseObject != 0
}
