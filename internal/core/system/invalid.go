package system

import (
	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/object"
	"github.com/zeusync/thunder/internal/core/variant"
)

// Invalid stands in for a persisted entity whose class is no longer
// registered. It keeps the raw record so that serializing it again loses
// nothing.
type Invalid struct {
	object.Entity
	record variant.List
}

var InvalidClass = meta.NewClass(meta.Def{
	Name:    "Invalid",
	Super:   object.Class,
	Factory: func() any { return &Invalid{} },
})

// TypeName returns the class name recorded in the persisted data.
func (i *Invalid) TypeName() string {
	if len(i.record) == 0 {
		return ""
	}
	return i.record[fieldType].String()
}

// Record returns the raw record with identity fields refreshed.
func (i *Invalid) Record() variant.List {
	out := append(variant.List(nil), i.record...)
	for len(out) < recordLen {
		out = append(out, variant.Value{})
	}
	out[fieldUUID] = variant.Int(int32(i.UUID()))
	out[fieldParent] = variant.Int(int32(parentUUID(&i.Entity)))
	out[fieldName] = variant.New(i.Name())
	return out
}
