package object

import (
	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/variant"
)

type clonePair struct {
	original, clone *Entity
}

// Clone copies the subtree rooted at e under parent. Every clone records
// its original's uuid in ClonedFrom. Declared properties are copied and
// entity references pointing inside the subtree are remapped to the
// matching clone. Links are not copied.
func (e *Entity) Clone(parent *Entity) Object {
	var pairs []clonePair
	var create func(n *Entity) bool
	create = func(n *Entity) bool {
		o := New(n.class, n.Name(), nil, n.ctx)
		if o == nil {
			return false
		}
		c := o.Base()
		c.clonedFrom = n.UUID()
		pairs = append(pairs, clonePair{original: n, clone: c})
		for _, child := range n.Children() {
			if !create(child) {
				return false
			}
		}
		return true
	}
	if !create(e) {
		for _, p := range pairs {
			p.clone.Destroy()
		}
		return nil
	}

	byOriginal := make(map[uint32]*Entity, len(pairs))
	for _, p := range pairs {
		byOriginal[p.clone.clonedFrom] = p.clone
	}

	for i, p := range pairs {
		if i == 0 {
			p.clone.SetParent(parent)
		} else if orig := p.original.Parent(); orig != nil {
			p.clone.SetParent(byOriginal[orig.UUID()])
		}
		p.clone.copyProperties(p.original, byOriginal)
	}
	return pairs[0].clone.self
}

func (e *Entity) copyProperties(from *Entity, remap map[uint32]*Entity) {
	for _, p := range e.class.Properties() {
		if !p.Readable() || !p.Writable() {
			continue
		}
		v := p.Read(from.self)
		if IsRef(v.Type()) {
			if ref, ok := v.Interface().(*Entity); ok && ref != nil {
				if c, ok := remap[ref.UUID()]; ok {
					v = variant.From(metatype.Object, c)
				}
			}
		}
		p.Write(e.self, v)
	}
	e.LoadUserData(from.UserData())
}
