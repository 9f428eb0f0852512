package system

import (
	"errors"
	"fmt"

	"github.com/zeusync/thunder/internal/core/events/bus"
	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/object"
	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/core/variant"
)

// Positions inside a serialized node record.
const (
	fieldType = iota
	fieldUUID
	fieldParent
	fieldName
	fieldProperties
	fieldLinks
	fieldUserData
	recordLen
)

var ErrMalformed = errors.New("system: malformed serialized tree")

// ToValue serializes the subtree rooted at root into a list of node
// records in depth-first order, root first. Entities whose type reports
// Serializable() == false are skipped with their subtree unless
// includeNonSerializable is set.
func ToValue(root *object.Entity, includeNonSerializable bool) variant.Value {
	var records variant.List
	var walk func(e *object.Entity)
	walk = func(e *object.Entity) {
		if s, ok := e.Self().(object.Serializable); ok && !s.Serializable() && !includeNonSerializable {
			return
		}
		records = append(records, variant.New(record(e)))
		for _, c := range e.Children() {
			walk(c)
		}
	}
	if root.Alive() {
		walk(root)
	}
	return variant.New(records)
}

func record(e *object.Entity) variant.List {
	if inv, ok := e.Self().(*Invalid); ok {
		return inv.Record()
	}

	props := variant.Map{}
	for _, p := range e.Class().Properties() {
		if !p.Readable() {
			continue
		}
		v := p.Read(e.Self())
		if !v.IsValid() || v.Type().IsComplex() {
			continue
		}
		props[p.Name] = v
	}

	var links variant.List
	for _, l := range e.Links() {
		links = append(links, variant.New(variant.List{
			variant.Int(int32(l.Sender.UUID())),
			variant.New(l.SignalSignature()),
			variant.Int(int32(l.Receiver.UUID())),
			variant.New(l.MethodSignature()),
		}))
	}

	return variant.List{
		fieldType:       variant.New(e.Class().Name()),
		fieldUUID:       variant.Int(int32(e.UUID())),
		fieldParent:     variant.Int(int32(parentUUID(e))),
		fieldName:       variant.New(e.Name()),
		fieldProperties: variant.New(props),
		fieldLinks:      variant.New(links),
		fieldUserData:   variant.New(e.UserData()),
	}
}

func parentUUID(e *object.Entity) uint32 {
	if p := e.Parent(); p != nil {
		return p.UUID()
	}
	return 0
}

// FromValue rebuilds a subtree produced by ToValue under parent and
// returns its root. Every record becomes a new entity, which keeps its
// recorded uuid when that uuid is free. Parents and link endpoints
// resolve to the new entities first and to live ones second. Unknown
// classes become Invalid placeholders owned by s. A non-empty rootName
// renames the root. Every record is checked before anything is built,
// and a failed load destroys what it created.
func (s *System) FromValue(tree variant.Value, parent *object.Entity, rootName string) (*object.Entity, error) {
	if _, err := Records(tree); err != nil {
		return nil, err
	}
	records := tree.List()
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrMalformed)
	}

	cache := make(map[uint32]*object.Entity, len(records))
	resolve := func(id uint32) *object.Entity {
		if e, ok := cache[id]; ok {
			return e
		}
		return Lookup(id)
	}

	nodes := make([]*object.Entity, 0, len(records))
	fields := make([]variant.List, 0, len(records))
	for i, item := range records {
		rec := item.List()
		typeName := rec[fieldType].String()
		id := uint32(rec[fieldUUID].Int())

		owner := parent
		if i > 0 {
			if p := resolve(uint32(rec[fieldParent].Int())); p != nil {
				owner = p
			}
		}

		e := s.create(typeName, rec, owner)
		if e == nil {
			for j := len(nodes) - 1; j >= 0; j-- {
				nodes[j].Destroy()
			}
			return nil, fmt.Errorf("system: cannot create %s", typeName)
		}
		if id != 0 {
			global.claim(e, id)
		}
		if i == 0 && rootName != "" {
			e.SetName(rootName)
		}

		if _, placeholder := e.Self().(*Invalid); !placeholder {
			for name, v := range rec[fieldProperties].Map() {
				if e.Class().IndexOfProperty(name) >= 0 {
					e.SetProperty(name, v)
				}
			}
			e.LoadUserData(rec[fieldUserData].Map())
		}

		cache[id] = e
		nodes = append(nodes, e)
		fields = append(fields, rec)
	}

	for i, rec := range fields {
		if _, placeholder := nodes[i].Self().(*Invalid); placeholder {
			continue
		}
		for _, item := range rec[fieldLinks].List() {
			link := item.List()
			if len(link) != 4 {
				continue
			}
			sender := resolve(uint32(link[0].Int()))
			receiver := resolve(uint32(link[2].Int()))
			if sender == nil || receiver == nil {
				s.log.Warn("dangling link", log.String("signal", link[1].String()), log.String("method", link[3].String()))
				continue
			}
			object.Connect(sender, link[1].String(), receiver, link[3].String())
		}
	}

	root := nodes[0]
	s.publish(bus.SubtreeLoaded, root.UUID(), len(nodes))
	return root, nil
}

func (s *System) create(typeName string, rec variant.List, owner *object.Entity) *object.Entity {
	name := rec[fieldName].String()
	if f, ok := global.resolve(typeName); ok {
		if o := object.New(f.class, name, owner, f.system); o != nil {
			return o.Base()
		}
	}

	s.log.Warn("unknown class, keeping raw record", log.String("class", typeName), log.String("name", name))
	o := object.New(InvalidClass, name, owner, s)
	inv := o.(*Invalid)
	inv.record = append(variant.List(nil), rec...)
	return o.Base()
}

// Record is a read-only view of one serialized node.
type Record struct {
	Type       string
	UUID       uint32
	Parent     uint32
	Name       string
	Properties variant.Map
	Links      int
	UserData   variant.Map
}

// Records decodes the node records of a tree produced by ToValue without
// instantiating anything.
func Records(tree variant.Value) ([]Record, error) {
	if tree.Type() != metatype.List {
		return nil, fmt.Errorf("%w: expected a list of records, got %q", ErrMalformed, tree.TypeName())
	}
	items := tree.List()
	out := make([]Record, 0, len(items))
	for i, item := range items {
		rec := item.List()
		if len(rec) < recordLen {
			return nil, fmt.Errorf("%w: record %d has %d fields", ErrMalformed, i, len(rec))
		}
		out = append(out, Record{
			Type:       rec[fieldType].String(),
			UUID:       uint32(rec[fieldUUID].Int()),
			Parent:     uint32(rec[fieldParent].Int()),
			Name:       rec[fieldName].String(),
			Properties: rec[fieldProperties].Map(),
			Links:      len(rec[fieldLinks].List()),
			UserData:   rec[fieldUserData].Map(),
		})
	}
	return out, nil
}
