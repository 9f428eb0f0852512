// Package object implements the ownership tree of long-lived entities:
// parent/child ownership, signal links, per-entity mailboxes and dynamic
// properties.
package object

import (
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/variant"
	"github.com/zeusync/thunder/pkg/sequence"
)

// Object is implemented by every type that embeds Entity.
type Object interface {
	Base() *Entity
}

// Delivery tells a Context how a signal reached its receiver.
type Delivery uint8

const (
	Direct Delivery = iota
	Queued
)

// Context owns a subset of entities. Entities sharing a context call each
// other's slots directly; across contexts calls go through the mailbox.
type Context interface {
	// Attach registers a new entity and assigns its uuid.
	Attach(e *Entity)
	// Detach unregisters a destroyed entity.
	Detach(e *Entity)
	// Delivered is called once per slot invocation triggered by a signal.
	Delivered(d Delivery)
}

// Serializable may be implemented by entity types that must be skipped by
// serialization.
type Serializable interface {
	Serializable() bool
}

// DataHolder may be implemented by entity types that keep extra state in
// the user data section of serialized records. Without it the dynamic
// properties are stored there.
type DataHolder interface {
	SaveData() variant.Map
	LoadData(variant.Map)
}

var entitySeq atomic.Uint64

// Entity is the base of every tree node. User types embed it and are
// created through a class factory with New.
type Entity struct {
	self       Object
	class      *meta.ClassDescriptor
	ctx        Context
	seq        uint64
	uuid       atomic.Uint32
	clonedFrom uint32

	mu       sync.Mutex
	name     string
	parent   *Entity
	children []*Entity
	outgoing []*Link
	incoming []*Link
	dynamic  map[string]variant.Value

	mailMu  sync.Mutex
	mailbox *sequence.Queue[Message]

	alive      atomic.Bool
	destroying atomic.Bool
	blocked    atomic.Bool
	sender     atomic.Pointer[Entity]
}

func (e *Entity) Base() *Entity { return e }

// New creates an instance of class named name under parent. A nil ctx
// inherits the parent's context. It returns nil if the class has no
// factory or the factory does not produce an Object.
func New(class *meta.ClassDescriptor, name string, parent *Entity, ctx Context) Object {
	o, ok := class.New().(Object)
	if !ok || o == nil {
		return nil
	}
	if ctx == nil && parent != nil {
		ctx = parent.ctx
	}
	e := o.Base()
	e.self = o
	e.class = class
	e.ctx = ctx
	e.seq = entitySeq.Add(1)
	e.mailbox = sequence.NewQueue[Message](4)
	e.dynamic = make(map[string]variant.Value)
	e.name = name
	e.alive.Store(true)

	if ctx != nil {
		ctx.Attach(e)
	}
	if e.uuid.Load() == 0 {
		e.uuid.Store(RandomUUID())
	}
	if parent != nil {
		e.SetParent(parent)
	}
	return o
}

// RandomUUID draws a random non-zero id.
func RandomUUID() uint32 {
	for {
		if id := rand.Uint32(); id != 0 {
			return id
		}
	}
}

func (e *Entity) Self() Object                 { return e.self }
func (e *Entity) Class() *meta.ClassDescriptor { return e.class }
func (e *Entity) Context() Context             { return e.ctx }
func (e *Entity) UUID() uint32                 { return e.uuid.Load() }
func (e *Entity) ClonedFrom() uint32           { return e.clonedFrom }
func (e *Entity) Alive() bool                  { return e != nil && e.alive.Load() }

// SetUUID replaces the identity. Only the owning context should call it.
func (e *Entity) SetUUID(id uint32) { e.uuid.Store(id) }

func (e *Entity) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

// SetName renames the entity. Empty names are ignored.
func (e *Entity) SetName(name string) {
	if name == "" {
		return
	}
	e.mu.Lock()
	e.name = name
	e.mu.Unlock()
}

// Parent returns the owner, or nil for roots and entities whose owner
// is gone.
func (e *Entity) Parent() *Entity {
	e.mu.Lock()
	p := e.parent
	e.mu.Unlock()
	if !p.Alive() {
		return nil
	}
	return p
}

// Children returns a snapshot of the owned entities in order.
func (e *Entity) Children() []*Entity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Entity(nil), e.children...)
}

// SetParent transfers ownership to parent. Moving an entity under one of
// its own descendants is ignored.
func (e *Entity) SetParent(parent *Entity) {
	for p := parent; p != nil; p = p.Parent() {
		if p == e {
			return
		}
	}

	e.mu.Lock()
	old := e.parent
	if old == parent {
		e.mu.Unlock()
		return
	}
	e.parent = parent
	e.mu.Unlock()

	if old != nil {
		old.removeChild(e)
	}
	if parent != nil {
		parent.mu.Lock()
		parent.children = append(parent.children, e)
		parent.mu.Unlock()
	}
}

func (e *Entity) removeChild(child *Entity) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}

// Descendants iterates over the subtree below e in depth-first order.
func (e *Entity) Descendants() *sequence.Iterator[*Entity] {
	return sequence.FromSeq(func(yield func(*Entity) bool) {
		var walk func(n *Entity) bool
		walk = func(n *Entity) bool {
			for _, c := range n.Children() {
				if !yield(c) || !walk(c) {
					return false
				}
			}
			return true
		}
		walk(e)
	})
}

// FindChildren returns every descendant whose class is or derives from
// className.
func (e *Entity) FindChildren(className string) []*Entity {
	return e.Descendants().Filter(func(c *Entity) bool {
		return c.class.CanCastTo(className)
	}).Collect()
}

// Links returns a snapshot of the links where e is the sender.
func (e *Entity) Links() []Link {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.outgoing)
}

// IncomingLinks returns a snapshot of the links where e is the receiver.
func (e *Entity) IncomingLinks() []Link {
	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(e.incoming)
}

func snapshot(links []*Link) []Link {
	out := make([]Link, len(links))
	for i, l := range links {
		out[i] = *l
	}
	return out
}

// BlockSignals turns emission on e into a no-op and returns the previous
// state.
func (e *Entity) BlockSignals(block bool) bool {
	return e.blocked.Swap(block)
}

func (e *Entity) SignalsBlocked() bool { return e.blocked.Load() }

// Sender returns the entity whose signal triggered the slot currently
// running on e, or nil outside of a signal dispatch.
func (e *Entity) Sender() *Entity {
	return e.sender.Load()
}

// DynamicPropertyNames lists the properties not declared by the class.
func (e *Entity) DynamicPropertyNames() []string {
	e.mu.Lock()
	names := make([]string, 0, len(e.dynamic))
	for name := range e.dynamic {
		names = append(names, name)
	}
	e.mu.Unlock()
	sort.Strings(names)
	return names
}

// Destroy tears e down immediately: destroyed() is emitted while e is
// still usable, then e leaves its context, drops every link, destroys its
// children and finally detaches from its parent.
func (e *Entity) Destroy() {
	if !e.destroying.CompareAndSwap(false, true) {
		return
	}
	if i := e.class.IndexOfSignal("destroyed()"); i >= 0 {
		e.EmitIndex(i)
	}
	e.alive.Store(false)
	if e.ctx != nil {
		e.ctx.Detach(e)
	}

	e.mu.Lock()
	links := append(append([]*Link(nil), e.outgoing...), e.incoming...)
	e.mu.Unlock()
	for _, l := range links {
		unlink(l)
	}

	for _, c := range e.Children() {
		c.Destroy()
	}

	e.mu.Lock()
	parent := e.parent
	e.parent = nil
	e.mu.Unlock()
	if parent != nil {
		parent.removeChild(e)
	}

	e.mailMu.Lock()
	e.mailbox.Clear()
	e.mailMu.Unlock()
}

// DeleteLater queues a destroy request behind every pending message.
func (e *Entity) DeleteLater() {
	e.Post(Message{Kind: DestroyMessage})
}
