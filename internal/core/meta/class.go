// Package meta holds class descriptors: the reflection tables describing a
// class's methods, signals, slots, properties and enumerators, chained
// through single inheritance.
package meta

import "strings"

// Factory creates a fresh instance of a class.
type Factory func() any

// Def is the static description of a class. Each table may end with a
// sentinel entry with an empty name; entries after it are ignored.
type Def struct {
	Name       string
	Super      *ClassDescriptor
	Factory    Factory
	Methods    []MethodDescriptor
	Properties []PropertyDescriptor
	Enums      []Enumerator
}

// anyKind indexes lookups that ignore the method kind.
const anyKind = 3

// ClassDescriptor is the immutable, flattened reflection table of a class.
// Indices are absolute across the inheritance chain: the entries of a
// class start after the cumulative count of its ancestors.
type ClassDescriptor struct {
	name    string
	super   *ClassDescriptor
	factory Factory

	methods    []MethodDescriptor
	properties []PropertyDescriptor
	enums      []Enumerator

	methodOffset   int
	propertyOffset int
	enumOffset     int

	allMethods    []*MethodDescriptor
	allProperties []*PropertyDescriptor
	allEnums      []*Enumerator

	bySignature [anyKind + 1]map[uint64]int
	byName      [anyKind + 1]map[string]int
	propIndex   map[string]int
	enumIndex   map[string]int
}

// NewClass builds a descriptor and precomputes its lookup tables. A name
// declared on both a class and an ancestor resolves to the derived entry.
func NewClass(def Def) *ClassDescriptor {
	c := &ClassDescriptor{
		name:       def.Name,
		super:      def.Super,
		factory:    def.Factory,
		methods:    sentinel(def.Methods, func(m MethodDescriptor) string { return m.Name }),
		properties: sentinel(def.Properties, func(p PropertyDescriptor) string { return p.Name }),
		enums:      sentinel(def.Enums, func(e Enumerator) string { return e.Name }),
		propIndex:  make(map[string]int),
		enumIndex:  make(map[string]int),
	}
	for k := range c.bySignature {
		c.bySignature[k] = make(map[uint64]int)
		c.byName[k] = make(map[string]int)
	}

	if s := c.super; s != nil {
		c.methodOffset = len(s.allMethods)
		c.propertyOffset = len(s.allProperties)
		c.enumOffset = len(s.allEnums)
		c.allMethods = append(c.allMethods, s.allMethods...)
		c.allProperties = append(c.allProperties, s.allProperties...)
		c.allEnums = append(c.allEnums, s.allEnums...)
		for k := range c.bySignature {
			for fp, i := range s.bySignature[k] {
				c.bySignature[k][fp] = i
			}
			for n, i := range s.byName[k] {
				c.byName[k][n] = i
			}
		}
		for n, i := range s.propIndex {
			c.propIndex[n] = i
		}
		for n, i := range s.enumIndex {
			c.enumIndex[n] = i
		}
	}

	for i := range c.methods {
		m := &c.methods[i]
		m.seal()
		idx := c.methodOffset + i
		c.allMethods = append(c.allMethods, m)
		for _, k := range []int{int(m.Kind), anyKind} {
			c.bySignature[k][m.fingerprint] = idx
			if first, ok := c.byName[k][m.Name]; !ok || first < c.methodOffset {
				c.byName[k][m.Name] = idx
			}
		}
	}
	for i := range c.properties {
		c.allProperties = append(c.allProperties, &c.properties[i])
		c.propIndex[c.properties[i].Name] = c.propertyOffset + i
	}
	for i := range c.enums {
		c.allEnums = append(c.allEnums, &c.enums[i])
		c.enumIndex[c.enums[i].Name] = c.enumOffset + i
	}
	return c
}

func sentinel[T any](table []T, name func(T) string) []T {
	for i, e := range table {
		if name(e) == "" {
			return append([]T(nil), table[:i]...)
		}
	}
	return append([]T(nil), table...)
}

func (c *ClassDescriptor) Name() string            { return c.name }
func (c *ClassDescriptor) Super() *ClassDescriptor { return c.super }

// Constructible reports whether the class has a factory.
func (c *ClassDescriptor) Constructible() bool { return c.factory != nil }

// New calls the factory. It returns nil for abstract classes.
func (c *ClassDescriptor) New() any {
	if c.factory == nil {
		return nil
	}
	return c.factory()
}

// CanCastTo reports whether the class or one of its ancestors is named name.
func (c *ClassDescriptor) CanCastTo(name string) bool {
	for k := c; k != nil; k = k.super {
		if k.name == name {
			return true
		}
	}
	return false
}

func (c *ClassDescriptor) MethodOffset() int   { return c.methodOffset }
func (c *ClassDescriptor) MethodCount() int    { return len(c.allMethods) }
func (c *ClassDescriptor) PropertyOffset() int { return c.propertyOffset }
func (c *ClassDescriptor) PropertyCount() int  { return len(c.allProperties) }
func (c *ClassDescriptor) EnumOffset() int     { return c.enumOffset }
func (c *ClassDescriptor) EnumCount() int      { return len(c.allEnums) }

// IndexOfMethod resolves a method of any kind. query is either a bare name
// or a signature, optionally prefixed with the kind digit used in
// serialized links. It returns -1 if nothing matches.
func (c *ClassDescriptor) IndexOfMethod(query string) int {
	return c.indexOf(anyKind, query)
}

func (c *ClassDescriptor) IndexOfSignal(query string) int {
	return c.indexOf(int(Signal), query)
}

func (c *ClassDescriptor) IndexOfSlot(query string) int {
	return c.indexOf(int(Slot), query)
}

func (c *ClassDescriptor) indexOf(kind int, query string) int {
	if len(query) > 1 && query[0] >= '0' && query[0] <= '2' {
		if prefixed := int(query[0] - '0'); kind == anyKind || kind == prefixed {
			kind = prefixed
			query = query[1:]
		}
	}
	if strings.IndexByte(query, '(') >= 0 {
		if i, ok := c.bySignature[kind][Fingerprint(query)]; ok {
			return i
		}
		return -1
	}
	if i, ok := c.byName[kind][query]; ok {
		return i
	}
	return -1
}

// Method resolves an absolute index. It returns nil when out of range.
func (c *ClassDescriptor) Method(index int) *MethodDescriptor {
	if index < 0 || index >= len(c.allMethods) {
		return nil
	}
	return c.allMethods[index]
}

func (c *ClassDescriptor) IndexOfProperty(name string) int {
	if i, ok := c.propIndex[name]; ok {
		return i
	}
	return -1
}

func (c *ClassDescriptor) Property(index int) *PropertyDescriptor {
	if index < 0 || index >= len(c.allProperties) {
		return nil
	}
	return c.allProperties[index]
}

func (c *ClassDescriptor) IndexOfEnumerator(name string) int {
	if i, ok := c.enumIndex[name]; ok {
		return i
	}
	return -1
}

func (c *ClassDescriptor) Enumerator(index int) *Enumerator {
	if index < 0 || index >= len(c.allEnums) {
		return nil
	}
	return c.allEnums[index]
}

// Properties returns every property visible on the class, ancestors first.
func (c *ClassDescriptor) Properties() []*PropertyDescriptor {
	return append([]*PropertyDescriptor(nil), c.allProperties...)
}

// Methods returns every method visible on the class, ancestors first.
func (c *ClassDescriptor) Methods() []*MethodDescriptor {
	return append([]*MethodDescriptor(nil), c.allMethods...)
}
