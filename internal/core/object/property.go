package object

import "github.com/zeusync/thunder/internal/core/variant"

// Property reads a declared property, falling back to the dynamic store
// for names no class declares. Unknown or write-only properties yield an
// invalid value.
func (e *Entity) Property(name string) variant.Value {
	if i := e.class.IndexOfProperty(name); i >= 0 {
		p := e.class.Property(i)
		if !p.Readable() {
			return variant.Value{}
		}
		return p.Read(e.self)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dynamic[name]
}

// SetProperty writes a declared property, or stores a dynamic one when no
// class declares name. Writing an invalid value removes a dynamic
// property. It returns false for read-only declared properties.
func (e *Entity) SetProperty(name string, v variant.Value) bool {
	if i := e.class.IndexOfProperty(name); i >= 0 {
		p := e.class.Property(i)
		if !p.Writable() {
			return false
		}
		p.Write(e.self, v)
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !v.IsValid() {
		delete(e.dynamic, name)
		return true
	}
	e.dynamic[name] = v
	return true
}

// Properties returns every readable declared property by name.
func (e *Entity) Properties() variant.Map {
	out := variant.Map{}
	for _, p := range e.class.Properties() {
		if p.Readable() {
			out[p.Name] = p.Read(e.self)
		}
	}
	return out
}

// UserData returns the state stored in the user data section of a
// serialized record.
func (e *Entity) UserData() variant.Map {
	if h, ok := e.self.(DataHolder); ok {
		return h.SaveData()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(variant.Map, len(e.dynamic))
	for k, v := range e.dynamic {
		out[k] = v
	}
	return out
}

// LoadUserData restores state produced by UserData.
func (e *Entity) LoadUserData(data variant.Map) {
	if h, ok := e.self.(DataHolder); ok {
		h.LoadData(data)
		return
	}
	for k, v := range data {
		e.SetProperty(k, v)
	}
}
