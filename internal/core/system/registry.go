package system

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/object"
)

// Scheme prefixes every type URL: thor://group/ClassName.
const Scheme = "thor"

var ErrUnknownClass = errors.New("system: unknown class")

type factory struct {
	url    string
	group  string
	class  *meta.ClassDescriptor
	system *System
}

// registry holds the process-wide factory table and uuid index shared by
// every System.
type registry struct {
	mu        sync.RWMutex
	factories map[string]*factory
	uuids     map[uint32]*object.Entity
}

var global = &registry{
	factories: make(map[string]*factory),
	uuids:     make(map[uint32]*object.Entity),
}

// URL builds the type URL of class in group.
func URL(group, class string) string {
	return Scheme + "://" + group + "/" + class
}

func (r *registry) register(f *factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.url] = f
	r.factories[f.class.Name()] = f
	r.factories[f.group] = f
}

func (r *registry) unregister(match func(*factory) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, f := range r.factories {
		if match(f) {
			delete(r.factories, key)
		}
	}
}

// resolve looks a class up by full URL, then by the class or group alias
// carried in the URL's last and middle segments.
func (r *registry) resolve(url string) (*factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.factories[url]; ok {
		return f, true
	}
	rest := strings.TrimPrefix(url, Scheme+"://")
	if rest == url {
		return nil, false
	}
	group, class, found := strings.Cut(rest, "/")
	if found {
		if f, ok := r.factories[class]; ok {
			return f, true
		}
	}
	f, ok := r.factories[group]
	return f, ok
}

func (r *registry) urls() []string {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, f := range r.factories {
		seen[f.url] = struct{}{}
	}
	r.mu.RUnlock()
	out := make([]string, 0, len(seen))
	for url := range seen {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

// allocate draws random ids until a free one is found and indexes e
// under it. There is no retry limit.
func (r *registry) allocate(e *object.Entity) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		id := object.RandomUUID()
		if _, taken := r.uuids[id]; !taken {
			r.uuids[id] = e
			return id
		}
	}
}

// claim moves e to id if id is free or already e's.
func (r *registry) claim(e *object.Entity, id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if other, taken := r.uuids[id]; taken && other != e {
		return false
	}
	if old := e.UUID(); r.uuids[old] == e {
		delete(r.uuids, old)
	}
	r.uuids[id] = e
	e.SetUUID(id)
	return true
}

func (r *registry) forget(e *object.Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id := e.UUID(); r.uuids[id] == e {
		delete(r.uuids, id)
	}
}

func (r *registry) lookup(id uint32) *object.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.uuids[id]
	if !e.Alive() {
		return nil
	}
	return e
}

// Lookup finds a live entity by uuid.
func Lookup(id uint32) *object.Entity {
	return global.lookup(id)
}

// Resolve returns the class registered under url or one of its aliases.
func Resolve(url string) (*meta.ClassDescriptor, bool) {
	f, ok := global.resolve(url)
	if !ok {
		return nil, false
	}
	return f.class, true
}

// Classes lists the registered type URLs.
func Classes() []string {
	return global.urls()
}
