// Package system implements execution contexts: each System owns a set of
// entities, pumps their mailboxes and creates new entities through the
// process-wide factory table and uuid index.
package system

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/thunder/internal/core/events/bus"
	"github.com/zeusync/thunder/internal/core/meta"
	"github.com/zeusync/thunder/internal/core/object"
	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/core/observability/metrics"
	"github.com/zeusync/thunder/pkg/concurrent"
	"github.com/zeusync/thunder/pkg/sequence"
)

var _ object.Context = (*System)(nil)

// System is an execution context. Entities owned by the same System call
// each other directly; everything else is queued and delivered by
// ProcessEvents.
type System struct {
	id      uuid.UUID
	name    string
	log     log.Log
	metrics *metrics.Collector
	bus     bus.EventBus

	mu      sync.Mutex
	objects []*object.Entity
	index   map[*object.Entity]int
	closed  atomic.Bool
}

type Option func(*System)

func WithLogger(l log.Log) Option {
	return func(s *System) { s.log = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(s *System) { s.metrics = c }
}

func WithBus(b bus.EventBus) Option {
	return func(s *System) { s.bus = b }
}

func New(name string, opts ...Option) *System {
	s := &System{
		id:    uuid.New(),
		name:  name,
		index: make(map[*object.Entity]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.Provide()
	}
	s.log = s.log.With(log.String("system", name))
	return s
}

func (s *System) ID() uuid.UUID { return s.id }
func (s *System) Name() string  { return s.name }

// Register publishes class under thor://group/Name. Instances created
// through the URL, the class name or the group alias are owned by s.
func (s *System) Register(class *meta.ClassDescriptor, group string) error {
	if !class.Constructible() {
		return fmt.Errorf("system: class %s has no factory", class.Name())
	}
	global.register(&factory{
		url:    URL(group, class.Name()),
		group:  group,
		class:  class,
		system: s,
	})
	return nil
}

// Unregister removes every factory entry for class.
func (s *System) Unregister(class *meta.ClassDescriptor) {
	global.unregister(func(f *factory) bool { return f.class == class })
}

type instantiateOptions struct {
	noCache bool
}

type InstantiateOption func(*instantiateOptions)

// NoCache keeps the new entity out of the global uuid index.
func NoCache() InstantiateOption {
	return func(o *instantiateOptions) { o.noCache = true }
}

// Instantiate creates an entity of the class registered under url. The
// entity is owned by the system that registered the class.
func (s *System) Instantiate(url, name string, parent *object.Entity, opts ...InstantiateOption) (object.Object, error) {
	var o instantiateOptions
	for _, opt := range opts {
		opt(&o)
	}
	f, ok := global.resolve(url)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, url)
	}
	obj := object.New(f.class, name, parent, f.system)
	if obj == nil {
		return nil, fmt.Errorf("system: factory of %s returned no object", f.url)
	}
	if o.noCache {
		global.forget(obj.Base())
	}
	return obj, nil
}

// Attach implements object.Context.
func (s *System) Attach(e *object.Entity) {
	if e.UUID() == 0 {
		e.SetUUID(global.allocate(e))
	}
	s.mu.Lock()
	s.index[e] = len(s.objects)
	s.objects = append(s.objects, e)
	s.mu.Unlock()

	s.metrics.RecordEntityCreated(s.name)
	s.publish(bus.EntityCreated, e.UUID(), e.Class().Name())
}

// Detach implements object.Context.
func (s *System) Detach(e *object.Entity) {
	global.forget(e)
	s.mu.Lock()
	i, ok := s.index[e]
	if ok {
		last := len(s.objects) - 1
		s.objects[i] = s.objects[last]
		s.index[s.objects[i]] = i
		s.objects[last] = nil
		s.objects = s.objects[:last]
		delete(s.index, e)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	s.metrics.RecordEntityDestroyed(s.name)
	s.publish(bus.EntityDestroyed, e.UUID(), e.Class().Name())
}

// Delivered implements object.Context.
func (s *System) Delivered(d object.Delivery) {
	mode := "direct"
	if d == object.Queued {
		mode = "queued"
	}
	s.metrics.RecordSignal(s.name, mode)
}

// Objects returns a snapshot of the entities owned by s.
func (s *System) Objects() []*object.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*object.Entity(nil), s.objects...)
}

// ProcessEvents drains the mailbox of every owned entity once and returns
// the number of messages dispatched.
func (s *System) ProcessEvents() int {
	n := 0
	for _, e := range s.Objects() {
		if e.Alive() {
			n += e.ProcessEvents()
		}
	}
	s.metrics.RecordMailbox(s.name, n)
	return n
}

// Run pumps the mailboxes every tick until ctx is done.
func (s *System) Run(ctx context.Context, tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.log.Info("system running", log.Duration("tick", tick))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("system stopped")
			return ctx.Err()
		case <-ticker.C:
			s.ProcessEvents()
		}
	}
}

// Close destroys every entity owned by s and drops its factories.
func (s *System) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	global.unregister(func(f *factory) bool { return f.system == s })
	for _, e := range s.Objects() {
		e.Destroy()
	}
	s.publish(bus.SystemClosed, 0, nil)
}

func (s *System) publish(typ string, id uint32, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(bus.NewEvent(typ, s.name, id, data)); err != nil {
		s.log.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}

// ProcessAll pumps several systems in parallel, once each, and returns
// the total number of messages dispatched.
func ProcessAll(ctx context.Context, systems ...*System) (int, error) {
	var total atomic.Int64
	err := concurrent.Concurrent(ctx, sequence.From(systems), func(ctx context.Context, s *System) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total.Add(int64(s.ProcessEvents()))
		return nil
	})
	return int(total.Load()), err
}
