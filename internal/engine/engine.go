// Package engine bundles the runtime services a process needs: a primary
// system, the worker pool that pumps systems, the event bus and telemetry.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/thunder/internal/config"
	"github.com/zeusync/thunder/internal/core/codec"
	"github.com/zeusync/thunder/internal/core/events/bus"
	"github.com/zeusync/thunder/internal/core/object"
	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/core/observability/metrics"
	"github.com/zeusync/thunder/internal/core/pool"
	"github.com/zeusync/thunder/internal/core/system"
)

type Engine struct {
	config  *config.Config
	log     *log.Logger
	metrics *metrics.Collector
	bus     bus.EventBus
	pool    *pool.Pool

	mu      sync.Mutex
	systems []*system.System
	closed  atomic.Bool
}

// New creates an engine with one primary system named after the config.
// The returned cleanup closes every system.
func New(cfg *config.Config, logger *log.Logger, collector *metrics.Collector, eventBus bus.EventBus, workers *pool.Pool) (*Engine, func()) {
	e := &Engine{
		config:  cfg,
		log:     logger,
		metrics: collector,
		bus:     eventBus,
		pool:    workers,
	}
	e.NewSystem(cfg.System.Name)
	return e, e.Close
}

func (e *Engine) Config() *config.Config      { return e.config }
func (e *Engine) Log() *log.Logger            { return e.log }
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }
func (e *Engine) Bus() bus.EventBus           { return e.bus }
func (e *Engine) Pool() *pool.Pool            { return e.pool }

// System returns the primary system.
func (e *Engine) System() *system.System {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.systems[0]
}

// NewSystem adds an execution context sharing the engine's logger, bus and
// metrics.
func (e *Engine) NewSystem(name string) *system.System {
	s := system.New(name,
		system.WithLogger(e.log),
		system.WithMetrics(e.metrics),
		system.WithBus(e.bus),
	)
	e.mu.Lock()
	e.systems = append(e.systems, s)
	e.mu.Unlock()
	return s
}

func (e *Engine) Systems() []*system.System {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*system.System(nil), e.systems...)
}

// Pump processes the mailboxes of every system once, one pool unit per
// system, and returns the number of messages dispatched.
func (e *Engine) Pump(ctx context.Context) (int, error) {
	var total atomic.Int64
	systems := e.Systems()
	results := make([]<-chan error, 0, len(systems))
	for _, s := range systems {
		results = append(results, e.pool.Submit(func() error {
			total.Add(int64(s.ProcessEvents()))
			return nil
		}))
	}
	for _, r := range results {
		select {
		case <-ctx.Done():
			return int(total.Load()), ctx.Err()
		case err := <-r:
			if err != nil {
				return int(total.Load()), err
			}
		}
	}
	return int(total.Load()), nil
}

// Run pumps every tick until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.config.System.Tick)
	defer ticker.Stop()

	e.log.Info("engine running",
		log.Int("systems", len(e.Systems())),
		log.Int("workers", e.pool.Size()),
		log.Duration("tick", e.config.System.Tick),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := e.Pump(ctx); err != nil {
				return err
			}
		}
	}
}

// Save serializes the subtree under root.
func (e *Engine) Save(root *object.Entity, f codec.Format) ([]byte, error) {
	return codec.Encode(f, system.ToValue(root, false))
}

// Load decodes data and rebuilds it under parent in the primary system.
func (e *Engine) Load(data []byte, f codec.Format, parent *object.Entity, rootName string) (*object.Entity, error) {
	tree, err := codec.Decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("engine: decode: %w", err)
	}
	return e.System().FromValue(tree, parent, rootName)
}

// Close waits up to the configured idle timeout for pending units and
// closes every system.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	if !e.pool.WaitForIdle(e.config.Pool.IdleTimeout) {
		e.log.Warn("pool still busy at shutdown", log.Int("active", e.pool.Active()), log.Int("queued", e.pool.Queued()))
	}
	for _, s := range e.Systems() {
		s.Close()
	}
	_ = e.log.Sync()
}
