// Package pool runs work units on a resizable set of persistent workers
// fed from one shared FIFO.
package pool

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/core/observability/metrics"
	"github.com/zeusync/thunder/pkg/sequence"
)

var ErrClosed = errors.New("pool: closed")

// Unit is a piece of work. Its error is reported to metrics and to whoever
// submitted it, never back into the pool.
type Unit interface {
	Run() error
}

// Func adapts a function to Unit.
type Func func() error

func (f Func) Run() error { return f() }

// PanicError carries a panic recovered from a unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("pool: unit panicked: %v", e.Value) }

type worker struct {
	cond *sync.Cond
	unit Unit
	idle bool
	quit bool
	done chan struct{}
}

type Pool struct {
	log     log.Log
	metrics *metrics.Collector

	mu      sync.Mutex
	idle    *sync.Cond
	queue   *sequence.Queue[Unit]
	workers []*worker
	active  int
	closed  bool
}

type Option func(*Pool)

func WithLogger(l log.Log) Option {
	return func(p *Pool) { p.log = l }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pool) { p.metrics = c }
}

// New starts a pool with size workers.
func New(size int, opts ...Option) *Pool {
	p := &Pool{queue: sequence.NewQueue[Unit](64)}
	p.idle = sync.NewCond(&p.mu)
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = log.Provide()
	}
	p.log = p.log.With(log.String("component", "pool"))
	p.SetSize(size)
	return p
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool, sized to the number of CPUs.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(runtime.NumCPU())
	})
	return defaultPool
}

// Start hands u to an idle worker, or queues it if every worker is busy.
func (p *Pool) Start(u Unit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	for _, w := range p.workers {
		if w.idle && !w.quit {
			p.hand(w, u)
			p.record()
			return nil
		}
	}
	p.queue.Push(u)
	p.record()
	return nil
}

// Submit runs fn on the pool. The returned channel receives the result of
// fn, a *PanicError if it panicked, or ErrClosed.
func (p *Pool) Submit(fn func() error) <-chan error {
	result := make(chan error, 1)
	err := p.Start(Func(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			}
			result <- err
		}()
		return fn()
	}))
	if err != nil {
		result <- err
	}
	return result
}

// SetSize grows or shrinks the pool to n workers. New workers are
// immediately offered queued units. Removed workers finish their current
// unit before SetSize returns.
func (p *Pool) SetSize(n int) {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	for len(p.workers) < n {
		w := &worker{cond: sync.NewCond(&p.mu), idle: true, done: make(chan struct{})}
		if u, ok := p.queue.Pop(); ok {
			p.hand(w, u)
		}
		p.workers = append(p.workers, w)
		go p.loop(w)
	}
	var retired []*worker
	if len(p.workers) > n {
		retired = p.workers[n:]
		p.workers = p.workers[:n:n]
		for _, w := range retired {
			w.quit = true
			w.cond.Signal()
		}
	}
	p.record()
	p.mu.Unlock()

	for _, w := range retired {
		<-w.done
	}
	if len(retired) > 0 {
		p.log.Debug("pool shrunk", log.Int("workers", n), log.Int("retired", len(retired)))
	}
}

func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Active returns the number of units handed to workers and not yet done.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// WaitForIdle blocks until no unit is queued or running. A negative timeout
// waits forever. It reports whether the pool went idle.
func (p *Pool) WaitForIdle(timeout time.Duration) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	expired := false
	if timeout >= 0 {
		timer := time.AfterFunc(timeout, func() {
			p.mu.Lock()
			expired = true
			p.idle.Broadcast()
			p.mu.Unlock()
		})
		defer timer.Stop()
	}
	for !p.isIdle() && !expired {
		p.idle.Wait()
	}
	return p.isIdle()
}

// Close rejects new units, lets queued and running units finish and stops
// every worker. Units still queued on a pool with no workers are dropped.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if len(p.workers) == 0 {
		if n := p.queue.Clear(); n > 0 {
			p.log.Warn("dropping queued units", log.Int("units", n))
		}
	}
	p.mu.Unlock()

	p.WaitForIdle(-1)
	p.SetSize(0)
}

func (p *Pool) isIdle() bool { return p.active == 0 && p.queue.Len() == 0 }

// hand gives u to w. p.mu must be held.
func (p *Pool) hand(w *worker, u Unit) {
	w.unit = u
	w.idle = false
	p.active++
	w.cond.Signal()
}

func (p *Pool) loop(w *worker) {
	defer close(w.done)

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for w.unit == nil && !w.quit {
			w.cond.Wait()
		}
		if w.unit == nil {
			return
		}

		u := w.unit
		w.unit = nil
		p.mu.Unlock()
		p.run(u)
		p.mu.Lock()

		if !w.quit {
			if next, ok := p.queue.Pop(); ok {
				w.unit = next
				p.record()
				continue
			}
		}
		p.active--
		w.idle = true
		if p.isIdle() {
			p.idle.Broadcast()
		}
		p.record()
	}
}

func (p *Pool) run(u Unit) {
	result := "ok"
	defer func() {
		if r := recover(); r != nil {
			result = "panic"
			p.log.Error("unit panicked", log.Any("panic", r), log.String("stack", string(debug.Stack())))
		}
		p.metrics.RecordUnit(result)
	}()
	if err := u.Run(); err != nil {
		var pe *PanicError
		if errors.As(err, &pe) {
			result = "panic"
		} else {
			result = "error"
		}
		p.log.Debug("unit failed", log.Error(err))
	}
}

// record publishes occupancy. p.mu must be held.
func (p *Pool) record() {
	p.metrics.RecordPool(len(p.workers), p.active, p.queue.Len())
}
