// Package metrics exposes runtime telemetry through Prometheus collectors:
// worker pool occupancy, signal delivery, mailbox throughput and entity
// lifecycle. Every method is safe to call on a nil *Collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	registry *prometheus.Registry

	poolWorkers    prometheus.Gauge
	poolActive     prometheus.Gauge
	poolQueueDepth prometheus.Gauge
	poolUnits      *prometheus.CounterVec

	signalsDelivered *prometheus.CounterVec
	mailboxProcessed *prometheus.CounterVec

	entitiesCreated   *prometheus.CounterVec
	entitiesDestroyed *prometheus.CounterVec
	entitiesLive      *prometheus.GaugeVec
}

// NewCollector creates a collector registered on its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "thunder"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.poolWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "workers",
		Help:      "Number of worker goroutines owned by the pool",
	})
	c.poolActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "active",
		Help:      "Number of units currently running",
	})
	c.poolQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "queue_depth",
		Help:      "Number of units waiting for a worker",
	})
	c.poolUnits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "units_total",
			Help:      "Units run by the pool by result (ok, error, panic)",
		},
		[]string{"result"},
	)

	c.signalsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signal",
			Name:      "delivered_total",
			Help:      "Slot invocations triggered by signals by delivery mode (direct, queued)",
		},
		[]string{"system", "mode"},
	)
	c.mailboxProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mailbox",
			Name:      "processed_total",
			Help:      "Mailbox messages dispatched while pumping",
		},
		[]string{"system"},
	)

	c.entitiesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entity",
			Name:      "created_total",
			Help:      "Entities attached to a system",
		},
		[]string{"system"},
	)
	c.entitiesDestroyed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "entity",
			Name:      "destroyed_total",
			Help:      "Entities detached from a system",
		},
		[]string{"system"},
	)
	c.entitiesLive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "entity",
			Name:      "live",
			Help:      "Entities currently owned by a system",
		},
		[]string{"system"},
	)

	c.registry.MustRegister(
		c.poolWorkers,
		c.poolActive,
		c.poolQueueDepth,
		c.poolUnits,
		c.signalsDelivered,
		c.mailboxProcessed,
		c.entitiesCreated,
		c.entitiesDestroyed,
		c.entitiesLive,
	)

	return c
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordPool records the pool occupancy.
func (c *Collector) RecordPool(workers, active, queued int) {
	if c == nil {
		return
	}
	c.poolWorkers.Set(float64(workers))
	c.poolActive.Set(float64(active))
	c.poolQueueDepth.Set(float64(queued))
}

// RecordUnit counts a finished unit. result is "ok", "error" or "panic".
func (c *Collector) RecordUnit(result string) {
	if c == nil {
		return
	}
	c.poolUnits.WithLabelValues(result).Inc()
}

func (c *Collector) RecordSignal(system, mode string) {
	if c == nil {
		return
	}
	c.signalsDelivered.WithLabelValues(system, mode).Inc()
}

func (c *Collector) RecordMailbox(system string, processed int) {
	if c == nil || processed == 0 {
		return
	}
	c.mailboxProcessed.WithLabelValues(system).Add(float64(processed))
}

func (c *Collector) RecordEntityCreated(system string) {
	if c == nil {
		return
	}
	c.entitiesCreated.WithLabelValues(system).Inc()
	c.entitiesLive.WithLabelValues(system).Inc()
}

func (c *Collector) RecordEntityDestroyed(system string) {
	if c == nil {
		return
	}
	c.entitiesDestroyed.WithLabelValues(system).Inc()
	c.entitiesLive.WithLabelValues(system).Dec()
}
