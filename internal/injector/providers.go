package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/thunder/internal/config"
	"github.com/zeusync/thunder/internal/core/events/bus"
	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/core/observability/metrics"
	"github.com/zeusync/thunder/internal/core/pool"
	"github.com/zeusync/thunder/internal/engine"
)

var Set = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideMetrics,
	ProvideBus,
	ProvidePool,
	engine.New,
)

func ProvideConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func ProvideLogger(cfg *config.Config) *log.Logger {
	return log.NewWithConfig(log.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	}, log.LevelInfo)
}

// ProvideMetrics returns nil when metrics are disabled; every consumer
// accepts a nil collector.
func ProvideMetrics(cfg *config.Config) *metrics.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewCollector(cfg.Metrics.Namespace)
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

// ProvidePool sizes the pool from the config, one worker per CPU if unset.
func ProvidePool(cfg *config.Config, logger *log.Logger, collector *metrics.Collector) (*pool.Pool, func()) {
	if cfg.Pool.Size == 0 {
		p := pool.Default()
		return p, func() {}
	}
	p := pool.New(cfg.Pool.Size, pool.WithLogger(logger), pool.WithMetrics(collector))
	return p, p.Close
}
