package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("test")

	c.RecordPool(4, 2, 7)
	c.RecordUnit("ok")
	c.RecordUnit("panic")
	c.RecordSignal("main", "queued")
	c.RecordMailbox("main", 3)
	c.RecordEntityCreated("main")
	c.RecordEntityCreated("main")
	c.RecordEntityDestroyed("main")

	require.Equal(t, float64(7), testutil.ToFloat64(c.poolQueueDepth))
	require.Equal(t, float64(1), testutil.ToFloat64(c.poolUnits.WithLabelValues("panic")))
	require.Equal(t, float64(3), testutil.ToFloat64(c.mailboxProcessed.WithLabelValues("main")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.entitiesLive.WithLabelValues("main")))

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.RecordPool(1, 1, 1)
		c.RecordUnit("ok")
		c.RecordSignal("s", "direct")
		c.RecordEntityCreated("s")
		c.RecordEntityDestroyed("s")
	})
	require.Nil(t, c.Registry())
}
