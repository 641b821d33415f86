package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorIncrementsRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncDiscoveryCycle()
	c.IncMonitorTick("ep-1")
	c.IncControlDispatch("success")
	c.IncFanoutSuccess()
	c.IncFanoutFailure()
	c.IncPushReconnect()

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	found := false
	for _, fam := range families {
		if fam.GetName() == "climatehub_discovery_cycles_total" {
			found = true
			require.Len(t, fam.Metric, 1)
			assert.Equal(t, float64(1), fam.Metric[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found, "discovery cycle counter not found")
}

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.IncDiscoveryCycle()
		c.IncMonitorTick("ep-1")
		c.IncMonitorError("ep-1")
		c.IncControlDispatch("failure")
		c.IncFanoutSuccess()
		c.IncFanoutFailure()
		c.IncPushReconnect()
		c.IncPushMessage()
	})
}
