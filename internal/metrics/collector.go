// Package metrics exposes Prometheus collectors for discovery cycles,
// monitor ticks, control dispatch outcomes, fan-out delivery, and push
// listener reconnects, following the teacher's internal/metrics collector
// pattern of a single struct holding pre-registered vectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector holds every metric Climate Hub exports. A nil *Collector is
// valid everywhere its methods are called: every method is a no-op on a
// nil receiver, so components can be built without metrics wired in tests.
type Collector struct {
	discoveryCycles   prometheus.Counter
	deviceRemovals    prometheus.Counter
	monitorTicks      *prometheus.CounterVec
	monitorErrors     *prometheus.CounterVec
	controlDispatches *prometheus.CounterVec
	fanoutSuccess     prometheus.Counter
	fanoutFailure     prometheus.Counter
	pushReconnects    prometheus.Counter
	pushMessages      prometheus.Counter
}

// New builds a Collector and registers its metrics with reg. Passing
// prometheus.NewRegistry() in tests keeps registration isolated from the
// global default registry.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		discoveryCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_discovery_cycles_total",
			Help: "Number of discovery cycles completed.",
		}),
		deviceRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_devices_removed_total",
			Help: "Number of devices removed from the twin by discovery.",
		}),
		monitorTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "climatehub_monitor_ticks_total",
			Help: "Number of monitor refresh ticks per device.",
		}, []string{"endpoint_id"}),
		monitorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "climatehub_monitor_errors_total",
			Help: "Number of monitor refresh errors per device.",
		}, []string{"endpoint_id"}),
		controlDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "climatehub_control_dispatches_total",
			Help: "Number of control dispatches, labeled by outcome.",
		}, []string{"outcome"}),
		fanoutSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_fanout_success_total",
			Help: "Number of successful fan-out subscriber deliveries.",
		}),
		fanoutFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_fanout_failure_total",
			Help: "Number of failed fan-out subscriber deliveries.",
		}),
		pushReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_push_reconnects_total",
			Help: "Number of push listener reconnect attempts.",
		}),
		pushMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "climatehub_push_messages_total",
			Help: "Number of push listener messages received.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.discoveryCycles, c.deviceRemovals, c.monitorTicks, c.monitorErrors,
			c.controlDispatches, c.fanoutSuccess, c.fanoutFailure,
			c.pushReconnects, c.pushMessages,
		)
	}
	return c
}

func (c *Collector) IncDiscoveryCycle() {
	if c == nil {
		return
	}
	c.discoveryCycles.Inc()
}

func (c *Collector) IncDeviceRemoved() {
	if c == nil {
		return
	}
	c.deviceRemovals.Inc()
}

func (c *Collector) IncMonitorTick(endpointID string) {
	if c == nil {
		return
	}
	c.monitorTicks.WithLabelValues(endpointID).Inc()
}

func (c *Collector) IncMonitorError(endpointID string) {
	if c == nil {
		return
	}
	c.monitorErrors.WithLabelValues(endpointID).Inc()
}

func (c *Collector) IncControlDispatch(outcome string) {
	if c == nil {
		return
	}
	c.controlDispatches.WithLabelValues(outcome).Inc()
}

func (c *Collector) IncFanoutSuccess() {
	if c == nil {
		return
	}
	c.fanoutSuccess.Inc()
}

func (c *Collector) IncFanoutFailure() {
	if c == nil {
		return
	}
	c.fanoutFailure.Inc()
}

func (c *Collector) IncPushReconnect() {
	if c == nil {
		return
	}
	c.pushReconnects.Inc()
}

func (c *Collector) IncPushMessage() {
	if c == nil {
		return
	}
	c.pushMessages.Inc()
}
