// Package fanout publishes device state changes to an arbitrary number of
// subscribers (the HTTP/WebSocket-facing surface, metrics, etc.), modeled
// on the teacher's notification dispatcher: each subscriber runs in its
// own goroutine per publish and a failing subscriber never blocks or takes
// down the others.
package fanout

import (
	"sync"

	"climatehub.dev/hub/internal/dto"
	"climatehub.dev/hub/internal/logging"
	"climatehub.dev/hub/internal/metrics"
)

// Subscriber receives one device update at a time. An error return is
// logged and counted but never retried or propagated to other subscribers.
type Subscriber func(dto.DeviceUpdateEvent) error

// Hub fans a device update out to every registered subscriber concurrently.
type Hub struct {
	logger  *logging.Logger
	metrics *metrics.Collector

	mu          sync.RWMutex
	subscribers map[int]Subscriber
	nextID      int

	snapshotMu sync.RWMutex
	snapshot   map[string]dto.DeviceDTO
}

// New builds a Hub. A nil logger defaults to logging.Default(); a nil
// metrics collector disables instrumentation.
func New(logger *logging.Logger, m *metrics.Collector) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		logger:      logger.WithComponent("fanout"),
		metrics:     m,
		subscribers: make(map[int]Subscriber),
		snapshot:    make(map[string]dto.DeviceDTO),
	}
}

// SubscriptionHandle unsubscribes its Subscriber when closed.
type SubscriptionHandle struct {
	hub *Hub
	id  int
}

// Close unsubscribes the associated Subscriber. Safe to call more than
// once.
func (h *SubscriptionHandle) Close() {
	h.hub.mu.Lock()
	defer h.hub.mu.Unlock()
	delete(h.hub.subscribers, h.id)
}

// Subscribe registers fn to receive every future device update, returning
// a handle that unsubscribes it.
func (h *Hub) Subscribe(fn Subscriber) *SubscriptionHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	return &SubscriptionHandle{hub: h, id: id}
}

// Publish fans device out to every current subscriber. It updates the
// retained snapshot first so a concurrent Snapshot() call never misses the
// update it is racing with Publish itself.
func (h *Hub) Publish(device dto.DeviceDTO) {
	h.snapshotMu.Lock()
	h.snapshot[device.EndpointID] = device
	h.snapshotMu.Unlock()

	event := dto.NewDeviceUpdateEvent(device)

	h.mu.RLock()
	fns := make([]Subscriber, 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	wg.Add(len(fns))
	for _, fn := range fns {
		fn := fn
		go func() {
			defer wg.Done()
			if err := fn(event); err != nil {
				h.logger.Warn("fanout subscriber failed", "endpoint_id", device.EndpointID, "error", err)
				h.metrics.IncFanoutFailure()
				return
			}
			h.metrics.IncFanoutSuccess()
		}()
	}
	wg.Wait()
}

// Snapshot returns every device's last published state, for a new
// subscriber's initial_state event.
func (h *Hub) Snapshot() []dto.DeviceDTO {
	h.snapshotMu.RLock()
	defer h.snapshotMu.RUnlock()
	out := make([]dto.DeviceDTO, 0, len(h.snapshot))
	for _, d := range h.snapshot {
		out = append(out, d)
	}
	return out
}
