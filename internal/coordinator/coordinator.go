package coordinator

import (
	"context"
	"sync"
	"time"

	"climatehub.dev/hub/internal/clock"
	"climatehub.dev/hub/internal/cloudapi"
	"climatehub.dev/hub/internal/dto"
	"climatehub.dev/hub/internal/errors"
	"climatehub.dev/hub/internal/fanout"
	"climatehub.dev/hub/internal/logging"
	"climatehub.dev/hub/internal/metrics"
	"climatehub.dev/hub/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// monitorErrorBackoff is how long a device's monitor loop waits after a
// failed fetch before retrying, independent of the regular tick interval.
const monitorErrorBackoff = 10 * time.Second

// Cloud is the subset of *cloudapi.Client the coordinator depends on,
// narrowed for testability.
type Cloud interface {
	UserID() string
	GetFamilies(ctx context.Context) ([]cloudapi.Family, error)
	GetDevices(ctx context.Context, familyID string) ([]cloudapi.Device, error)
	BulkQueryState(ctx context.Context, devices []protocol.DeviceRef) ([]protocol.DeviceState, error)
	GetParams(ctx context.Context, dev protocol.DeviceRef, params []string) (map[string]int, error)
	SetParams(ctx context.Context, dev protocol.DeviceRef, params map[string]int) error
}

// Coordinator owns device discovery, per-device monitoring, and control
// dispatch for every device the cloud account exposes.
type Coordinator struct {
	cloud             Cloud
	hub               *fanout.Hub
	clock             clock.Clock
	logger            *logging.Logger
	metrics           *metrics.Collector
	discoveryInterval time.Duration
	monitorInterval   time.Duration

	mu          sync.RWMutex
	devices     map[string]*Device
	deviceOrder []string

	triggersMu sync.Mutex
	triggers   map[string]chan struct{}

	readyMu sync.Mutex
	ready   map[string]chan struct{}

	monitorsMu  sync.Mutex
	monitorStop map[string]chan struct{}
	monitorDone map[string]chan struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New builds a Coordinator. A nil clock defaults to the real wall clock; a
// nil logger defaults to logging.Default(); a nil metrics collector
// disables instrumentation.
func New(cloud Cloud, hub *fanout.Hub, clk clock.Clock, logger *logging.Logger, m *metrics.Collector, discoveryInterval, monitorInterval time.Duration) *Coordinator {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if hub == nil {
		hub = fanout.New(logger, m)
	}
	return &Coordinator{
		cloud:             cloud,
		hub:               hub,
		clock:             clk,
		logger:            logger.WithComponent("coordinator"),
		metrics:           m,
		discoveryInterval: discoveryInterval,
		monitorInterval:   monitorInterval,
		devices:           make(map[string]*Device),
		triggers:          make(map[string]chan struct{}),
		ready:             make(map[string]chan struct{}),
		monitorStop:       make(map[string]chan struct{}),
		monitorDone:       make(map[string]chan struct{}),
		stopCh:            make(chan struct{}),
	}
}

// Hub returns the fan-out hub devices are published to.
func (c *Coordinator) Hub() *fanout.Hub { return c.hub }

// Start runs an initial discovery pass synchronously, then starts the
// discovery loop and every discovered device's monitor loop in the
// background. It returns once every device discovered in the initial pass
// has completed its first successful (or permanently failed) state fetch,
// or ctx is canceled first.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := c.discoveryStep(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	readyChans := make([]chan struct{}, 0, len(c.devices))
	for id := range c.devices {
		readyChans = append(readyChans, c.readyChan(id))
	}
	c.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, ch := range readyChans {
		ch := ch
		g.Go(func() error {
			select {
			case <-ch:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	c.wg.Add(1)
	go c.discoveryLoop(ctx)

	return g.Wait()
}

// Stop signals every monitor and discovery loop to exit and waits for them.
func (c *Coordinator) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Coordinator) discoveryLoop(ctx context.Context) {
	defer c.wg.Done()
	timer := c.clock.NewTimer(c.discoveryInterval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C():
			if err := c.discoveryStep(ctx); err != nil {
				c.logger.Warn("discovery step failed", "error", err)
			}
			timer.Reset(c.discoveryInterval)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// discoveryStep fetches every family and device from the cloud, merges
// newly seen devices into the cache (starting a monitor loop for each),
// and removes any previously known device the cloud no longer reports,
// cancelling its monitor first so the map is never observed half-deleted.
func (c *Coordinator) discoveryStep(ctx context.Context) error {
	families, err := c.cloud.GetFamilies(ctx)
	if err != nil {
		return errors.Wrap(err, errors.KindClimateHub, "coordinator: list families")
	}

	discovered := make(map[string]struct{})
	var newDevices []*Device
	for _, fam := range families {
		cloudDevices, err := c.cloud.GetDevices(ctx, fam.FamilyID)
		if err != nil {
			c.logger.Warn("discovery: list devices failed", "family_id", fam.FamilyID, "error", err)
			continue
		}

		refs := make([]protocol.DeviceRef, 0, len(cloudDevices))
		for _, cd := range cloudDevices {
			refs = append(refs, protocol.DeviceRef{
				EndpointID:     cd.EndpointID,
				ProductID:      cd.ProductID,
				Mac:            cd.Mac,
				DevSession:     cd.DevSession,
				DeviceTypeFlag: cd.DeviceTypeFlag,
				Cookie:         cd.Cookie,
			})
		}
		states, err := c.cloud.BulkQueryState(ctx, refs)
		if err != nil {
			c.logger.Warn("discovery: bulk state query failed", "family_id", fam.FamilyID, "error", err)
			states = nil
		}
		onlineByID := make(map[string]bool, len(states))
		for _, s := range states {
			onlineByID[s.EndpointID] = s.Online
		}

		for _, cd := range cloudDevices {
			discovered[cd.EndpointID] = struct{}{}
			online := onlineByID[cd.EndpointID]

			c.mu.Lock()
			d, exists := c.devices[cd.EndpointID]
			if !exists {
				d = newDevice(cd.EndpointID, cd.FriendlyName, cd.ProductID, cd.Cookie)
				d.Mac = cd.Mac
				d.DevSession = cd.DevSession
				d.DeviceTypeFlag = cd.DeviceTypeFlag
				d.setOnlineFlag(online, c.clock.Now())
				c.devices[cd.EndpointID] = d
				c.deviceOrder = append(c.deviceOrder, cd.EndpointID)
				newDevices = append(newDevices, d)
			} else {
				d.setOnlineFlag(online, c.clock.Now())
			}
			c.mu.Unlock()
		}
	}

	c.mu.Lock()
	var removed []string
	for id := range c.devices {
		if _, ok := discovered[id]; !ok {
			removed = append(removed, id)
		}
	}
	c.mu.Unlock()

	for _, id := range removed {
		c.cancelMonitor(id)
		c.mu.Lock()
		delete(c.devices, id)
		for i, existing := range c.deviceOrder {
			if existing == id {
				c.deviceOrder = append(c.deviceOrder[:i], c.deviceOrder[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		c.metrics.IncDeviceRemoved()
	}

	c.metrics.IncDiscoveryCycle()

	for _, d := range newDevices {
		c.startMonitor(d)
	}
	return nil
}

// cancelMonitor signals the given device's monitor loop to stop and waits
// for it to exit, so discovery never deletes a device while its monitor
// might still be writing to it.
func (c *Coordinator) cancelMonitor(endpointID string) {
	c.monitorsMu.Lock()
	stop, ok := c.monitorStop[endpointID]
	done := c.monitorDone[endpointID]
	delete(c.monitorStop, endpointID)
	delete(c.monitorDone, endpointID)
	c.monitorsMu.Unlock()
	if !ok {
		return
	}
	close(stop)
	<-done
}

func (c *Coordinator) startMonitor(d *Device) {
	stop := make(chan struct{})
	done := make(chan struct{})
	c.monitorsMu.Lock()
	c.monitorStop[d.EndpointID] = stop
	c.monitorDone[d.EndpointID] = done
	c.monitorsMu.Unlock()

	c.wg.Add(1)
	go c.monitorLoop(d, stop, done)
}

func (c *Coordinator) readyChan(endpointID string) chan struct{} {
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	ch, ok := c.ready[endpointID]
	if !ok {
		ch = make(chan struct{})
		c.ready[endpointID] = ch
	}
	return ch
}

func (c *Coordinator) markReady(endpointID string) {
	ch := c.readyChan(endpointID)
	select {
	case <-ch:
	default:
		close(ch)
	}
}

// triggerChan returns the device's one-slot edge-triggered refresh
// channel, creating it on first use.
func (c *Coordinator) triggerChan(endpointID string) chan struct{} {
	c.triggersMu.Lock()
	defer c.triggersMu.Unlock()
	ch, ok := c.triggers[endpointID]
	if !ok {
		ch = make(chan struct{}, 1)
		c.triggers[endpointID] = ch
	}
	return ch
}

// TriggerUpdate schedules an immediate refresh of endpointID's state on
// its next monitor loop iteration, coalescing with any already-pending
// trigger rather than queuing a second one.
func (c *Coordinator) TriggerUpdate(endpointID string) {
	ch := c.triggerChan(endpointID)
	select {
	case ch <- struct{}{}:
	default:
	}
}

// monitorLoop is the single writer for one device: it fetches parameters
// when the device is believed online, waits for either its trigger or the
// regular tick, and exits when either its own stop channel or the
// coordinator's global stopCh closes.
func (c *Coordinator) monitorLoop(d *Device, stop <-chan struct{}, done chan<- struct{}) {
	defer c.wg.Done()
	defer close(done)
	trigger := c.triggerChan(d.EndpointID)

	c.refresh(d, stop)

	timer := c.clock.NewTimer(c.monitorInterval)
	defer timer.Stop()

	for {
		select {
		case <-trigger:
			c.refresh(d, stop)
			timer.Reset(c.monitorInterval)
		case <-timer.C():
			c.refresh(d, stop)
			timer.Reset(c.monitorInterval)
		case <-stop:
			return
		case <-c.stopCh:
			return
		}
	}
}

// refresh fetches d's current parameters and publishes the result. A
// device the coordinator does not currently believe is online is not
// queried for parameters at all; only discovery's bulk state query can
// move a device from offline back to online. On a transient fetch error
// the monitor sleeps monitorErrorBackoff before returning control to its
// caller's loop so a persistently unreachable device doesn't spin hot.
func (c *Coordinator) refresh(d *Device, stop <-chan struct{}) {
	if !d.GetOnline() {
		c.markReady(d.EndpointID)
		return
	}

	params := paramUnion(protocol.StandardParams(d.Type), protocol.SpecialParams(d.Type))
	if len(params) == 0 {
		// An unrecognized product id carries no known parameter set; there is
		// nothing to fetch, but the device is still ready for startup purposes.
		c.markReady(d.EndpointID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	values, err := c.cloud.GetParams(ctx, d.ref(), params)
	now := c.clock.Now()

	c.metrics.IncMonitorTick(d.EndpointID)

	if err != nil {
		c.metrics.IncMonitorError(d.EndpointID)
		c.logger.Warn("monitor refresh failed", "endpoint_id", d.EndpointID, "error", err)
		if errors.GetKind(err) == errors.KindDeviceOffline {
			d.setOffline(now)
			c.publish(d)
		}
		// The ready latch is set before sleeping so a flaky device never
		// stalls startup; only the next tick's retry pacing is delayed.
		c.markReady(d.EndpointID)
		c.sleepOnError(stop)
		return
	}

	d.setState(values, true, now)
	c.publish(d)
	c.markReady(d.EndpointID)
}

func (c *Coordinator) sleepOnError(stop <-chan struct{}) {
	timer := c.clock.NewTimer(monitorErrorBackoff)
	defer timer.Stop()
	select {
	case <-timer.C():
	case <-stop:
	case <-c.stopCh:
	}
}

func (c *Coordinator) publish(d *Device) {
	c.hub.Publish(dto.FromDevice(d))
}

func paramUnion(standard, special []string) []string {
	seen := make(map[string]struct{}, len(standard)+len(special))
	out := make([]string, 0, len(standard)+len(special))
	for _, p := range append(append([]string{}, standard...), special...) {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
