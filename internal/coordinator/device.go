// Package coordinator owns the device twin cache: per-device monitor
// loops, periodic discovery, trigger-driven refresh coalescing, and
// control dispatch. It is the core of the service, grounded on the
// teacher's internal/monitor/service.go goroutine-per-target pattern
// generalized from network-route pinging to cloud device polling.
package coordinator

import (
	"sync"
	"time"

	"climatehub.dev/hub/internal/protocol"
)

// Device is one cloud-managed climate endpoint and its last known state.
type Device struct {
	EndpointID     string
	FriendlyName   string
	ProductID      string
	Mac            string
	DevSession     string
	DeviceTypeFlag int
	Type           protocol.DeviceType

	mu          sync.RWMutex
	cookie      string
	params      map[string]int
	online      bool
	lastUpdated time.Time
}

func newDevice(endpointID, friendlyName, productID, cookie string) *Device {
	return &Device{
		EndpointID:   endpointID,
		FriendlyName: friendlyName,
		ProductID:    productID,
		Type:         protocol.DeviceTypeForProductID(productID),
		cookie:       cookie,
		params:       make(map[string]int),
	}
}

// GetEndpointID, GetFriendlyName, GetOnline, GetParams, and GetLastUpdated
// implement dto.Device so a *Device converts directly with dto.FromDevice.
func (d *Device) GetEndpointID() string   { return d.EndpointID }
func (d *Device) GetFriendlyName() string { return d.FriendlyName }

func (d *Device) GetOnline() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.online
}

func (d *Device) GetParams() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]int, len(d.params))
	for k, v := range d.params {
		out[k] = v
	}
	return out
}

func (d *Device) GetLastUpdated() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastUpdated
}

func (d *Device) cookieValue() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cookie
}

// ref builds the DeviceRef a control or get-params call needs to
// authorize itself against the cloud: the device's identifying fields
// plus its discovery-time cookie.
func (d *Device) ref() protocol.DeviceRef {
	return protocol.DeviceRef{
		EndpointID:     d.EndpointID,
		ProductID:      d.ProductID,
		Mac:            d.Mac,
		DevSession:     d.DevSession,
		DeviceTypeFlag: d.DeviceTypeFlag,
		Cookie:         d.cookieValue(),
	}
}

// setState replaces the device's cached parameters wholesale, used after a
// successful bulk state fetch.
func (d *Device) setState(params map[string]int, online bool, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.params = params
	d.online = online
	d.lastUpdated = now
}

func (d *Device) setOffline(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online = false
	d.lastUpdated = now
}

// setOnlineFlag records discovery's bulk-state-query verdict for this
// device without touching its cached parameters; only a monitor's own
// get-params fetch (setState) replaces the parameter mapping.
func (d *Device) setOnlineFlag(online bool, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online = online
	d.lastUpdated = now
}
