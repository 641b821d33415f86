package dto

// EventType distinguishes the two event shapes pushed to fan-out
// subscribers: the full initial snapshot on subscribe, and incremental
// per-device updates afterward.
type EventType string

const (
	EventInitialState EventType = "initial_state"
	EventDeviceUpdate EventType = "device_update"
)

// InitialStateEvent is published once to a new subscriber with every known
// device's current state.
type InitialStateEvent struct {
	Type    EventType   `json:"type"`
	Devices []DeviceDTO `json:"devices"`
}

// NewInitialStateEvent builds an InitialStateEvent from a device snapshot.
func NewInitialStateEvent(devices []DeviceDTO) InitialStateEvent {
	return InitialStateEvent{Type: EventInitialState, Devices: devices}
}

// DeviceUpdateEvent is published whenever a single device's cached state
// changes, whether from a monitor tick, a push notification, or a
// successful control dispatch.
type DeviceUpdateEvent struct {
	Type   EventType `json:"type"`
	Device DeviceDTO `json:"device"`
}

// NewDeviceUpdateEvent builds a DeviceUpdateEvent for a single device.
func NewDeviceUpdateEvent(d DeviceDTO) DeviceUpdateEvent {
	return DeviceUpdateEvent{Type: EventDeviceUpdate, Device: d}
}
