// Package dto defines the JSON shapes exposed to fan-out subscribers and
// the hub's external HTTP/WebSocket surface, decoupled from the internal
// coordinator's device representation.
package dto

import (
	"time"

	"climatehub.dev/hub/internal/validation"
)

// DeviceDTO is the externally visible representation of one device's
// current known state.
type DeviceDTO struct {
	EndpointID         string         `json:"endpointId"`
	FriendlyName       string         `json:"friendlyName"`
	IsOnline           bool           `json:"isOnline"`
	State              map[string]int `json:"state"`
	LastUpdated        time.Time      `json:"lastUpdated"`
	TargetTemperature  *float64       `json:"targetTemperature,omitempty"`
	AmbientTemperature *float64       `json:"ambientTemperature,omitempty"`
	Mode               *string        `json:"mode,omitempty"`
	FanSpeed           *string        `json:"fanSpeed,omitempty"`
}

// Device is the minimal view FromDevice needs from the coordinator's
// device type, kept narrow so dto never imports coordinator.
type Device interface {
	GetEndpointID() string
	GetFriendlyName() string
	GetOnline() bool
	GetParams() map[string]int
	GetLastUpdated() time.Time
}

// FromDevice converts a coordinator device into its external
// representation. It is a pure, total function: a device with no cached
// params yet simply yields nil temperature/mode/fan-speed pointers rather
// than erroring.
func FromDevice(d Device) DeviceDTO {
	params := d.GetParams()
	out := DeviceDTO{
		EndpointID:   d.GetEndpointID(),
		FriendlyName: d.GetFriendlyName(),
		IsOnline:     d.GetOnline(),
		State:        params,
		LastUpdated:  d.GetLastUpdated(),
	}
	if v, ok := params["temp"]; ok {
		out.TargetTemperature = celsiusPtr(v)
	}
	if v, ok := params["envtemp"]; ok {
		out.AmbientTemperature = celsiusPtr(v)
	}
	if v, ok := params["ac_mode"]; ok {
		if name := validation.ModeName(v); name != "" {
			out.Mode = stringPtr(name)
		}
	}
	if v, ok := params["ac_mark"]; ok {
		if name := validation.FanSpeedName(v); name != "" {
			out.FanSpeed = stringPtr(name)
		}
	}
	return out
}

// celsiusPtr converts a wire value in tenths of a degree Celsius to whole
// degrees, e.g. 225 -> 22.5, preserving the half-degree increments the
// data model allows.
func celsiusPtr(tenths int) *float64 {
	v := float64(tenths) / 10
	return &v
}

func stringPtr(v string) *string { return &v }
