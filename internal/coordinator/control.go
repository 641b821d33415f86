package coordinator

import (
	"context"

	"climatehub.dev/hub/internal/errors"
	"climatehub.dev/hub/internal/protocol"
	"climatehub.dev/hub/internal/validation"
)

// SetPower turns the device on or off.
func (c *Coordinator) SetPower(ctx context.Context, endpointID string, on bool) error {
	return c.executeControl(ctx, endpointID, map[string]int{protocol.ParamPower: validation.PowerFromBool(on)})
}

// SetTemperature sets the target temperature, in tenths of a degree
// Celsius.
func (c *Coordinator) SetTemperature(ctx context.Context, endpointID string, tenthsCelsius int) error {
	if err := validation.Temperature(tenthsCelsius); err != nil {
		return err
	}
	return c.executeControl(ctx, endpointID, map[string]int{protocol.ParamTempTarget: tenthsCelsius})
}

// SetMode sets the operating mode by name (auto, cool, dry, fan, heat).
func (c *Coordinator) SetMode(ctx context.Context, endpointID, mode string) error {
	v, err := validation.ModeFromString(mode)
	if err != nil {
		return err
	}
	return c.executeControl(ctx, endpointID, map[string]int{protocol.ParamMode: v})
}

// SetFanSpeed sets the fan speed by name (auto, low, medium, high, turbo,
// mute).
func (c *Coordinator) SetFanSpeed(ctx context.Context, endpointID, speed string) error {
	v, err := validation.FanSpeedFromString(speed)
	if err != nil {
		return err
	}
	return c.executeControl(ctx, endpointID, map[string]int{protocol.ParamFanSpeed: v})
}

// SetSwing toggles louver swing on the given axis.
func (c *Coordinator) SetSwing(ctx context.Context, endpointID string, axis validation.SwingAxis, on bool) error {
	v, err := validation.SwingFromBool(axis, on)
	if err != nil {
		return err
	}
	param := protocol.ParamSwingVertical
	if axis == validation.SwingHorizontal {
		param = protocol.ParamSwingHoriz
	}
	return c.executeControl(ctx, endpointID, map[string]int{param: v})
}

// executeControl looks up the device, short-circuits on a known-offline
// device before any network call, and dispatches the control directive.
// It does not touch the device's cached parameters itself: on success it
// fires the device's trigger so its monitor's next pass pulls the
// authoritative post-control state, per the single-writer rule that only
// a monitor's own fetch replaces a device's parameter mapping.
func (c *Coordinator) executeControl(ctx context.Context, endpointID string, params map[string]int) error {
	d, err := c.FindDevice(endpointID)
	if err != nil {
		c.metrics.IncControlDispatch("not_found")
		return err
	}

	if !d.GetOnline() {
		c.metrics.IncControlDispatch("offline")
		return errors.WithAttr(errors.New(errors.KindDeviceOffline, "coordinator: device is offline"), "endpoint_id", d.EndpointID)
	}

	if err := c.cloud.SetParams(ctx, d.ref(), params); err != nil {
		c.metrics.IncControlDispatch("error")
		return errors.Wrap(err, errors.GetKind(err), "coordinator: control dispatch failed")
	}

	c.TriggerUpdate(d.EndpointID)
	c.metrics.IncControlDispatch("success")
	return nil
}

