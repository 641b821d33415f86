// Package validation checks control parameters against the vendor's
// accepted ranges and enumerations before a control directive is ever
// built, so a bad request never reaches the network.
package validation

import (
	"fmt"
	"strings"

	"climatehub.dev/hub/internal/errors"
)

// MinTemperature and MaxTemperature bound the target temperature the
// vendor's air conditioners accept, in the unit the wire protocol itself
// uses (tenths of a degree Celsius).
const (
	MinTemperature = 160
	MaxTemperature = 300
)

// Temperature validates a target temperature, returning
// errors.KindInvalidParameter if it falls outside [MinTemperature,
// MaxTemperature].
func Temperature(tenthsCelsius int) error {
	if tenthsCelsius < MinTemperature || tenthsCelsius > MaxTemperature {
		return invalidParam("temperature", tenthsCelsius, fmt.Sprintf("%d..%d", MinTemperature, MaxTemperature))
	}
	return nil
}

// Mode names and their wire-protocol integer values.
const (
	ModeCool = 0
	ModeHeat = 1
	ModeDry  = 2
	ModeFan  = 3
	ModeAuto = 4
)

var modeNames = map[string]int{
	"auto": ModeAuto,
	"cool": ModeCool,
	"dry":  ModeDry,
	"fan":  ModeFan,
	"heat": ModeHeat,
}

// ModeFromString maps a human-readable mode name to its wire value,
// case-insensitively (the vendor's own apps accept "Cool", "COOL", etc.).
func ModeFromString(name string) (int, error) {
	v, ok := modeNames[strings.ToLower(name)]
	if !ok {
		return 0, invalidParam("mode", name, modeNameSet())
	}
	return v, nil
}

func modeNameSet() string {
	return "auto, cool, dry, fan, heat"
}

var modeValueNames = map[int]string{
	ModeCool: "cool",
	ModeHeat: "heat",
	ModeDry:  "dry",
	ModeFan:  "fan",
	ModeAuto: "auto",
}

// ModeName maps a wire-protocol ac_mode value back to its human-readable
// name, for boundary projections such as DeviceDTO. The empty string
// indicates a value the vendor has not defined.
func ModeName(v int) string {
	return modeValueNames[v]
}

// Fan speed names and their wire-protocol integer values.
const (
	FanAuto   = 0
	FanLow    = 1
	FanMedium = 2
	FanHigh   = 3
	FanTurbo  = 4
	FanMute   = 5
)

var fanSpeedNames = map[string]int{
	"auto":   FanAuto,
	"low":    FanLow,
	"medium": FanMedium,
	"high":   FanHigh,
	"turbo":  FanTurbo,
	"mute":   FanMute,
}

// FanSpeedFromString maps a human-readable fan speed name to its wire
// value, case-insensitively.
func FanSpeedFromString(name string) (int, error) {
	v, ok := fanSpeedNames[strings.ToLower(name)]
	if !ok {
		return 0, invalidParam("fan_speed", name, "auto, low, medium, high, turbo, mute")
	}
	return v, nil
}

var fanSpeedValueNames = map[int]string{
	FanAuto:   "auto",
	FanLow:    "low",
	FanMedium: "medium",
	FanHigh:   "high",
	FanTurbo:  "turbo",
	FanMute:   "mute",
}

// FanSpeedName maps a wire-protocol ac_mark value back to its
// human-readable name, for boundary projections such as DeviceDTO. The
// empty string indicates a value the vendor has not defined.
func FanSpeedName(v int) string {
	return fanSpeedValueNames[v]
}

// SwingAxis distinguishes the vertical and horizontal louver registers.
type SwingAxis string

const (
	SwingVertical   SwingAxis = "vertical"
	SwingHorizontal SwingAxis = "horizontal"
)

// Swing on/off wire values.
const (
	SwingOff = 0
	SwingOn  = 1
)

// SwingFromBool maps a boolean swing toggle to its wire value, validating
// the axis name.
func SwingFromBool(axis SwingAxis, on bool) (int, error) {
	switch axis {
	case SwingVertical, SwingHorizontal:
	default:
		return 0, invalidParam("swing_axis", string(axis), "vertical, horizontal")
	}
	if on {
		return SwingOn, nil
	}
	return SwingOff, nil
}

// Power on/off wire values.
const (
	PowerOff = 0
	PowerOn  = 1
)

// PowerFromBool maps a boolean power toggle to its wire value.
func PowerFromBool(on bool) int {
	if on {
		return PowerOn
	}
	return PowerOff
}

func invalidParam(name string, value any, accepted string) error {
	err := errors.New(errors.KindInvalidParameter, fmt.Sprintf("validation: invalid %s %v", name, value))
	err = errors.WithAttr(err, "param", name)
	err = errors.WithAttr(err, "value", value)
	err = errors.WithAttr(err, "accepted", accepted)
	return err
}
