package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDevice struct {
	id, name string
	online   bool
	params   map[string]int
	updated  time.Time
}

func (f fakeDevice) GetEndpointID() string     { return f.id }
func (f fakeDevice) GetFriendlyName() string   { return f.name }
func (f fakeDevice) GetOnline() bool           { return f.online }
func (f fakeDevice) GetParams() map[string]int { return f.params }
func (f fakeDevice) GetLastUpdated() time.Time { return f.updated }

func TestFromDeviceWithFullParams(t *testing.T) {
	now := time.Now()
	d := fakeDevice{
		id: "ep-1", name: "Living Room", online: true,
		// temp/envtemp are wire tenths of a degree; ac_mode=1 is "heat",
		// ac_mark=2 is "medium" per the vendor's enums.
		params:  map[string]int{"temp": 225, "envtemp": 240, "ac_mode": 1, "ac_mark": 2},
		updated: now,
	}
	got := FromDevice(d)

	assert.Equal(t, "ep-1", got.EndpointID)
	assert.Equal(t, "Living Room", got.FriendlyName)
	assert.True(t, got.IsOnline)
	requireFloatPtrEq(t, 22.5, got.TargetTemperature)
	requireFloatPtrEq(t, 24.0, got.AmbientTemperature)
	requireStringPtrEq(t, "heat", got.Mode)
	requireStringPtrEq(t, "medium", got.FanSpeed)
}

func TestFromDeviceWithNoParamsYet(t *testing.T) {
	d := fakeDevice{id: "ep-2", name: "Office", online: false, params: nil}
	got := FromDevice(d)

	assert.Nil(t, got.TargetTemperature)
	assert.Nil(t, got.AmbientTemperature)
	assert.Nil(t, got.Mode)
	assert.Nil(t, got.FanSpeed)
	assert.False(t, got.IsOnline)
}

func TestFromDeviceWithUnknownEnumValues(t *testing.T) {
	d := fakeDevice{
		id: "ep-3", name: "Attic", online: true,
		params: map[string]int{"ac_mode": 99, "ac_mark": 99},
	}
	got := FromDevice(d)

	assert.Nil(t, got.Mode)
	assert.Nil(t, got.FanSpeed)
}

func requireFloatPtrEq(t *testing.T, want float64, got *float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected pointer to %v, got nil", want)
	}
	assert.Equal(t, want, *got)
}

func requireStringPtrEq(t *testing.T, want string, got *string) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected pointer to %q, got nil", want)
	}
	assert.Equal(t, want, *got)
}
