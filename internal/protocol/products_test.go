package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceTypeForProductID(t *testing.T) {
	assert.Equal(t, DeviceTypeHeatPump, DeviceTypeForProductID(HeatPumpProductID))
	assert.Equal(t, DeviceTypeAC, DeviceTypeForProductID(ACGenericProductIDPrimary))
	assert.Equal(t, DeviceTypeAC, DeviceTypeForProductID(ACGenericProductIDSecondary))
	assert.Equal(t, DeviceTypeUnknown, DeviceTypeForProductID("some-other-product-id"))
	assert.Equal(t, DeviceTypeUnknown, DeviceTypeForProductID(""))
}

func TestDeviceTypeString(t *testing.T) {
	assert.Equal(t, "ac", DeviceTypeAC.String())
	assert.Equal(t, "heat_pump", DeviceTypeHeatPump.String())
	assert.Equal(t, "unknown", DeviceTypeUnknown.String())
}

func TestStandardParamsPerType(t *testing.T) {
	assert.ElementsMatch(t, ACParams, StandardParams(DeviceTypeAC))
	assert.ElementsMatch(t, HPParams, StandardParams(DeviceTypeHeatPump))
	assert.Nil(t, StandardParams(DeviceTypeUnknown))
	assert.Contains(t, StandardParams(DeviceTypeAC), ParamPower)
	assert.Contains(t, StandardParams(DeviceTypeHeatPump), "ac_pwr")
	assert.Contains(t, StandardParams(DeviceTypeHeatPump), "hp_pwr")
	assert.NotContains(t, StandardParams(DeviceTypeHeatPump), ParamPower, "heat pumps use ac_pwr/hp_pwr, not the AC pwr register")
}

func TestSpecialParamsPerType(t *testing.T) {
	assert.ElementsMatch(t, ACSpecialParams, SpecialParams(DeviceTypeAC))
	assert.ElementsMatch(t, HPSpecialParams, SpecialParams(DeviceTypeHeatPump))
	assert.Equal(t, []string{"mode"}, ACSpecialParams)
	assert.Equal(t, []string{"hp_water_tank_temp"}, HPSpecialParams)
	assert.Nil(t, SpecialParams(DeviceTypeUnknown))
}
