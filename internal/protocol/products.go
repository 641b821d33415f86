package protocol

// DeviceType distinguishes the two product families the cloud exposes.
// Each carries a different standard parameter set and control surface.
type DeviceType int

const (
	DeviceTypeUnknown DeviceType = iota
	DeviceTypeAC
	DeviceTypeHeatPump
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeAC:
		return "ac"
	case DeviceTypeHeatPump:
		return "heat_pump"
	default:
		return "unknown"
	}
}

// Product ids the cloud assigns to each device family, reproduced verbatim
// from the vendor's own product table so device typing matches exactly
// what the cloud reports.
const (
	ACGenericProductIDPrimary   = "000000000000000000000000c0620000"
	ACGenericProductIDSecondary = "0000000000000000000000002a4e0000"
	HeatPumpProductID           = "000000000000000000000000c3aa0000"
)

var (
	acGenericProductIDs = map[string]struct{}{
		ACGenericProductIDPrimary:   {},
		ACGenericProductIDSecondary: {},
	}
	heatPumpProductIDs = map[string]struct{}{
		HeatPumpProductID: {},
	}
)

// DeviceTypeForProductID classifies a device by its cloud-assigned product
// id. Anything not recognized as an AC or heat pump product id is
// DeviceTypeUnknown, which carries no standard or special parameter set.
func DeviceTypeForProductID(productID string) DeviceType {
	if _, ok := heatPumpProductIDs[productID]; ok {
		return DeviceTypeHeatPump
	}
	if _, ok := acGenericProductIDs[productID]; ok {
		return DeviceTypeAC
	}
	return DeviceTypeUnknown
}

// ACParams are the standard parameters queried for every air-conditioner on
// each monitor tick, the vendor's exact AC_PARAMS list: the "get" endpoint
// is keyed on these literal names, so they are not renamed or reordered.
var ACParams = []string{
	"ac_astheat",
	"ac_clean",
	"ac_hdir",
	"ac_health",
	"ac_mark",
	"ac_mode",
	"ac_slp",
	"ac_vdir",
	"ecomode",
	"err_flag",
	"mldprf",
	"pwr",
	"scrdisp",
	"temp",
	"envtemp",
	"pwrlimit",
	"pwrlimitswitch",
	"childlock",
	"comfwind",
	"new_type",
	"ac_tempconvert",
	"sleepdiy",
	"ac_errcode1",
	"tempunit",
	"tenelec",
}

// HPParams are the standard parameters queried for every heat pump on each
// monitor tick, the vendor's exact HP_PARAMS list. Heat pumps expose their
// own power/temperature registers (ac_pwr/ac_temp for the heater loop,
// hp_pwr for the water loop) rather than the AC pwr/temp pair.
var HPParams = []string{
	"ac_errcode1",
	"ac_mode",
	"ac_pwr",
	"ac_temp",
	"ecomode",
	"err_flag",
	"hp_auto_wtemp",
	"hp_fast_hotwater",
	"hp_hotwater_temp",
	"hp_pwr",
	"qtmode",
}

// ACSpecialParams and HPSpecialParams are queried in addition to the
// standard set only for the matching product type, the vendor's exact
// AC_SPECIAL_PARAMS and HP_SPECIAL_PARAMS lists.
var (
	ACSpecialParams = []string{ParamModeSpecial}
	HPSpecialParams = []string{"hp_water_tank_temp"}
)

// StandardParams returns the set of parameter keys queried for every device
// of the given type on each monitor tick, or nil for DeviceTypeUnknown.
func StandardParams(t DeviceType) []string {
	switch t {
	case DeviceTypeAC:
		return ACParams
	case DeviceTypeHeatPump:
		return HPParams
	default:
		return nil
	}
}

// SpecialParams returns the set of capability-gated parameter keys for the
// given device type, or nil for DeviceTypeUnknown.
func SpecialParams(t DeviceType) []string {
	switch t {
	case DeviceTypeAC:
		return ACSpecialParams
	case DeviceTypeHeatPump:
		return HPSpecialParams
	default:
		return nil
	}
}
