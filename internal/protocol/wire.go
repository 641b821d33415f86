// Package protocol builds and parses the vendor cloud's JSON directive
// envelopes: login, bulk state query, and get/set key-value control. It
// also owns the vendor error-code-to-domain-taxonomy mapping (§4.2, §7).
package protocol

// Region selects one of the vendor's three regional deployments.
type Region string

const (
	RegionEU  Region = "eu"
	RegionUSA Region = "usa"
	RegionCN  Region = "cn"
)

// Base HTTPS API hosts, one per region.
const (
	APIServerURLEU  = "https://app-service-deu-f0e9ebbb.smarthomecs.de"
	APIServerURLUSA = "https://app-service-usa-fd7cc04c.smarthomecs.com"
	APIServerURLCN  = "https://app-service-chn-31a93883.ibroadlink.com"
)

// Relay WebSocket hosts, one per region, used by the cloud push listener.
const (
	WebSocketURLEU  = "wss://app-relay-deu-f0e9ebbb.smarthomecs.de"
	WebSocketURLUSA = "wss://app-relay-usa-fd7cc04c.smarthomecs.com"
	WebSocketURLCN  = "wss://app-relay-chn-31a93883.ibroadlink.com"
)

// AUX login encryption keys (vendor-fixed, not secrets our user controls).
const (
	TimestampTokenEncryptKey = "kdixkdqp54545^#*"
	PasswordEncryptKey       = "4969fj#k23#"
	BodyEncryptKey           = "xgx3d*fe3478$ukx"
)

// AESInitialVector is the fixed 16-byte IV the vendor's login handshake
// requires, reproduced verbatim (as unsigned bytes) from the reference
// implementation, which expresses the same vector as signed bytes.
var AESInitialVector = []byte{
	0xea, 0xaa, 0xaa, 0x3a, 0xbb, 0x58, 0x62, 0xa2,
	0x19, 0x18, 0xb5, 0x77, 0x1d, 0x16, 0x15, 0xaa,
}

// License and company identifiers, fixed per vendor app build.
const (
	License   = "PAFbJJ3WbvDxH5vvWezXN5BujETtH/iuTtIIW5CE/SeHN7oNKqnEajgljTcL0fBQQWM0XAAAAAAnBhJyhMi7zIQMsUcwR/PEwGA3uB5HLOnr+xRrci+FwHMkUtK7v4yo0ZHa+jPvb6djelPP893k7SagmffZmOkLSOsbNs8CAqsu8HuIDs2mDQAAAAA="
	LicenseID = "3c015b249dd66ef0f11f9bef59ecd737"
	CompanyID = "48eb1b36cf0202ab2ef07b880ecda60d"
)

// Spoofed mobile-app identity headers the vendor's server expects.
const (
	SpoofAppVersion = "2.2.10.456537160"
	SpoofUserAgent  = "Dalvik/2.1.0 (Linux; U; Android 12; SM-G991B Build/SP1A.210812.016)"
	SpoofSystem     = "android"
	SpoofPlatform   = "android"
)

// APIBaseURL returns the HTTPS base URL for region, defaulting to EU for an
// unrecognized value (matching the vendor SDK's own fallback behavior).
func APIBaseURL(region Region) string {
	switch region {
	case RegionUSA:
		return APIServerURLUSA
	case RegionCN:
		return APIServerURLCN
	default:
		return APIServerURLEU
	}
}

// WebSocketBaseURL returns the relay WebSocket base URL for region.
func WebSocketBaseURL(region Region) string {
	switch region {
	case RegionUSA:
		return WebSocketURLUSA
	case RegionCN:
		return WebSocketURLCN
	default:
		return WebSocketURLEU
	}
}

// Parameter keys (wire names), reproduced verbatim since the vendor's get
// endpoint is keyed on these exact strings.
const (
	ParamMode          = "ac_mode"
	ParamEcoMode       = "ecomode"
	ParamErrorFlag     = "err_flag"
	ParamPower         = "pwr"
	ParamTempTarget    = "temp"
	ParamTempAmbient   = "envtemp"
	ParamModeSpecial   = "mode"
	ParamFanSpeed      = "ac_mark"
	ParamSwingVertical = "ac_vdir"
	ParamSwingHoriz    = "ac_hdir"
)
