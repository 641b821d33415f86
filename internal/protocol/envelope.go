package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"climatehub.dev/hub/internal/climatecrypto"
)

// Header is the outer directive header. The Timstamp field name preserves
// the vendor's own typo: the server rejects a correctly spelled field.
// MessageID is always "<prefix>-<unix_seconds>", where prefix is the
// account's user id for state queries and the target endpoint id for
// key-value control.
type Header struct {
	Namespace        string `json:"namespace"`
	Name             string `json:"name"`
	InterfaceVersion string `json:"interfaceVersion"`
	SenderID         string `json:"senderId"`
	MessageType      string `json:"messageType,omitempty"`
	MessageID        string `json:"messageId"`
	Timstamp         string `json:"timstamp,omitempty"`
}

// controlEndpoint is the key-value-control directive's "endpoint" stanza:
// it carries the mapped cookie and device-identifying fields the cloud
// needs to authorize a get/set against one specific device.
type controlEndpoint struct {
	DevicePairedInfo devicePairedInfo `json:"devicePairedInfo"`
	EndpointID       string           `json:"endpointId"`
	Cookie           struct{}         `json:"cookie"`
	DevSession       string           `json:"devSession"`
}

type devicePairedInfo struct {
	DeviceID       string `json:"did"`
	ProductID      string `json:"pid"`
	Mac            string `json:"mac"`
	DeviceTypeFlag int    `json:"devicetypeflag"`
	Cookie         string `json:"cookie"`
}

// Directive wraps a Header with an opaque, namespace-specific payload.
// Endpoint is only present for key-value control directives.
type Directive struct {
	Header   Header           `json:"header"`
	Endpoint *controlEndpoint `json:"endpoint,omitempty"`
	Payload  json.RawMessage  `json:"payload"`
}

// Envelope is the single top-level object every vendor request and
// response body is framed in.
type Envelope struct {
	Directive Directive `json:"directive"`
}

func newHeader(namespace, name, messageType, idPrefix string, now int64) Header {
	return Header{
		Namespace:        namespace,
		Name:             name,
		InterfaceVersion: "2",
		SenderID:         "sdk",
		MessageType:      messageType,
		MessageID:        fmt.Sprintf("%s-%d", idPrefix, now),
		Timstamp:         fmt.Sprintf("%d", now),
	}
}

func wrap(namespace, name, messageType, idPrefix string, now int64, endpoint *controlEndpoint, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal payload: %w", err)
	}
	env := Envelope{Directive: Directive{
		Header:   newHeader(namespace, name, messageType, idPrefix, now),
		Endpoint: endpoint,
		Payload:  raw,
	}}
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal envelope: %w", err)
	}
	return body, nil
}

// loginPayload is the entire login request body. Every field is sent in
// the clear inside this document; what protects it is that the whole
// JSON document is AES-128-CBC-zero-padded and sent as the raw HTTP body,
// never as JSON itself. Password is SHA-1 of the plaintext password plus
// the vendor's fixed password key, matching what the cloud stores.
type loginPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID string `json:"companyid"`
	LicenseID string `json:"lid"`
}

// LoginRequest is the raw ciphertext body for an email/password login,
// plus the timestamp and token values the cloud expects as separate HTTP
// headers alongside it.
type LoginRequest struct {
	Body      []byte
	Timestamp string
	Token     string
}

// BuildLoginRequest builds the encrypted login request. now is a
// Unix-seconds timestamp supplied by the caller (via internal/clock) so
// the request is deterministic under test. Unlike every other directive,
// a login request is not itself a JSON envelope: the cloud expects the
// AES-encrypted bytes of the plaintext JSON document directly as the HTTP
// body, with the encryption key derived from the timestamp and the
// plaintext's own digest carried alongside as the token header.
func BuildLoginRequest(email, password string, now int64) (LoginRequest, error) {
	plain := loginPayload{
		Email:     email,
		Password:  climatecrypto.SHA1HexLower(password + PasswordEncryptKey),
		CompanyID: CompanyID,
		LicenseID: LicenseID,
	}
	plainJSON, err := json.Marshal(plain)
	if err != nil {
		return LoginRequest{}, fmt.Errorf("protocol: marshal login payload: %w", err)
	}

	timestamp := fmt.Sprintf("%d", now)
	token := climatecrypto.MD5HexLower(string(plainJSON) + BodyEncryptKey)
	key := climatecrypto.MD5Raw(timestamp + TimestampTokenEncryptKey)

	ciphertext, err := climatecrypto.EncryptAESCBCZeroPad(AESInitialVector, key, plainJSON)
	if err != nil {
		return LoginRequest{}, fmt.Errorf("protocol: encrypt login payload: %w", err)
	}

	return LoginRequest{Body: ciphertext, Timestamp: timestamp, Token: token}, nil
}

// DeviceRef carries the device-identifying fields a key-value control
// directive needs beyond the parameter values themselves: the cloud-issued
// mac, session, device-type flag, and cookie that together authorize the
// request against this specific endpoint.
type DeviceRef struct {
	EndpointID     string
	ProductID      string
	Mac            string
	DevSession     string
	DeviceTypeFlag int
	Cookie         string
}

// queryStatePayload requests the current online/offline status and error
// code for a batch of endpoints in a single round trip.
type queryStatePayload struct {
	StuData []queryStateEntry `json:"studata"`
	MsgType string            `json:"msgtype"`
}

type queryStateEntry struct {
	DeviceID   string `json:"did"`
	DevSession string `json:"devSession"`
}

// BuildQueryStateRequest builds the JSON body for a bulk device-state
// query. userID scopes the message id the same way the vendor's own
// clients do, since querystate is an account-level operation rather than
// a per-device one.
func BuildQueryStateRequest(userID string, devices []DeviceRef, now int64) ([]byte, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("protocol: query state: no devices")
	}
	entries := make([]queryStateEntry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, queryStateEntry{DeviceID: d.EndpointID, DevSession: d.DevSession})
	}
	return wrap("DNA.QueryState", "queryState", "controlgw.batch", userID, now, nil, queryStatePayload{
		StuData: entries,
		MsgType: "batch",
	})
}

// controlPayload is the body of a get or set key-value control directive.
// Vals is positional against Params; each entry is itself a one-element
// list to match the vendor's wire shape.
type controlPayload struct {
	Act    string           `json:"act"`
	Params []string         `json:"params"`
	Vals   [][]controlValue `json:"vals"`
	DID    string           `json:"did"`
}

type controlValue struct {
	Val int `json:"val"`
	Idx int `json:"idx"`
}

// buildControlRequest builds the JSON body for a get or set key-value
// control directive against a single device. A get of exactly one
// parameter carries a single placeholder value rather than an empty
// list, matching the vendor's own client, which otherwise rejects the
// request.
func buildControlRequest(dev DeviceRef, act string, params []string, vals [][]controlValue, now int64) ([]byte, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("protocol: control request: no params")
	}
	if act == "get" && len(params) == 1 && len(vals) == 0 {
		vals = [][]controlValue{{{Val: 0, Idx: 1}}}
	}

	mappedCookie, err := remapCookie(dev)
	if err != nil {
		return nil, fmt.Errorf("protocol: remap cookie: %w", err)
	}
	endpoint := &controlEndpoint{
		DevicePairedInfo: devicePairedInfo{
			DeviceID:       dev.EndpointID,
			ProductID:      dev.ProductID,
			Mac:            dev.Mac,
			DeviceTypeFlag: dev.DeviceTypeFlag,
			Cookie:         mappedCookie,
		},
		EndpointID: dev.EndpointID,
		DevSession: dev.DevSession,
	}

	payload := controlPayload{Act: act, Params: params, Vals: vals, DID: dev.EndpointID}
	return wrap("DNA.KeyValueControl", "KeyValueControl", "", dev.EndpointID, now, endpoint, payload)
}

// BuildGetParamsRequest builds the JSON body for a get-parameters
// directive against a single endpoint, used by a device's monitor loop to
// fetch its authoritative state.
func BuildGetParamsRequest(dev DeviceRef, params []string, now int64) ([]byte, error) {
	return buildControlRequest(dev, "get", params, nil, now)
}

// BuildControlRequest builds the JSON body for a set-parameters
// directive against a single endpoint.
func BuildControlRequest(dev DeviceRef, params map[string]int, now int64) ([]byte, error) {
	names := make([]string, 0, len(params))
	vals := make([][]controlValue, 0, len(params))
	for name, val := range params {
		names = append(names, name)
		vals = append(vals, []controlValue{{Val: val, Idx: 1}})
	}
	return buildControlRequest(dev, "set", names, vals, now)
}

// BuildFamiliesRequest builds the JSON body for a "list my families"
// directive, which takes no parameters beyond the envelope itself.
func BuildFamiliesRequest(userID string, now int64) ([]byte, error) {
	return wrap("Family", "getFamilyList", "", userID, now, nil, struct{}{})
}

// devicesPayload requests every endpoint belonging to a single family.
type devicesPayload struct {
	FamilyID string `json:"familyid"`
}

// BuildDevicesRequest builds the JSON body for a "list devices in family"
// directive.
func BuildDevicesRequest(userID, familyID string, now int64) ([]byte, error) {
	if familyID == "" {
		return nil, fmt.Errorf("protocol: devices request: empty family id")
	}
	return wrap("Family", "getDeviceList", "", userID, now, nil, devicesPayload{FamilyID: familyID})
}

// remapCookie decodes the discovery-time cookie (base64 JSON of
// {terminalid, aeskey}) and rebuilds it into the {device:{...}} shape the
// control endpoint expects, folding in the device's own identifying
// fields. A cookie the cloud never issued (e.g. in tests) maps to an
// empty string rather than failing the whole request.
func remapCookie(dev DeviceRef) (string, error) {
	if dev.Cookie == "" {
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(dev.Cookie)
	if err != nil {
		return "", nil
	}

	var terminal struct {
		TerminalID string `json:"terminalid"`
		AESKey     string `json:"aeskey"`
	}
	if err := json.Unmarshal(decoded, &terminal); err != nil {
		return "", nil
	}

	mapped := map[string]any{
		"device": map[string]any{
			"id":         terminal.TerminalID,
			"key":        terminal.AESKey,
			"devSession": dev.DevSession,
			"aeskey":     terminal.AESKey,
			"did":        dev.EndpointID,
			"pid":        dev.ProductID,
			"mac":        dev.Mac,
		},
	}
	mappedJSON, err := json.Marshal(mapped)
	if err != nil {
		return "", fmt.Errorf("protocol: marshal mapped cookie: %w", err)
	}
	return base64.StdEncoding.EncodeToString(mappedJSON), nil
}
