package protocol

import (
	"encoding/json"
	"fmt"

	"climatehub.dev/hub/internal/errors"
)

// outerResponse mirrors Envelope but carries the vendor's event/payload
// naming for directive responses, which uses "event" instead of
// "directive" and nests the real payload as a JSON-encoded string rather
// than a raw object, requiring a second unmarshal pass.
type outerResponse struct {
	Event *struct {
		Header  Header          `json:"header"`
		Payload json.RawMessage `json:"payload"`
	} `json:"event"`
}

// errorResponsePayload is the shape of an ErrorResponse event's payload:
// a vendor-defined type string, a human-readable message, and a numeric
// status code. The cloud reports failures this way instead of a non-zero
// status on the normal payload.
type errorResponsePayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Vendor error codes and types observed in production, mapped to the
// domain error taxonomy so callers never need to know the wire-level
// numbers.
const (
	vendorStatusServerBusy       = -49002
	vendorStatusDataError        = -1005
	vendorTypeEndpointUnreachable = "ENDPOINT_UNREACHABLE"
	errorResponseHeaderName      = "ErrorResponse"
)

func vendorErrorToDomain(e errorResponsePayload) error {
	switch {
	case e.Status == vendorStatusServerBusy:
		return errors.WithAttr(errors.New(errors.KindServerBusy, "protocol: cloud service busy"), "vendor_status", e.Status)
	case e.Status == vendorStatusDataError:
		return errors.WithAttr(errors.New(errors.KindDataError, "protocol: cloud reported data error"), "vendor_status", e.Status)
	case e.Type == vendorTypeEndpointUnreachable:
		return errors.WithAttr(errors.New(errors.KindDeviceOffline, "protocol: endpoint unreachable"), "vendor_status", e.Status)
	default:
		return errors.WithAttr(errors.New(errors.KindClimateHub, fmt.Sprintf("protocol: cloud error: %s", e.Message)), "vendor_status", e.Status)
	}
}

// unwrapEvent performs the two-stage parse every response body needs:
// the outer envelope is ordinary JSON, and so is its payload, but a
// response reporting an error is discriminated by the event's header name
// rather than by a field inside the payload. It returns the raw payload
// for the success path, or the translated domain error when the header
// names this an ErrorResponse.
func unwrapEvent(body []byte) (json.RawMessage, error) {
	var outer outerResponse
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "protocol: decode response envelope")
	}
	if outer.Event == nil {
		return nil, errors.New(errors.KindProtocol, "protocol: response missing event")
	}
	if len(outer.Event.Payload) == 0 {
		return nil, errors.New(errors.KindProtocol, "protocol: response missing payload")
	}

	if outer.Event.Header.Name == errorResponseHeaderName {
		var e errorResponsePayload
		if err := json.Unmarshal(outer.Event.Payload, &e); err != nil {
			return nil, errors.Wrap(err, errors.KindProtocol, "protocol: decode error response payload")
		}
		return nil, vendorErrorToDomain(e)
	}

	return outer.Event.Payload, nil
}

// UnwrapEventPayload performs the same two-stage parse as unwrapEvent,
// exported so the cloud API client can reuse it for directives (login,
// family/device listing) that don't carry the KeyValueControl/QueryState
// status conventions below.
func UnwrapEventPayload(body []byte) (json.RawMessage, error) {
	return unwrapEvent(body)
}

// DeviceState is one endpoint's online/offline status as returned by a
// bulk state query.
type DeviceState struct {
	EndpointID string
	Online     bool
}

type stateResponsePayload struct {
	Status int `json:"status"`
	Data   []struct {
		DeviceID string `json:"did"`
		Status   int    `json:"status"`
	} `json:"data"`
}

// ParseStateResponse parses a bulk device-state query response body into
// one DeviceState per endpoint reported. A device is online when its own
// per-entry status is zero, independent of the envelope's overall status.
func ParseStateResponse(body []byte) ([]DeviceState, error) {
	inner, err := unwrapEvent(body)
	if err != nil {
		return nil, err
	}

	var payload stateResponsePayload
	if err := json.Unmarshal(inner, &payload); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "protocol: decode state payload")
	}
	if payload.Status != 0 {
		return nil, errors.WithAttr(errors.New(errors.KindDataError, "protocol: state query reported an error"), "vendor_status", payload.Status)
	}

	states := make([]DeviceState, 0, len(payload.Data))
	for _, d := range payload.Data {
		states = append(states, DeviceState{EndpointID: d.DeviceID, Online: d.Status == 0})
	}
	return states, nil
}

// controlResponsePayload is the success-path payload of a get or set
// key-value control response. Data is itself a JSON-encoded string, not a
// nested object, and must be unmarshaled a second time.
type controlResponsePayload struct {
	Status int    `json:"status"`
	Data   string `json:"data"`
}

type controlResponseData struct {
	Params []string         `json:"params"`
	Vals   [][]controlValue `json:"vals"`
}

// parseControlPayload runs the two-stage parse common to get and set
// key-value control responses, returning the positionally zipped
// name-to-value mapping the inner data string encodes.
func parseControlPayload(inner json.RawMessage) (map[string]int, error) {
	var payload controlResponsePayload
	if err := json.Unmarshal(inner, &payload); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "protocol: decode control payload")
	}
	if payload.Status != 0 {
		return nil, errors.WithAttr(errors.New(errors.KindDataError, "protocol: control request reported an error"), "vendor_status", payload.Status)
	}
	if payload.Data == "" {
		return map[string]int{}, nil
	}

	var data controlResponseData
	if err := json.Unmarshal([]byte(payload.Data), &data); err != nil {
		return nil, errors.Wrap(err, errors.KindProtocol, "protocol: decode control data string")
	}

	out := make(map[string]int, len(data.Params))
	for i, name := range data.Params {
		if i >= len(data.Vals) || len(data.Vals[i]) == 0 {
			continue
		}
		out[name] = data.Vals[i][0].Val
	}
	return out, nil
}

// ParseGetParamsResponse parses a get-parameters response body, returning
// the fetched name-to-value mapping or a domain error translated from the
// vendor's error reporting.
func ParseGetParamsResponse(body []byte) (map[string]int, error) {
	inner, err := unwrapEvent(body)
	if err != nil {
		return nil, err
	}
	return parseControlPayload(inner)
}

// ParseControlResponse parses a set-parameters response body and returns
// an error translated into the domain error taxonomy when the vendor
// reports a failure, or nil on success.
func ParseControlResponse(body []byte) error {
	inner, err := unwrapEvent(body)
	if err != nil {
		return err
	}
	_, err = parseControlPayload(inner)
	return err
}
