// Package errors implements the Climate Hub domain error taxonomy.
//
// Every error that crosses a component boundary (protocol parsing, the
// cloud API client, the coordinator's control dispatch) is wrapped as an
// *Error tagged with a Kind, so callers can branch on category without
// string-matching messages.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes a Climate Hub error.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthentication
	KindDeviceNotFound
	KindDeviceOffline
	KindInvalidParameter
	KindServerBusy
	KindDataError
	KindConfiguration
	KindClimateHub // generic bucket for anything else surfaced by the API layer
	KindProtocol   // malformed vendor envelope; internal to the protocol package
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindDeviceNotFound:
		return "device_not_found"
	case KindDeviceOffline:
		return "device_offline"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindServerBusy:
		return "server_busy"
	case KindDataError:
		return "data_error"
	case KindConfiguration:
		return "configuration"
	case KindClimateHub:
		return "climate_hub"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a structured, Kind-tagged error.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
	Attributes map[string]any
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a new Error of the specified kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates a new Error of the specified kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error as a new Error of the specified kind.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Wrapf wraps an existing error as a new Error of the specified kind with a
// formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// WithAttr attaches a key/value pair to the error's attribute bag. If err is
// not an *Error, it is wrapped as KindInternal-equivalent (KindClimateHub)
// first so the attribute has somewhere to live.
func WithAttr(err error, key string, val any) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: KindClimateHub, Message: err.Error(), Underlying: err}
	}
	if e.Attributes == nil {
		e.Attributes = make(map[string]any)
	}
	e.Attributes[key] = val
	return e
}

// GetKind returns the Kind of err, or KindUnknown if it is not a tagged error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// GetAttributes collects attributes from every tagged error in err's chain.
func GetAttributes(err error) map[string]any {
	attrs := make(map[string]any)
	var e *Error

	cur := err
	for cur != nil {
		if errors.As(cur, &e) {
			for k, v := range e.Attributes {
				if _, ok := attrs[k]; !ok {
					attrs[k] = v
				}
			}
			cur = e.Underlying
		} else {
			break
		}
	}
	return attrs
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if any.
func Unwrap(err error) error { return errors.Unwrap(err) }
