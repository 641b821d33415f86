package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndKind(t *testing.T) {
	err := New(KindDeviceOffline, "device offline")
	require.Error(t, err)
	assert.Equal(t, KindDeviceOffline, GetKind(err))
	assert.Equal(t, "device offline", err.Error())
}

func TestWrapPreservesChain(t *testing.T) {
	base := errors.New("network reset")
	wrapped := Wrap(base, KindClimateHub, "set params failed")
	require.Error(t, wrapped)
	assert.Equal(t, KindClimateHub, GetKind(wrapped))
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "network reset")
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, KindClimateHub, "unused"))
}

func TestWithAttrOnTaggedError(t *testing.T) {
	err := New(KindInvalidParameter, "bad mode")
	err = WithAttr(err, "param_name", "mode")
	err = WithAttr(err, "value", "warm")

	attrs := GetAttributes(err)
	assert.Equal(t, "mode", attrs["param_name"])
	assert.Equal(t, "warm", attrs["value"])
}

func TestWithAttrOnPlainError(t *testing.T) {
	err := WithAttr(errors.New("boom"), "key", "val")
	var e *Error
	require.True(t, As(err, &e))
	assert.Equal(t, KindClimateHub, e.Kind)
	assert.Equal(t, "val", e.Attributes["key"])
}

func TestGetAttributesWalksChain(t *testing.T) {
	inner := New(KindServerBusy, "busy")
	inner = WithAttr(inner, "status", -49002)
	outer := Wrap(inner, KindClimateHub, "outer")
	outer = WithAttr(outer, "op", "set_temperature")

	attrs := GetAttributes(outer)
	assert.Equal(t, "set_temperature", attrs["op"])
	assert.Equal(t, -49002, attrs["status"])
}

func TestGetKindUnknownForPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindAuthentication:   "authentication",
		KindDeviceNotFound:   "device_not_found",
		KindDeviceOffline:    "device_offline",
		KindInvalidParameter: "invalid_parameter",
		KindServerBusy:       "server_busy",
		KindDataError:        "data_error",
		KindConfiguration:    "configuration",
		KindClimateHub:       "climate_hub",
		KindProtocol:         "protocol",
		KindUnknown:          "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
