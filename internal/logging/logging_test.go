package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRespectsFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "debug", Format: "json", Output: &buf, Component: "coordinator"})

	l.Debug("discovery step started", "families", 2)

	out := buf.String()
	assert.Contains(t, out, "discovery step started")
	assert.Contains(t, out, `"component":"coordinator"`)
	assert.Contains(t, out, `"families":2`)
}

func TestTextFormatDoesNotPanic(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Format: "text", Output: &buf})
	l.Info("monitor tick", "device", "d1")
	assert.True(t, strings.Contains(buf.String(), "monitor tick"))
}

func TestWithComponentIsIndependent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})
	tagged := base.WithComponent("pushlistener")

	tagged.Info("reconnecting")
	assert.Contains(t, buf.String(), `"component":"pushlistener"`)
}

func TestDefaultDoesNotPanicOnNilReceiver(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("no receiver")
	})
}
