package logging

import "testing"

func TestDefaultSyslogConfig(t *testing.T) {
	cfg := DefaultSyslogConfig()

	if cfg.Enabled {
		t.Error("default should be disabled")
	}
	if cfg.Port != 514 {
		t.Errorf("expected port 514, got %d", cfg.Port)
	}
	if cfg.Protocol != "udp" {
		t.Errorf("expected protocol udp, got %s", cfg.Protocol)
	}
	if cfg.Tag != "climatehub" {
		t.Errorf("expected tag climatehub, got %s", cfg.Tag)
	}
}

func TestNewSyslogWriter_MissingHost(t *testing.T) {
	cfg := SyslogConfig{Enabled: true, Host: ""}

	_, err := NewSyslogWriter(cfg)
	if err == nil {
		t.Error("expected error for missing host")
	}
}
