package logging

import (
	"fmt"
	"io"
	"log/syslog"
)

// SyslogConfig controls the optional syslog sink.
type SyslogConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Protocol string // udp or tcp
	Tag      string
	Facility syslog.Priority
}

// DefaultSyslogConfig returns a disabled syslog configuration with the
// conventional defaults (UDP 514, "flywall" tag, facility 1/user).
func DefaultSyslogConfig() SyslogConfig {
	return SyslogConfig{
		Enabled:  false,
		Port:     514,
		Protocol: "udp",
		Tag:      "climatehub",
		Facility: syslog.LOG_USER,
	}
}

// NewSyslogWriter dials the configured syslog daemon and returns an
// io.Writer suitable for use as a slog handler sink.
func NewSyslogWriter(cfg SyslogConfig) (io.Writer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("logging: syslog host is required")
	}

	proto := cfg.Protocol
	if proto == "" {
		proto = "udp"
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	w, err := syslog.Dial(proto, addr, cfg.Facility|syslog.LOG_INFO, cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("logging: dial syslog: %w", err)
	}
	return w, nil
}
