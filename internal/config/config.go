// Package config loads Climate Hub's runtime configuration: cloud region
// and credentials, logging, and polling intervals. Values come from
// environment variables by default, with an optional HCL file overlay for
// anything an operator wants to pin down explicitly, following the
// teacher's own hcl-tagged Config struct and hclsimple loader.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"climatehub.dev/hub/internal/errors"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the full set of values the coordinator, cloud API client, and
// push listener need to run.
type Config struct {
	// Cloud account region: eu, usa, or cn.
	// @enum: eu, usa, cn
	// @default: "eu"
	Region string `hcl:"region,optional"`

	// Cloud account email used for the login directive.
	Email string `hcl:"email"`

	// Cloud account password used for the login directive.
	Password string `hcl:"password"`

	// How often the coordinator re-runs family/device discovery.
	// @default: "5m"
	DiscoveryInterval time.Duration `hcl:"discovery_interval,optional"`

	// How often each device's monitor loop refreshes state in the absence
	// of a push notification or explicit trigger.
	// @default: "60s"
	MonitorInterval time.Duration `hcl:"monitor_interval,optional"`

	// Log level: debug, info, warn, error.
	// @default: "info"
	LogLevel string `hcl:"log_level,optional"`

	// Log format: text or json.
	// @default: "text"
	LogFormat string `hcl:"log_format,optional"`

	// Disable the cloud push listener, falling back to polling only.
	// @default: false
	DisablePushListener bool `hcl:"disable_push_listener,optional"`
}

// DefaultConfig returns the zero-credential baseline every loader starts
// from before applying environment and file overrides.
func DefaultConfig() Config {
	return Config{
		Region:            "eu",
		DiscoveryInterval: 5 * time.Minute,
		MonitorInterval:   60 * time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Environment variable names read by LoadFromEnv.
const (
	EnvRegion              = "CLIMATEHUB_REGION"
	EnvEmail               = "CLIMATEHUB_EMAIL"
	EnvPassword            = "CLIMATEHUB_PASSWORD"
	EnvDiscoveryInterval   = "CLIMATEHUB_DISCOVERY_INTERVAL"
	EnvMonitorInterval     = "CLIMATEHUB_MONITOR_INTERVAL"
	EnvLogLevel            = "CLIMATEHUB_LOG_LEVEL"
	EnvLogFormat           = "CLIMATEHUB_LOG_FORMAT"
	EnvDisablePushListener = "CLIMATEHUB_DISABLE_PUSH_LISTENER"
)

// LoadFromEnv builds a Config from DefaultConfig overlaid with any of the
// CLIMATEHUB_* environment variables that are set, then validates it.
func LoadFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv(EnvRegion); ok {
		cfg.Region = v
	}
	if v, ok := os.LookupEnv(EnvEmail); ok {
		cfg.Email = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		cfg.Password = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := os.LookupEnv(EnvDiscoveryInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.KindConfiguration, "config: parse %s", EnvDiscoveryInterval)
		}
		cfg.DiscoveryInterval = d
	}
	if v, ok := os.LookupEnv(EnvMonitorInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.KindConfiguration, "config: parse %s", EnvMonitorInterval)
		}
		cfg.MonitorInterval = d
	}
	if v, ok := os.LookupEnv(EnvDisablePushListener); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.KindConfiguration, "config: parse %s", EnvDisablePushListener)
		}
		cfg.DisablePushListener = b
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile loads and decodes an HCL config file, starting from
// DefaultConfig so any field the file omits keeps its default.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, errors.KindConfiguration, "config: decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every field required to reach the cloud is present
// and well-formed.
func (c Config) Validate() error {
	switch c.Region {
	case "eu", "usa", "cn":
	default:
		return errors.WithAttr(errors.New(errors.KindConfiguration, "config: unknown region"), "region", c.Region)
	}
	if c.Email == "" {
		return errors.New(errors.KindConfiguration, "config: email is required")
	}
	if c.Password == "" {
		return errors.New(errors.KindConfiguration, "config: password is required")
	}
	if c.DiscoveryInterval <= 0 {
		return errors.New(errors.KindConfiguration, "config: discovery_interval must be positive")
	}
	if c.MonitorInterval <= 0 {
		return errors.New(errors.KindConfiguration, "config: monitor_interval must be positive")
	}
	return nil
}

// String renders Config without the password, for safe logging.
func (c Config) String() string {
	return fmt.Sprintf("Config{Region:%s Email:%s DiscoveryInterval:%s MonitorInterval:%s LogLevel:%s}",
		c.Region, c.Email, c.DiscoveryInterval, c.MonitorInterval, c.LogLevel)
}
