package config

import (
	"os"
	"testing"
	"time"

	"climatehub.dev/hub/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvRegion, EnvEmail, EnvPassword, EnvDiscoveryInterval,
		EnvMonitorInterval, EnvLogLevel, EnvLogFormat, EnvDisablePushListener,
	} {
		os.Unsetenv(k)
	}
}

func TestLoadFromEnvRequiresCredentials(t *testing.T) {
	clearEnv(t)
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Equal(t, errors.KindConfiguration, errors.GetKind(err))
}

func TestLoadFromEnvAppliesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEmail, "user@example.com")
	t.Setenv(EnvPassword, "hunter2")
	t.Setenv(EnvRegion, "usa")
	t.Setenv(EnvMonitorInterval, "30s")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "usa", cfg.Region)
	assert.Equal(t, "user@example.com", cfg.Email)
	assert.Equal(t, 30*time.Second, cfg.MonitorInterval)
	assert.Equal(t, 5*time.Minute, cfg.DiscoveryInterval) // default retained
}

func TestLoadFromEnvRejectsUnknownRegion(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEmail, "user@example.com")
	t.Setenv(EnvPassword, "hunter2")
	t.Setenv(EnvRegion, "mars")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Equal(t, errors.KindConfiguration, errors.GetKind(err))
}

func TestLoadFromEnvRejectsBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEmail, "user@example.com")
	t.Setenv(EnvPassword, "hunter2")
	t.Setenv(EnvMonitorInterval, "not-a-duration")

	_, err := LoadFromEnv()
	require.Error(t, err)
}

func TestValidateRequiresPositiveIntervals(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Email = "user@example.com"
	cfg.Password = "hunter2"
	cfg.MonitorInterval = 0

	err := cfg.Validate()
	require.Error(t, err)
}

func TestStringOmitsPassword(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Email = "user@example.com"
	cfg.Password = "super-secret"

	assert.NotContains(t, cfg.String(), "super-secret")
	assert.Contains(t, cfg.String(), "user@example.com")
}
