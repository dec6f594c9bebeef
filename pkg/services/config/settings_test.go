package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", s.Addr())
	assert.Equal(t, "rest", s.Metrics.Strategy)
	assert.Equal(t, time.Duration(0), s.Metrics.Window)
	assert.Equal(t, 30, s.Metrics.MaxBuckets)
	assert.Equal(t, 4, s.Aggregator.Concurrency)
	assert.Equal(t, 15*time.Second, s.Aggregator.CallTimeout)
	assert.True(t, s.Cloudflare.RequireAccount)
	assert.ErrorIs(t, s.ValidateServer(), ErrMissingAuthToken)
}

func TestLoadSettings_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.yaml")
	content := `server:
  host: "127.0.0.1"
  port: 9090
  auth_token: "secret"
cloudflare:
  api_token: "cf-token"
  account_id: "acc-1"
  require_account: false
metrics:
  strategy: "graphql"
  window: "720h"
  max_buckets: 7
aggregator:
  concurrency: 8
  call_timeout: "5s"
  requests_per_second: 2.5
log:
  level: "debug"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	s, err := LoadSettings(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", s.Addr())
	assert.NoError(t, s.ValidateServer())
	assert.Equal(t, domain.Credentials{APIToken: "cf-token", AccountID: "acc-1"}, s.Credentials())
	assert.False(t, s.Cloudflare.RequireAccount)
	assert.Equal(t, "graphql", s.Metrics.Strategy)
	assert.Equal(t, 720*time.Hour, s.Metrics.Window)
	assert.Equal(t, 7, s.Metrics.MaxBuckets)
	assert.Equal(t, 8, s.Aggregator.Concurrency)
	assert.Equal(t, 5*time.Second, s.Aggregator.CallTimeout)
	assert.Equal(t, 2.5, s.Aggregator.RequestsPerSecond)
	assert.Equal(t, zerolog.DebugLevel, s.Log.ZerologLevel())
}

func TestLoadSettings_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cloudflare:\n  api_token: from-file\n"), 0o644))

	t.Setenv("CLOUDFLARE_API_TOKEN", "from-env")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acc-env")
	t.Setenv("AUTH_TOKEN", "caller-secret")
	t.Setenv("AGGREGATOR_CALL_TIMEOUT", "2s")

	s, err := LoadSettings(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Cloudflare.APIToken)
	assert.Equal(t, "acc-env", s.Cloudflare.AccountID)
	assert.Equal(t, "caller-secret", s.Server.AuthToken)
	assert.Equal(t, 2*time.Second, s.Aggregator.CallTimeout)
}

func TestLoadSettings_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}

func TestLogSettings_ZerologLevel_FallsBackToInfo(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, LogSettings{Level: "verbose"}.ZerologLevel())
	assert.Equal(t, zerolog.InfoLevel, LogSettings{}.ZerologLevel())
	assert.Equal(t, zerolog.WarnLevel, LogSettings{Level: "warn"}.ZerologLevel())
}
