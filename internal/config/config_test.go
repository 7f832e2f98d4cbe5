package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yamlBody string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rscheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
threads:
  ping_gw:
    class: tcp
    host: 10.0.0.1
    port: 80
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, defaultHTTPAddress, cfg.HTTP.Address)
	assert.Equal(t, defaultHTTPLocation, cfg.HTTP.Location)
	assert.Equal(t, defaultQueryTimeout, cfg.HTTP.QueryTimeout)
	assert.Equal(t, defaultQueryCacheTTL, cfg.HTTP.QueryCacheTTL)
	require.Len(t, cfg.Checks, 1)
	assert.Equal(t, "ping_gw", cfg.Checks[0].Name)
	assert.Equal(t, defaultInterval, cfg.Checks[0].Interval)
	assert.Equal(t, defaultTimeout, cfg.Checks[0].Timeout)
	assert.True(t, cfg.Checks[0].ErrorMessage)
	assert.False(t, cfg.Checks[0].StatusMessage)
}

func TestLoadOverridesHTTPSection(t *testing.T) {
	path := writeConfig(t, `
http:
  address: 127.0.0.1:9000
  location: /status
  keep_alive: true
  query_timeout: 500ms
  query_cache_ttl: 2s
threads:
  c1:
    class: tcp
    host: 10.0.0.1
    port: 80
    interval: 5s
    timeout: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Address)
	assert.Equal(t, "/status", cfg.HTTP.Location)
	assert.True(t, cfg.HTTP.KeepAlive)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.QueryTimeout)
	assert.Equal(t, 2*time.Second, cfg.HTTP.QueryCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.Checks[0].Interval)
	assert.Equal(t, 2*time.Second, cfg.Checks[0].Timeout)
}

func TestLoadRejectsUnknownClass(t *testing.T) {
	path := writeConfig(t, `
threads:
  bad:
    class: not_a_real_class
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingClass(t *testing.T) {
	path := writeConfig(t, `
threads:
  bad:
    interval: 3s
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	path := writeConfig(t, `
threads:
  bad:
    class: tcp
    host: 10.0.0.1
    port: 80
    interval: 0s
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseDurationAcceptsBareSeconds(t *testing.T) {
	d, err := parseDuration("2.5", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestParseDurationEmptyUsesDefault(t *testing.T) {
	d, err := parseDuration("", 7*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, d)
}

func TestParseDurationInvalid(t *testing.T) {
	_, err := parseDuration("not-a-duration", time.Second)
	assert.Error(t, err)
}
