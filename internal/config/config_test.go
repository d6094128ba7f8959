package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "https://api.hubapi.com", cfg.HubSpot.BaseURL)
	assert.Equal(t, 30, cfg.HubSpot.TimeoutSeconds)
	assert.Equal(t, 100, cfg.HubSpot.DealLimit)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 50, cfg.Sync.EmailLimit)
	assert.Equal(t, 90, cfg.Sync.CalendarLookbackDays)
	assert.Equal(t, 30, cfg.Sync.FetchTimeoutSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "us-west-2", cfg.Archive.AWSRegion)
	assert.Equal(t, "data/renewals.csv", cfg.Overrides.CSVPath)
}

func TestLoad_ExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `server:
  port: 9999
  host: 10.0.0.5
sync:
  email_limit: 10
  calendar_lookback_days: 7
  fetch_timeout_seconds: 5
hubspot:
  deal_limit: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Sync.EmailLimit)
	assert.Equal(t, 7, cfg.Sync.CalendarLookbackDays)
	assert.Equal(t, 5, cfg.Sync.FetchTimeoutSeconds)
	assert.Equal(t, 25, cfg.HubSpot.DealLimit)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	t.Setenv("HUBSPOT_ACCESS_TOKEN", "pat-test-123")
	t.Setenv("GOOGLE_CLIENT_ID", "cid")
	t.Setenv("GOOGLE_CLIENT_SECRET", "csecret")
	t.Setenv("GOOGLE_REFRESH_TOKEN", "rtoken")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("ARCHIVE_S3_BUCKET", "renewal-snapshots")
	t.Setenv("OVERRIDES_CSV_PATH", "/data/placements.csv")

	cfg, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "pat-test-123", cfg.HubSpot.AccessToken)
	assert.True(t, cfg.HubSpot.Enabled())
	assert.True(t, cfg.Google.Enabled())
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.True(t, cfg.OpenAI.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "renewal-snapshots", cfg.Archive.S3Bucket)
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "/data/placements.csv", cfg.Overrides.CSVPath)
}

func TestConnectorEnabled(t *testing.T) {
	assert.False(t, HubSpotConfig{}.Enabled())
	assert.True(t, HubSpotConfig{AccessToken: "pat"}.Enabled())

	assert.False(t, GoogleConfig{ClientID: "a", ClientSecret: "b"}.Enabled())
	assert.True(t, GoogleConfig{ClientID: "a", ClientSecret: "b", RefreshToken: "c"}.Enabled())
}

func TestTimeoutHelpers(t *testing.T) {
	assert.Equal(t, "45s", HubSpotConfig{TimeoutSeconds: 45}.Timeout().String())
	assert.Equal(t, "30s", SyncConfig{FetchTimeoutSeconds: 30}.FetchTimeout().String())
}
