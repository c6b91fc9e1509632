package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr())
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout())
	assert.Equal(t, "sqlite", cfg.Client.HistoryBackend)
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[app]
port = 6000

[rabbitmq]
enabled = false

[websocket]
allowed_origins = ["http://localhost:3000"]

[client]
user_id = 7
history_backend = "redis"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_PORT", "7000")
	t.Setenv("CHAT_HTTP_ONLY", "true")
	t.Setenv("NLP_MIN_CONFIDENCE", "0.4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.App.Port)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.WebSocket.AllowedOrigins)
	assert.Equal(t, uint(7), cfg.Client.UserID)
	assert.Equal(t, "redis", cfg.Client.HistoryBackend)
	assert.True(t, cfg.Client.HTTPOnly)
	assert.InDelta(t, 0.4, cfg.NLP.MinConfidence, 1e-9)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport = "), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
