package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 8*time.Hour, cfg.ShiftLimit())
	assert.Equal(t, "none", cfg.Events.Broker)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.CookieSecure)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_port: 9090
shift:
  max_hours: 6
  timezone: UTC
gateway:
  timeout: 3s
events:
  broker: kafka
  kafka_brokers: [kafka-1:9092]
`), 0o600))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.ServerPort)
	assert.Equal(t, 6*time.Hour, cfg.ShiftLimit())
	assert.Equal(t, "UTC", cfg.Shift.Timezone)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "kafka", cfg.Events.Broker)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, []byte("s3cret"), cfg.JWTAccessSecret)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
