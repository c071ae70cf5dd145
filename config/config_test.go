package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "courierdesk"
kafka:
  host: "localhost"
  port: 9092
redis:
  host: "localhost"
  port: 6379
smtp:
  host: "smtp.example.com"
  port: 587
  from: "noreply@courierdesk.io"
courierdesk:
  http_addr: ":8080"
  kafka_consumer_group: "courier-notifier"
  track_cache_ttl_seconds: 120
  session_ttl_hours: 720
  strict_transitions: false
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "postgres://u:p@localhost:5432/courierdesk?sslmode=disable", cfg.Database.ConnString())
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, ":8080", cfg.CourierDesk.HTTPAddr)
	require.Equal(t, 120, cfg.CourierDesk.TrackCacheTTLSeconds)
	require.False(t, cfg.CourierDesk.StrictTransitions)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
