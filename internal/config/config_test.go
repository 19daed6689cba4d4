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
	os.Clearenv()

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.NotEmpty(t, cfg.StorePath)
	assert.Equal(t, "backoffice:", cfg.RedisPrefix)
	assert.Equal(t, "backoffice_events", cfg.KafkaTopic)
	assert.Equal(t, ":8000", cfg.DevAPIAddr)
	assert.Zero(t, cfg.Timeout())
	assert.Nil(t, cfg.Brokers())
}

func TestLoad_EnvFileAndOverride(t *testing.T) {
	os.Clearenv()

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_URL=https://api.example.com\nSTORE_DRIVER=memory\nHTTP_TIMEOUT=3s\n"), 0o600))
	t.Setenv("STORE_DRIVER", "REDIS")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "relative api url", env: map[string]string{"API_URL": "/api"}},
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "cookie"}},
		{name: "postgres without dsn", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "bad timeout", env: map[string]string{"HTTP_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
