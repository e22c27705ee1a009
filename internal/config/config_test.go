package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8084, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data.csv", cfg.Data.File)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".cache", cfg.Cache.Dir)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, 5, cfg.Report.TopCustomers)
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"http://localhost:8084"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "localhost:8084", cfg.Address())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("CSV_FILE", "orders.xlsx")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("REPORT_TOP_CUSTOMERS", "10")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Address())
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "orders.xlsx", cfg.Data.File)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 10, cfg.Report.TopCustomers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"port not a number", "SERVER_PORT", "abc"},
		{"zero read timeout", "SERVER_READ_TIMEOUT", "0s"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"zero top customers", "REPORT_TOP_CUSTOMERS", "0"},
		{"negative rate limit", "SECURITY_RATE_LIMIT_RPS", "-1"},
		{"tiny upload limit", "UPLOAD_MAX_BYTES", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
