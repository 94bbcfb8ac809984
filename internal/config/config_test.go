package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROCESSOR_URL", DefaultProcessorURL)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DefaultProcessorURL, cfg.ProcessorURL)
	assert.Equal(t, time.Duration(0), cfg.ProcessorTimeout)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 200, cfg.MaxSessions)
	assert.False(t, cfg.Breaker.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadEnvironmentAndFlags(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PROCESSOR_URL", "http://processor.internal:5001/process_document")
	t.Setenv("PROCESSOR_TIMEOUT", "45s")
	t.Setenv("BREAKER_ENABLED", "true")
	t.Setenv("SESSION_TTL", "10m")

	cfg, err := Load([]string{"-port", "9100", "-env", "production"})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://processor.internal:5001/process_document", cfg.ProcessorURL)
	assert.Equal(t, 45*time.Second, cfg.ProcessorTimeout)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:               "8080",
			ProcessorURL:       DefaultProcessorURL,
			MaxUploadSizeMB:    16,
			RateLimitPerMinute: 10,
			SessionTTL:         time.Minute,
			MaxSessions:        10,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "relative url", mutate: func(c *Config) { c.ProcessorURL = "/process_document" }, wantErr: "PROCESSOR_URL"},
		{name: "unsupported scheme", mutate: func(c *Config) { c.ProcessorURL = "ftp://host/x" }, wantErr: "PROCESSOR_URL"},
		{name: "zero upload size", mutate: func(c *Config) { c.MaxUploadSizeMB = 0 }, wantErr: "MAX_UPLOAD_SIZE_MB"},
		{name: "no session cap", mutate: func(c *Config) { c.MaxSessions = 0 }, wantErr: "MAX_SESSIONS"},
		{name: "negative timeout", mutate: func(c *Config) { c.ProcessorTimeout = -time.Second }, wantErr: "PROCESSOR_TIMEOUT"},
		{name: "bad breaker ratio", mutate: func(c *Config) {
			c.Breaker = BreakerConfig{Enabled: true, FailureRatio: 1.5}
		}, wantErr: "BREAKER_FAILURE_RATIO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
