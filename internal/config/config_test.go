package config_test

import (
	"testing"
	"time"

	"github.com/alkime/stretch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8*time.Second, cfg.CompareTimeout)
	assert.Equal(t, 15*time.Second, cfg.PoseWaitTime)
	assert.Equal(t, 500*time.Millisecond, cfg.NextStepWaitTime)
	assert.Equal(t, 400*time.Millisecond, cfg.DescriptionDebounce)
	assert.Equal(t, 3*time.Second, cfg.CompletionDelay)
	assert.Zero(t, cfg.RetryCooldown)
	assert.Equal(t, 3, cfg.MaxSets)
	assert.Equal(t, config.TTSGoogle, cfg.TTSProvider)
	assert.Equal(t, "ko-KR", cfg.TTSLanguage)
	assert.InDelta(t, 60.0, cfg.IngestRate, 0)
	assert.Equal(t, 30, cfg.IngestBurst)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", config.EnvProduction)
	t.Setenv("POSE_WAIT_TIME", "5s")
	t.Setenv("MAX_SETS", "1")
	t.Setenv("TTS_PROVIDER", "openai")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Second, cfg.PoseWaitTime)
	assert.Equal(t, 1, cfg.MaxSets)
	assert.Equal(t, config.TTSOpenAI, cfg.TTSProvider)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TTS_PROVIDER", "polly")
	t.Setenv("MAX_SETS", "0")

	_, err := config.LoadConfig()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TTS_PROVIDER")
	assert.Contains(t, err.Error(), "MAX_SETS")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			APIBaseURL:     "http://localhost:8000/api",
			CompareTimeout: time.Second,
			LoadTimeout:    time.Second,
			PoseWaitTime:   time.Second,
			MaxSets:        3,
			TTSProvider:    config.TTSNone,
		}
	}

	tests := []struct {
		name        string
		mutate      func(*config.Config)
		expectError string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "zero compare timeout", mutate: func(c *config.Config) { c.CompareTimeout = 0 }, expectError: "COMPARE_TIMEOUT must be positive"},
		{name: "negative cooldown", mutate: func(c *config.Config) { c.RetryCooldown = -time.Second }, expectError: "RETRY_COOLDOWN must not be negative"},
		{name: "ingest throttling disabled", mutate: func(c *config.Config) { c.IngestRate, c.IngestBurst = 0, 0 }},
		{name: "negative ingest rate", mutate: func(c *config.Config) { c.IngestRate = -1 }, expectError: "INGEST_RATE"},
		{name: "ingest rate without burst", mutate: func(c *config.Config) { c.IngestRate, c.IngestBurst = 10, 0 }, expectError: "INGEST_BURST"},
		{name: "missing base url", mutate: func(c *config.Config) { c.APIBaseURL = "" }, expectError: "API_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBuildCSP(t *testing.T) {
	assert.Contains(t, config.BuildCSP("strict"), "object-src 'none'")
	assert.Contains(t, config.BuildCSP("relaxed"), "'unsafe-inline'")
}
