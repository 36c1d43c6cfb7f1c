// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment represents the development environment.
	EnvDevelopment = "development"
)

// Speech providers.
const (
	TTSGoogle = "google"
	TTSOpenAI = "openai"
	TTSNone   = "none"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env       string `envconfig:"ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"8080"`
	StaticDir string `envconfig:"STATIC_DIR"`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Landmark ingest throttling, in requests per second. Zero disables it.
	IngestRate  float64 `envconfig:"INGEST_RATE" default:"60"`
	IngestBurst int     `envconfig:"INGEST_BURST" default:"30"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Backend settings
	APIBaseURL     string        `envconfig:"API_BASE_URL" default:"https://v-tune-be.onrender.com/api"`
	CompareTimeout time.Duration `envconfig:"COMPARE_TIMEOUT" default:"8s"`
	LoadTimeout    time.Duration `envconfig:"LOAD_TIMEOUT" default:"15s"`

	// Session timing
	PoseWaitTime        time.Duration `envconfig:"POSE_WAIT_TIME" default:"15s"`
	NextStepWaitTime    time.Duration `envconfig:"NEXT_STEP_WAIT_TIME" default:"500ms"`
	DescriptionDebounce time.Duration `envconfig:"DESCRIPTION_DEBOUNCE" default:"400ms"`
	CompletionDelay     time.Duration `envconfig:"COMPLETION_DELAY" default:"3s"`
	RetryCooldown       time.Duration `envconfig:"RETRY_COOLDOWN" default:"0s"`
	MaxSets             int           `envconfig:"MAX_SETS" default:"3"`

	// Speech settings
	TTSProvider     string `envconfig:"TTS_PROVIDER" default:"google"`
	TTSLanguage     string `envconfig:"TTS_LANGUAGE" default:"ko-KR"`
	TTSVoice        string `envconfig:"TTS_VOICE"`
	GoogleTTSAPIKey string `envconfig:"GOOGLE_TTS_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	positive := map[string]time.Duration{
		"COMPARE_TIMEOUT": c.CompareTimeout,
		"LOAD_TIMEOUT":    c.LoadTimeout,
		"POSE_WAIT_TIME":  c.PoseWaitTime,
	}
	for name, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	nonNegative := map[string]time.Duration{
		"NEXT_STEP_WAIT_TIME":  c.NextStepWaitTime,
		"DESCRIPTION_DEBOUNCE": c.DescriptionDebounce,
		"COMPLETION_DELAY":     c.CompletionDelay,
		"RETRY_COOLDOWN":       c.RetryCooldown,
	}
	for name, d := range nonNegative {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}

	if c.IngestRate < 0 {
		errs = append(errs, fmt.Errorf("INGEST_RATE must not be negative, got %g", c.IngestRate))
	}
	if c.IngestRate > 0 && c.IngestBurst < 1 {
		errs = append(errs, fmt.Errorf("INGEST_BURST must be at least 1, got %d", c.IngestBurst))
	}

	if c.MaxSets < 1 {
		errs = append(errs, fmt.Errorf("MAX_SETS must be at least 1, got %d", c.MaxSets))
	}

	switch c.TTSProvider {
	case TTSGoogle, TTSOpenAI, TTSNone:
	default:
		errs = append(errs, fmt.Errorf("unknown TTS_PROVIDER %q (want google, openai or none)", c.TTSProvider))
	}

	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		// Production CSP
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self' https://cdn.jsdelivr.net; " +
			"connect-src 'self'; " +
			"media-src 'self' blob:; " +
			"img-src 'self' data: blob:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; " +
		"connect-src 'self' ws: http://localhost:*; " +
		"media-src 'self' blob:; " +
		"img-src 'self' data: blob:"
}
