package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultProcessorURL is the address of a locally running document
// processing service.
const DefaultProcessorURL = "http://localhost:5001/process_document"

type Config struct {
	// Server
	Port         string
	Env          string // development, production
	LogLevel     string // debug, info, warn, error; empty picks by Env
	WriteTimeout time.Duration

	// Document processing service
	ProcessorURL     string
	ProcessorTimeout time.Duration // zero disables the client timeout

	// Circuit breaker around the processing service
	Breaker BreakerConfig

	// Limits
	MaxUploadSizeMB    int
	RateLimitPerMinute int

	// Form sessions
	SessionTTL    time.Duration
	MaxSessions   int
	SecureCookies bool
}

type BreakerConfig struct {
	Enabled      bool
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
}

// Load reads configuration from a .env file (if present), the environment
// and finally the given command-line arguments.
func Load(args []string) (*Config, error) {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
		WriteTimeout:     getEnvDuration("WRITE_TIMEOUT", 5*time.Minute),
		ProcessorURL:     getEnv("PROCESSOR_URL", DefaultProcessorURL),
		ProcessorTimeout: getEnvDuration("PROCESSOR_TIMEOUT", 0),
		Breaker: BreakerConfig{
			Enabled:      getEnvBool("BREAKER_ENABLED", false),
			MinRequests:  uint32(getEnvInt("BREAKER_MIN_REQUESTS", 5)),
			FailureRatio: getEnvFloat("BREAKER_FAILURE_RATIO", 0.6),
			OpenTimeout:  getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		},
		MaxUploadSizeMB:    getEnvInt("MAX_UPLOAD_SIZE_MB", 16),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		SessionTTL:         getEnvDuration("SESSION_TTL", 30*time.Minute),
		MaxSessions:        getEnvInt("MAX_SESSIONS", 200),
		SecureCookies:      getEnvBool("SECURE_COOKIES", false),
	}

	// Flags override the environment
	fs := flag.NewFlagSet("claimdesk", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "Server port")
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Environment (development, production)")
	fs.StringVar(&cfg.ProcessorURL, "processor-url", cfg.ProcessorURL, "Document processing endpoint")
	fs.DurationVar(&cfg.ProcessorTimeout, "processor-timeout", cfg.ProcessorTimeout, "Timeout for processing requests (0 = none)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.ProcessorURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("PROCESSOR_URL must be an absolute http(s) URL, got %q", c.ProcessorURL)
	}

	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}

	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}

	if c.ProcessorTimeout < 0 {
		return fmt.Errorf("PROCESSOR_TIMEOUT must not be negative")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive")
	}

	if c.Breaker.Enabled && (c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1) {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
