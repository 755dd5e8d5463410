// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Tracing
	OTLPEndpoint string // OTLP gRPC endpoint, tracing disabled when empty

	// Rate limiting
	RateLimitRPM int

	// Spoilage risk thresholds (the engine's configuration surface).
	// All temperatures in °C, humidity in % relative humidity.
	MaxSafeTempC         float64
	WarnTempC            float64
	MaxSafeHumidityPct   float64
	RiskMediumThreshold  float64 // composite score at/above which risk is MEDIUM
	RiskHighThreshold    float64 // composite score at/above which risk is HIGH
	AnomalyThreshold     float64 // spread-units at/above which a reading is anomalous
	AnomalyHighThreshold float64 // spread-units at/above which anomaly severity is HIGH
	MinBaselineSamples   int     // temperature samples required for a valid baseline
}

// Defaults for a refrigerated (cold-chain) production line.
const (
	DefaultPort      = "8080"
	DefaultEnv       = "development"
	DefaultLogLevel  = "info"
	DefaultRateLimit = 120

	DefaultMaxSafeTempC       = 5.0
	DefaultWarnTempC          = 8.0
	DefaultMaxSafeHumidityPct = 70.0
	DefaultRiskMedium         = 0.30
	DefaultRiskHigh           = 0.60
	DefaultAnomalyThreshold   = 3.0
	DefaultAnomalyHigh        = 6.0
	DefaultMinBaselineSamples = 3
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", DefaultPort),
		Env:                  getEnv("ENV", DefaultEnv),
		LogLevel:             getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:          os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:         int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimit)),
		MaxSafeTempC:         getEnvFloat("MAX_SAFE_TEMP_C", DefaultMaxSafeTempC),
		WarnTempC:            getEnvFloat("WARN_TEMP_C", DefaultWarnTempC),
		MaxSafeHumidityPct:   getEnvFloat("MAX_SAFE_HUMIDITY_PCT", DefaultMaxSafeHumidityPct),
		RiskMediumThreshold:  getEnvFloat("RISK_MEDIUM_THRESHOLD", DefaultRiskMedium),
		RiskHighThreshold:    getEnvFloat("RISK_HIGH_THRESHOLD", DefaultRiskHigh),
		AnomalyThreshold:     getEnvFloat("ANOMALY_THRESHOLD", DefaultAnomalyThreshold),
		AnomalyHighThreshold: getEnvFloat("ANOMALY_HIGH_THRESHOLD", DefaultAnomalyHigh),
		MinBaselineSamples:   int(getEnvInt64("MIN_BASELINE_SAMPLES", DefaultMinBaselineSamples)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.WarnTempC < c.MaxSafeTempC {
		return fmt.Errorf("WARN_TEMP_C (%.1f) must be >= MAX_SAFE_TEMP_C (%.1f)", c.WarnTempC, c.MaxSafeTempC)
	}
	if c.RiskHighThreshold < c.RiskMediumThreshold {
		return fmt.Errorf("RISK_HIGH_THRESHOLD (%.2f) must be >= RISK_MEDIUM_THRESHOLD (%.2f)", c.RiskHighThreshold, c.RiskMediumThreshold)
	}
	if c.AnomalyHighThreshold < c.AnomalyThreshold {
		return fmt.Errorf("ANOMALY_HIGH_THRESHOLD (%.2f) must be >= ANOMALY_THRESHOLD (%.2f)", c.AnomalyHighThreshold, c.AnomalyThreshold)
	}
	if c.MinBaselineSamples < 1 {
		return fmt.Errorf("MIN_BASELINE_SAMPLES must be at least 1")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
