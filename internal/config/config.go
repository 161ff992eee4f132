// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	HotPlace    HotPlaceConfig
	Media       MediaConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string

	// Per-IP limit on write endpoints; zero disables it
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL                string
	MaxReconnects      int
	ReconnectWait      time.Duration
	ConnectTimeout     time.Duration
	ObservationSubject string
	SearchSubject      string
}

// HotPlaceConfig holds ranking configuration
type HotPlaceConfig struct {
	RadiusMeters        float64
	DensityWindow       time.Duration
	ActivityWindow      time.Duration
	InterestWindow      time.Duration
	WeightDensity       float64
	WeightActivity      float64
	WeightInterest      float64
	RefreshInterval     time.Duration
	ObservationLookback time.Duration
	SearchLookback      time.Duration
	EventsTopic         string
	ShardByRegion       bool
	MaxConcurrentShards int
}

// WeightSum returns the sum of the composite score weights
func (c HotPlaceConfig) WeightSum() float64 {
	return c.WeightDensity + c.WeightActivity + c.WeightInterest
}

// MediaConfig holds media URL resolution configuration
type MediaConfig struct {
	BaseURL string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),

			RateLimitRequests: getEnvAsInt("SERVER_RATE_LIMIT_REQUESTS", 120),
			RateLimitWindow:   getEnvAsDuration("SERVER_RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "livejourney"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:                getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:      getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:      getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout:     getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			ObservationSubject: getEnv("NATS_OBSERVATION_SUBJECT", "observation.created"),
			SearchSubject:      getEnv("NATS_SEARCH_SUBJECT", "search.performed"),
		},
		HotPlace: HotPlaceConfig{
			RadiusMeters:        getEnvAsFloat("HOTPLACE_RADIUS_METERS", 300),
			DensityWindow:       getEnvAsDuration("HOTPLACE_DENSITY_WINDOW", 10*time.Minute),
			ActivityWindow:      getEnvAsDuration("HOTPLACE_ACTIVITY_WINDOW", 60*time.Minute),
			InterestWindow:      getEnvAsDuration("HOTPLACE_INTEREST_WINDOW", 15*time.Minute),
			WeightDensity:       getEnvAsFloat("HOTPLACE_WEIGHT_DENSITY", 0.4),
			WeightActivity:      getEnvAsFloat("HOTPLACE_WEIGHT_ACTIVITY", 0.4),
			WeightInterest:      getEnvAsFloat("HOTPLACE_WEIGHT_INTEREST", 0.2),
			RefreshInterval:     getEnvAsDuration("HOTPLACE_REFRESH_INTERVAL", 30*time.Second),
			ObservationLookback: getEnvAsDuration("HOTPLACE_OBSERVATION_LOOKBACK", 48*time.Hour),
			SearchLookback:      getEnvAsDuration("HOTPLACE_SEARCH_LOOKBACK", 24*time.Hour),
			EventsTopic:         getEnv("HOTPLACE_EVENTS_TOPIC", "hotplace"),
			ShardByRegion:       getEnvAsBool("HOTPLACE_SHARD_BY_REGION", false),
			MaxConcurrentShards: getEnvAsInt("HOTPLACE_MAX_CONCURRENT_SHARDS", 8),
		},
		Media: MediaConfig{
			BaseURL: getEnv("MEDIA_BASE_URL", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	var errs []error

	if config.Server.RateLimitRequests > 0 && config.Server.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate limit window must be positive when rate limiting is enabled"))
	}
	if config.HotPlace.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("refresh interval must be positive, got %s", config.HotPlace.RefreshInterval))
	}
	if config.HotPlace.ObservationLookback <= 0 || config.HotPlace.SearchLookback <= 0 {
		errs = append(errs, fmt.Errorf("lookbacks must be positive"))
	}
	if config.HotPlace.EventsTopic == "" {
		errs = append(errs, fmt.Errorf("events topic must be set"))
	}
	if config.HotPlace.MaxConcurrentShards < 1 {
		errs = append(errs, fmt.Errorf("max concurrent shards must be at least 1"))
	}

	return errors.Join(errs...)
}

// Warnings reports settings that are accepted but probably unintended
func (c Config) Warnings() []string {
	var warnings []string

	if sum := c.HotPlace.WeightSum(); math.Abs(sum-1) > 1e-9 {
		warnings = append(warnings, fmt.Sprintf("hot place weights sum to %.3f, scores may leave [0,1]", sum))
	}
	if c.HotPlace.ActivityWindow < c.HotPlace.DensityWindow {
		warnings = append(warnings, "activity window is shorter than density window")
	}

	return warnings
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
