package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Postgres.
	DatabaseURL string
	BatchSize   int

	// USGS feed polling.
	USGSBaseURL    string
	USGSTimeout    time.Duration
	PollInterval   time.Duration
	PollLookback   time.Duration
	FetchLimit     int
	HistoricalAge  time.Duration
	MinMagnitude   float64

	// Kafka alert publishing (optional).
	KafkaBrokers      []string
	KafkaAlertTopic   string
	AlertMinMagnitude float64

	// SMS gateway credentials (optional; Twilio wins when both are set).
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	Fast2SMSAPIKey    string
	SMSTimeout        time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parseDurationEnv("USGS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDurationEnv("POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	pollLookback, err := parseDurationEnv("POLL_LOOKBACK", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	historicalAge, err := parseDurationEnv("HISTORICAL_AGE", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	smsTimeout, err := parseDurationEnv("SMS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDurationEnv("MAPBOX_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntEnv("BATCH_SIZE", 500)
	if err != nil {
		return nil, err
	}

	fetchLimit, err := parseIntEnv("FETCH_LIMIT", 2000)
	if err != nil {
		return nil, err
	}

	mapboxCacheSize, err := parseIntEnv("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	minMagnitude, err := parseFloatEnv("MIN_MAGNITUDE", 2.5)
	if err != nil {
		return nil, err
	}

	alertMinMagnitude, err := parseFloatEnv("ALERT_MIN_MAGNITUDE", 4.5)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		BatchSize:   batchSize,

		USGSBaseURL:   envOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1"),
		USGSTimeout:   usgsTimeout,
		PollInterval:  pollInterval,
		PollLookback:  pollLookback,
		FetchLimit:    fetchLimit,
		HistoricalAge: historicalAge,
		MinMagnitude:  minMagnitude,

		KafkaBrokers:      parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaAlertTopic:   envOrDefault("KAFKA_ALERT_TOPIC", "earthquake-alerts"),
		AlertMinMagnitude: alertMinMagnitude,

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		Fast2SMSAPIKey:    os.Getenv("FAST2SMS_API_KEY"),
		SMSTimeout:        smsTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL must be positive")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if twilioPartial(cfg) {
		return nil, errors.New("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_PHONE_NUMBER must all be set together")
	}

	return cfg, nil
}

// TwilioConfigured reports whether all three Twilio credentials are present.
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// KafkaEnabled reports whether alert publishing is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func twilioPartial(c *Config) bool {
	set := 0
	for _, v := range []string{c.TwilioAccountSID, c.TwilioAuthToken, c.TwilioPhoneNumber} {
		if v != "" {
			set++
		}
	}
	return set > 0 && set < 3
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

// parseBrokers splits a comma-separated broker list, trimming whitespace and
// dropping empty entries. An empty input yields nil (Kafka disabled).
func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return brokers
}
