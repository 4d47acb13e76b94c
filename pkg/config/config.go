package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"seatwatch/pkg/logger"
)

type Config struct {
	APIBaseURL string
	StreamPath string

	UserID    string
	UserEmail string

	HoldTTL      time.Duration
	TickInterval time.Duration

	RequestTimeout time.Duration

	StreamReconnect      bool
	StreamBackoffInitial time.Duration
	StreamBackoffMax     time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		APIBaseURL: getEnvStr(EnvAPIBaseURL, DefaultAPIBaseURL),
		StreamPath: getEnvStr(EnvStreamPath, DefaultStreamPath),

		UserID:    getEnvStr(EnvUserID, ""),
		UserEmail: getEnvStr(EnvUserEmail, ""),

		HoldTTL:      getEnvDuration(EnvHoldTTL, DefaultHoldTTL),
		TickInterval: getEnvDuration(EnvTickInterval, DefaultTickInterval),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),

		StreamReconnect:      getEnvBool(EnvStreamReconnect, DefaultStreamReconnect),
		StreamBackoffInitial: getEnvDuration(EnvStreamBackoffInitial, DefaultStreamBackoffInitial),
		StreamBackoffMax:     getEnvDuration(EnvStreamBackoffMax, DefaultStreamBackoffMax),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// StreamURL is the absolute event-stream endpoint.
func (cfg *Config) StreamURL() string {
	return strings.TrimRight(cfg.APIBaseURL, "/") + cfg.StreamPath
}

func (cfg *Config) Validate() error {
	var errs []string

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("APIBaseURL must be an absolute URL, got: %s", cfg.APIBaseURL))
	}
	if !strings.HasPrefix(cfg.StreamPath, "/") {
		errs = append(errs, fmt.Sprintf("StreamPath must start with '/', got: %s", cfg.StreamPath))
	}

	if cfg.HoldTTL <= 0 {
		errs = append(errs, fmt.Sprintf("HoldTTL must be positive, got: %s", cfg.HoldTTL))
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("TickInterval must be positive, got: %s", cfg.TickInterval))
	}
	if cfg.TickInterval > cfg.HoldTTL {
		errs = append(errs, fmt.Sprintf("TickInterval (%s) must not exceed HoldTTL (%s)", cfg.TickInterval, cfg.HoldTTL))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.StreamBackoffInitial <= 0 {
		errs = append(errs, fmt.Sprintf("StreamBackoffInitial must be positive, got: %s", cfg.StreamBackoffInitial))
	}
	if cfg.StreamBackoffMax < cfg.StreamBackoffInitial {
		errs = append(errs, fmt.Sprintf("StreamBackoffMax (%s) must be >= StreamBackoffInitial (%s)", cfg.StreamBackoffMax, cfg.StreamBackoffInitial))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"api_base_url", cfg.APIBaseURL,
		"stream_path", cfg.StreamPath,
		"user_id_set", cfg.UserID != "",
		"user_email_set", cfg.UserEmail != "",
		"hold_ttl", cfg.HoldTTL,
		"tick_interval", cfg.TickInterval,
		"request_timeout", cfg.RequestTimeout,
		"stream_reconnect", cfg.StreamReconnect,
		"stream_backoff_initial", cfg.StreamBackoffInitial,
		"stream_backoff_max", cfg.StreamBackoffMax,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
