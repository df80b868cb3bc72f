package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-resolver/internal/common"
	"github.com/i474232898/weather-resolver/internal/weather"
)

// PlaceholderAPIKey is sent upstream when no key is configured.
const PlaceholderAPIKey = "DEMO_KEY"

type AppConfig struct {
	Port string

	// Provider selects the single upstream adapter (see providers.New).
	Provider string

	// HTTPTimeout bounds each inbound request including its upstream calls.
	HTTPTimeout time.Duration

	BreakerMaxFailures int
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	GoogleAPIKey  string
	GoogleCountry string

	// Cities resolved periodically to report upstream health.
	ProbeCities     []string
	ProbeInterval   time.Duration
	ProbeMaxHistory int           // max number of outcomes per city (0 = unlimited)
	ProbeMaxAge     time.Duration // max age of outcomes (0 = unlimited)

	// StaticDir, when set, is served as the web client.
	StaticDir string

	// Defaults used when the per-call environment leaves them unset.
	DefaultSettings weather.Settings
}

// fileConfig is the optional YAML file layout. Environment variables win.
type fileConfig struct {
	Port        string `yaml:"port"`
	Provider    string `yaml:"provider"`
	HTTPTimeout string `yaml:"http_timeout"`
	StaticDir   string `yaml:"static_dir"`
	Synthetic   bool   `yaml:"synthetic"`
	APIKey      string `yaml:"api_key"`

	Breaker struct {
		MaxFailures int    `yaml:"max_failures"`
		Interval    string `yaml:"interval"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"breaker"`

	Google struct {
		APIKey  string `yaml:"api_key"`
		Country string `yaml:"country"`
	} `yaml:"google"`

	Probe struct {
		Cities     []string `yaml:"cities"`
		Interval   string   `yaml:"interval"`
		MaxHistory int      `yaml:"max_history"`
		MaxAge     string   `yaml:"max_age"`
	} `yaml:"probe"`
}

// Load reads configuration from an optional YAML file and the environment
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	var fc fileConfig
	if path := os.Getenv("WEATHER_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", firstNonEmpty(fc.Port, "4000"))
	cfg.Provider = getenvDefault("WEATHER_PROVIDER", firstNonEmpty(fc.Provider, "openmeteo"))
	cfg.StaticDir = getenvDefault("STATIC_DIR", fc.StaticDir)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", firstNonEmpty(fc.HTTPTimeout, "10s")); err != nil {
		return nil, err
	}

	// The breaker is opt-in; 0 leaves every resolve independent of earlier ones.
	cfg.BreakerMaxFailures = getenvInt("BREAKER_MAX_FAILURES", fc.Breaker.MaxFailures)
	if cfg.BreakerMaxFailures < 0 {
		return nil, fmt.Errorf("invalid BREAKER_MAX_FAILURES: %d", cfg.BreakerMaxFailures)
	}
	if cfg.BreakerInterval, err = getenvDuration("BREAKER_INTERVAL", firstNonEmpty(fc.Breaker.Interval, "1m")); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", firstNonEmpty(fc.Breaker.Timeout, "2m")); err != nil {
		return nil, err
	}

	cfg.GoogleAPIKey = getenvDefault("GOOGLE_GEOCODER_API_KEY", fc.Google.APIKey)
	cfg.GoogleCountry = getenvDefault("GOOGLE_GEOCODER_COUNTRY", fc.Google.Country)

	cfg.ProbeCities = fc.Probe.Cities
	if v := os.Getenv("PROBE_CITIES"); v != "" {
		cfg.ProbeCities = common.SplitList(v)
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", firstNonEmpty(fc.Probe.Interval, "15m")); err != nil {
		return nil, err
	}
	maxHistory := 96 // roughly 24h at 15-minute intervals
	if fc.Probe.MaxHistory > 0 {
		maxHistory = fc.Probe.MaxHistory
	}
	cfg.ProbeMaxHistory = getenvInt("PROBE_MAX_HISTORY", maxHistory)
	if cfg.ProbeMaxAge, err = getenvDuration("PROBE_MAX_AGE", firstNonEmpty(fc.Probe.MaxAge, "24h")); err != nil {
		return nil, err
	}

	cfg.DefaultSettings = weather.Settings{
		Synthetic: fc.Synthetic,
		APIKey:    fc.APIKey,
	}

	return cfg, nil
}

// RuntimeSettings returns a SettingsFunc that re-reads USE_FAKE_WEATHER and
// the API key from the environment on every call.
func RuntimeSettings(defaults weather.Settings) weather.SettingsFunc {
	return func() weather.Settings {
		s := defaults
		if v, ok := os.LookupEnv("USE_FAKE_WEATHER"); ok {
			s.Synthetic = common.IsTruthy(v)
		}
		if v := firstNonEmpty(os.Getenv("WEATHER_API_KEY"), os.Getenv("OPENWEATHER_API_KEY")); v != "" {
			s.APIKey = v
		}
		if s.APIKey == "" {
			s.APIKey = PlaceholderAPIKey
		}
		return s
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
