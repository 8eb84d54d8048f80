package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	ModelDir string

	AirPollutionAPIKey  string
	AirPollutionAPIURL  string
	AirPollutionTimeout time.Duration

	// Latitude/Longitude is the fixed coordinate the live endpoint reports
	// on. One coordinate per deployment is the contract; multi-location
	// would be a config schema change.
	Latitude  float64
	Longitude float64

	RequestTimeout time.Duration

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Model struct {
		Dir string `yaml:"dir"`
	} `yaml:"model"`

	AirPollutionAPI struct {
		URL     string  `yaml:"url"`
		Timeout string  `yaml:"timeout"`
		Lat     float64 `yaml:"lat"`
		Lon     float64 `yaml:"lon"`
	} `yaml:"air_pollution_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	AirPollutionAPIKey string `yaml:"air_pollution_api_key"`
}

// Defaults for the fixed live coordinate (Hyderabad).
const (
	defaultLatitude  = 17.385
	defaultLongitude = 78.4867
)

// Load reads configuration from .env (if present), config/{ENV_NAME}.yaml
// (default dev; absence falls back to defaults), and config/secrets.yaml.
// API key comes from OPENWEATHER_API_KEY env or the secrets file; an empty
// key is allowed and surfaces as an upstream error on the live path, not
// at startup.
func Load() (*Config, error) {
	// .env is a developer convenience; missing file is not an error.
	_ = godotenv.Load()

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.ModelDir = strings.TrimSpace(os.Getenv("MODEL_DIR"))
	if cfg.ModelDir == "" {
		cfg.ModelDir = fc.Model.Dir
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "model"
	}

	cfg.AirPollutionAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.AirPollutionAPIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.AirPollutionAPIKey = sec.AirPollutionAPIKey
		}
	}

	cfg.AirPollutionAPIURL = strings.TrimSpace(os.Getenv("AIR_POLLUTION_API_URL"))
	if cfg.AirPollutionAPIURL == "" {
		cfg.AirPollutionAPIURL = fc.AirPollutionAPI.URL
	}
	if cfg.AirPollutionAPIURL == "" {
		cfg.AirPollutionAPIURL = "https://api.openweathermap.org/data/2.5/air_pollution"
	}
	cfg.AirPollutionTimeout = parseDuration(fc.AirPollutionAPI.Timeout, 2*time.Second)

	cfg.Latitude = fc.AirPollutionAPI.Lat
	cfg.Longitude = fc.AirPollutionAPI.Lon
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude = defaultLatitude
		cfg.Longitude = defaultLongitude
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of configuration values.
// RequestTimeout must leave room for the upstream call; auto-adjusted if not.
func validate(cfg *Config) error {
	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return fmt.Errorf("air_pollution_api.lat must be in [-90,90], got %v", cfg.Latitude)
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return fmt.Errorf("air_pollution_api.lon must be in [-180,180], got %v", cfg.Longitude)
	}
	if cfg.RequestTimeout <= cfg.AirPollutionTimeout {
		cfg.RequestTimeout = cfg.AirPollutionTimeout + time.Second
	}
	return nil
}
