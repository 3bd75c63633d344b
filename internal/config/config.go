package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ta9ss/weather-service/internal/catalog"
)

// Config holds service configuration loaded from defaults, YAML, .env, and env.
type Config struct {
	EnvName string

	Host         string        `validate:"required"`
	Port         string        `validate:"required,numeric"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`

	RequestTimeout time.Duration `validate:"gte=0"`

	CatalogMode   catalog.Mode `validate:"oneof=static synthesized"`
	Cities        []string
	StaticEntries map[string]catalog.Entry

	StaticDir string

	RateLimitRPS   int `validate:"gte=0"`
	RateLimitBurst int `validate:"gte=0"`

	ShutdownTimeout       time.Duration `validate:"gt=0"`
	InFlightTimeout       time.Duration `validate:"gt=0"`
	InFlightCheckInterval time.Duration `validate:"gt=0"`

	LogBuffered bool
}

// Addr returns host:port for http.Server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type fileConfig struct {
	Server struct {
		Host         string `yaml:"host"`
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
	} `yaml:"server"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Catalog struct {
		Mode   string                   `yaml:"mode"`
		Cities []string                 `yaml:"cities"`
		Static map[string]catalog.Entry `yaml:"static"`
	} `yaml:"catalog"`

	Static struct {
		Dir *string `yaml:"dir"`
	} `yaml:"static"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"inflight_timeout"`
		InFlightCheckInterval string `yaml:"inflight_check_interval"`
	} `yaml:"shutdown"`

	Log struct {
		Buffered bool `yaml:"buffered"`
	} `yaml:"log"`
}

var validate = validator.New()

// Load reads configuration. Sources, lowest precedence first: built-in defaults,
// config/{ENV_NAME}.yaml (ENV_NAME defaults to dev), then environment variables,
// which a .env file in the working directory may supply. Call from project root.
// The YAML file may be absent only when ENV_NAME is unset.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := strings.TrimSpace(os.Getenv("ENV_NAME"))
	explicitEnv := env != ""
	if !explicitEnv {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")

	var fc fileConfig
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicitEnv:
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config file not found: %s", configPath)
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := fromFile(env, &fc)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := check(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromFile(env string, fc *fileConfig) *Config {
	cfg := &Config{EnvName: env}

	cfg.Host = strings.TrimSpace(fc.Server.Host)
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	cfg.Port = strings.TrimSpace(fc.Server.Port)
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	cfg.ReadTimeout = parseDuration(fc.Server.ReadTimeout, 10*time.Second)
	cfg.WriteTimeout = parseDuration(fc.Server.WriteTimeout, 10*time.Second)
	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)

	cfg.CatalogMode = catalog.Mode(strings.ToLower(strings.TrimSpace(fc.Catalog.Mode)))
	if cfg.CatalogMode == "" {
		cfg.CatalogMode = catalog.ModeStatic
	}
	cfg.Cities = fc.Catalog.Cities
	if len(cfg.Cities) == 0 {
		cfg.Cities = catalog.DefaultCities()
	}
	cfg.StaticEntries = fc.Catalog.Static
	if len(cfg.StaticEntries) == 0 {
		cfg.StaticEntries = catalog.DefaultEntries()
	}

	cfg.StaticDir = "static"
	if fc.Static.Dir != nil {
		cfg.StaticDir = strings.TrimSpace(*fc.Static.Dir)
	}

	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.InFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.InFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	cfg.LogBuffered = fc.Log.Buffered
	return cfg
}

// applyEnv applies HOST, PORT, CATALOG_MODE, STATIC_DIR, REQUEST_TIMEOUT, and RATE_LIMIT_RPS.
func applyEnv(cfg *Config) error {
	if v := getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("CATALOG_MODE"); v != "" {
		cfg.CatalogMode = catalog.Mode(strings.ToLower(v))
	}
	if v, ok := os.LookupEnv("STATIC_DIR"); ok {
		cfg.StaticDir = strings.TrimSpace(v)
	}
	if v := getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := getenv("RATE_LIMIT_RPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = n
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
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

// check runs the struct tag validation, then the checks tags cannot express.
// A positive rate limit with no burst gets a burst equal to the rate.
func check(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	port, _ := strconv.Atoi(cfg.Port)
	if port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be within 1-65535, got %s", cfg.Port)
	}
	switch cfg.CatalogMode {
	case catalog.ModeStatic:
		if len(cfg.StaticEntries) == 0 {
			return fmt.Errorf("catalog.static must list at least one city")
		}
	case catalog.ModeSynthesized:
		if len(cfg.Cities) == 0 {
			return fmt.Errorf("catalog.cities must list at least one city")
		}
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = cfg.RateLimitRPS
	}
	if cfg.InFlightTimeout > cfg.ShutdownTimeout {
		cfg.InFlightTimeout = cfg.ShutdownTimeout
	}
	return nil
}
