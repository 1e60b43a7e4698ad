package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Server struct {
		Addr               string `yaml:"addr" validate:"required"`
		ReadTimeoutSeconds int    `yaml:"read_timeout_seconds" validate:"gte=0"`
	} `yaml:"server"`

	Backend struct {
		BaseURL         string  `yaml:"base_url" validate:"required,url"`
		APIKey          string  `yaml:"api_key"`
		TimeoutSeconds  int     `yaml:"timeout_seconds" validate:"gte=0"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds" validate:"gte=0"`
		RatePerSecond   float64 `yaml:"rate_per_second" validate:"gte=0"`
		Burst           int     `yaml:"burst" validate:"gte=0"`
	} `yaml:"backend"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
	} `yaml:"redis"`

	Venue Venue `yaml:"venue"`

	Admin struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"admin"`

	Logging struct {
		Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port" validate:"gte=0,lte=65535"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port" validate:"gte=0,lte=65535"`
	} `yaml:"monitoring"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the YAML config at path (DefaultPath when empty). A .env file in the
// working directory, if present, is loaded first so ${VAR} placeholders resolve.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates raw YAML.
func Parse(data []byte) (*Config, error) {
	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	c.Venue.applyDefaults()
}

// Validate checks struct tags and the venue settings that tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Venue.Validate()
}

func (c *Config) ReadTimeout() time.Duration {
	if c.Server.ReadTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Backend.CacheTTLSeconds) * time.Second
}

// BackendRate returns requests per second and burst for backend calls.
func (c *Config) BackendRate() (float64, int) {
	r, b := c.Backend.RatePerSecond, c.Backend.Burst
	if r <= 0 {
		r = 10
	}
	if b <= 0 {
		b = 20
	}
	return r, b
}
