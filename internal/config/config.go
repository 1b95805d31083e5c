package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Store struct {
	Driver string `yaml:"driver" toml:"driver"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

type Config struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	Workers         int           `yaml:"workers" toml:"workers"`
	PoolSize        int           `yaml:"pool_size" toml:"pool_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	// PollInterval is how often live boards refresh.
	PollInterval time.Duration `yaml:"poll_interval" toml:"poll_interval"`
	Store        Store         `yaml:"store" toml:"store"`
	SeedFile     string        `yaml:"seed_file" toml:"seed_file"`
}

func New() Config {
	return Config{
		HTTPAddr:        ":8080",
		Workers:         2,
		PoolSize:        100,
		ShutdownTimeout: time.Second * 10,
		PollInterval:    time.Second * 5,
		Store:           Store{Driver: DriverMemory},
	}
}

// Load overlays the file at path (YAML or TOML by extension) and then the
// environment on top of the defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := New()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case ".toml":
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("config %s: unsupported format", path)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SHOPFLOOR_HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("SHOPFLOOR_STORE_DRIVER"); ok {
		cfg.Store.Driver = v
	}
	if v, ok := os.LookupEnv("SHOPFLOOR_STORE_DSN"); ok {
		cfg.Store.DSN = v
	}
	if v, ok := os.LookupEnv("SHOPFLOOR_SEED_FILE"); ok {
		cfg.SeedFile = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is empty"))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("pool_size must be positive, got %d", c.PoolSize))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if c.PollInterval < 5*time.Second || c.PollInterval > 10*time.Second {
		errs = append(errs, fmt.Errorf("poll_interval must be between 5s and 10s, got %s", c.PollInterval))
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	return errors.Join(errs...)
}
