package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	HTTPServer  `yaml:"http_server"`
	Scheduling  `yaml:"scheduling"`
	Client      `yaml:"client"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Scheduling struct {
	// Timezone is the single fixed zone appointments are generated and shown in.
	Timezone     string        `yaml:"timezone" env:"SCHEDULING_TIMEZONE" env-default:"UTC"`
	WindowDays   int           `yaml:"window_days" env-default:"11"`
	DefaultAgent string        `yaml:"default_agent" env:"DEFAULT_AGENT" env-required:"true"`
	PageSize     int           `yaml:"page_size" env-default:"10"`
	LockTTL      time.Duration `yaml:"lock_ttl" env-default:"10s"`
}

type Client struct {
	BaseURL string        `yaml:"base_url" env:"CLIENT_BASE_URL" env-default:"http://localhost:8080"`
	Token   string        `yaml:"token" env:"CLIENT_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

// Location resolves Timezone.
func (s Scheduling) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	if cfg.WindowDays <= 0 {
		return nil, fmt.Errorf("scheduling.window_days must be positive, got %d", cfg.WindowDays)
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("scheduling.page_size must be positive, got %d", cfg.PageSize)
	}
	if _, err := cfg.Scheduling.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
