package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string
}

type OrderAPIConfig struct {
	BaseURL string
	Token   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Config struct {
	App      AppConfig
	OrderAPI OrderAPIConfig
	Redis    RedisConfig
}

// NewConfig reads configuration from the environment, loading .env first when
// present. REDIS_ADDR may be empty: the processes then fall back to in-memory
// cart and settings storage.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Port = os.Getenv("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	cfg.OrderAPI.BaseURL = os.Getenv("ORDER_API_URL")
	if cfg.OrderAPI.BaseURL == "" {
		return nil, fmt.Errorf("ORDER_API_URL is required")
	}
	cfg.OrderAPI.Token = os.Getenv("ORDER_API_TOKEN")

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		cfg.Redis.DB = db
	}

	return cfg, nil
}
