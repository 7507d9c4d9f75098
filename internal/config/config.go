package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	CatalogPath     string
	StaticDir       string
	DatabaseURL     string
	SQLitePath      string
	RedisURL        string
	NATSURL         string
	EventsChannel   string
	RateLimitMax    int
	RateLimitWindow time.Duration
	HistoryLimit    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MERGINGTON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Mergington High School API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8000")
	v.SetDefault("static.dir", "./static")
	v.SetDefault("sqlite.path", "file::memory:?cache=shared")
	v.SetDefault("events.channel", "mergington:activities")
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("history.limit", 50)

	windowString := v.GetString("rate_limit.window")
	if windowString == "" {
		windowString = "1m"
	}

	window, err := time.ParseDuration(windowString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		CatalogPath:     strings.TrimSpace(v.GetString("catalog.path")),
		StaticDir:       v.GetString("static.dir"),
		DatabaseURL:     strings.TrimSpace(v.GetString("database.url")),
		SQLitePath:      v.GetString("sqlite.path"),
		RedisURL:        strings.TrimSpace(v.GetString("redis.url")),
		NATSURL:         strings.TrimSpace(v.GetString("nats.url")),
		EventsChannel:   v.GetString("events.channel"),
		RateLimitMax:    v.GetInt("rate_limit.max"),
		RateLimitWindow: window,
		HistoryLimit:    v.GetInt("history.limit"),
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 30
	}

	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}

	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > 200 {
		cfg.HistoryLimit = 50
	}

	return cfg, nil
}
