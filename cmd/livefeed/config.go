package main

import (
	"time"

	"github.com/dmitrymomot/livefeed/core/config"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/core/server"
	"github.com/dmitrymomot/livefeed/integration/database/pg"
	"github.com/dmitrymomot/livefeed/integration/database/redis"
	"github.com/dmitrymomot/livefeed/integration/realtime/redisrelay"
	"github.com/dmitrymomot/livefeed/internal/adminauth"
	"github.com/dmitrymomot/livefeed/internal/httpapi"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

type appConfig struct {
	Name     string `env:"APP_NAME" envDefault:"livefeed"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
}

type authConfig struct {
	Secret string        `env:"JWT_SECRET,required"`
	Issuer string        `env:"JWT_ISSUER" envDefault:"livefeed"`
	Leeway time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}

// Config is the full process configuration. Nested structs belong to the
// packages they configure.
type Config struct {
	App       appConfig
	Auth      authConfig
	Admin     adminauth.Config
	Server    server.Config
	HTTP      httpapi.Config
	Realtime  realtime.Config
	Relay     redisrelay.Config
	RateLimit ratelimiter.Config
	Postgres  pg.Config
	Redis     redis.Config
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
