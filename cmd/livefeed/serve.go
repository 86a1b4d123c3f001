package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/livefeed/core/health"
	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/core/server"
	"github.com/dmitrymomot/livefeed/integration/database/pg"
	"github.com/dmitrymomot/livefeed/integration/database/redis"
	"github.com/dmitrymomot/livefeed/integration/realtime/redisrelay"
	"github.com/dmitrymomot/livefeed/internal/adminauth"
	"github.com/dmitrymomot/livefeed/internal/booking"
	"github.com/dmitrymomot/livefeed/internal/httpapi"
	"github.com/dmitrymomot/livefeed/pkg/jwt"
	"github.com/dmitrymomot/livefeed/pkg/ratelimiter"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides SERVER_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg Config) error {
	log := newLogger(cfg.App)
	logger.SetAsDefault(log)

	if isProduction(cfg.App.Env) {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := jwt.NewFromString(cfg.Auth.Secret,
		jwt.WithIssuer(cfg.Auth.Issuer),
		jwt.WithLeeway(cfg.Auth.Leeway),
	)
	if err != nil {
		return fmt.Errorf("jwt: %w", err)
	}

	var auth *adminauth.Authenticator
	if cfg.Admin.Enabled() {
		if auth, err = adminauth.New(cfg.Admin, tokens); err != nil {
			return err
		}
	} else {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD_HASH is not set, admin login is disabled", logger.Component("app"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := realtime.NewFromConfig(cfg.Realtime,
		realtime.WithLogger(log),
		realtime.WithMetrics(realtime.MustNewMetrics(reg)),
	)

	g, ctx := errgroup.WithContext(ctx)
	var checks []health.Check

	var store booking.Store
	if cfg.Postgres.ConnectionString != "" {
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pg.Migrate(ctx, pool, booking.Migrations(), log); err != nil {
			return err
		}
		store = booking.NewPGStore(pool)
		checks = append(checks, pg.Healthcheck(pool))
	} else {
		log.Warn("PG_CONN_URL is not set, bookings are kept in memory", logger.Component("app"))
		store = booking.NewMemoryStore()
	}

	var (
		broadcaster realtime.Broadcaster = hub
		limitStore  ratelimiter.Store
	)
	if cfg.Redis.ConnectionURL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()

		pub := redisrelay.NewPublisherFromConfig(client, cfg.Relay,
			redisrelay.WithFallback(hub),
			redisrelay.WithPublisherLogger(log),
		)
		relay := redisrelay.NewRelay(client, pub.Channel(), hub, log)
		g.Go(pub.Run(ctx))
		g.Go(relay.Run(ctx))

		broadcaster = pub
		limitStore = ratelimiter.NewRedisStore(client, "livefeed:ratelimit:")
		checks = append(checks, redis.Healthcheck(client))

		log.Info("cross-instance fan-out enabled",
			logger.Component("app"),
			slog.String("channel", pub.Channel()),
			slog.String("origin", pub.Origin()),
		)
	} else {
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(log))
		g.Go(mem.Run(ctx))
		limitStore = mem
	}

	limiter, err := ratelimiter.NewBucket(limitStore, cfg.RateLimit)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(cfg.HTTP, httpapi.Deps{
		Hub:         hub,
		Broadcaster: broadcaster,
		Bookings:    booking.NewService(store, broadcaster, booking.WithLogger(log)),
		Tokens:      tokens,
		Auth:        auth,
		Limiter:     limiter,
		Checks:      checks,
		Gatherer:    reg,
		Logger:      log,
	})

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log),
		server.WithOnShutdown(hub.Close),
	)
	if err != nil {
		return err
	}
	g.Go(srv.Run(ctx, router))

	return g.Wait()
}

func isProduction(env string) bool {
	switch strings.ToLower(env) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}
