package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/middleware"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "livefeed",
		Short:         "Booking backend with realtime admin notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newTokenCmd(), newHashPasswordCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("livefeed %s (%s)\n", version, commit)
		},
	}
}

func newLogger(cfg appConfig) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithAttr(slog.String("version", version)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	return logger.New(opts...)
}
