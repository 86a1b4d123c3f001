package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/livefeed/core/logger"
)

// Migrate applies every pending goose migration found in migrations.
// Migrations are plain SQL files named <version>_<name>.sql at the root
// of migrations; use fs.Sub for embedded subdirectories.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, log *slog.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			logger.Component("pg"),
			slog.Int64("version", r.Source.Version),
			logger.Duration(r.Duration),
		)
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	log.InfoContext(ctx, "database schema is up to date",
		logger.Component("pg"),
		slog.Int64("version", current),
		logger.Count("applied", len(results)),
	)
	return nil
}
