// Package pg connects to PostgreSQL through a pgx pool, applies goose
// migrations and classifies common driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, log); err != nil {
//		return err
//	}
//
// Connect retries with exponential backoff so services can start before
// the database is reachable. Healthcheck returns a probe for readiness
// endpoints.
//
// Stores call Conn to run on the transaction carried by the context, if
// any, and InTx to group writes:
//
//	err := pg.InTx(ctx, pool, func(ctx context.Context) error {
//		if err := bookings.Insert(ctx, b); err != nil {
//			return err
//		}
//		return audit.Record(ctx, entry)
//	})
package pg
