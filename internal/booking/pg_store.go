package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/livefeed/integration/database/pg"
)

const bookingColumns = `id, name, email, service, note, status, created_at, updated_at`

// PGStore is a Store backed by PostgreSQL. Calls run inside the
// transaction carried by ctx when there is one.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

// NewPGStore creates a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Insert(ctx context.Context, b Booking) error {
	_, err := pg.Conn(ctx, s.pool).Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.Name, b.Email, b.Service, b.Note, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (Booking, error) {
	if uuid.Validate(id) != nil {
		return Booking{}, ErrNotFound
	}
	rows, err := pg.Conn(ctx, s.pool).Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		return Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return collectOne(rows)
}

func (s *PGStore) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	rows, err := pg.Conn(ctx, s.pool).Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id
		LIMIT $2`,
		string(f.Status), f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Booking])
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return list, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Booking, error) {
	if uuid.Validate(id) != nil {
		return Booking{}, ErrNotFound
	}
	rows, err := pg.Conn(ctx, s.pool).Query(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4
		RETURNING `+bookingColumns,
		id, string(to), at, string(from),
	)
	if err != nil {
		return Booking{}, fmt.Errorf("update booking status: %w", err)
	}
	b, err := collectOne(rows)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return Booking{}, getErr
		}
		return Booking{}, fmt.Errorf("%w: no longer %s", ErrInvalidTransition, from)
	}
	return b, err
}

func collectOne(rows pgx.Rows) (Booking, error) {
	b, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Booking])
	if pg.IsNotFoundError(err) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("scan booking: %w", err)
	}
	return b, nil
}
