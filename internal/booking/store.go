package booking

import (
	"context"
	"time"
)

// Store persists bookings.
type Store interface {
	Insert(ctx context.Context, b Booking) error
	Get(ctx context.Context, id string) (Booking, error)
	List(ctx context.Context, f ListFilter) ([]Booking, error)
	// UpdateStatus sets the status only while the booking is still in
	// from. A booking that moved on in the meantime yields
	// ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Booking, error)
}
