package booking

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a booking in s may move to next.
// Cancelled bookings are final.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Booking is a request submitted from the public site.
type Booking struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Service   string    `json:"service"`
	Note      string    `json:"note,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput is the data accepted for a new booking.
type CreateInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Service string `json:"service" validate:"required,max=120"`
	Note    string `json:"note" validate:"max=2000"`
}

// ListFilter narrows List results. Zero values mean no filter.
type ListFilter struct {
	Status Status
	Limit  int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Event names broadcast to admin streams.
const (
	EventCreated = "booking.created"
	EventUpdated = "booking.updated"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("booking status transition not allowed")
)
