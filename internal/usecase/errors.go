package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors let handlers map distinct booking outcomes to distinct
// HTTP responses. A reservation that matched zero rows is reported as
// ErrSeatConflict only after the showtime was confirmed to exist.
var (
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrSeatConflict     = errors.New("one or more seats are already booked")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidCreds     = errors.New("invalid email or password")
	ErrEmailTaken       = errors.New("email already registered")
)

// PriceMismatchError rejects a booking whose submitted total disagrees with
// seats × price-per-seat. Expected lets the client self-correct.
type PriceMismatchError struct {
	Expected  float64
	Submitted float64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("total price %.2f does not match expected %.2f", e.Submitted, e.Expected)
}
