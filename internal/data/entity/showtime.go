package entity

import (
	"time"

	"github.com/google/uuid"
)

// Showtime is one scheduled screening. BookedSeats is the authoritative
// seat-occupancy set for the screening: seat labels ("A1", "B12") are only
// ever added, and only through ShowtimeRepository.ReserveSeats, which adds
// them in a single conditional update so two overlapping reservations can
// never both succeed.
type Showtime struct {
	Base
	MovieID      uuid.UUID `db:"movie_id"`
	CinemaID     uuid.UUID `db:"cinema_id"`
	ScreenName   string    `db:"screen_name"`
	StartsAt     time.Time `db:"starts_at"`
	EndsAt       time.Time `db:"ends_at"`
	PricePerSeat float64   `db:"price_per_seat"`
	BookedSeats  []string  `db:"booked_seats"`
}
