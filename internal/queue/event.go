// Package queue publishes domain events to the message broker.
package queue

// BookingCreatedEvent is published after a booking transaction commits.
// It carries enough for downstream consumers (notifications, analytics)
// to act without querying the primary database.
type BookingCreatedEvent struct {
	BookingID   string   `json:"booking_id"`
	BookingCode string   `json:"booking_code"`
	UserID      string   `json:"user_id"`
	ShowtimeID  string   `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title,omitempty"`
	CinemaName  string   `json:"cinema_name,omitempty"`
	Seats       []string `json:"seats"`
	TotalPrice  float64  `json:"total_price"`
	CreatedAt   string   `json:"created_at"`
}
