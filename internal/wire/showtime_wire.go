package wire

import (
	"movie-ticketing/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireShowtime(r chi.Router, showtimeHandler *adaptor.ShowtimeHandler) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/showtimes?movie_id= - Upcoming showtimes for a movie
	r.Get("/api/showtimes", showtimeHandler.ListShowtimes)

	// GET /api/showtimes/{id} - Showtime detail with booked seats
	r.Get("/api/showtimes/{id}", showtimeHandler.GetShowtime)
}
