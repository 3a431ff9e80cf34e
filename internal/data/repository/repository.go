package repository

import (
	"movie-ticketing/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	Movie    MovieRepository
	Cinema   CinemaRepository
	Showtime ShowtimeRepository
	Booking  BookingRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Session:  NewSessionRepository(db, log),
		Movie:    NewMovieRepository(db, log),
		Cinema:   NewCinemaRepository(db, log),
		Showtime: NewShowtimeRepository(db, log),
		Booking:  NewBookingRepository(db, log),
	}
}
