package usecase

import (
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/queue"
	"movie-ticketing/pkg/database"
	"movie-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	Showtime ShowtimeService
	Booking  BookingService
}

func NewService(db database.PgxIface, repo *repository.Repository, publisher queue.Publisher, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, config, log),
		Showtime: NewShowtimeService(repo, log),
		Booking:  NewBookingService(db, repo, publisher, log),
	}
}
