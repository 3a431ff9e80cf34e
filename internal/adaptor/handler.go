package adaptor

import (
	"movie-ticketing/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	Showtime *ShowtimeHandler
	Booking  *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		Showtime: NewShowtimeHandler(service.Showtime, log),
		Booking:  NewBookingHandler(service.Booking, log),
	}
}
