package adaptor

import (
	"errors"
	"net/http"

	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/usecase"
	"movie-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowtimeHandler struct {
	service usecase.ShowtimeService
	log     *zap.Logger
}

func NewShowtimeHandler(service usecase.ShowtimeService, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		service: service,
		log:     log.With(zap.String("handler", "showtime")),
	}
}

// GetShowtime handles GET /api/showtimes/{id} (public)
func (h *ShowtimeHandler) GetShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "id")
	if showtimeID == "" {
		utils.ResponseBadRequest(w, "Showtime ID is required", nil)
		return
	}

	showtime, err := h.service.GetShowtime(r.Context(), showtimeID)
	if err != nil {
		h.handleServiceError(w, err, "get showtime")
		return
	}

	utils.ResponseSuccess(w, "success", showtime)
}

// ListShowtimes handles GET /api/showtimes?movie_id= (public)
func (h *ShowtimeHandler) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	movieID := query.Get("movie_id")
	if movieID == "" {
		utils.ResponseBadRequest(w, "movie_id query parameter is required", nil)
		return
	}

	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	showtimes, err := h.service.ListByMovie(r.Context(), movieID, req)
	if err != nil {
		h.handleServiceError(w, err, "list showtimes")
		return
	}

	utils.ResponseSuccess(w, "success", showtimes)
}

func (h *ShowtimeHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrShowtimeNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidRequest):
		h.log.Warn(operation+" failed - invalid request", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
