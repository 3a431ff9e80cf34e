package usecase

import (
	"context"
	"fmt"

	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ShowtimeService interface {
	// GetShowtime returns one showtime with resolved display fields and the
	// current booked-seats set, which is what a seat-picker client needs.
	GetShowtime(ctx context.Context, showtimeID string) (*response.ShowtimeResponse, error)
	ListByMovie(ctx context.Context, movieID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ShowtimeResponse], error)
}

type showtimeService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewShowtimeService(repo *repository.Repository, log *zap.Logger) ShowtimeService {
	return &showtimeService{
		repo: repo,
		log:  log.With(zap.String("service", "showtime")),
	}
}

func (s *showtimeService) GetShowtime(ctx context.Context, showtimeID string) (*response.ShowtimeResponse, error) {
	id, err := uuid.Parse(showtimeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid showtime ID %s", ErrInvalidRequest, showtimeID)
	}

	showtime, err := s.repo.Showtime.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get showtime %s: %w", showtimeID, err)
	}
	if showtime == nil {
		return nil, fmt.Errorf("showtime %s: %w", showtimeID, ErrShowtimeNotFound)
	}

	resp := response.ShowtimeToResponse(showtime)

	movie, _ := s.repo.Movie.FindByID(ctx, showtime.MovieID)
	if movie != nil {
		resp.MovieTitle = movie.Title
	}

	cinema, _ := s.repo.Cinema.FindByID(ctx, showtime.CinemaID)
	if cinema != nil {
		resp.CinemaName = cinema.Name
	}

	return &resp, nil
}

func (s *showtimeService) ListByMovie(ctx context.Context, movieID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ShowtimeResponse], error) {
	id, err := uuid.Parse(movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid movie ID %s", ErrInvalidRequest, movieID)
	}

	showtimes, err := s.repo.Showtime.FindByMovieID(ctx, id, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list showtimes",
			zap.Error(err),
			zap.String("movie_id", movieID),
		)
		return nil, fmt.Errorf("list showtimes for movie %s: %w", movieID, err)
	}

	total, err := s.repo.Showtime.CountByMovieID(ctx, id)
	if err != nil {
		s.log.Error("Failed to count showtimes", zap.Error(err))
		return nil, fmt.Errorf("count showtimes for movie %s: %w", movieID, err)
	}

	responses := make([]response.ShowtimeResponse, len(showtimes))
	for i, showtime := range showtimes {
		responses[i] = response.ShowtimeToResponse(showtime)
	}

	return response.NewPaginatedResponse(responses, req.Page, req.PerPage, total), nil
}
