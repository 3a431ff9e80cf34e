package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"movie-ticketing/internal/data/entity"
	"movie-ticketing/internal/data/repository"
	"movie-ticketing/internal/dto/request"
	"movie-ticketing/internal/dto/response"
	"movie-ticketing/internal/queue"
	"movie-ticketing/pkg/database"
	"movie-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// priceEpsilon bounds the float drift tolerated between the submitted total
// and seats × price-per-seat.
const priceEpsilon = 0.01

type BookingService interface {
	// CreateBooking runs the whole booking attempt: validate, load the
	// showtime, check the price, reserve the seats, persist the booking,
	// link it to the user and mark it paid, all writes in one transaction.
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Admin
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	db        database.PgxIface
	repo      *repository.Repository
	publisher queue.Publisher
	log       *zap.Logger
}

func NewBookingService(db database.PgxIface, repo *repository.Repository, publisher queue.Publisher, log *zap.Logger) BookingService {
	return &bookingService{
		db:        db,
		repo:      repo,
		publisher: publisher,
		log:       log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID %s", ErrInvalidRequest, userID)
	}

	showtimeID, err := uuid.Parse(req.ShowtimeID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid showtime ID %s", ErrInvalidRequest, req.ShowtimeID)
	}

	// Load the showtime before the transaction: it supplies the price per
	// seat and the movie/cinema refs, and a later zero-row reservation can
	// then only mean a seat conflict, not a missing showtime.
	showtime, err := s.repo.Showtime.FindByID(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("load showtime %s: %w", req.ShowtimeID, err)
	}
	if showtime == nil {
		return nil, fmt.Errorf("showtime %s: %w", req.ShowtimeID, ErrShowtimeNotFound)
	}

	expected := showtime.PricePerSeat * float64(len(req.Seats))
	if math.Abs(expected-req.TotalPrice) > priceEpsilon {
		s.log.Warn("Booking price mismatch",
			zap.String("showtime_id", req.ShowtimeID),
			zap.Float64("expected", expected),
			zap.Float64("submitted", req.TotalPrice),
		)
		return nil, &PriceMismatchError{Expected: expected, Submitted: req.TotalPrice}
	}

	// Every write from here on rides the same transaction. If anything
	// fails after the seats are reserved, the rollback releases them —
	// a reservation must never outlive its booking.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	matched, err := s.repo.Showtime.ReserveSeats(ctx, tx, showtime.ID, req.Seats)
	if err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	if !matched {
		s.log.Info("Seat conflict",
			zap.String("showtime_id", req.ShowtimeID),
			zap.Strings("seats", req.Seats),
		)
		return nil, fmt.Errorf("showtime %s seats %v: %w", req.ShowtimeID, req.Seats, ErrSeatConflict)
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingCode:   utils.GenerateBookingCode(),
		UserID:        userUUID,
		MovieID:       showtime.MovieID,
		CinemaID:      showtime.CinemaID,
		ShowtimeID:    showtime.ID,
		Seats:         req.Seats,
		TotalPrice:    req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: entity.PaymentStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, tx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.repo.User.AppendBooking(ctx, tx, userUUID, booking.ID); err != nil {
		return nil, fmt.Errorf("link booking to user: %w", err)
	}

	// Simulated payment capture: no gateway round trip, the booking is
	// marked paid in the same transaction. The QR payload is the booking
	// code itself.
	booking.QRCodeData = booking.BookingCode
	if err := s.repo.Booking.MarkPaid(ctx, tx, booking.ID, req.TransactionID, booking.QRCodeData); err != nil {
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}
	booking.PaymentStatus = entity.PaymentStatusPaid
	booking.TransactionID = req.TransactionID

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking transaction: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("user_id", userID),
		zap.Strings("seats", booking.Seats),
		zap.Float64("total_price", booking.TotalPrice),
	)

	resp := s.buildBookingResponse(ctx, booking)

	s.publishBookingCreated(ctx, booking, resp.MovieTitle, resp.CinemaName)

	return resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID %s", ErrInvalidRequest, userID)
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = *s.buildBookingResponse(ctx, booking)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID %s", ErrInvalidRequest, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	return s.buildBookingResponse(ctx, booking), nil
}

// ==================== HELPER METHODS ====================

// buildBookingResponse resolves display fields. Resolution failures degrade
// to empty display fields rather than failing a booking that already exists.
func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking) *response.BookingResponse {
	var movieTitle, cinemaName, screenName, startsAt string

	movie, _ := s.repo.Movie.FindByID(ctx, booking.MovieID)
	if movie != nil {
		movieTitle = movie.Title
	}

	cinema, _ := s.repo.Cinema.FindByID(ctx, booking.CinemaID)
	if cinema != nil {
		cinemaName = cinema.Name
	}

	showtime, _ := s.repo.Showtime.FindByID(ctx, booking.ShowtimeID)
	if showtime != nil {
		screenName = showtime.ScreenName
		startsAt = showtime.StartsAt.Format("2006-01-02 15:04")
	}

	return &response.BookingResponse{
		ID:            booking.ID.String(),
		BookingCode:   booking.BookingCode,
		UserID:        booking.UserID.String(),
		ShowtimeID:    booking.ShowtimeID.String(),
		MovieTitle:    movieTitle,
		CinemaName:    cinemaName,
		ScreenName:    screenName,
		StartsAt:      startsAt,
		Seats:         booking.Seats,
		TotalPrice:    booking.TotalPrice,
		PaymentMethod: booking.PaymentMethod,
		PaymentStatus: booking.PaymentStatus,
		TransactionID: booking.TransactionID,
		QRCodeData:    booking.QRCodeData,
		CreatedAt:     booking.CreatedAt,
	}
}

// publishBookingCreated is best-effort: the booking has committed, so a
// broker failure is logged and swallowed.
func (s *bookingService) publishBookingCreated(ctx context.Context, booking *entity.Booking, movieTitle, cinemaName string) {
	if s.publisher == nil {
		return
	}

	event := queue.BookingCreatedEvent{
		BookingID:   booking.ID.String(),
		BookingCode: booking.BookingCode,
		UserID:      booking.UserID.String(),
		ShowtimeID:  booking.ShowtimeID.String(),
		MovieTitle:  movieTitle,
		CinemaName:  cinemaName,
		Seats:       booking.Seats,
		TotalPrice:  booking.TotalPrice,
		CreatedAt:   booking.CreatedAt.UTC().Format(time.RFC3339),
	}

	if err := s.publisher.PublishBookingCreated(ctx, event); err != nil {
		s.log.Warn("Failed to publish booking created event",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
		)
	}
}
