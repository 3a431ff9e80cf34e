package repository

import (
	"context"
	"fmt"

	"movie-ticketing/internal/data/entity"
	"movie-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	// Create inserts the booking on q (normally the open booking transaction).
	Create(ctx context.Context, q database.Querier, booking *entity.Booking) error
	// MarkPaid flips payment_status to paid and attaches the QR payload and
	// optional gateway transaction id, inside the same transaction as Create.
	MarkPaid(ctx context.Context, q database.Querier, id uuid.UUID, transactionID *string, qrCodeData string) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByCode(ctx context.Context, code string) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_code, user_id, movie_id, cinema_id, showtime_id, seats, total_price,
		payment_method, payment_status, transaction_id, qr_code_data, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, q database.Querier, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_code, user_id, movie_id, cinema_id, showtime_id, seats, total_price,
		                      payment_method, payment_status, transaction_id, qr_code_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := q.Exec(ctx, query,
		booking.ID,
		booking.BookingCode,
		booking.UserID,
		booking.MovieID,
		booking.CinemaID,
		booking.ShowtimeID,
		booking.Seats,
		booking.TotalPrice,
		booking.PaymentMethod,
		booking.PaymentStatus,
		booking.TransactionID,
		booking.QRCodeData,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.BookingCode, err)
	}

	return nil
}

func (r *bookingRepository) MarkPaid(ctx context.Context, q database.Querier, id uuid.UUID, transactionID *string, qrCodeData string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, transaction_id = $3, qr_code_data = $4, updated_at = NOW()
		WHERE id = $1 AND payment_status = $5
	`

	result, err := q.Exec(ctx, query, id, entity.PaymentStatusPaid, transactionID, qrCodeData, entity.PaymentStatusPending)
	if err != nil {
		r.log.Error("Failed to mark booking paid",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark booking %s paid: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not pending", id.String())
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, id))
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByCode(ctx context.Context, code string) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_code = $1`

	booking, err := r.scanBooking(r.db.QueryRow(ctx, query, code))
	if err != nil {
		r.log.Error("Failed to find booking by code",
			zap.Error(err),
			zap.String("booking_code", code),
		)
		return nil, fmt.Errorf("find booking by code %s: %w", code, err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.BookingCode,
			&booking.UserID,
			&booking.MovieID,
			&booking.CinemaID,
			&booking.ShowtimeID,
			&booking.Seats,
			&booking.TotalPrice,
			&booking.PaymentMethod,
			&booking.PaymentStatus,
			&booking.TransactionID,
			&booking.QRCodeData,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.BookingCode,
		&booking.UserID,
		&booking.MovieID,
		&booking.CinemaID,
		&booking.ShowtimeID,
		&booking.Seats,
		&booking.TotalPrice,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&booking.TransactionID,
		&booking.QRCodeData,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &booking, nil
}
