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

type ShowtimeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error)
	FindByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*entity.Showtime, error)
	CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error)

	// ReserveSeats adds the given seats to the showtime's booked-seats set in
	// one conditional update: the row is matched only when the showtime
	// exists AND none of the seats are already booked. Returns false when
	// zero rows matched. Runs on q so the coordinator can place it inside
	// the booking transaction.
	ReserveSeats(ctx context.Context, q database.Querier, id uuid.UUID, seats []string) (bool, error)
}

type showtimeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewShowtimeRepository(db database.PgxIface, log *zap.Logger) ShowtimeRepository {
	return &showtimeRepository{
		db:  db,
		log: log.With(zap.String("repository", "showtime")),
	}
}

func (r *showtimeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, cinema_id, screen_name, starts_at, ends_at, price_per_seat, booked_seats, created_at, updated_at
		FROM showtimes
		WHERE id = $1
	`

	var showtime entity.Showtime
	err := r.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.CinemaID,
		&showtime.ScreenName,
		&showtime.StartsAt,
		&showtime.EndsAt,
		&showtime.PricePerSeat,
		&showtime.BookedSeats,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find showtime by ID",
			zap.Error(err),
			zap.String("showtime_id", id.String()),
		)
		return nil, fmt.Errorf("find showtime by ID %s: %w", id.String(), err)
	}

	return &showtime, nil
}

func (r *showtimeRepository) FindByMovieID(ctx context.Context, movieID uuid.UUID, limit, offset int) ([]*entity.Showtime, error) {
	query := `
		SELECT id, movie_id, cinema_id, screen_name, starts_at, ends_at, price_per_seat, booked_seats, created_at, updated_at
		FROM showtimes
		WHERE movie_id = $1 AND starts_at > NOW()
		ORDER BY starts_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, movieID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find showtimes by movie ID",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return nil, fmt.Errorf("find showtimes by movie ID %s: %w", movieID.String(), err)
	}
	defer rows.Close()

	var showtimes []*entity.Showtime
	for rows.Next() {
		var showtime entity.Showtime
		err := rows.Scan(
			&showtime.ID,
			&showtime.MovieID,
			&showtime.CinemaID,
			&showtime.ScreenName,
			&showtime.StartsAt,
			&showtime.EndsAt,
			&showtime.PricePerSeat,
			&showtime.BookedSeats,
			&showtime.CreatedAt,
			&showtime.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan showtime row", zap.Error(err))
			return nil, fmt.Errorf("scan showtime row: %w", err)
		}
		showtimes = append(showtimes, &showtime)
	}

	return showtimes, nil
}

func (r *showtimeRepository) CountByMovieID(ctx context.Context, movieID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM showtimes WHERE movie_id = $1 AND starts_at > NOW()`

	var count int64
	err := r.db.QueryRow(ctx, query, movieID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count showtimes by movie ID",
			zap.Error(err),
			zap.String("movie_id", movieID.String()),
		)
		return 0, fmt.Errorf("count showtimes by movie ID %s: %w", movieID.String(), err)
	}

	return count, nil
}

func (r *showtimeRepository) ReserveSeats(ctx context.Context, q database.Querier, id uuid.UUID, seats []string) (bool, error) {
	// The WHERE clause is evaluated atomically against the current row state,
	// so a read-modify-write race between overlapping requests is impossible:
	// && is array overlap, || is array concatenation. A showtime that does
	// not exist and a showtime with any requested seat taken both match zero
	// rows; the coordinator tells them apart by loading the showtime first.
	query := `
		UPDATE showtimes
		SET booked_seats = booked_seats || $2, updated_at = NOW()
		WHERE id = $1 AND NOT (booked_seats && $2)
	`

	result, err := q.Exec(ctx, query, id, seats)
	if err != nil {
		r.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("showtime_id", id.String()),
			zap.Strings("seats", seats),
		)
		return false, fmt.Errorf("reserve seats on showtime %s: %w", id.String(), err)
	}

	return result.RowsAffected() == 1, nil
}
