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

type CinemaRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error)
}

type cinemaRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCinemaRepository(db database.PgxIface, log *zap.Logger) CinemaRepository {
	return &cinemaRepository{
		db:  db,
		log: log.With(zap.String("repository", "cinema")),
	}
}

func (r *cinemaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cinema, error) {
	query := `
		SELECT id, name, city, address, created_at, updated_at
		FROM cinemas
		WHERE id = $1
	`

	var cinema entity.Cinema
	err := r.db.QueryRow(ctx, query, id).Scan(
		&cinema.ID,
		&cinema.Name,
		&cinema.City,
		&cinema.Address,
		&cinema.CreatedAt,
		&cinema.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cinema by ID",
			zap.Error(err),
			zap.String("cinema_id", id.String()),
		)
		return nil, fmt.Errorf("find cinema by ID %s: %w", id.String(), err)
	}

	return &cinema, nil
}
