package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

const rentalColumns = `rental_id, client_id, car_id, start_date, end_date, status, returned_at`

type rentalRepository struct {
	db *sqlx.DB
}

func NewRentalRepository(db *sqlx.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) ListByCar(ctx context.Context, carID int32) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental WHERE car_id = $1 ORDER BY start_date DESC, rental_id DESC`
	rentals := []domain.Rental{}
	if err := r.db.SelectContext(ctx, &rentals, query, carID); err != nil {
		return nil, classifyError("list rentals by car", err)
	}
	return rentals, nil
}

func (r *rentalRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental WHERE status = $1 AND end_date < $2 ORDER BY end_date, rental_id`
	rentals := []domain.Rental{}
	if err := r.db.SelectContext(ctx, &rentals, query, string(domain.RentalStatusActive), asOf); err != nil {
		return nil, classifyError("list overdue rentals", err)
	}
	return rentals, nil
}
