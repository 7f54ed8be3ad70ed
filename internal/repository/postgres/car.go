package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type carRepository struct {
	db *sqlx.DB
}

func NewCarRepository(db *sqlx.DB) repository.CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) List(ctx context.Context) ([]domain.Car, error) {
	query := `SELECT car_id, brand, model, year, daily_price, status FROM car ORDER BY brand, model, car_id`
	cars := []domain.Car{}
	if err := r.db.SelectContext(ctx, &cars, query); err != nil {
		return nil, classifyError("list cars", err)
	}
	return cars, nil
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	query := `SELECT car_id, brand, model, year, daily_price, status FROM car WHERE car_id = $1`
	car := &domain.Car{}
	if err := r.db.GetContext(ctx, car, query, id); err != nil {
		return nil, notFoundOr("get car", err, "car", id)
	}
	return car, nil
}
