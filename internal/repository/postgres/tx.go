package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

// txStore implements repository.Tx on top of one sqlx transaction.
type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) LockCarForUpdate(ctx context.Context, carID int32) (domain.CarStatus, error) {
	query := `SELECT status FROM car WHERE car_id = $1 FOR UPDATE`
	logger.DatabaseCall("lock car", query, "car_id", carID)

	var status domain.CarStatus
	if err := t.tx.GetContext(ctx, &status, query, carID); err != nil {
		err = notFoundOr("lock car", err, "car", carID)
		logger.DatabaseResult("lock car", 0, err, "car_id", carID)
		return "", err
	}
	logger.DatabaseResult("lock car", 1, nil, "car_id", carID, "status", status)
	return status, nil
}

func (t *txStore) UpdateCarStatus(ctx context.Context, carID int32, status domain.CarStatus) error {
	query := `UPDATE car SET status = $1 WHERE car_id = $2`
	logger.DatabaseCall("update car status", query, "car_id", carID, "status", status)

	res, err := t.tx.ExecContext(ctx, query, string(status), carID)
	if err != nil {
		err = classifyError("update car status", err)
		logger.DatabaseResult("update car status", 0, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classifyError("update car status", err)
	}
	logger.DatabaseResult("update car status", n, nil)
	if n == 0 {
		return fmt.Errorf("%w: car %d", domain.ErrNotFound, carID)
	}
	return nil
}

func (t *txStore) CreateRental(ctx context.Context, r *domain.Rental) error {
	query := `INSERT INTO rental (client_id, car_id, start_date, end_date, status)
	          VALUES ($1, $2, $3, $4, $5) RETURNING rental_id`
	logger.DatabaseCall("create rental", query, "client_id", r.ClientID, "car_id", r.CarID)

	err := t.tx.QueryRowxContext(ctx, query, r.ClientID, r.CarID, r.StartDate, r.EndDate, string(r.Status)).Scan(&r.ID)
	if err != nil {
		err = classifyError("create rental", err)
		logger.DatabaseResult("create rental", 0, err)
		return err
	}
	logger.DatabaseResult("create rental", 1, nil, "rental_id", r.ID)
	return nil
}

func (t *txStore) CloseActiveRentals(ctx context.Context, carID int32, returnedAt time.Time) ([]domain.Rental, error) {
	query := `UPDATE rental SET status = $1, returned_at = $2
	          WHERE car_id = $3 AND status = $4
	          RETURNING rental_id, client_id, car_id, start_date, end_date, status, returned_at`
	logger.DatabaseCall("close active rentals", query, "car_id", carID)

	closed := []domain.Rental{}
	err := t.tx.SelectContext(ctx, &closed, query,
		string(domain.RentalStatusReturned), returnedAt, carID, string(domain.RentalStatusActive))
	if err != nil {
		err = classifyError("close active rentals", err)
		logger.DatabaseResult("close active rentals", 0, err)
		return nil, err
	}
	logger.DatabaseResult("close active rentals", int64(len(closed)), nil)
	return closed, nil
}
