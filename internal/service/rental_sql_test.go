package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lockCarSQL     = regexp.QuoteMeta(`SELECT status FROM car WHERE car_id = $1 FOR UPDATE`)
	updateCarSQL   = regexp.QuoteMeta(`UPDATE car SET status = $1 WHERE car_id = $2`)
	insertRental   = `INSERT INTO rental \(client_id, car_id, start_date, end_date, status\)`
	closeRentalSQL = `UPDATE rental SET status = \$1, returned_at = \$2`
)

func newSQLRentalService(t *testing.T, opts postgres.Options) (service.RentalService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := postgres.NewStore(sqlx.NewDb(db, "sqlmock"), opts)
	svc := service.NewRentalService(store, store.CarRepository, nil, nil, service.WithClock(func() time.Time { return fixedNow }))
	return svc, mock
}

func TestRentalEngineSQL_RentCar(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	req := domain.RentRequest{ClientID: 3, CarID: 7, StartDate: start, EndDate: end}

	t.Run("Success", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
		mock.ExpectExec(updateCarSQL).WithArgs("RENTED", int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insertRental).WithArgs(int32(3), int32(7), start, end, "ACTIVE").
			WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(42))
		mock.ExpectCommit()

		rental, err := svc.RentCar(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int32(42), rental.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock and statement timeouts are set first", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{LockTimeout: 1500 * time.Millisecond, StatementTimeout: 10 * time.Second})

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = 1500")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("SET LOCAL statement_timeout = 10000")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
		mock.ExpectExec(updateCarSQL).WithArgs("RENTED", int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insertRental).WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(43))
		mock.ExpectCommit()

		_, err := svc.RentCar(ctx, req)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Car not available rolls back", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("RENTED"))
		mock.ExpectRollback()

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing car", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown client surfaces as not found", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
		mock.ExpectExec(updateCarSQL).WithArgs("RENTED", int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insertRental).WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
		mock.ExpectRollback()

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lock wait timeout", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
		mock.ExpectRollback()

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrTimeout))
		assert.True(t, errors.Is(err, domain.ErrStorage))
		assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
		assert.True(t, domain.Retryable(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback failure keeps the original error", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("SERVICE"))
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
		assert.NotContains(t, err.Error(), "connection lost")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit failure is a storage failure", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
		mock.ExpectExec(updateCarSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(insertRental).WillReturnRows(sqlmock.NewRows([]string{"rental_id"}).AddRow(44))
		mock.ExpectCommit().WillReturnError(errors.New("server closed the connection"))

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrStorage))
		assert.Equal(t, domain.KindStorageFailure, domain.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Begin failure", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		_, err := svc.RentCar(ctx, req)
		assert.True(t, errors.Is(err, domain.ErrStorage))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalEngineSQL_ReturnCar(t *testing.T) {
	ctx := context.Background()
	rentalCols := []string{"rental_id", "client_id", "car_id", "start_date", "end_date", "status", "returned_at"}

	t.Run("Success", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("RENTED"))
		mock.ExpectQuery(closeRentalSQL).WithArgs("RETURNED", fixedNow, int32(7), "ACTIVE").
			WillReturnRows(sqlmock.NewRows(rentalCols).
				AddRow(42, 3, 7, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), "RETURNED", fixedNow))
		mock.ExpectExec(updateCarSQL).WithArgs("AVAILABLE", int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		rental, err := svc.ReturnCar(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int32(42), rental.ID)
		assert.Equal(t, domain.RentalStatusReturned, rental.Status)
		require.NotNil(t, rental.ReturnedAt)
		assert.True(t, rental.ReturnedAt.Equal(fixedNow))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No active rental rolls back", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("AVAILABLE"))
		mock.ExpectQuery(closeRentalSQL).WillReturnRows(sqlmock.NewRows(rentalCols))
		mock.ExpectRollback()

		_, err := svc.ReturnCar(ctx, 7)
		assert.True(t, errors.Is(err, domain.ErrInvalidState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing car", func(t *testing.T) {
		svc, mock := newSQLRentalService(t, postgres.Options{})

		mock.ExpectBegin()
		mock.ExpectQuery(lockCarSQL).WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}))
		mock.ExpectRollback()

		_, err := svc.ReturnCar(ctx, 99)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
