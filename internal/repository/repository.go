package repository

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
)

type CarRepository interface {
	// List returns all cars ordered by brand, then model.
	List(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
}

type ClientRepository interface {
	// List returns all clients ordered by last name, then first name.
	List(ctx context.Context) ([]domain.Client, error)
	GetByID(ctx context.Context, id int32) (*domain.Client, error)
}

type RentalRepository interface {
	ListByCar(ctx context.Context, carID int32) ([]domain.Rental, error)
	// ListOverdue returns ACTIVE rentals whose end date is before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
}

// Tx is the set of statements available inside a unit of work.
// Implementations are bound to a single database transaction.
type Tx interface {
	// LockCarForUpdate reads the car status and holds a row lock on the car
	// until the transaction ends. Fails with domain.ErrNotFound for unknown cars.
	LockCarForUpdate(ctx context.Context, carID int32) (domain.CarStatus, error)
	UpdateCarStatus(ctx context.Context, carID int32, status domain.CarStatus) error
	// CreateRental inserts r and sets its ID.
	CreateRental(ctx context.Context, r *domain.Rental) error
	// CloseActiveRentals marks the car's ACTIVE rentals RETURNED at returnedAt and
	// returns the closed rentals.
	CloseActiveRentals(ctx context.Context, carID int32, returnedAt time.Time) ([]domain.Rental, error)
}

// Transactor runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; exactly one of the two happens.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
