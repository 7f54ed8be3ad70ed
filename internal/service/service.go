package service

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/utils"
)

// RentalService moves cars between AVAILABLE and RENTED. Each operation runs
// in one transaction that locks the car row before touching rentals.
type RentalService interface {
	RentCar(ctx context.Context, req domain.RentRequest) (*domain.Rental, error)
	ReturnCar(ctx context.Context, carID int32) (*domain.Rental, error)
	Quote(ctx context.Context, carID int32, start, end time.Time) (*utils.Quote, error)
}

// ListingService returns read-only snapshots. None of its methods lock or mutate.
type ListingService interface {
	ListCars(ctx context.Context) ([]domain.Car, error)
	SearchCars(ctx context.Context, query, status string) ([]domain.Car, error)
	GetCar(ctx context.Context, id int32) (*domain.Car, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListRentalsForCar(ctx context.Context, carID int32) ([]domain.Rental, error)
}
