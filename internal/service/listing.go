package service

import (
	"context"
	"strings"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

type listingService struct {
	carRepo    repository.CarRepository
	clientRepo repository.ClientRepository
	rentalRepo repository.RentalRepository
	cache      cache.ListingCache
}

func NewListingService(
	carRepo repository.CarRepository,
	clientRepo repository.ClientRepository,
	rentalRepo repository.RentalRepository,
	listingCache cache.ListingCache,
) ListingService {
	if listingCache == nil {
		listingCache = cache.Nop{}
	}
	return &listingService{
		carRepo:    carRepo,
		clientRepo: clientRepo,
		rentalRepo: rentalRepo,
		cache:      listingCache,
	}
}

func (s *listingService) ListCars(ctx context.Context) ([]domain.Car, error) {
	cars, version, ok := s.cache.Cars(ctx)
	if ok {
		return cars, nil
	}
	// version was read before the query; a commit in between bumps it and the
	// snapshot below is stored under a key nobody reads.
	cars, err := s.carRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.StoreCars(ctx, version, cars)
	return cars, nil
}

func (s *listingService) SearchCars(ctx context.Context, query, status string) ([]domain.Car, error) {
	if status = strings.TrimSpace(status); status != "" && !strings.EqualFold(status, domain.StatusAll) {
		if _, err := domain.ParseCarStatus(status); err != nil {
			return nil, err
		}
	}
	cars, err := s.ListCars(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterCars(cars, query, status), nil
}

func (s *listingService) GetCar(ctx context.Context, id int32) (*domain.Car, error) {
	return s.carRepo.GetByID(ctx, id)
}

func (s *listingService) ListClients(ctx context.Context) ([]domain.Client, error) {
	if clients, ok := s.cache.Clients(ctx); ok {
		return clients, nil
	}
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.StoreClients(ctx, clients)
	return clients, nil
}

func (s *listingService) ListRentalsForCar(ctx context.Context, carID int32) ([]domain.Rental, error) {
	if _, err := s.carRepo.GetByID(ctx, carID); err != nil {
		return nil, err
	}
	return s.rentalRepo.ListByCar(ctx, carID)
}
