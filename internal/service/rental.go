package service

import (
	"context"
	"fmt"
	"time"

	"carrental-backend/internal/cache"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
	"carrental-backend/internal/utils"
)

type rentalService struct {
	tx        repository.Transactor
	carRepo   repository.CarRepository
	publisher events.Publisher
	cache     cache.ListingCache
	now       func() time.Time
}

type RentalOption func(*rentalService)

// WithClock replaces time.Now as the source of return timestamps.
func WithClock(now func() time.Time) RentalOption {
	return func(s *rentalService) { s.now = now }
}

func NewRentalService(
	tx repository.Transactor,
	carRepo repository.CarRepository,
	publisher events.Publisher,
	listingCache cache.ListingCache,
	opts ...RentalOption,
) RentalService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if listingCache == nil {
		listingCache = cache.Nop{}
	}
	s := &rentalService{
		tx:        tx,
		carRepo:   carRepo,
		publisher: publisher,
		cache:     listingCache,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rentalService) RentCar(ctx context.Context, req domain.RentRequest) (*domain.Rental, error) {
	log := logger.WithService("rental").With("car_id", req.CarID, "client_id", req.ClientID)

	if req.ClientID <= 0 || req.CarID <= 0 {
		return nil, fmt.Errorf("%w: client and car ids must be positive", domain.ErrInvalidArgument)
	}
	if err := utils.ValidateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		ClientID:  req.ClientID,
		CarID:     req.CarID,
		StartDate: utils.TruncateToDate(req.StartDate),
		EndDate:   utils.TruncateToDate(req.EndDate),
		Status:    domain.RentalStatusActive,
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		status, err := tx.LockCarForUpdate(ctx, req.CarID)
		if err != nil {
			return err
		}
		if status != domain.CarStatusAvailable {
			return fmt.Errorf("%w: car %d is not available (status=%s)", domain.ErrInvalidState, req.CarID, status)
		}
		if err := tx.UpdateCarStatus(ctx, req.CarID, domain.CarStatusRented); err != nil {
			return err
		}
		return tx.CreateRental(ctx, rental)
	})
	if err != nil {
		log.WarnContext(ctx, "Rent failed", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}

	log.InfoContext(ctx, "Car rented", "rental_id", rental.ID,
		"start_date", rental.StartDate.Format(domain.DateLayout), "end_date", rental.EndDate.Format(domain.DateLayout))
	s.afterCommit(ctx, events.EventCarRented, *rental)
	return rental, nil
}

func (s *rentalService) ReturnCar(ctx context.Context, carID int32) (*domain.Rental, error) {
	log := logger.WithService("rental").With("car_id", carID)

	if carID <= 0 {
		return nil, fmt.Errorf("%w: car id must be positive", domain.ErrInvalidArgument)
	}

	var closed []domain.Rental
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockCarForUpdate(ctx, carID); err != nil {
			return err
		}
		var err error
		closed, err = tx.CloseActiveRentals(ctx, carID, s.now().UTC())
		if err != nil {
			return err
		}
		if len(closed) == 0 {
			return fmt.Errorf("%w: car %d has no active rental", domain.ErrInvalidState, carID)
		}
		return tx.UpdateCarStatus(ctx, carID, domain.CarStatusAvailable)
	})
	if err != nil {
		log.WarnContext(ctx, "Return failed", "kind", domain.KindOf(err), "error", err)
		return nil, err
	}

	if len(closed) > 1 {
		log.ErrorContext(ctx, "Car had more than one active rental", "count", len(closed))
	}
	log.InfoContext(ctx, "Car returned", "rental_id", closed[0].ID)
	for _, r := range closed {
		s.afterCommit(ctx, events.EventCarReturned, r)
	}
	return &closed[0], nil
}

func (s *rentalService) Quote(ctx context.Context, carID int32, start, end time.Time) (*utils.Quote, error) {
	car, err := s.carRepo.GetByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	q, err := utils.NewQuote(*car, start, end)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// afterCommit runs the side effects of a committed change. Neither can fail the operation.
func (s *rentalService) afterCommit(ctx context.Context, t events.EventType, r domain.Rental) {
	s.cache.InvalidateCars(ctx)

	if err := s.publisher.Publish(ctx, events.NewRentalEvent(t, r, s.now())); err != nil {
		logger.WarnContext(ctx, "Failed to publish rental event", "type", t, "rental_id", r.ID, "error", err)
	}
}
