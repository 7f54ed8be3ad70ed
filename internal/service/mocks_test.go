package service_test

import (
	"context"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/events"

	"github.com/stretchr/testify/mock"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.RentalEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockListingCache
type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) Cars(ctx context.Context) ([]domain.Car, int64, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]domain.Car), args.Get(1).(int64), args.Bool(2)
}
func (m *MockListingCache) StoreCars(ctx context.Context, version int64, cars []domain.Car) {
	m.Called(ctx, version, cars)
}
func (m *MockListingCache) Clients(ctx context.Context) ([]domain.Client, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]domain.Client), args.Bool(1)
}
func (m *MockListingCache) StoreClients(ctx context.Context, clients []domain.Client) {
	m.Called(ctx, clients)
}
func (m *MockListingCache) InvalidateCars(ctx context.Context) {
	m.Called(ctx)
}
