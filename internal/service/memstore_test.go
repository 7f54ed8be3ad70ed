package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"
)

// memStore is an in-memory stand-in for the relational store. Each car has a
// row lock held from LockCarForUpdate until the transaction ends, and writes
// are buffered in the transaction and applied only on commit.
type memStore struct {
	mu        sync.Mutex
	cars      map[int32]domain.Car
	clients   map[int32]domain.Client
	rentals   []domain.Rental
	nextID    int32
	rowLocks  map[int32]*sync.Mutex
	commits   int
	rollbacks int

	// failCreate, when set, is returned by CreateRental.
	failCreate error
	// afterLock runs once a transaction holds a car lock.
	afterLock func(carID int32)
}

func newMemStore() *memStore {
	return &memStore{
		cars:     map[int32]domain.Car{},
		clients:  map[int32]domain.Client{},
		rowLocks: map[int32]*sync.Mutex{},
		nextID:   100,
	}
}

func (m *memStore) addCar(c domain.Car) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars[c.ID] = c
}

func (m *memStore) addClient(c domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
}

func (m *memStore) addRental(r domain.Rental) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rentals = append(m.rentals, r)
}

func (m *memStore) car(id int32) domain.Car {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cars[id]
}

func (m *memStore) rentalsFor(carID int32, status domain.RentalStatus) []domain.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Rental
	for _, r := range m.rentals {
		if r.CarID == carID && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memStore) counts() (commits, rollbacks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits, m.rollbacks
}

func (m *memStore) rowLock(carID int32) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rowLocks[carID]
	if !ok {
		l = &sync.Mutex{}
		m.rowLocks[carID] = l
	}
	return l
}

func (m *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx := &memTx{
		store:     m,
		held:      map[int32]*sync.Mutex{},
		carStatus: map[int32]domain.CarStatus{},
		closes:    map[int32]time.Time{},
	}
	defer tx.release()

	err := fn(ctx, tx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.rollbacks++
		return err
	}
	for id, st := range tx.carStatus {
		c := m.cars[id]
		c.Status = st
		m.cars[id] = c
	}
	for i := range m.rentals {
		if at, ok := tx.closes[m.rentals[i].ID]; ok {
			returned := at
			m.rentals[i].Status = domain.RentalStatusReturned
			m.rentals[i].ReturnedAt = &returned
		}
	}
	m.rentals = append(m.rentals, tx.inserts...)
	m.commits++
	return nil
}

type memTx struct {
	store     *memStore
	held      map[int32]*sync.Mutex
	carStatus map[int32]domain.CarStatus
	inserts   []domain.Rental
	closes    map[int32]time.Time
}

func (t *memTx) release() {
	for _, l := range t.held {
		l.Unlock()
	}
}

func (t *memTx) LockCarForUpdate(ctx context.Context, carID int32) (domain.CarStatus, error) {
	if _, ok := t.held[carID]; !ok {
		l := t.store.rowLock(carID)
		l.Lock()
		t.held[carID] = l
	}

	t.store.mu.Lock()
	car, ok := t.store.cars[carID]
	hook := t.store.afterLock
	t.store.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: car %d", domain.ErrNotFound, carID)
	}
	if hook != nil {
		hook(carID)
	}
	if st, ok := t.carStatus[carID]; ok {
		return st, nil
	}
	return car.Status, nil
}

func (t *memTx) UpdateCarStatus(ctx context.Context, carID int32, status domain.CarStatus) error {
	t.store.mu.Lock()
	_, ok := t.store.cars[carID]
	t.store.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: car %d", domain.ErrNotFound, carID)
	}
	t.carStatus[carID] = status
	return nil
}

func (t *memTx) CreateRental(ctx context.Context, r *domain.Rental) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failCreate != nil {
		return t.store.failCreate
	}
	if _, ok := t.store.clients[r.ClientID]; !ok {
		return fmt.Errorf("%w: create rental: client %d", domain.ErrNotFound, r.ClientID)
	}
	t.store.nextID++
	r.ID = t.store.nextID
	t.inserts = append(t.inserts, *r)
	return nil
}

func (t *memTx) CloseActiveRentals(ctx context.Context, carID int32, returnedAt time.Time) ([]domain.Rental, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var closed []domain.Rental
	for _, r := range t.store.rentals {
		if r.CarID != carID || r.Status != domain.RentalStatusActive {
			continue
		}
		if _, done := t.closes[r.ID]; done {
			continue
		}
		t.closes[r.ID] = returnedAt
		at := returnedAt
		r.Status = domain.RentalStatusReturned
		r.ReturnedAt = &at
		closed = append(closed, r)
	}
	return closed, nil
}

// Read-side repositories over the same data.

type memCarRepo struct{ store *memStore }

func (r memCarRepo) List(ctx context.Context) ([]domain.Car, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cars := make([]domain.Car, 0, len(r.store.cars))
	for _, c := range r.store.cars {
		cars = append(cars, c)
	}
	sort.Slice(cars, func(i, j int) bool {
		if cars[i].Brand != cars[j].Brand {
			return cars[i].Brand < cars[j].Brand
		}
		if cars[i].Model != cars[j].Model {
			return cars[i].Model < cars[j].Model
		}
		return cars[i].ID < cars[j].ID
	})
	return cars, nil
}

func (r memCarRepo) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.cars[id]
	if !ok {
		return nil, fmt.Errorf("%w: car %d", domain.ErrNotFound, id)
	}
	return &c, nil
}

type memClientRepo struct{ store *memStore }

func (r memClientRepo) List(ctx context.Context) ([]domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clients := make([]domain.Client, 0, len(r.store.clients))
	for _, c := range r.store.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		if clients[i].LastName != clients[j].LastName {
			return clients[i].LastName < clients[j].LastName
		}
		if clients[i].FirstName != clients[j].FirstName {
			return clients[i].FirstName < clients[j].FirstName
		}
		return clients[i].ID < clients[j].ID
	})
	return clients, nil
}

func (r memClientRepo) GetByID(ctx context.Context, id int32) (*domain.Client, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: client %d", domain.ErrNotFound, id)
	}
	return &c, nil
}

type memRentalRepo struct{ store *memStore }

func (r memRentalRepo) ListByCar(ctx context.Context, carID int32) ([]domain.Rental, error) {
	out := r.store.rentalsFor(carID, "")
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	if out == nil {
		out = []domain.Rental{}
	}
	return out, nil
}

func (r memRentalRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []domain.Rental{}
	for _, rt := range r.store.rentals {
		if rt.Status == domain.RentalStatusActive && rt.EndDate.Before(asOf) {
			out = append(out, rt)
		}
	}
	return out, nil
}
