// Package cache holds point-in-time listing snapshots so that repeated
// ListCars/ListClients calls do not hit the database. Cache failures are
// never surfaced; callers fall back to the database.
package cache

import (
	"context"

	"carrental-backend/internal/domain"
)

// ListingCache keeps car snapshots per version. Cars reports the version it
// looked up; StoreCars must be given that version so that a snapshot read
// before an InvalidateCars is never served after it.
type ListingCache interface {
	Cars(ctx context.Context) ([]domain.Car, int64, bool)
	StoreCars(ctx context.Context, version int64, cars []domain.Car)
	Clients(ctx context.Context) ([]domain.Client, bool)
	StoreClients(ctx context.Context, clients []domain.Client)
	// InvalidateCars moves to a new snapshot version; called after every committed state change.
	InvalidateCars(ctx context.Context)
}

// Nop never holds anything.
type Nop struct{}

func (Nop) Cars(context.Context) ([]domain.Car, int64, bool) { return nil, 0, false }
func (Nop) StoreCars(context.Context, int64, []domain.Car)   {}
func (Nop) Clients(context.Context) ([]domain.Client, bool)  { return nil, false }
func (Nop) StoreClients(context.Context, []domain.Client)    {}
func (Nop) InvalidateCars(context.Context)                   {}
