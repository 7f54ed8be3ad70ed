// Package events defines the rental domain events and publishes them to the
// message broker after a rent or return has committed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
)

type EventType string

const (
	EventCarRented   EventType = "car.rented"
	EventCarReturned EventType = "car.returned"
)

// RentalEvent is published once per committed rent or return. It carries
// enough data for consumers to react without reading the database.
type RentalEvent struct {
	ID         string     `json:"id"`
	Type       EventType  `json:"type"`
	RentalID   int32      `json:"rental_id"`
	CarID      int32      `json:"car_id"`
	ClientID   int32      `json:"client_id"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewRentalEvent builds an event of type t for rental r.
func NewRentalEvent(t EventType, r domain.Rental, at time.Time) RentalEvent {
	return RentalEvent{
		ID:         uuid.NewString(),
		Type:       t,
		RentalID:   r.ID,
		CarID:      r.CarID,
		ClientID:   r.ClientID,
		StartDate:  r.StartDate.Format(domain.DateLayout),
		EndDate:    r.EndDate.Format(domain.DateLayout),
		ReturnedAt: r.ReturnedAt,
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event RentalEvent) error
	Close() error
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RentalEvent) error { return nil }
func (NopPublisher) Close() error                               { return nil }
