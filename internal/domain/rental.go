package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "ACTIVE"
	RentalStatusReturned RentalStatus = "RETURNED"
)

// DateLayout is the calendar date format used for rental start and end dates.
const DateLayout = "2006-01-02"

type Rental struct {
	ID        int32        `db:"rental_id" json:"id"`
	ClientID  int32        `db:"client_id" json:"client_id"`
	CarID     int32        `db:"car_id" json:"car_id"`
	StartDate time.Time    `db:"start_date" json:"start_date"`
	EndDate   time.Time    `db:"end_date" json:"end_date"`
	Status    RentalStatus `db:"status" json:"status"`
	// ReturnedAt is set only when the rental is closed by a return.
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
}

// RentRequest carries the input of a rent operation.
type RentRequest struct {
	ClientID  int32
	CarID     int32
	StartDate time.Time
	EndDate   time.Time
}
