package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CarStatus string

const (
	CarStatusAvailable CarStatus = "AVAILABLE"
	CarStatusRented    CarStatus = "RENTED"
	// CarStatusService is set administratively; the rental engine never enters or leaves it.
	CarStatusService CarStatus = "SERVICE"
)

// ParseCarStatus accepts a status name in any letter case.
func ParseCarStatus(s string) (CarStatus, error) {
	switch st := CarStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case CarStatusAvailable, CarStatusRented, CarStatusService:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown car status %q", ErrInvalidArgument, s)
	}
}

type Car struct {
	ID         int32           `db:"car_id" json:"id"`
	Brand      string          `db:"brand" json:"brand"`
	Model      string          `db:"model" json:"model"`
	Year       int32           `db:"year" json:"year"`
	DailyPrice decimal.Decimal `db:"daily_price" json:"daily_price"`
	Status     CarStatus       `db:"status" json:"status"`
}

func (c Car) DisplayName() string {
	return fmt.Sprintf("%s %s (%d)", c.Brand, c.Model, c.Year)
}
