package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"carrental-backend/internal/domain"
)

// Quote is the price of renting one car for a date range.
type Quote struct {
	Car   domain.Car      `json:"car"`
	Start time.Time       `json:"start_date"`
	End   time.Time       `json:"end_date"`
	Days  int             `json:"days"`
	Total decimal.Decimal `json:"total"`
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC calendar date
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected yyyy-mm-dd", domain.ErrInvalidArgument, dateStr)
	}
	return t, nil
}

// TruncateToDate drops the clock part of t and returns its calendar date at UTC midnight.
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DaysInclusive counts calendar days from start to end with both ends included.
// It never returns a negative number.
func DaysInclusive(start, end time.Time) int {
	s := TruncateToDate(start)
	e := TruncateToDate(end)
	// Unix seconds; time.Duration overflows past roughly 292 years.
	days := int((e.Unix()-s.Unix())/secondsPerDay) + 1
	if days < 0 {
		return 0
	}
	return days
}

// RentalTotal is daily price times days, computed in exact decimal arithmetic.
func RentalTotal(daily decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return daily.Mul(decimal.NewFromInt(int64(days)))
}

// ParseMoney parses a decimal amount; both "120.50" and "120,50" are accepted.
func ParseMoney(s string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if normalized == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", domain.ErrInvalidArgument, s)
	}
	return d, nil
}

// ValidateRange checks that end is not before start.
func ValidateRange(start, end time.Time) error {
	if TruncateToDate(end).Before(TruncateToDate(start)) {
		return fmt.Errorf("%w: end date %s is before start date %s", domain.ErrInvalidArgument,
			end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}
	return nil
}

// NewQuote prices car for the inclusive range [start, end].
func NewQuote(car domain.Car, start, end time.Time) (Quote, error) {
	if err := ValidateRange(start, end); err != nil {
		return Quote{}, err
	}
	days := DaysInclusive(start, end)
	return Quote{
		Car:   car,
		Start: TruncateToDate(start),
		End:   TruncateToDate(end),
		Days:  days,
		Total: RentalTotal(car.DailyPrice, days),
	}, nil
}
