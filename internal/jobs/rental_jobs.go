package jobs

import (
	"context"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/utils"
)

// overdueJobTimeout bounds one run of the overdue report.
const overdueJobTimeout = 2 * time.Minute

// OverdueRental is an ACTIVE rental whose end date has passed.
type OverdueRental struct {
	Rental      domain.Rental
	Car         string
	DaysOverdue int
}

// ReportOverdueRentals logs every ACTIVE rental past its end date. It only
// reads; closing a rental is left to an explicit return.
func (jr *JobRunner) ReportOverdueRentals() {
	jr.runWithRecovery("ReportOverdueRentals", func() {
		ctx, cancel := context.WithTimeout(context.Background(), overdueJobTimeout)
		defer cancel()

		overdue, err := jr.FindOverdueRentals(ctx)
		if err != nil {
			logger.Error("Failed to list overdue rentals", "kind", domain.KindOf(err), "error", err)
			return
		}

		logger.Info("Overdue rentals found", "count", len(overdue))
		for _, o := range overdue {
			logger.Warn("Rental is overdue",
				"rental_id", o.Rental.ID,
				"client_id", o.Rental.ClientID,
				"car_id", o.Rental.CarID,
				"car", o.Car,
				"end_date", o.Rental.EndDate.Format(domain.DateLayout),
				"days_overdue", o.DaysOverdue)
		}
	})
}

// FindOverdueRentals returns the ACTIVE rentals whose end date is before today.
func (jr *JobRunner) FindOverdueRentals(ctx context.Context) ([]OverdueRental, error) {
	today := utils.TruncateToDate(jr.now().UTC())

	rentals, err := jr.rentals.ListOverdue(ctx, today)
	if err != nil {
		return nil, err
	}

	names := make(map[int32]string)
	out := make([]OverdueRental, 0, len(rentals))
	for _, r := range rentals {
		name, ok := names[r.CarID]
		if !ok {
			car, err := jr.cars.GetByID(ctx, r.CarID)
			if err != nil {
				logger.Warn("Failed to load car for overdue rental", "car_id", r.CarID, "error", err)
			} else {
				name = car.DisplayName()
			}
			names[r.CarID] = name
		}
		out = append(out, OverdueRental{
			Rental:      r,
			Car:         name,
			DaysOverdue: utils.DaysInclusive(r.EndDate, today) - 1,
		})
	}
	return out, nil
}
