package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/utils"
)

func parseID(what, raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s id %q", domain.ErrInvalidArgument, what, raw)
	}
	return int32(id), nil
}

func newCarsCmd(a *app) *cobra.Command {
	var search, status, maxPrice string

	cmd := &cobra.Command{
		Use:   "cars",
		Short: "List cars, optionally filtered by brand/model text and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := utils.ParseMoney(maxPrice)
			if err != nil {
				return err
			}
			cars, err := a.listings.SearchCars(cmd.Context(), search, status)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBRAND\tMODEL\tYEAR\tDAILY PRICE\tSTATUS")
			for _, c := range cars {
				if maxPrice != "" && c.DailyPrice.GreaterThan(limit) {
					continue
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", c.ID, c.Brand, c.Model, c.Year, c.DailyPrice.StringFixed(2), c.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Substring of brand or model, case-insensitive")
	cmd.Flags().StringVar(&status, "status", domain.StatusAll, "AVAILABLE, RENTED, SERVICE or ALL")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "Only cars with a daily price up to this amount; 150.00 or 150,00")
	return cmd
}

func newClientsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients by last name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := a.listings.ListClients(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, c := range clients {
				fmt.Fprintf(w, "%d\t%s\n", c.ID, c.DisplayName())
			}
			return w.Flush()
		},
	}
}

func newQuoteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote CAR_ID START END",
		Short: "Price a rental; dates are yyyy-mm-dd and both days count",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			carID, err := parseID("car", args[0])
			if err != nil {
				return err
			}
			start, err := utils.ParseDate(args[1])
			if err != nil {
				return err
			}
			end, err := utils.ParseDate(args[2])
			if err != nil {
				return err
			}
			q, err := a.rentals.Quote(cmd.Context(), carID, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %d days x %s = %s\n",
				q.Car.DisplayName(), q.Days, q.Car.DailyPrice.StringFixed(2), q.Total.StringFixed(2))
			return nil
		},
	}
}

func newRentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rent CLIENT_ID CAR_ID START END",
		Short: "Rent an available car to a client",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, err := parseID("client", args[0])
			if err != nil {
				return err
			}
			carID, err := parseID("car", args[1])
			if err != nil {
				return err
			}
			start, err := utils.ParseDate(args[2])
			if err != nil {
				return err
			}
			end, err := utils.ParseDate(args[3])
			if err != nil {
				return err
			}
			r, err := a.rentals.RentCar(cmd.Context(), domain.RentRequest{
				ClientID: clientID, CarID: carID, StartDate: start, EndDate: end,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Rental %d: car %d rented to client %d from %s to %s\n",
				r.ID, r.CarID, r.ClientID, r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout))
			return nil
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return CAR_ID",
		Short: "Close the active rental of a car and make it available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carID, err := parseID("car", args[0])
			if err != nil {
				return err
			}
			r, err := a.rentals.ReturnCar(cmd.Context(), carID)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Rental %d closed; car %d is available\n", r.ID, r.CarID)
			return nil
		},
	}
}

func newRentalsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rentals CAR_ID",
		Short: "Show the rental history of a car, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			carID, err := parseID("car", args[0])
			if err != nil {
				return err
			}
			rentals, err := a.listings.ListRentalsForCar(cmd.Context(), carID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLIENT\tSTART\tEND\tSTATUS\tRETURNED AT")
			for _, r := range rentals {
				returned := "-"
				if r.ReturnedAt != nil {
					returned = r.ReturnedAt.UTC().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n", r.ID, r.ClientID,
					r.StartDate.Format(domain.DateLayout), r.EndDate.Format(domain.DateLayout), r.Status, returned)
			}
			return w.Flush()
		},
	}
}
