package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository/postgres"
	"carrental-backend/internal/service"
)

// app holds what the subcommands need. Tests build it directly.
type app struct {
	rentals  service.RentalService
	listings service.ListingService
	out      io.Writer
	db       *sqlx.DB
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// openApp connects to the database described by the config file.
func openApp(ctx context.Context, configPath string, out io.Writer) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	// Keep stdout for command output.
	logger.InitializeWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString(), cfg.Database)
	if err != nil {
		return nil, err
	}
	store := postgres.NewStore(db, postgres.OptionsFromConfig(cfg.Database))
	return &app{
		rentals:  service.NewRentalService(store, store.CarRepository, nil, nil),
		listings: service.NewListingService(store.CarRepository, store.ClientRepository, store.RentalRepository, nil),
		out:      out,
		db:       db,
	}, nil
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "carctl",
		Short:         "Rent, return and list cars of the rental fleet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.rentals != nil {
				return nil
			}
			opened, err := openApp(cmd.Context(), configPath, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			*a = *opened
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.dev.yaml", "Path to configuration file")

	root.AddCommand(
		newCarsCmd(a),
		newClientsCmd(a),
		newQuoteCmd(a),
		newRentCmd(a),
		newReturnCmd(a),
		newRentalsCmd(a),
	)
	return root
}

// exitCode maps a failure kind onto the process exit status.
func exitCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindInvalidArgument:
		return 2
	case domain.KindNotFound:
		return 3
	case domain.KindInvalidState:
		return 4
	case domain.KindTimeout:
		return 5
	default:
		return 1
	}
}

func main() {
	a := &app{}
	defer a.Close()

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", domain.KindOf(err), err)
		a.Close()
		os.Exit(exitCode(err))
	}
}
