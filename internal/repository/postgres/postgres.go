package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"carrental-backend/internal/config"
	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/repository"
)

// Postgres error codes the store maps onto failure kinds.
const (
	codeLockNotAvailable    = "55P03"
	codeQueryCanceled       = "57014"
	codeForeignKeyViolation = "23503"
)

// Options tune the transactions opened by Store.
type Options struct {
	// LockTimeout is applied with SET LOCAL lock_timeout; zero leaves the server default.
	LockTimeout time.Duration
	// StatementTimeout is applied with SET LOCAL statement_timeout; zero leaves the server default.
	StatementTimeout time.Duration
}

type Store struct {
	db   *sqlx.DB
	opts Options

	CarRepository    repository.CarRepository
	ClientRepository repository.ClientRepository
	RentalRepository repository.RentalRepository
}

func NewStore(db *sqlx.DB, opts Options) *Store {
	return &Store{
		db:               db,
		opts:             opts,
		CarRepository:    NewCarRepository(db),
		ClientRepository: NewClientRepository(db),
		RentalRepository: NewRentalRepository(db),
	}
}

// Open connects to PostgreSQL with the pool settings from cfg and verifies the connection.
func Open(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// OptionsFromConfig extracts the transaction options from the database config.
func OptionsFromConfig(cfg config.DatabaseConfig) Options {
	return Options{LockTimeout: cfg.LockTimeout, StatementTimeout: cfg.StatementTimeout}
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classifyError("ping", err)
	}
	return nil
}

// WithTransaction implements repository.Transactor. A failure inside fn rolls
// the transaction back and is returned unchanged apart from classification;
// a failing rollback is logged and never replaces the original failure.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	txID := uuid.NewString()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classifyError("begin transaction", err)
	}
	logger.TxBegin(ctx, txID)

	defer func() {
		if p := recover(); p != nil {
			logger.TxRollback(ctx, txID, fmt.Errorf("panic: %v", p), rollback(tx))
			panic(p)
		}
	}()

	if err := s.applyTimeouts(ctx, tx); err != nil {
		logger.TxRollback(ctx, txID, err, rollback(tx))
		return err
	}

	if err := fn(ctx, &txStore{tx: tx}); err != nil {
		err = classifyError("transaction", err)
		logger.TxRollback(ctx, txID, err, rollback(tx))
		return err
	}

	if err := tx.Commit(); err != nil {
		err = classifyError("commit", err)
		logger.ErrorContext(ctx, "Transaction commit failed", "tx", txID, "error", err)
		return err
	}
	logger.TxCommit(ctx, txID)
	return nil
}

// rollback treats sql.ErrTxDone as done: database/sql already rolled the
// transaction back when its context was cancelled.
func rollback(tx *sqlx.Tx) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (s *Store) applyTimeouts(ctx context.Context, tx *sqlx.Tx) error {
	// SET does not take bind parameters; the values are integers in milliseconds.
	if s.opts.LockTimeout > 0 {
		q := fmt.Sprintf("SET LOCAL lock_timeout = %d", s.opts.LockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return classifyError("set lock_timeout", err)
		}
	}
	if s.opts.StatementTimeout > 0 {
		q := fmt.Sprintf("SET LOCAL statement_timeout = %d", s.opts.StatementTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return classifyError("set statement_timeout", err)
		}
	}
	return nil
}

// classifyError wraps infrastructure errors with a failure kind. Errors that
// already carry a kind are returned as is.
func classifyError(op string, err error) error {
	if err == nil || domain.IsDomainError(err) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w (%w): %s: %w", domain.ErrTimeout, domain.ErrStorage, op, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%w (%w): %s: %w", domain.ErrTimeout, domain.ErrStorage, op, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s: referenced row does not exist: %w", domain.ErrNotFound, op, err)
		}
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrStorage, op, err)
}

func notFoundOr(op string, err error, what string, id int32) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, what, id)
	}
	return classifyError(op, err)
}
