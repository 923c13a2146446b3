package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrOrderNotFound means the referenced order does not exist or is outside
// the caller's store scope.
var ErrOrderNotFound = errors.New("supply order not found")

// ErrContention means the per-order transaction could not be committed
// within the retry budget because of concurrent conflicting writes.
var ErrContention = errors.New("order is locked by a concurrent operation")

// Postgres error codes that signal a retryable per-order conflict.
const (
	pqLockNotAvailable     = "55P03"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type Store struct {
	db           *sqlx.DB
	lockAttempts int
	lockBackoff  time.Duration
}

// NewStore creates a new database store
func NewStore(databaseURL string, lockAttempts int, lockBackoff time.Duration) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if lockAttempts < 1 {
		lockAttempts = 1
	}

	return &Store{db: db, lockAttempts: lockAttempts, lockBackoff: lockBackoff}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// WithOrderTx runs fn inside a transaction holding the row lock for the
// given order, so all mutations on one order are linearized. The lock is
// taken with NOWAIT and retried with backoff rather than queueing
// indefinitely; an exhausted budget surfaces ErrContention. Orders are
// locked independently, there is no global lock.
func (s *Store) WithOrderTx(ctx context.Context, orderID int64, fn func(tx *sqlx.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < s.lockAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.lockBackoff * time.Duration(attempt)):
			}
		}

		err := s.runOrderTx(ctx, orderID, fn)
		if err == nil {
			return nil
		}
		if !isRetryableConflict(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: order %d after %d attempts: %v", ErrContention, orderID, s.lockAttempts, lastErr)
}

func (s *Store) runOrderTx(ctx context.Context, orderID int64, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.GetContext(ctx, &locked,
		"SELECT id FROM supply_orders WHERE id = $1 FOR UPDATE NOWAIT", orderID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock order %d: %w", orderID, err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func isRetryableConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pqLockNotAvailable, pqSerializationFailure, pqDeadlockDetected:
		return true
	}
	return false
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}

// IncrementStock credits quantity back to sellable stock for a product at a
// store. Upsert keeps the call safe for products without a stock row yet.
func (s *Store) IncrementStock(ctx context.Context, productID, storeID int64, quantity int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_levels (product_id, store_id, available, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET available = stock_levels.available + $3, updated_at = NOW()`,
		productID, storeID, quantity)
	return err
}

// InsertActivity appends one row to the audit trail.
func (s *Store) InsertActivity(ctx context.Context, eventType, description, metadata string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity_log (event_type, description, metadata) VALUES ($1, $2, $3)",
		eventType, description, metadata)
	return err
}
