package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// WithTransaction executes fn inside a database transaction
func WithTransaction(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

// Transactor implements database.Transactor on top of WithTransaction.
type Transactor struct {
	db          *database.DB
	lockTimeout time.Duration
}

// NewTransactor returns a Transactor. A positive lockTimeout bounds how long
// row locks taken inside a transaction may wait.
func NewTransactor(db *database.DB, lockTimeout time.Duration) *Transactor {
	return &Transactor{db: db, lockTimeout: lockTimeout}
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := database.TxFromContext(ctx); ok {
		return fn(ctx)
	}

	return WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
		if t.lockTimeout > 0 {
			timeout := fmt.Sprintf("%dms", t.lockTimeout.Milliseconds())
			if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
				return fmt.Errorf("set lock_timeout: %w", err)
			}
		}
		return fn(database.ContextWithTx(ctx, tx))
	})
}
