package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed on panic", "error", rbErr, "panic_value", p)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
