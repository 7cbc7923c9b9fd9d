package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workspacemanager/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface.
// Change notifications raised inside a transaction are held until commit.
type TransactionManager struct {
	pool     *pgxpool.Pool
	notifier *SettingsRepository
	logger   *slog.Logger
}

// NewTransactionManager creates a new transaction manager.
// notifier may be nil when no repository needs post-commit notifications.
func NewTransactionManager(pool *pgxpool.Pool, notifier *SettingsRepository, logger *slog.Logger) repositories.TransactionManager {
	return &TransactionManager{pool: pool, notifier: notifier, logger: logger}
}

// ExecTx executes a function within a transaction. Nested calls join the
// outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if repositories.GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	pending := &pendingChanges{}
	txCtx := withPending(repositories.SetTx(ctx, tx), pending)

	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if tm.notifier != nil {
		tm.notifier.notify(pending.list())
	}
	return nil
}
