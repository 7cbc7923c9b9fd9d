package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx so the Postgres
// settings repository runs the same queries inside and outside ExecTx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

type txContextKey string

const pgxTxKey txContextKey = "settings_pgx_tx"

// SetTx stores a pgx transaction in the context
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, pgxTxKey, tx)
}

// GetTx returns the pgx transaction stored in ctx, or nil
func GetTx(ctx context.Context) pgx.Tx {
	tx, ok := ctx.Value(pgxTxKey).(pgx.Tx)
	if !ok {
		return nil
	}
	return tx
}
