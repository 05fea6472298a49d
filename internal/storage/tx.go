package storage

import (
	"context"

	"github.com/uptrace/bun"
)

type txKey struct{}

// RunInTx executes fn inside a database transaction carried on the context.
// Repositories that resolve their executor through Exec participate in the
// same transaction, so callers can commit task and content mutations
// atomically. When a transaction is already present the existing one is
// reused; when db is nil (in-memory stores) fn runs without one.
func RunInTx(ctx context.Context, db *bun.DB, fn func(ctx context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}
	if _, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return fn(ctx)
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Exec returns the executor bound to the context transaction when one is
// active, falling back to the supplied database handle.
func Exec(ctx context.Context, db *bun.DB) bun.IDB {
	if tx, ok := ctx.Value(txKey{}).(bun.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether the context carries an active transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bun.Tx)
	return ok
}
