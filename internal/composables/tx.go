// Package composables carries request-scoped collaborators through
// context.Context, following the teacher repository's pattern
// (pkg/composables in iota-uz/iota-sdk) of threading the active
// transaction rather than passing it explicitly through every
// repository method signature. Unlike the teacher, this package
// carries no tenant id: spec.md's data model has no tenancy concept.
package composables

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// ErrNoTx is returned by UseTx when ctx carries no transaction.
var ErrNoTx = errors.New("no transaction in context")

// WithTx returns a copy of ctx carrying tx as the active transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// UseTx retrieves the transaction stashed by WithTx.
func UseTx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, ErrNoTx
	}
	return tx, nil
}
