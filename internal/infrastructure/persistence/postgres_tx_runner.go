package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTxRunner implements persister.TxRunner against a pgxpool
// pool, following the teacher's own begin/WithTx/commit-or-rollback
// sequence (modules/crm/services/chat_service.go) rather than relying
// on pgx's built-in pgx.BeginFunc: every repository call inside fn
// retrieves the live transaction via composables.UseTx, so the whole
// job body in persister.Run commits or rolls back as one unit.
type PostgresTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *PostgresTxRunner {
	return &PostgresTxRunner{pool: pool}
}

func (r *PostgresTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(composables.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
