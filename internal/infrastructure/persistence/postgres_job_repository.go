package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/domain/job"
)

const (
	jobClaimQuery = `
		UPDATE chat_persist_job
		   SET owner = $1, start_time = now()
		 WHERE id = $2 AND owner IS NULL`

	jobChatSessionIDQuery = `SELECT chat_session_id FROM chat_persist_job WHERE id = $1`

	jobFinishQuery = `
		UPDATE chat_persist_job
		   SET end_time = now(), successful = true
		 WHERE id = $1`

	jobAbortQuery = `
		UPDATE chat_persist_job
		   SET end_time = now(), successful = false
		 WHERE id = $1`

	jobListUnclaimedQuery = `SELECT id FROM chat_persist_job WHERE owner IS NULL AND start_time IS NULL ORDER BY created_at`
)

// PostgresJobRepository implements job.Repository against the
// chat_persist_job table, grounded on the owner-column claim pattern
// spec.md §4.1 describes: a conditional UPDATE is the only thing that
// can race two workers onto the same job, so Claim reports success via
// the affected row count rather than a prior SELECT.
type PostgresJobRepository struct{}

func NewJobRepository() job.Repository {
	return &PostgresJobRepository{}
}

func (r *PostgresJobRepository) Claim(ctx context.Context, jobID uint64, owner string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx, jobClaimQuery, owner, jobID)
	if err != nil {
		return false, errors.Wrap(err, "failed to claim persist job")
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresJobRepository) ChatSessionID(ctx context.Context, jobID uint64) (uint64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var chatSessionID uint64
	if err := tx.QueryRow(ctx, jobChatSessionIDQuery, jobID).Scan(&chatSessionID); err != nil {
		return 0, errors.Wrap(err, "failed to load chat session id for persist job")
	}
	return chatSessionID, nil
}

func (r *PostgresJobRepository) Finish(ctx context.Context, jobID uint64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, jobFinishQuery, jobID); err != nil {
		return errors.Wrap(err, "failed to finish persist job")
	}
	return nil
}

func (r *PostgresJobRepository) Abort(ctx context.Context, jobID uint64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, jobAbortQuery, jobID); err != nil {
		return errors.Wrap(err, "failed to abort persist job")
	}
	return nil
}

func (r *PostgresJobRepository) ListUnclaimed(ctx context.Context) ([]uint64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, jobListUnclaimedQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list unclaimed persist jobs")
	}
	defer rows.Close()

	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
