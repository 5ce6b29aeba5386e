package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/domain/archive"
)

const archiveJobInsertQuery = `
	INSERT INTO chat_archive_job (chat_session_id, created_at, not_before, retries_remaining)
	VALUES ($1, $2, $3, $4)`

// PostgresArchiveStore implements archive.Store, enqueuing the
// follow-up archive job inside the same transaction as the minutes it
// was derived from (spec.md §4.6 step 2, "archive job scheduling").
type PostgresArchiveStore struct{}

func NewArchiveStore() archive.Store {
	return &PostgresArchiveStore{}
}

func (s *PostgresArchiveStore) Enqueue(ctx context.Context, job archive.ChatArchiveJob) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, archiveJobInsertQuery, job.ChatSessionID, job.Created, job.NotBefore, job.RetriesRemaining)
	if err != nil {
		return errors.Wrap(err, "failed to enqueue chat archive job")
	}
	return nil
}
