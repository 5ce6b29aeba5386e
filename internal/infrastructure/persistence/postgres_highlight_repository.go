package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/domain/highlight"
	"github.com/iota-uz/persistsvc/internal/service/persister"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	highlightRootTopicTitleQuery = `
		SELECT t.title
		  FROM topic t
		  JOIN chat_session cs ON cs.chat_id = t.chat_id
		 WHERE cs.id = $1 AND t.parent_id IS NULL`

	highlightParticipantsQuery = `
		SELECT DISTINCT user_id FROM chat_user WHERE chat_session_id = $1`

	highlightCountForUserQuery = `
		SELECT COUNT(*) FROM chat_highlight_session WHERE user_id = $1`

	highlightInsertQuery = `
		INSERT INTO chat_highlight_session (chat_session_id, user_id, rank)
		VALUES ($1, $2, $3)`

	uniqueViolationCode = "23505"
)

// PostgresHighlightRepository implements persister.HighlightRepository.
// Insert relies on a unique constraint on (chat_session_id, user_id) to
// detect a racing highlight-session creation from user-initiated
// action, translating the driver's unique_violation into
// highlight.ErrConflict the way the teacher's repositories translate
// driver errors into domain sentinels.
type PostgresHighlightRepository struct{}

func NewHighlightRepository() persister.HighlightRepository {
	return &PostgresHighlightRepository{}
}

func (r *PostgresHighlightRepository) RootTopicTitle(ctx context.Context, chatSessionID uint64) (string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return "", err
	}

	var title string
	if err := tx.QueryRow(ctx, highlightRootTopicTitleQuery, chatSessionID).Scan(&title); err != nil {
		return "", errors.Wrap(err, "failed to load root topic title")
	}
	return title, nil
}

func (r *PostgresHighlightRepository) ListParticipants(ctx context.Context, chatSessionID uint64) ([]uint, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, highlightParticipantsQuery, chatSessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat session participants")
	}
	defer rows.Close()

	var ids []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresHighlightRepository) CountForUser(ctx context.Context, userID uint) (int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	if err := tx.QueryRow(ctx, highlightCountForUserQuery, userID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count highlight sessions for user")
	}
	return count, nil
}

func (r *PostgresHighlightRepository) Insert(ctx context.Context, session highlight.ChatHighlightSession) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, highlightInsertQuery, session.ChatSessionID, session.UserID, session.Rank)
	if err != nil {
		if isUniqueViolation(err) {
			return highlight.ErrConflict
		}
		return errors.Wrap(err, "failed to insert highlight session")
	}
	return nil
}

// isUniqueViolation recognizes a unique_violation regardless of
// whether it surfaces as pgx's own pgconn.PgError (the normal path for
// pgx/v5) or as lib/pq's *pq.Error (kept for any code still reached
// through a database/sql-backed connection, e.g. offline tooling built
// against the same schema).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
