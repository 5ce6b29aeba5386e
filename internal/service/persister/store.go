// Package persister implements the persister component (spec.md
// §4.6): the end-to-end lifecycle of one persist job, from claim
// through load, decode, dispatch, write, and finish or abort.
package persister

import (
	"context"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/archive"
	"github.com/iota-uz/persistsvc/internal/domain/highlight"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/service/dispatcher"
)

// TxRunner runs fn inside a store transaction, committing on a nil
// return and rolling back otherwise. The postgres implementation
// stashes the live pgx.Tx into ctx via composables.WithTx so
// repositories can retrieve it with composables.UseTx; fakes used in
// unit tests can simply invoke fn(ctx) directly.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TopicRepository loads a chat session's topic tree, rank-ordered.
type TopicRepository interface {
	ListBySession(ctx context.Context, chatSessionID uint64) ([]topic.Topic, error)
}

// MessageRepository loads a chat session's message log, ordered by
// timestamp ascending, restricted to the supported format type
// (spec.md §4.6 step 2).
type MessageRepository interface {
	ListBySession(ctx context.Context, chatSessionID uint64) ([]message.RawMessage, error)
}

// ModelWriter stages the dispatcher's full output for insertion.
type ModelWriter interface {
	Write(ctx context.Context, chatSessionID uint64, models dispatcher.Models) error
}

// HighlightRepository coordinates the per-participant highlight pass
// (spec.md §4.6 step 3).
type HighlightRepository interface {
	// RootTopicTitle returns the chat's root topic title, used to
	// detect a tutorial chat (title == "Tutorial").
	RootTopicTitle(ctx context.Context, chatSessionID uint64) (string, error)
	// ListParticipants returns the user ids who participated in the
	// chat session.
	ListParticipants(ctx context.Context, chatSessionID uint64) ([]uint, error)
	// CountForUser returns how many highlight sessions the user
	// already has, across all chats, used as the new row's rank.
	CountForUser(ctx context.Context, userID uint) (int, error)
	// Insert inserts one highlight session. It returns
	// highlight.ErrConflict when the user already has a highlight
	// session for this chat (a race with user-initiated action); the
	// persister treats that as non-fatal.
	Insert(ctx context.Context, session highlight.ChatHighlightSession) error
}

// Deps collects every collaborator the persister needs for a single
// job run.
type Deps struct {
	Jobs       JobRepository
	Topics     TopicRepository
	Messages   MessageRepository
	Models     ModelWriter
	Archive    archive.Store
	Highlights HighlightRepository
	Tx         TxRunner

	ServiceIdentity   string
	SpeakingThreshold time.Duration
	Now               func() time.Time
}

// JobRepository is a narrowed view of job.Repository: the persister
// never needs ListUnclaimed (that belongs to the monitor).
type JobRepository interface {
	Claim(ctx context.Context, jobID uint64, owner string) (bool, error)
	ChatSessionID(ctx context.Context, jobID uint64) (uint64, error)
	Finish(ctx context.Context, jobID uint64) error
	Abort(ctx context.Context, jobID uint64) error
}
