// Package archive models the archive follow-up job queued once a chat
// session's minutes have been persisted.
package archive

import (
	"context"
	"time"
)

// DefaultDelay is how long after persisting a session's minutes the
// archive job becomes eligible to run, giving any straggling messages
// time to arrive before the session is sealed.
const DefaultDelay = 5 * time.Minute

// DefaultRetries is the retry budget handed to a freshly queued
// archive job.
const DefaultRetries = 3

// ChatArchiveJob is queued once per persisted chat session.
// RetriesRemaining is decremented by the archiving worker on failure;
// this package only creates and stores the row.
type ChatArchiveJob struct {
	ChatSessionID    uint64
	Created          time.Time
	NotBefore        time.Time
	RetriesRemaining int
}

// NewJob builds the archive job queued immediately after a persist
// job commits, using the default delay and retry budget.
func NewJob(chatSessionID uint64, created time.Time) ChatArchiveJob {
	return ChatArchiveJob{
		ChatSessionID:    chatSessionID,
		Created:          created,
		NotBefore:        created.Add(DefaultDelay),
		RetriesRemaining: DefaultRetries,
	}
}

// Store persists archive jobs as part of the persist job's commit.
type Store interface {
	Enqueue(ctx context.Context, job ChatArchiveJob) error
}
