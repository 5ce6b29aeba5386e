// Package job models the persist job: the unit of work claimed by
// exactly one worker across the cluster and run to completion, abort,
// or duplicate-detection.
package job

import (
	"context"
	"time"
)

// ServiceIdentity is the literal owner string written when a worker
// claims a job.
const ServiceIdentity = "persistsvc"

// PersistJob is a unit of work: "process this chat session into
// derived entities."
type PersistJob struct {
	ID            uint64
	ChatSessionID uint64
	Created       time.Time
	Owner         *string
	Start         *time.Time
	End           *time.Time
	Successful    *bool
}

// Unclaimed reports whether the job has never been picked up by any
// worker: owner and start are both unset.
func (j PersistJob) Unclaimed() bool {
	return j.Owner == nil && j.Start == nil
}

// Repository is the store-backed gateway for persist jobs. Claim is
// the only mutation that must race-proof across processes; Finish and
// Abort run inside the caller's transaction once a job is already
// exclusively owned by this worker.
type Repository interface {
	// Claim performs the conditional update that gives this worker
	// exclusive ownership: UPDATE ... SET owner=?, start=now() WHERE
	// id=? AND owner IS NULL. It reports whether the update affected a
	// row; false means another worker won the race.
	Claim(ctx context.Context, jobID uint64, owner string) (bool, error)

	// ChatSessionID returns the chat session a job refers to.
	ChatSessionID(ctx context.Context, jobID uint64) (uint64, error)

	// Finish marks a job successful: end = now, successful = true.
	Finish(ctx context.Context, jobID uint64) error

	// Abort marks a job failed, leaving owner and start populated so
	// re-processing requires an explicit administrative act.
	Abort(ctx context.Context, jobID uint64) error

	// ListUnclaimed returns the ids of every job with owner IS NULL
	// AND start IS NULL, for the monitor's poll loop.
	ListUnclaimed(ctx context.Context) ([]uint64, error)
}
