package persister

import (
	"context"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/archive"
	"github.com/iota-uz/persistsvc/internal/domain/highlight"
	"github.com/iota-uz/persistsvc/internal/domain/job"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/service/dispatcher"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Persister runs a single job to completion, abort, or
// duplicate-detection (spec.md §4.6).
type Persister struct {
	deps Deps
	log  *logrus.Logger
}

// New builds a Persister from deps. deps.Now defaults to time.Now and
// deps.ServiceIdentity defaults to job.ServiceIdentity if unset.
func New(deps Deps, log *logrus.Logger) *Persister {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ServiceIdentity == "" {
		deps.ServiceIdentity = job.ServiceIdentity
	}
	return &Persister{deps: deps, log: log}
}

// Run executes the full lifecycle for jobID. A duplicate claim is not
// an error condition the caller need act on beyond logging: Run
// returns svcerrors.ErrDuplicatePersistJob so the worker pool can tell
// it apart from a genuine failure.
func (p *Persister) Run(ctx context.Context, jobID uint64) error {
	runID := uuid.New()
	log := p.log.WithFields(logrus.Fields{"job_id": jobID, "run_id": runID.String()})

	var claimed bool
	claimErr := p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		claimed, err = p.deps.Jobs.Claim(ctx, jobID, p.deps.ServiceIdentity)
		return err
	})
	if claimErr != nil {
		return errors.Wrap(claimErr, "claim persist job")
	}
	if !claimed {
		log.Info("persist job already claimed by another worker")
		return svcerrors.ErrDuplicatePersistJob
	}

	var chatSessionID uint64
	var rootTitle string

	runErr := p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		chatSessionID, err = p.deps.Jobs.ChatSessionID(ctx, jobID)
		if err != nil {
			return errors.Wrap(err, "load chat session id")
		}
		log = log.WithField("chat_session_id", chatSessionID)

		topics, err := p.deps.Topics.ListBySession(ctx, chatSessionID)
		if err != nil {
			return errors.Wrap(err, "load topics")
		}
		collection := topic.New(topics)

		raw, err := p.deps.Messages.ListBySession(ctx, chatSessionID)
		if err != nil {
			return errors.Wrap(err, "load messages")
		}

		d := dispatcher.New(collection, chatSessionID, p.deps.SpeakingThreshold, log)
		for _, r := range raw {
			decoded, err := message.Decode(r)
			if err != nil {
				return errors.Wrap(err, "decode message")
			}
			if err := d.Process(decoded); err != nil {
				return errors.Wrap(err, "process message")
			}
		}

		models, err := d.Finalize()
		if err != nil {
			return errors.Wrap(err, "finalize message interpretation")
		}

		if err := p.deps.Models.Write(ctx, chatSessionID, models); err != nil {
			return errors.Wrap(err, "write minutes, markers, and tags")
		}

		archiveJob := archive.NewJob(chatSessionID, p.deps.Now())
		if err := p.deps.Archive.Enqueue(ctx, archiveJob); err != nil {
			return errors.Wrap(err, "enqueue archive job")
		}

		if err := p.deps.Jobs.Finish(ctx, jobID); err != nil {
			return errors.Wrap(err, "finish persist job")
		}

		rootTitle, err = p.deps.Highlights.RootTopicTitle(ctx, chatSessionID)
		if err != nil {
			return errors.Wrap(err, "load root topic title")
		}

		return nil
	})

	if runErr != nil {
		p.abort(ctx, jobID, log, runErr)
		return runErr
	}

	p.runHighlights(ctx, chatSessionID, rootTitle, log)
	return nil
}

// runHighlights processes each participant's highlight session in its
// own transaction, independent of the already-committed main job
// output (spec.md §4.6 step 3). A uniqueness conflict rolls back only
// that participant's insert and is logged, not propagated: the job
// has already succeeded.
func (p *Persister) runHighlights(ctx context.Context, chatSessionID uint64, rootTitle string, log *logrus.Entry) {
	if rootTitle == highlight.TutorialRootTitle {
		log.Debug("tutorial chat, skipping highlight session creation")
		return
	}

	var participants []uint
	err := p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		participants, err = p.deps.Highlights.ListParticipants(ctx, chatSessionID)
		return err
	})
	if err != nil {
		log.WithError(err).Warn("failed to list chat participants for highlight pass")
		return
	}

	for _, userID := range participants {
		err := p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
			rank, err := p.deps.Highlights.CountForUser(ctx, userID)
			if err != nil {
				return err
			}
			return p.deps.Highlights.Insert(ctx, highlight.ChatHighlightSession{
				ChatSessionID: chatSessionID,
				UserID:        userID,
				Rank:          rank,
			})
		})
		if err != nil {
			if errors.Is(err, highlight.ErrConflict) {
				log.WithField("user_id", userID).Debug("highlight session already exists, skipping")
				continue
			}
			log.WithError(err).WithField("user_id", userID).Warn("failed to create highlight session")
		}
	}
}

// abort records the failure on the job row in a fresh operation.
// RunInTx has already rolled back the failed transaction; per spec.md
// §4.6 step 5 and §7, owner and start stay set so re-processing is an
// explicit administrative act.
func (p *Persister) abort(ctx context.Context, jobID uint64, log *logrus.Entry, cause error) {
	log.WithError(cause).Error("persist job failed, aborting")
	err := p.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		return p.deps.Jobs.Abort(ctx, jobID)
	})
	if err != nil {
		log.WithError(err).Error("failed to record job abort, job remains claimed for operator review")
	}
}
