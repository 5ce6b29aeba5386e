// Package svcerrors defines the named failure conditions that the
// message interpreter and job coordinator distinguish between, and
// classifies each as hard (abort the job) or soft (drop the message,
// keep going).
package svcerrors

import "github.com/go-faster/errors"

var (
	// ErrDuplicatePersistJob is raised when the claim update for a
	// persist job affects zero rows: another worker already owns it.
	ErrDuplicatePersistJob = errors.New("persist job already claimed")

	// ErrTopicIdDoesNotExist is raised when a message refers to a
	// topic id outside the chat's topic tree.
	ErrTopicIdDoesNotExist = errors.New("topic id does not exist in chat's topic tree")

	// ErrInvalidChatMinute is raised at finalize when a chat minute's
	// start or end was never set.
	ErrInvalidChatMinute = errors.New("chat minute has unset start or end")

	// ErrNoActiveChatMinute is raised when a tag or marker message
	// arrives before any minute-create has been accepted.
	ErrNoActiveChatMinute = errors.New("no active chat minute")

	// ErrDuplicateTagId is raised when a tag-create repeats an
	// already-seen tag id.
	ErrDuplicateTagId = errors.New("duplicate tag id")

	// ErrTagIdDoesNotExist is raised when a tag-delete refers to an
	// unknown tag id.
	ErrTagIdDoesNotExist = errors.New("tag id does not exist")
)

// IsSoft reports whether err (or a wrapped cause of it) is one of the
// soft failures that the dispatcher should log and drop rather than
// propagate: NoActiveChatMinute, DuplicateTagId, TagIdDoesNotExist.
// Everything else — including TopicIdDoesNotExist and
// InvalidChatMinute — is hard and must abort the job.
func IsSoft(err error) bool {
	switch {
	case errors.Is(err, ErrNoActiveChatMinute):
		return true
	case errors.Is(err, ErrDuplicateTagId):
		return true
	case errors.Is(err, ErrTagIdDoesNotExist):
		return true
	default:
		return false
	}
}
