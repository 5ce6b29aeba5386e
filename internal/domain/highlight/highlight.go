// Package highlight models per-user highlight sessions created for
// each participant of a persisted chat session, so a highlight reel
// can later be assembled per participant.
package highlight

import "github.com/go-faster/errors"

// TutorialRootTitle is the root topic title that marks a chat as a
// tutorial chat, excluded from highlight-session creation entirely
// (spec.md §4.6 step 3, GLOSSARY "Tutorial chat").
const TutorialRootTitle = "Tutorial"

// ErrConflict is returned by a highlight repository's Insert when the
// participant already has a highlight session for this chat — a race
// with a user-initiated action, not a failure of the persist job.
var ErrConflict = errors.New("highlight session already exists for this chat and user")

// ChatHighlightSession records that a user participated in a chat
// session and should receive a highlight reel. Rank is the number of
// highlight sessions the user already had when this one was created,
// so a user's sessions are ranked 0, 1, 2, ... in creation order.
type ChatHighlightSession struct {
	ChatSessionID uint64
	UserID        uint
	Rank          int
}
