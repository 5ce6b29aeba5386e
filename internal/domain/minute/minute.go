// Package minute models the chat minute: the time interval during
// which a given topic was active.
package minute

import "time"

// ChatMinute is created for every topic in a chat's topic tree, not
// only leaves. Start is the zero time.Time (the spec's DEFAULT
// sentinel) until the minute handler sets it; End is nil until set.
type ChatMinute struct {
	ChatSessionID uint64
	TopicID       uint
	Start         time.Time
	End           *time.Time
}

// Started reports whether Start has been set to something other than
// the DEFAULT sentinel.
func (m ChatMinute) Started() bool {
	return !m.Start.IsZero()
}

// Closed reports whether End has been set.
func (m ChatMinute) Closed() bool {
	return m.End != nil
}

// Valid reports whether both Start and End are set, the precondition
// for a minute to be persistable at finalize.
func (m ChatMinute) Valid() bool {
	return m.Started() && m.Closed()
}
