// Package models holds the raw database row shapes for the
// persistence layer, kept distinct from the domain types in
// internal/domain/*: row structs follow the store's column types
// exactly (nullable columns as pointers), while domain types follow
// spec.md's invariants. Repositories map between the two.
package models

import "time"

// PersistJob is the chat_persist_job row shape.
type PersistJob struct {
	ID            uint64
	ChatSessionID uint64
	Created       time.Time
	Owner         *string
	Start         *time.Time
	End           *time.Time
	Successful    *bool
}

// Topic is the topic row shape.
type Topic struct {
	ID          uint
	ParentID    *uint
	Rank        int
	Level       int
	Title       string
	Description string
}

// ChatMessage is the chat_message row shape, joined with
// chat_message_format_type to resolve FormatType.
type ChatMessage struct {
	ID            uint64
	ChatSessionID uint64
	Kind          string
	Timestamp     time.Time
	FormatType    string
	PayloadB64    string
}

// ChatMinute is the chat_minute row shape.
type ChatMinute struct {
	ChatSessionID uint64
	TopicID       uint
	Start         time.Time
	End           *time.Time
}

// ChatSpeakingMarker is the chat_speaking_marker row shape.
type ChatSpeakingMarker struct {
	ChatMinuteID uint64
	UserID       uint
	Start        time.Time
	End          time.Time
}

// ChatTag is the chat_tag row shape.
type ChatTag struct {
	ChatMinuteID uint64
	UserID       uint
	TagRefID     string
	Name         string
	Deleted      bool
}

// ChatArchiveJob is the chat_archive_job row shape.
type ChatArchiveJob struct {
	ChatSessionID    uint64
	Created          time.Time
	NotBefore        time.Time
	RetriesRemaining int
}

// ChatHighlightSession is the chat_highlight_session row shape.
type ChatHighlightSession struct {
	ChatSessionID uint64
	UserID        uint
	Rank          int
}
