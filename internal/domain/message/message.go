// Package message models the decoded chat-message stream that the
// interpreter pipeline consumes. The wire encoding itself is owned by
// an external chat service (spec Non-goals: no new wire protocol
// design); this package only represents the decoded result.
package message

import "time"

// Kind discriminates the chat message type tag.
type Kind string

const (
	KindJoin              Kind = "join"
	KindLeave             Kind = "leave"
	KindMinuteCreate      Kind = "minute_create"
	KindMinuteUpdate      Kind = "minute_update"
	KindTagCreate         Kind = "tag_create"
	KindTagDelete         Kind = "tag_delete"
	KindMarkerCreate      Kind = "marker_create"
	KindWhiteboardCreate  Kind = "whiteboard_create"
	KindWhiteboardDelete  Kind = "whiteboard_delete"
	KindWhiteboardPathAdd Kind = "whiteboard_path_create"
	KindWhiteboardPathDel Kind = "whiteboard_path_delete"
	KindChatStart         Kind = "start"
	KindChatEnd           Kind = "end"
	KindConnected         Kind = "connected"
	KindPublishing        Kind = "publishing"
)

// MarkerKind distinguishes the marker sub-types carried by a
// marker-create message. Only "speaking" markers are interpreted by
// the marker handler; other marker kinds are reserved by the wire
// protocol but unused by this service.
type MarkerKind string

const (
	MarkerKindSpeaking MarkerKind = "speaking"
)

// Header carries the fields common to every chat message regardless
// of kind.
type Header struct {
	ID            uint64
	ChatSessionID uint64
	Timestamp     time.Time
	FormatType    string
	Kind          Kind
}

// MinuteCreate is carried by a minute-create message: the leaf topic
// whose chat minute is starting.
type MinuteCreate struct {
	TopicID uint
}

// MinuteUpdate is carried by a minute-update message: the terminal
// leaf topic whose chat minute is ending.
type MinuteUpdate struct {
	TopicID uint
}

// TagCreate is carried by a tag-create message.
type TagCreate struct {
	TagID string
	Name  string
	UserID uint
}

// TagDelete is carried by a tag-delete message.
type TagDelete struct {
	TagID string
}

// MarkerCreate is carried by a marker-create message.
type MarkerCreate struct {
	Marker     MarkerKind
	UserID     uint
	IsSpeaking bool
}

// Message is a single decoded chat message. Exactly one of the
// payload fields is populated, selected by Header.Kind; messages of
// an ignored kind (join, leave, whiteboard-*, start, end, connected,
// publishing) carry no payload at all.
type Message struct {
	Header Header

	MinuteCreate *MinuteCreate
	MinuteUpdate *MinuteUpdate
	TagCreate    *TagCreate
	TagDelete    *TagDelete
	MarkerCreate *MarkerCreate
}
