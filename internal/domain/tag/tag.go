// Package tag models chat tags: entities derived from tag-create and
// tag-delete messages, surviving only if not deleted within the same
// minute.
package tag

// ChatTag is tentatively created on tag-create and may be withdrawn
// by a later tag-delete in the same minute. MinuteTopicID identifies
// the owning minute by topic id (see marker.SpeakingMarker for why).
type ChatTag struct {
	UserID        uint
	MinuteTopicID uint
	TagRefID      string
	Name          string
	Deleted       bool
}
