// Package marker models speaking-interval entities derived by
// pairing speaking-start/speaking-end markers per user.
package marker

import "time"

// SpeakingMarker records one user's speaking interval, bound to the
// chat minute that was active when the interval started.
// MinuteTopicID identifies that minute by its topic id, since the
// store-assigned chat_minute_id is only known once minutes are
// inserted; the persister resolves this to a real foreign key at
// write time.
type SpeakingMarker struct {
	UserID        uint
	MinuteTopicID uint
	Start         time.Time
	End           time.Time
}
