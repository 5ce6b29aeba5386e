package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/service/dispatcher"
	"github.com/iota-uz/persistsvc/internal/service/persister"
)

const (
	minuteInsertQuery = `
		INSERT INTO chat_minute (chat_session_id, topic_id, start_time, end_time)
		VALUES ($1, $2, $3, $4) RETURNING id`

	markerInsertQuery = `
		INSERT INTO chat_speaking_marker (chat_minute_id, user_id, start_time, end_time)
		VALUES ($1, $2, $3, $4)`

	tagInsertQuery = `
		INSERT INTO chat_tag (chat_minute_id, user_id, tag_ref_id, name, deleted)
		VALUES ($1, $2, $3, $4, $5)`
)

// PostgresModelWriter writes a dispatcher's finalized output inside
// the caller's transaction. Minutes are inserted first so their
// store-assigned ids can resolve the MinuteTopicID placeholders
// carried by markers and tags (spec.md §4.6 step 2, "ID-before-insert
// problem").
type PostgresModelWriter struct{}

func NewModelWriter() persister.ModelWriter {
	return &PostgresModelWriter{}
}

func (w *PostgresModelWriter) Write(ctx context.Context, chatSessionID uint64, m dispatcher.Models) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	minuteIDByTopic := make(map[uint]uint64, len(m.Minutes))
	for _, minute := range m.Minutes {
		var id uint64
		row := tx.QueryRow(ctx, minuteInsertQuery, chatSessionID, minute.TopicID, minute.Start, minute.End)
		if err := row.Scan(&id); err != nil {
			return errors.Wrap(err, "failed to insert chat minute")
		}
		minuteIDByTopic[minute.TopicID] = id
	}

	for _, marker := range m.Markers {
		minuteID, ok := minuteIDByTopic[marker.MinuteTopicID]
		if !ok {
			return errors.Errorf("speaking marker references unknown minute topic %d", marker.MinuteTopicID)
		}
		if _, err := tx.Exec(ctx, markerInsertQuery, minuteID, marker.UserID, marker.Start, marker.End); err != nil {
			return errors.Wrap(err, "failed to insert speaking marker")
		}
	}

	for _, tag := range m.Tags {
		minuteID, ok := minuteIDByTopic[tag.MinuteTopicID]
		if !ok {
			return errors.Errorf("chat tag references unknown minute topic %d", tag.MinuteTopicID)
		}
		if _, err := tx.Exec(ctx, tagInsertQuery, minuteID, tag.UserID, tag.TagRefID, tag.Name, tag.Deleted); err != nil {
			return errors.Wrap(err, "failed to insert chat tag")
		}
	}

	return nil
}
