package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/infrastructure/persistence/models"
	"github.com/iota-uz/persistsvc/internal/service/persister"
)

const topicListBySessionQuery = `
	SELECT t.id, t.parent_id, t.rank, t.level, t.title, t.description
	  FROM topic t
	  JOIN chat_session cs ON cs.chat_id = t.chat_id
	 WHERE cs.id = $1
	 ORDER BY t.rank`

// PostgresTopicRepository loads a chat's topic hierarchy by joining
// through chat_session to the owning chat, since the hierarchy is
// authored once per chat and shared by every session of that chat.
type PostgresTopicRepository struct{}

func NewTopicRepository() persister.TopicRepository {
	return &PostgresTopicRepository{}
}

func (r *PostgresTopicRepository) ListBySession(ctx context.Context, chatSessionID uint64) ([]topic.Topic, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, topicListBySessionQuery, chatSessionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list topics for chat session")
	}
	defer rows.Close()

	var result []topic.Topic
	for rows.Next() {
		var m models.Topic
		if err := rows.Scan(&m.ID, &m.ParentID, &m.Rank, &m.Level, &m.Title, &m.Description); err != nil {
			return nil, err
		}
		result = append(result, toDomainTopic(m))
	}
	return result, rows.Err()
}

func toDomainTopic(m models.Topic) topic.Topic {
	return topic.Topic{
		ID:          m.ID,
		ParentID:    m.ParentID,
		Rank:        m.Rank,
		Level:       m.Level,
		Title:       m.Title,
		Description: m.Description,
	}
}
