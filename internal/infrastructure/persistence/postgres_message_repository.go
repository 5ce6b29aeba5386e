package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/persistsvc/internal/composables"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/infrastructure/persistence/models"
	"github.com/iota-uz/persistsvc/internal/service/persister"
)

const messageListBySessionQuery = `
	SELECT cm.id, cm.chat_session_id, cm.timestamp, cm.kind, cmft.name, cm.payload_b64
	  FROM chat_message cm
	  JOIN chat_message_format_type cmft ON cmft.id = cm.format_type_id
	 WHERE cm.chat_session_id = $1 AND cmft.name = $2
	 ORDER BY cm.timestamp, cm.id`

// PostgresMessageRepository reads a chat session's message log in
// timestamp order, resolving the format-type join the same way
// dialogue_repository.go resolves its own lookup tables (spec.md §3
// "ChatMessageFormatType").
type PostgresMessageRepository struct{}

func NewMessageRepository() persister.MessageRepository {
	return &PostgresMessageRepository{}
}

func (r *PostgresMessageRepository) ListBySession(ctx context.Context, chatSessionID uint64) ([]message.RawMessage, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, messageListBySessionQuery, chatSessionID, message.FormatThriftBinaryBase64)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages for chat session")
	}
	defer rows.Close()

	var result []message.RawMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChatSessionID, &m.Timestamp, &m.Kind, &m.FormatType, &m.PayloadB64); err != nil {
			return nil, err
		}
		result = append(result, message.RawMessage{
			Header: message.Header{
				ID:            m.ID,
				ChatSessionID: m.ChatSessionID,
				Timestamp:     m.Timestamp,
				FormatType:    m.FormatType,
				Kind:          message.Kind(m.Kind),
			},
			PayloadB64: m.PayloadB64,
		})
	}
	return result, rows.Err()
}
