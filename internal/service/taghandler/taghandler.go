// Package taghandler implements the tag sub-handler of the message
// interpreter (spec.md §4.4): it derives the final surviving set of
// chat tags from an interleaving of tag-create and tag-delete
// messages, by building a survivor set rather than relying solely on
// store-level uniqueness constraints.
package taghandler

import (
	"sort"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/domain/tag"
	"github.com/iota-uz/persistsvc/internal/service/handler"
)

type tagRecord struct {
	entity    tag.ChatTag
	createdAt time.Time
}

// tripleKey is the (minute, user, name) uniqueness key that the
// handler's pre-check enforces alongside the store's own constraint
// (spec.md §9 Open Questions: the pre-check is kept because the
// current store aborts the enclosing session on a constraint
// violation, which this pipeline cannot tolerate mid-job).
type tripleKey struct {
	minuteTopicID uint
	userID        uint
	name          string
}

// Handler is the tag sub-handler. It reacts to tag-create and
// tag-delete messages; minute-create/update and marker-create are not
// part of its expected type set, so CreateModels and DeleteModels are
// overridden while UpdateModels stays at handler.Base's loudly-failing
// default.
type Handler struct {
	handler.Base

	activeMinute handler.ActiveMinuteProvider

	allTags       map[string]*tagRecord    // tag id -> record
	tagsToPersist map[uint]map[string]bool // minute topic id -> tag id -> present
	seenTriples   map[tripleKey]bool
}

// New builds a tag handler bound to activeMinute, the minute
// handler's active-minute query surface.
func New(activeMinute handler.ActiveMinuteProvider) *Handler {
	return &Handler{
		Base:          handler.Base{Name: "tag"},
		activeMinute:  activeMinute,
		allTags:       make(map[string]*tagRecord),
		tagsToPersist: make(map[uint]map[string]bool),
		seenTriples:   make(map[tripleKey]bool),
	}
}

func (h *Handler) Initialize() {}

// CreateModels processes a tag-create message (spec.md §4.4 "Process
// tag-create").
func (h *Handler) CreateModels(msg message.Message) error {
	tc := msg.TagCreate

	if _, seen := h.allTags[tc.TagID]; seen {
		return svcerrors.ErrDuplicateTagId
	}

	topicID, ok := h.activeMinute.ActiveMinuteTopicID()
	if !ok {
		return svcerrors.ErrNoActiveChatMinute
	}

	entity := tag.ChatTag{
		UserID:        tc.UserID,
		MinuteTopicID: topicID,
		TagRefID:      tc.TagID,
		Name:          tc.Name,
	}
	rec := &tagRecord{entity: entity, createdAt: msg.Header.Timestamp}
	h.allTags[tc.TagID] = rec

	key := tripleKey{minuteTopicID: topicID, userID: tc.UserID, name: tc.Name}
	if h.seenTriples[key] {
		// Duplicate (minute, user, name) triple: silent reject, the
		// store has a matching uniqueness constraint. The tag id is
		// recorded as seen but never enters tags_to_persist.
		return nil
	}
	h.seenTriples[key] = true

	if h.tagsToPersist[topicID] == nil {
		h.tagsToPersist[topicID] = make(map[string]bool)
	}
	h.tagsToPersist[topicID][tc.TagID] = true

	return nil
}

// DeleteModels processes a tag-delete message (spec.md §4.4 "Process
// tag-delete").
func (h *Handler) DeleteModels(msg message.Message) error {
	td := msg.TagDelete

	topicID, ok := h.activeMinute.ActiveMinuteTopicID()
	if !ok {
		return svcerrors.ErrNoActiveChatMinute
	}

	rec, ok := h.allTags[td.TagID]
	if !ok {
		return svcerrors.ErrTagIdDoesNotExist
	}

	present := h.tagsToPersist[topicID] != nil && h.tagsToPersist[topicID][td.TagID]
	if !present || rec.entity.Deleted {
		// Already deleted, or was a duplicate triple that never made
		// it into tags_to_persist: silently ignore.
		return nil
	}

	rec.entity.Deleted = true
	delete(h.tagsToPersist[topicID], td.TagID)
	return nil
}

// Finalize collects every tag still present in tags_to_persist,
// sorted by the original tag-create message's timestamp (spec.md
// §4.4 "Finalize").
func (h *Handler) Finalize() ([]tag.ChatTag, error) {
	type withTime struct {
		entity    tag.ChatTag
		createdAt time.Time
	}
	var out []withTime

	for _, tagIDs := range h.tagsToPersist {
		for tagID := range tagIDs {
			rec := h.allTags[tagID]
			out = append(out, withTime{entity: rec.entity, createdAt: rec.createdAt})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].createdAt.Before(out[j].createdAt) })

	result := make([]tag.ChatTag, len(out))
	for i, w := range out {
		result[i] = w.entity
	}
	return result, nil
}
