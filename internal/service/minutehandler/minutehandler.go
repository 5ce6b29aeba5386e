// Package minutehandler implements the minute sub-handler of the
// message interpreter (spec.md §4.2): it derives start/end timestamps
// for every topic's chat minute from a chronological message stream,
// and tracks the single active minute that the marker and tag
// handlers bind their own output to.
package minutehandler

import (
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/minute"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/service/handler"

	"github.com/go-faster/errors"
)

// Handler is the minute sub-handler. It owns the active-minute
// pointer; the marker and tag handlers only read it through the
// handler.ActiveMinuteProvider interface.
type Handler struct {
	handler.Base

	collection    topic.Collection
	chatSessionID uint64

	minutes   map[uint]*minute.ChatMinute
	endChains map[uint][]uint // highest-ranked leaf topic id -> ordered ancestor topic ids

	activeTopicID  *uint
	previousLeafID *uint
}

// New builds a minute handler over collection, pre-computing the
// end-topic chain for every highest-ranked leaf (spec.md §4.2).
func New(collection topic.Collection, chatSessionID uint64) *Handler {
	h := &Handler{
		Base:          handler.Base{Name: "minute"},
		collection:    collection,
		chatSessionID: chatSessionID,
		minutes:       make(map[uint]*minute.ChatMinute),
		endChains:     make(map[uint][]uint),
	}
	for _, leaf := range collection.LeafListByRank() {
		if isHighestRankedLeaf(collection, leaf) {
			h.endChains[leaf.ID] = buildEndTopicChain(collection, leaf)
		}
	}
	return h
}

// Initialize creates one chat minute per topic with start = DEFAULT
// (the zero time.Time) and end = nil, per spec.md §4.2 "Initialize".
func (h *Handler) Initialize() {
	for _, t := range h.collection.AsListByRank() {
		h.minutes[t.ID] = &minute.ChatMinute{
			ChatSessionID: h.chatSessionID,
			TopicID:       t.ID,
		}
	}
}

// ActiveMinuteTopicID implements handler.ActiveMinuteProvider.
func (h *Handler) ActiveMinuteTopicID() (uint, bool) {
	if h.activeTopicID == nil {
		return 0, false
	}
	return *h.activeTopicID, true
}

// CreateModels processes a minute-create message (spec.md §4.2
// "Process minute-create").
func (h *Handler) CreateModels(msg message.Message) error {
	topicID := msg.MinuteCreate.TopicID

	t, ok := h.collection.AsDict()[topicID]
	if !ok {
		return errors.Wrapf(svcerrors.ErrTopicIdDoesNotExist, "topic %d", topicID)
	}
	if !h.collection.IsLeaf(t) {
		// Silent ignore, distinct from an unknown topic id (spec.md §9
		// Open Questions).
		return nil
	}

	ts := msg.Header.Timestamp

	// 1. Start this leaf's minute and make it active.
	h.minutes[topicID].Start = ts
	topicIDCopy := topicID
	h.activeTopicID = &topicIDCopy

	// 2. Walk the ancestor chain upward, starting any ancestor minute
	// still at DEFAULT; stop at the first already-started ancestor.
	cur := t
	for cur.HasParent() {
		parent, ok := h.collection.AsDict()[*cur.ParentID]
		if !ok {
			break
		}
		pm := h.minutes[parent.ID]
		if pm.Started() {
			break
		}
		pm.Start = ts
		cur = parent
	}

	// 3. Close the previous leaf and its end-topic chain at this same
	// timestamp.
	if h.previousLeafID != nil {
		h.closeLeaf(*h.previousLeafID, ts)
	}
	h.previousLeafID = &topicIDCopy

	return nil
}

// UpdateModels processes a minute-update message (spec.md §4.2
// "Process minute-update"), valid only for the final leaf (the leaf
// with no next topic).
func (h *Handler) UpdateModels(msg message.Message) error {
	topicID := msg.MinuteUpdate.TopicID

	t, ok := h.collection.AsDict()[topicID]
	if !ok {
		return errors.Wrapf(svcerrors.ErrTopicIdDoesNotExist, "topic %d", topicID)
	}
	if !h.collection.IsLeaf(t) {
		return nil
	}
	if _, hasNext := h.collection.Next(t); hasNext {
		return nil
	}

	h.closeLeaf(topicID, msg.Header.Timestamp)
	return nil
}

func (h *Handler) closeLeaf(leafID uint, ts time.Time) {
	end := ts
	h.minutes[leafID].End = &end
	for _, ancestorID := range h.endChains[leafID] {
		end := ts
		h.minutes[ancestorID].End = &end
	}
}

// Finalize collects every topic's minute in rank order. Per spec.md
// §4.2 "Finalize", a minute still missing a start or end fails the
// whole job.
func (h *Handler) Finalize() ([]minute.ChatMinute, error) {
	out := make([]minute.ChatMinute, 0, len(h.minutes))
	for _, t := range h.collection.AsListByRank() {
		m := h.minutes[t.ID]
		if !m.Valid() {
			return nil, errors.Wrapf(svcerrors.ErrInvalidChatMinute, "topic %d", t.ID)
		}
		out = append(out, *m)
	}
	return out, nil
}

// isHighestRankedLeaf reports whether leaf is the last topic at its
// level within its parent's subtree: either it is the last topic
// overall, or the topic immediately after it in rank order has a
// strictly smaller level.
func isHighestRankedLeaf(c topic.Collection, leaf topic.Topic) bool {
	next, ok := c.Next(leaf)
	if !ok {
		return true
	}
	return next.Level < leaf.Level
}

// buildEndTopicChain computes the ordered list of ancestor topics
// whose minute-end is set whenever leaf's minute ends (spec.md §4.2
// "End-topic chain").
func buildEndTopicChain(c topic.Collection, leaf topic.Topic) []uint {
	levelToClose := 1
	if next, ok := c.Next(leaf); ok {
		levelToClose = next.Level
	}

	closingLevel := leaf.Level
	var chain []uint

	cur, ok := c.Previous(leaf)
	for ok {
		if cur.Level < levelToClose {
			break
		}
		if !c.IsLeaf(cur) && cur.Level < closingLevel {
			chain = append(chain, cur.ID)
			closingLevel--
		}
		cur, ok = c.Previous(cur)
	}
	return chain
}
