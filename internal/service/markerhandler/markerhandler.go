// Package markerhandler implements the marker sub-handler of the
// message interpreter (spec.md §4.3): it pairs speaking-start and
// speaking-end markers per user into speaking-interval entities bound
// to the chat minute active at the moment speaking started.
package markerhandler

import (
	"sort"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/marker"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/service/handler"
)

type userState struct {
	isSpeaking bool
	start      time.Time
	// minuteTopicID is the active minute when speaking started;
	// hasMinute is false if no minute was active then.
	minuteTopicID uint
	hasMinute     bool
}

// Handler is the marker sub-handler. It only reacts to speaking-kind
// marker-create messages; marker-update/delete are not part of the
// wire protocol (spec.md §4.5 expected type set), so Handler leaves
// UpdateModels and DeleteModels at handler.Base's loudly-failing
// defaults.
type Handler struct {
	handler.Base

	activeMinute handler.ActiveMinuteProvider
	threshold    time.Duration

	byUser  map[uint]*userState
	markers []marker.SpeakingMarker
}

// New builds a marker handler bound to activeMinute, the minute
// handler's active-minute query surface, and threshold, the minimum
// speaking duration required to emit a marker (spec.md §9 Open
// Questions: shipped as zero, meaning every matched pair emits).
func New(activeMinute handler.ActiveMinuteProvider, threshold time.Duration) *Handler {
	return &Handler{
		Base:         handler.Base{Name: "marker"},
		activeMinute: activeMinute,
		threshold:    threshold,
		byUser:       make(map[uint]*userState),
	}
}

func (h *Handler) Initialize() {}

// CreateModels processes a marker-create message (spec.md §4.3 state
// machine). Non-speaking marker kinds are ignored.
func (h *Handler) CreateModels(msg message.Message) error {
	mc := msg.MarkerCreate
	if mc.Marker != message.MarkerKindSpeaking {
		return nil
	}

	st, ok := h.byUser[mc.UserID]
	if !ok {
		st = &userState{}
		h.byUser[mc.UserID] = st
	}

	if mc.IsSpeaking {
		if st.isSpeaking {
			// Duplicate speaking-start, produced by non-speaking
			// participants' clients. Ignore.
			return nil
		}
		st.isSpeaking = true
		st.start = msg.Header.Timestamp
		st.minuteTopicID, st.hasMinute = h.activeMinute.ActiveMinuteTopicID()
		return nil
	}

	if !st.isSpeaking {
		// Speaking-end with no matching start. Ignore.
		return nil
	}

	start, topicID, hasMinute := st.start, st.minuteTopicID, st.hasMinute

	// Reset to initial state regardless of emission.
	*st = userState{}

	if !hasMinute {
		return svcerrors.ErrNoActiveChatMinute
	}

	end := msg.Header.Timestamp
	duration := end.Sub(start)
	if duration > h.threshold {
		h.markers = append(h.markers, marker.SpeakingMarker{
			UserID:        mc.UserID,
			MinuteTopicID: topicID,
			Start:         start,
			End:           end,
		})
	}
	return nil
}

// Finalize returns the emitted markers sorted by start timestamp
// ascending (spec.md §4.3 "Finalize").
func (h *Handler) Finalize() ([]marker.SpeakingMarker, error) {
	out := append([]marker.SpeakingMarker(nil), h.markers...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
