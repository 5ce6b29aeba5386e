// Package dispatcher implements the message dispatcher (spec.md
// §4.5): it routes each decoded chat message to the matching
// sub-handler, classifies failures as soft (drop and continue) or
// hard (abort the job), and exposes finalize() to collect the full
// persistable model set.
package dispatcher

import (
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/marker"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/minute"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/domain/tag"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/service/markerhandler"
	"github.com/iota-uz/persistsvc/internal/service/minutehandler"
	"github.com/iota-uz/persistsvc/internal/service/taghandler"

	"github.com/sirupsen/logrus"
)

// Models is the full persistable output of one job's message stream:
// the concatenation spec.md §4.5 "finalize()" describes, kept as
// separate slices since each entity type is written to a distinct
// table.
type Models struct {
	Minutes []minute.ChatMinute
	Markers []marker.SpeakingMarker
	Tags    []tag.ChatTag
}

// Dispatcher owns one of each sub-handler for a single job's message
// stream.
type Dispatcher struct {
	log *logrus.Entry

	minute *minutehandler.Handler
	marker *markerhandler.Handler
	tag    *taghandler.Handler
}

// New constructs a dispatcher for chatSessionID over collection,
// instantiating and initializing the minute, marker, and tag
// handlers in that order — so the minute handler's active-minute is
// observable by the other two before any message is dispatched
// (spec.md §4.5).
func New(collection topic.Collection, chatSessionID uint64, speakingThreshold time.Duration, log *logrus.Entry) *Dispatcher {
	mh := minutehandler.New(collection, chatSessionID)
	markh := markerhandler.New(mh, speakingThreshold)
	th := taghandler.New(mh)

	mh.Initialize()
	markh.Initialize()
	th.Initialize()

	return &Dispatcher{log: log, minute: mh, marker: markh, tag: th}
}

// Process dispatches a single decoded message to its matching
// sub-handler. Soft failures are logged and swallowed; hard failures
// (and unrecognized expected-type routing bugs) propagate to the
// caller, which must abort the job.
func (d *Dispatcher) Process(msg message.Message) error {
	var err error

	switch msg.Header.Kind {
	case message.KindMinuteCreate:
		err = d.minute.CreateModels(msg)
	case message.KindMinuteUpdate:
		err = d.minute.UpdateModels(msg)
	case message.KindMarkerCreate:
		err = d.marker.CreateModels(msg)
	case message.KindTagCreate:
		err = d.tag.CreateModels(msg)
	case message.KindTagDelete:
		err = d.tag.DeleteModels(msg)
	default:
		// join, leave, whiteboard-*, start, end, connected, publishing:
		// benign, ignored.
		return nil
	}

	if err == nil {
		return nil
	}
	if svcerrors.IsSoft(err) {
		d.log.WithError(err).WithField("message_kind", msg.Header.Kind).Warn("dropping message after soft failure")
		return nil
	}
	return err
}

// Finalize returns the concatenation of minutes (rank order), markers
// (time order), and tags (time order), per spec.md §4.5.
func (d *Dispatcher) Finalize() (Models, error) {
	minutes, err := d.minute.Finalize()
	if err != nil {
		return Models{}, err
	}
	markers, err := d.marker.Finalize()
	if err != nil {
		return Models{}, err
	}
	tags, err := d.tag.Finalize()
	if err != nil {
		return Models{}, err
	}
	return Models{Minutes: minutes, Markers: markers, Tags: tags}, nil
}
