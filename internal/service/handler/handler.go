// Package handler defines the shared shape of the three message
// interpreter sub-handlers (minute, marker, tag): per spec.md §9
// "Abstract base handler", an interface with initialize/create/update/
// delete operations, where an implementation that doesn't need a
// particular operation fails loudly if the dispatcher ever calls it —
// that would indicate a dispatcher bug, not a legitimate no-op.
package handler

import (
	"fmt"

	"github.com/iota-uz/persistsvc/internal/domain/message"
)

// Handler is the message-routing surface the dispatcher calls. Each
// sub-handler additionally exposes its own Finalize method returning
// its specific output type; Finalize is intentionally not part of
// this interface since each handler's persistable output differs.
type Handler interface {
	Initialize()
	CreateModels(msg message.Message) error
	UpdateModels(msg message.Message) error
	DeleteModels(msg message.Message) error
}

// Base gives every sub-handler a default, loudly-failing
// implementation of the three mutating operations. Sub-handlers embed
// Base and override only the operations their message kinds actually
// use.
type Base struct {
	Name string
}

func (b Base) Initialize() {}

func (b Base) CreateModels(message.Message) error {
	return fmt.Errorf("%s handler: create_models not supported, dispatcher bug", b.Name)
}

func (b Base) UpdateModels(message.Message) error {
	return fmt.Errorf("%s handler: update_models not supported, dispatcher bug", b.Name)
}

func (b Base) DeleteModels(message.Message) error {
	return fmt.Errorf("%s handler: delete_models not supported, dispatcher bug", b.Name)
}

// ActiveMinuteProvider is implemented by the minute handler and
// injected into the marker and tag handlers as a collaborator (spec.md
// §9: "inject the minute handler as a collaborator; no back-pointer
// from minute to marker/tag is needed"). It reports the topic id of
// the chat minute active at the moment of the call, if any.
type ActiveMinuteProvider interface {
	ActiveMinuteTopicID() (topicID uint, ok bool)
}
