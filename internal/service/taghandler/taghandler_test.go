package taghandler_test

import (
	"testing"

	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/service/taghandler"
	"github.com/stretchr/testify/require"
)

type fakeActiveMinute struct {
	topicID uint
	active  bool
}

func (f fakeActiveMinute) ActiveMinuteTopicID() (uint, bool) { return f.topicID, f.active }

func tagCreate(id, name string, userID uint, atSec float64) message.Message {
	return message.Message{
		Header:    message.Header{Kind: message.KindTagCreate, Timestamp: message.UnixSeconds(atSec)},
		TagCreate: &message.TagCreate{TagID: id, Name: name, UserID: userID},
	}
}

func tagDelete(id string, atSec float64) message.Message {
	return message.Message{
		Header:    message.Header{Kind: message.KindTagDelete, Timestamp: message.UnixSeconds(atSec)},
		TagDelete: &message.TagDelete{TagID: id},
	}
}

// TestHandler_ScenarioA reproduces spec.md Scenario A's tag sequence:
// two surviving tags ("Tag" and "dup" via id "c"), "del" removed by
// its own delete, and "dup" via id "d" dropped as a duplicate triple.
func TestHandler_ScenarioA(t *testing.T) {
	h := taghandler.New(fakeActiveMinute{topicID: 2, active: true})
	h.Initialize()

	require.NoError(t, h.CreateModels(tagCreate("a", "Tag", 1, 1345643936)))
	require.NoError(t, h.CreateModels(tagCreate("b", "del", 1, 1345643943)))
	require.NoError(t, h.DeleteModels(tagDelete("b", 1345643948)))
	require.NoError(t, h.CreateModels(tagCreate("c", "dup", 1, 1345643953)))
	require.NoError(t, h.CreateModels(tagCreate("d", "dup", 1, 1345643957)))

	tags, err := h.Finalize()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "a", tags[0].TagRefID)
	require.Equal(t, "Tag", tags[0].Name)
	require.Equal(t, "c", tags[1].TagRefID)
	require.Equal(t, "dup", tags[1].Name)
	for _, tg := range tags {
		require.Equal(t, uint(2), tg.MinuteTopicID)
		require.False(t, tg.Deleted)
	}
}

func TestHandler_DuplicateTagIdIsSoftFailure(t *testing.T) {
	h := taghandler.New(fakeActiveMinute{topicID: 1, active: true})
	h.Initialize()

	require.NoError(t, h.CreateModels(tagCreate("x", "n", 1, 1)))
	err := h.CreateModels(tagCreate("x", "n2", 1, 2))
	require.ErrorIs(t, err, svcerrors.ErrDuplicateTagId)
	require.True(t, svcerrors.IsSoft(err))
}

func TestHandler_DeleteUnknownTagIsSoftFailure(t *testing.T) {
	h := taghandler.New(fakeActiveMinute{topicID: 1, active: true})
	h.Initialize()

	err := h.DeleteModels(tagDelete("missing", 1))
	require.ErrorIs(t, err, svcerrors.ErrTagIdDoesNotExist)
	require.True(t, svcerrors.IsSoft(err))
}

func TestHandler_DeleteAlreadyDeletedIsIgnored(t *testing.T) {
	h := taghandler.New(fakeActiveMinute{topicID: 1, active: true})
	h.Initialize()

	require.NoError(t, h.CreateModels(tagCreate("x", "n", 1, 1)))
	require.NoError(t, h.DeleteModels(tagDelete("x", 2)))
	require.NoError(t, h.DeleteModels(tagDelete("x", 3)), "second delete of an already-deleted tag is a no-op")

	tags, err := h.Finalize()
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestHandler_NoActiveMinuteIsSoftFailure(t *testing.T) {
	h := taghandler.New(fakeActiveMinute{active: false})
	h.Initialize()

	err := h.CreateModels(tagCreate("x", "n", 1, 1))
	require.ErrorIs(t, err, svcerrors.ErrNoActiveChatMinute)
}
