package persister_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/archive"
	"github.com/iota-uz/persistsvc/internal/domain/highlight"
	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/iota-uz/persistsvc/internal/domain/svcerrors"
	"github.com/iota-uz/persistsvc/internal/domain/topic"
	"github.com/iota-uz/persistsvc/internal/service/dispatcher"
	"github.com/iota-uz/persistsvc/internal/service/persister"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func ptr(v uint) *uint { return &v }

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeJobs struct {
	claims        map[uint64]bool
	chatSessionID map[uint64]uint64
	finished      map[uint64]bool
	aborted       map[uint64]bool
}

func newFakeJobs(jobID, chatSessionID uint64) *fakeJobs {
	return &fakeJobs{
		claims:        map[uint64]bool{},
		chatSessionID: map[uint64]uint64{jobID: chatSessionID},
		finished:      map[uint64]bool{},
		aborted:       map[uint64]bool{},
	}
}

func (f *fakeJobs) Claim(_ context.Context, jobID uint64, _ string) (bool, error) {
	if f.claims[jobID] {
		return false, nil
	}
	f.claims[jobID] = true
	return true, nil
}

func (f *fakeJobs) ChatSessionID(_ context.Context, jobID uint64) (uint64, error) {
	return f.chatSessionID[jobID], nil
}

func (f *fakeJobs) Finish(_ context.Context, jobID uint64) error {
	f.finished[jobID] = true
	return nil
}

func (f *fakeJobs) Abort(_ context.Context, jobID uint64) error {
	f.aborted[jobID] = true
	return nil
}

type fakeTopics struct{ topics []topic.Topic }

func (f fakeTopics) ListBySession(context.Context, uint64) ([]topic.Topic, error) {
	return f.topics, nil
}

type fakeMessages struct{ raw []message.RawMessage }

func (f fakeMessages) ListBySession(context.Context, uint64) ([]message.RawMessage, error) {
	return f.raw, nil
}

type fakeModels struct {
	written  bool
	lastSeen dispatcher.Models
}

func (f *fakeModels) Write(_ context.Context, _ uint64, models dispatcher.Models) error {
	f.written = true
	f.lastSeen = models
	return nil
}

type fakeArchive struct{ jobs []archive.ChatArchiveJob }

func (f *fakeArchive) Enqueue(_ context.Context, job archive.ChatArchiveJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeHighlights struct {
	rootTitle    string
	participants []uint
	inserted     []highlight.ChatHighlightSession
}

func (f *fakeHighlights) RootTopicTitle(context.Context, uint64) (string, error) {
	return f.rootTitle, nil
}

func (f *fakeHighlights) ListParticipants(context.Context, uint64) ([]uint, error) {
	return f.participants, nil
}

func (f *fakeHighlights) CountForUser(context.Context, uint) (int, error) {
	return 0, nil
}

func (f *fakeHighlights) Insert(_ context.Context, session highlight.ChatHighlightSession) error {
	f.inserted = append(f.inserted, session)
	return nil
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(&bytes.Buffer{})
	return l
}

func singleTopicChat() []topic.Topic {
	return []topic.Topic{
		{ID: 1, ParentID: nil, Rank: 0, Level: 1, Title: "Root"},
		{ID: 2, ParentID: ptr(1), Rank: 1, Level: 2, Title: "T1"},
	}
}

func encodeTopicPayload(t *testing.T, topicID uint32) string {
	t.Helper()
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, topicID)
	return base64.StdEncoding.EncodeToString(b)
}

func TestPersister_SuccessfulRun(t *testing.T) {
	jobs := newFakeJobs(1, 100)
	models := &fakeModels{}
	archiveStore := &fakeArchive{}
	highlights := &fakeHighlights{rootTitle: "General", participants: []uint{7}}

	raw := []message.RawMessage{
		{Header: message.Header{Kind: message.KindMinuteCreate, FormatType: message.FormatThriftBinaryBase64, Timestamp: time.Unix(1, 0)}, PayloadB64: encodeTopicPayload(t, 2)},
		{Header: message.Header{Kind: message.KindMinuteUpdate, FormatType: message.FormatThriftBinaryBase64, Timestamp: time.Unix(2, 0)}, PayloadB64: encodeTopicPayload(t, 2)},
	}

	p := persister.New(persister.Deps{
		Jobs:              jobs,
		Topics:            fakeTopics{topics: singleTopicChat()},
		Messages:          fakeMessages{raw: raw},
		Models:            models,
		Archive:           archiveStore,
		Highlights:        highlights,
		Tx:                fakeTx{},
		ServiceIdentity:   "persistsvc",
		SpeakingThreshold: 0,
		Now:               func() time.Time { return time.Unix(1000, 0) },
	}, testLogger())

	err := p.Run(context.Background(), 1)
	require.NoError(t, err)

	require.True(t, jobs.finished[1])
	require.False(t, jobs.aborted[1])
	require.True(t, models.written)
	require.Len(t, models.lastSeen.Minutes, 2)
	require.Len(t, archiveStore.jobs, 1)
	require.Equal(t, uint64(100), archiveStore.jobs[0].ChatSessionID)
	require.Len(t, highlights.inserted, 1)
	require.Equal(t, uint(7), highlights.inserted[0].UserID)
}

func TestPersister_DuplicateClaimExitsCleanly(t *testing.T) {
	jobs := newFakeJobs(1, 100)
	jobs.claims[1] = true // already claimed

	p := persister.New(persister.Deps{
		Jobs:       jobs,
		Topics:     fakeTopics{topics: singleTopicChat()},
		Messages:   fakeMessages{},
		Models:     &fakeModels{},
		Archive:    &fakeArchive{},
		Highlights: &fakeHighlights{},
		Tx:         fakeTx{},
	}, testLogger())

	err := p.Run(context.Background(), 1)
	require.ErrorIs(t, err, svcerrors.ErrDuplicatePersistJob)
	require.False(t, jobs.finished[1])
	require.False(t, jobs.aborted[1])
}

func TestPersister_HardFailureAborts(t *testing.T) {
	jobs := newFakeJobs(1, 100)
	models := &fakeModels{}

	raw := []message.RawMessage{
		{Header: message.Header{Kind: message.KindMinuteCreate, FormatType: message.FormatThriftBinaryBase64, Timestamp: time.Unix(1, 0)}, PayloadB64: encodeTopicPayload(t, 999)},
	}

	p := persister.New(persister.Deps{
		Jobs:       jobs,
		Topics:     fakeTopics{topics: singleTopicChat()},
		Messages:   fakeMessages{raw: raw},
		Models:     models,
		Archive:    &fakeArchive{},
		Highlights: &fakeHighlights{},
		Tx:         fakeTx{},
		Now:        time.Now,
	}, testLogger())

	err := p.Run(context.Background(), 1)
	require.Error(t, err)
	require.True(t, jobs.aborted[1])
	require.False(t, jobs.finished[1])
	require.False(t, models.written)
}

func TestPersister_TutorialChatSkipsHighlights(t *testing.T) {
	jobs := newFakeJobs(1, 100)
	highlights := &fakeHighlights{rootTitle: highlight.TutorialRootTitle, participants: []uint{7, 8}}

	raw := []message.RawMessage{
		{Header: message.Header{Kind: message.KindMinuteCreate, FormatType: message.FormatThriftBinaryBase64, Timestamp: time.Unix(1, 0)}, PayloadB64: encodeTopicPayload(t, 2)},
		{Header: message.Header{Kind: message.KindMinuteUpdate, FormatType: message.FormatThriftBinaryBase64, Timestamp: time.Unix(2, 0)}, PayloadB64: encodeTopicPayload(t, 2)},
	}

	p := persister.New(persister.Deps{
		Jobs:       jobs,
		Topics:     fakeTopics{topics: singleTopicChat()},
		Messages:   fakeMessages{raw: raw},
		Models:     &fakeModels{},
		Archive:    &fakeArchive{},
		Highlights: highlights,
		Tx:         fakeTx{},
		Now:        time.Now,
	}, testLogger())

	err := p.Run(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, highlights.inserted)
}
