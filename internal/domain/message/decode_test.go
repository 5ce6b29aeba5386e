package message_test

import (
	"encoding/base64"
	"encoding/binary"
	"testing"
	"time"

	"github.com/iota-uz/persistsvc/internal/domain/message"
	"github.com/stretchr/testify/require"
)

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func encodeString(s string) []byte {
	b := make([]byte, 2+len(s))
	binary.BigEndian.PutUint16(b, uint16(len(s)))
	copy(b[2:], s)
	return b
}

func b64(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

func TestDecode_MinuteCreate(t *testing.T) {
	raw := message.RawMessage{
		Header: message.Header{
			Kind:       message.KindMinuteCreate,
			FormatType: message.FormatThriftBinaryBase64,
			Timestamp:  time.Unix(1345643927, 0),
		},
		PayloadB64: b64(encodeUint32(2)),
	}

	msg, err := message.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.MinuteCreate)
	require.Equal(t, uint(2), msg.MinuteCreate.TopicID)
}

func TestDecode_TagCreate(t *testing.T) {
	payload := append(encodeUint32(1), append(encodeString("a"), encodeString("Tag")...)...)
	raw := message.RawMessage{
		Header: message.Header{
			Kind:       message.KindTagCreate,
			FormatType: message.FormatThriftBinaryBase64,
		},
		PayloadB64: b64(payload),
	}

	msg, err := message.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.TagCreate)
	require.Equal(t, "a", msg.TagCreate.TagID)
	require.Equal(t, "Tag", msg.TagCreate.Name)
	require.Equal(t, uint(1), msg.TagCreate.UserID)
}

func TestDecode_MarkerCreate(t *testing.T) {
	payload := append([]byte{0}, append(encodeUint32(3), 1)...)
	raw := message.RawMessage{
		Header: message.Header{
			Kind:       message.KindMarkerCreate,
			FormatType: message.FormatThriftBinaryBase64,
		},
		PayloadB64: b64(payload),
	}

	msg, err := message.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, msg.MarkerCreate)
	require.Equal(t, message.MarkerKindSpeaking, msg.MarkerCreate.Marker)
	require.Equal(t, uint(3), msg.MarkerCreate.UserID)
	require.True(t, msg.MarkerCreate.IsSpeaking)
}

func TestDecode_IgnoredKindsSkipPayload(t *testing.T) {
	raw := message.RawMessage{
		Header: message.Header{Kind: message.KindJoin},
	}
	msg, err := message.Decode(raw)
	require.NoError(t, err)
	require.Nil(t, msg.MinuteCreate)
	require.Nil(t, msg.TagCreate)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	raw := message.RawMessage{
		Header: message.Header{
			Kind:       message.KindMinuteCreate,
			FormatType: "something-else",
		},
	}
	_, err := message.Decode(raw)
	require.ErrorIs(t, err, message.ErrUnsupportedFormat)
}

func TestUnixSeconds_FractionalPrecision(t *testing.T) {
	ts := message.UnixSeconds(100.5)
	require.Equal(t, int64(100), ts.Unix())
	require.Equal(t, 500*time.Millisecond, time.Duration(ts.Nanosecond()))
}
