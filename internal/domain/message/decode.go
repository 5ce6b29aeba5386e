package message

import (
	"encoding/base64"
	"encoding/binary"
	"time"

	"github.com/go-faster/errors"
)

// FormatThriftBinaryBase64 is the only payload format-type this
// service is wired to decode: base64 of the binary structured-record
// encoding produced by the external chat service. The wire format
// itself is fixed by that service (spec Non-goals) — this package
// only has to be able to read it.
const FormatThriftBinaryBase64 = "thrift-binary-base64"

// RawMessage is what the message store returns: the message's header
// (already typed by the store's ChatMessageType join) plus its opaque
// base64 payload.
type RawMessage struct {
	Header     Header
	PayloadB64 string
}

var ErrUnsupportedFormat = errors.New("unsupported chat message format type")

// Decode turns a RawMessage into a typed Message, extracting the
// fields relevant to raw.Header.Kind from the decoded payload. Kinds
// the interpreter ignores (join, leave, whiteboard-*, start, end,
// connected, publishing) decode to a bare Message with no payload
// field set, since the dispatcher never inspects them.
func Decode(raw RawMessage) (Message, error) {
	msg := Message{Header: raw.Header}

	switch raw.Header.Kind {
	case KindJoin, KindLeave, KindWhiteboardCreate, KindWhiteboardDelete,
		KindWhiteboardPathAdd, KindWhiteboardPathDel, KindChatStart,
		KindChatEnd, KindConnected, KindPublishing:
		return msg, nil
	}

	if raw.Header.FormatType != FormatThriftBinaryBase64 {
		return Message{}, errors.Wrapf(ErrUnsupportedFormat, "format %q", raw.Header.FormatType)
	}

	payload, err := base64.StdEncoding.DecodeString(raw.PayloadB64)
	if err != nil {
		return Message{}, errors.Wrap(err, "decode base64 payload")
	}

	r := &byteReader{buf: payload}

	switch raw.Header.Kind {
	case KindMinuteCreate:
		topicID, err := r.uint32()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode minute-create payload")
		}
		msg.MinuteCreate = &MinuteCreate{TopicID: uint(topicID)}

	case KindMinuteUpdate:
		topicID, err := r.uint32()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode minute-update payload")
		}
		msg.MinuteUpdate = &MinuteUpdate{TopicID: uint(topicID)}

	case KindTagCreate:
		userID, err := r.uint32()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode tag-create user id")
		}
		tagID, err := r.lengthPrefixedString()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode tag-create tag id")
		}
		name, err := r.lengthPrefixedString()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode tag-create name")
		}
		msg.TagCreate = &TagCreate{TagID: tagID, Name: name, UserID: uint(userID)}

	case KindTagDelete:
		tagID, err := r.lengthPrefixedString()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode tag-delete tag id")
		}
		msg.TagDelete = &TagDelete{TagID: tagID}

	case KindMarkerCreate:
		markerTag, err := r.uint8()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode marker-create marker kind")
		}
		userID, err := r.uint32()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode marker-create user id")
		}
		isSpeakingByte, err := r.uint8()
		if err != nil {
			return Message{}, errors.Wrap(err, "decode marker-create is-speaking flag")
		}
		msg.MarkerCreate = &MarkerCreate{
			Marker:     markerKindFromTag(markerTag),
			UserID:     uint(userID),
			IsSpeaking: isSpeakingByte != 0,
		}
	}

	return msg, nil
}

func markerKindFromTag(tag uint8) MarkerKind {
	switch tag {
	case 0:
		return MarkerKindSpeaking
	default:
		return MarkerKind("unknown")
	}
}

// UnixSeconds converts a Unix epoch timestamp with fractional-second
// precision (as carried on the wire) into the service's internal
// time.Time representation. Conversion to the store's timezone-aware
// representation happens here, at the boundary, per spec.md §6.
func UnixSeconds(seconds float64) time.Time {
	whole := int64(seconds)
	frac := seconds - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second))).UTC()
}

// byteReader is a minimal big-endian cursor over a decoded payload.
// It exists because the wire format is externally fixed and
// out-of-scope for redesign (spec.md §1 Non-goals); this is the
// narrowest possible reader for it rather than a general-purpose
// serialization library.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) uint8() (uint8, error) {
	if r.pos+1 > len(r.buf) {
		return 0, errors.New("unexpected end of payload reading uint8")
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) uint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, errors.New("unexpected end of payload reading uint32")
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *byteReader) lengthPrefixedString() (string, error) {
	if r.pos+2 > len(r.buf) {
		return "", errors.New("unexpected end of payload reading string length")
	}
	n := int(binary.BigEndian.Uint16(r.buf[r.pos : r.pos+2]))
	r.pos += 2
	if r.pos+n > len(r.buf) {
		return "", errors.New("unexpected end of payload reading string body")
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}
