// Package wire reads and writes the message stream sent by the chat server.
//
// A stream starts with the 4 byte header "CHT1" followed by frames. Each
// frame is a uvarint length and that many bytes of protobuf wire fields:
//
//	1 varint  timestamp in Unix nanoseconds (absent or 0: decode time)
//	2 bytes   author (absent: system message)
//	3 bytes   content
//
// A zero length frame is the end-of-session sentinel.
package wire

import (
	"bufio"
	"bytes"
	"chat-client/domain"
	"chat-client/errors"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds a single frame to keep a corrupted length from
// allocating unbounded memory.
const MaxFrameSize = 1 << 20

const (
	fieldAt      protowire.Number = 1
	fieldAuthor  protowire.Number = 2
	fieldContent protowire.Number = 3
)

var Magic = []byte("CHT1")

type Decoder struct {
	r   *bufio.Reader
	now func() time.Time
}

// NewDecoder consumes and checks the stream header.
// Any failure wraps errors.ErrInputStream.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br := bufio.NewReader(r)
	header := make([]byte, len(Magic))
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", errors.ErrInputStream, err)
	}
	if !bytes.Equal(header, Magic) {
		return nil, fmt.Errorf("%w: unexpected header %q", errors.ErrInputStream, header)
	}
	return &Decoder{r: br, now: time.Now}, nil
}

// Decode blocks until one frame is read.
// It returns (nil, nil) on the sentinel frame, an error wrapping
// errors.ErrMalformedFrame when the frame content cannot be parsed, and the
// underlying read error (io.EOF included) otherwise.
func (d *Decoder) Decode() (*domain.Message, error) {
	size, err := binary.ReadUvarint(d.r)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, size)
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(d.r, frame); err != nil {
		return nil, err
	}
	message, err := d.unmarshal(frame)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *Decoder) unmarshal(b []byte) (domain.Message, error) {
	var (
		at              time.Time
		author, content string
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Message{}, malformed(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			if v != 0 {
				at = time.Unix(0, int64(v))
			}
			b = b[n:]
		case (num == fieldAuthor || num == fieldContent) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			if num == fieldAuthor {
				author = string(v)
			} else {
				content = string(v)
			}
			b = b[n:]
		case num == fieldAt || num == fieldAuthor || num == fieldContent:
			return domain.Message{}, fmt.Errorf("%w: field %d with wire type %d",
				errors.ErrMalformedFrame, num, typ)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Message{}, malformed(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if at.IsZero() {
		at = d.now()
	}
	return domain.NewMessage(at, author, content), nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrMalformedFrame, err)
}

// Encoder writes the format read by Decoder.
type Encoder struct {
	w io.Writer
}

// NewEncoder writes the stream header.
func NewEncoder(w io.Writer) (*Encoder, error) {
	if _, err := w.Write(Magic); err != nil {
		return nil, err
	}
	return &Encoder{w: w}, nil
}

func (e *Encoder) Encode(message domain.Message) error {
	return e.writeFrame(Marshal(message))
}

// EncodeEnd writes the sentinel frame.
func (e *Encoder) EncodeEnd() error {
	return e.writeFrame(nil)
}

func (e *Encoder) writeFrame(frame []byte) error {
	b := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(frame)), uint64(len(frame)))
	_, err := e.w.Write(append(b, frame...))
	return err
}

// Marshal encodes the fields of one frame, without its length prefix.
func Marshal(message domain.Message) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(message.At().UnixNano()))
	if message.HasAuthor() {
		b = protowire.AppendTag(b, fieldAuthor, protowire.BytesType)
		b = protowire.AppendString(b, message.Author())
	}
	b = protowire.AppendTag(b, fieldContent, protowire.BytesType)
	b = protowire.AppendString(b, message.Content())
	return b
}
