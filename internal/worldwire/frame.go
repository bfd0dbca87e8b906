package worldwire

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds a single frame's payload. Anything larger means the
// stream is corrupt or the peer is misbehaving.
const MaxFrameSize = 64 << 20

// WriteFrame writes one varint32-length-prefixed frame. Header and payload go
// out in a single Write so concurrent writers cannot interleave partial frames.
func WriteFrame(w io.Writer, payload []byte) error {
	frame := protowire.AppendVarint(make([]byte, 0, len(payload)+5), uint64(len(payload)))
	frame = append(frame, payload...)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one varint32-length-prefixed frame. The length prefix is
// decoded one byte at a time because a streaming socket gives no alignment
// guarantee. Returns io.EOF when the peer closes before a new frame starts.
func ReadFrame(r io.Reader) ([]byte, error) {
	var (
		size  uint64
		shift uint
		buf   [1]byte
	)
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if i > 0 && err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		size |= uint64(buf[0]&0x7f) << shift
		if buf[0]&0x80 == 0 {
			break
		}
		shift += 7
		if i == 4 {
			return nil, fmt.Errorf("frame length prefix exceeds varint32")
		}
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}
