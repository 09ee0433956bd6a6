// Package value implements the immutable-after-close carrier types that
// flow through the codec pipeline: EncodedChunk, VideoFrame, and AudioData.
package value

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by any accessor called after Close.
var ErrClosed = errors.New("value: accessor called on a closed object")

// ChunkType classifies an EncodedChunk as independently decodable or not.
type ChunkType int

// Chunk type values.
const (
	ChunkTypeKey ChunkType = iota
	ChunkTypeDelta
)

// String implements fmt.Stringer.
func (t ChunkType) String() string {
	if t == ChunkTypeKey {
		return "key"
	}
	return "delta"
}

// ChunkKind distinguishes video from audio chunks for façade bookkeeping.
type ChunkKind int

// Chunk kind values.
const (
	ChunkKindVideo ChunkKind = iota
	ChunkKindAudio
)

// EncodedChunk is an immutable, timestamped unit of compressed bitstream
// data produced by a demuxer or an encoder, or constructed by the host to
// feed a decoder.
type EncodedChunk struct {
	kind      ChunkKind
	typ       ChunkType
	timestamp int64 // microseconds
	duration  int64 // microseconds, 0 means unset
	hasDur    bool
	payload   []byte
	closed    bool
}

// NewEncodedChunk constructs a chunk that owns a copy of payload.
func NewEncodedChunk(kind ChunkKind, typ ChunkType, timestamp int64, payload []byte) *EncodedChunk {
	return &EncodedChunk{
		kind:      kind,
		typ:       typ,
		timestamp: timestamp,
		payload:   append([]byte(nil), payload...),
	}
}

// WithDuration sets the optional duration (microseconds) and returns the
// same chunk for chaining at construction time.
func (c *EncodedChunk) WithDuration(duration int64) *EncodedChunk {
	c.duration = duration
	c.hasDur = true
	return c
}

// Kind reports whether this is a video or audio chunk.
func (c *EncodedChunk) Kind() ChunkKind { return c.kind }

// Type reports whether the chunk is independently decodable.
func (c *EncodedChunk) Type() (ChunkType, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return c.typ, nil
}

// Timestamp returns the presentation timestamp in microseconds.
func (c *EncodedChunk) Timestamp() (int64, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return c.timestamp, nil
}

// Duration returns the chunk duration in microseconds and whether it was set.
func (c *EncodedChunk) Duration() (int64, bool, error) {
	if c.closed {
		return 0, false, ErrClosed
	}
	return c.duration, c.hasDur, nil
}

// ByteLength returns the payload size in bytes.
func (c *EncodedChunk) ByteLength() (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return len(c.payload), nil
}

// AllocationSize returns the number of bytes CopyTo requires.
func (c *EncodedChunk) AllocationSize() (int, error) {
	return c.ByteLength()
}

// CopyTo copies the payload into dst. Fails if dst is smaller than the payload.
func (c *EncodedChunk) CopyTo(dst []byte) error {
	if c.closed {
		return ErrClosed
	}
	if len(dst) < len(c.payload) {
		return fmt.Errorf("value: destination buffer of %d bytes too small for %d byte payload", len(dst), len(c.payload))
	}
	copy(dst, c.payload)
	return nil
}

// Bytes returns a defensive copy of the payload for internal worker use.
// Callers must not rely on this for host-facing semantics; use CopyTo.
func (c *EncodedChunk) Bytes() ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return append([]byte(nil), c.payload...), nil
}

// Close releases the payload and marks the chunk closed. Idempotent.
func (c *EncodedChunk) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.payload = nil
}

// Closed reports whether Close has been called.
func (c *EncodedChunk) Closed() bool { return c.closed }
