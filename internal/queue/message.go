// Package queue implements the bounded FIFO control-message pipeline
// between a codec façade (producer) and its worker (consumer): a tagged
// union of Configure/Encode/Decode/Flush/Reset/Close messages, ordered
// strictly by enqueue time.
package queue

import "github.com/jmylchreest/codecrt/internal/value"

// Kind identifies a control message's variant.
type Kind int

// Message kinds, matching the worker's dispatch table.
const (
	KindConfigure Kind = iota
	KindEncode
	KindDecode
	KindFlush
	KindReset
	KindClose
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindConfigure:
		return "configure"
	case KindEncode:
		return "encode"
	case KindDecode:
		return "decode"
	case KindFlush:
		return "flush"
	case KindReset:
		return "reset"
	case KindClose:
		return "close"
	default:
		return "unknown"
	}
}

// EncodeInput carries one video frame or audio data block into an encoder,
// with the host's key-frame hint.
type EncodeInput struct {
	VideoFrame *value.VideoFrame
	AudioData  *value.AudioData
	KeyFrame   bool
}

// DecodeInput carries one owned encoded chunk into a decoder.
type DecodeInput struct {
	Chunk *value.EncodedChunk
}

// Message is a tagged union: exactly one of the payload fields is set,
// matching Kind. The queue takes ownership of Message on Enqueue; the
// consumer must not retain a Message after dispatch completes.
type Message struct {
	ID        string // ulid, monotone and sortable within a queue's lifetime
	Kind      Kind
	Configure any // *codec.VideoEncoderConfig, *codec.VideoDecoderConfig, etc.; typed by caller
	Encode    *EncodeInput
	Decode    *DecodeInput
	PromiseID string // set for KindFlush
}
