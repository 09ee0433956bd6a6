// Package avresource wraps the native libav handles behind codecrt's
// workers: codec contexts, the demuxer's format context, scalers,
// resamplers and the scratch frame/packet pool. Every wrapper owns
// exactly one cgo-backed handle and frees it idempotently, so a worker
// can Close a resource from more than one error path without double
// freeing.
package avresource

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"
)

// ErrClosed is returned by any method called after Close.
var ErrClosed = errors.New("avresource: use after close")

// CodecContext owns an *astiav.CodecContext opened for either encoding
// or decoding, plus the *astiav.Codec it was opened with.
type CodecContext struct {
	ctx    *astiav.CodecContext
	codec  *astiav.Codec
	closed bool
}

// OpenDecoder resolves the decoder for codecID and opens it with opts.
// opts may be nil. configure, if non-nil, is applied to the freshly
// allocated context before it is opened.
func OpenDecoder(codecID astiav.CodecID, configure func(*astiav.CodecContext), opts *astiav.Dictionary) (*CodecContext, error) {
	codec := astiav.FindDecoder(codecID)
	if codec == nil {
		return nil, fmt.Errorf("avresource: no decoder for codec id %v", codecID)
	}
	return open(codec, configure, opts)
}

// OpenEncoderByName resolves the named encoder (e.g. "libx264",
// "h264_videotoolbox", "libopus") and opens it with opts.
func OpenEncoderByName(name string, configure func(*astiav.CodecContext), opts *astiav.Dictionary) (*CodecContext, error) {
	codec := astiav.FindEncoderByName(name)
	if codec == nil {
		return nil, fmt.Errorf("avresource: no encoder named %q", name)
	}
	return open(codec, configure, opts)
}

func open(codec *astiav.Codec, configure func(*astiav.CodecContext), opts *astiav.Dictionary) (*CodecContext, error) {
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, fmt.Errorf("avresource: AllocCodecContext(%s) failed", codec.Name())
	}
	if configure != nil {
		configure(ctx)
	}
	if err := ctx.Open(codec, opts); err != nil {
		ctx.Free()
		return nil, fmt.Errorf("avresource: open codec %s: %w", codec.Name(), err)
	}
	return &CodecContext{ctx: ctx, codec: codec}, nil
}

// Raw returns the underlying astiav.CodecContext for callers that need
// direct access (timebase, sample format, frame size queries).
func (c *CodecContext) Raw() (*astiav.CodecContext, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return c.ctx, nil
}

// Name returns the codec's registered name (e.g. "libx264").
func (c *CodecContext) Name() string {
	if c.closed {
		return ""
	}
	return c.codec.Name()
}

// SendPacket feeds an encoded packet to a decoder. A nil packet signals
// end-of-stream (drain mode).
func (c *CodecContext) SendPacket(pkt *astiav.Packet) error {
	if c.closed {
		return ErrClosed
	}
	return c.ctx.SendPacket(pkt)
}

// ReceiveFrame pulls one decoded frame. Returns astiav.ErrEagain when
// more input is needed and astiav.ErrEof once the drain is exhausted.
func (c *CodecContext) ReceiveFrame(frame *astiav.Frame) error {
	if c.closed {
		return ErrClosed
	}
	return c.ctx.ReceiveFrame(frame)
}

// SendFrame feeds a raw frame to an encoder. A nil frame signals
// end-of-stream (drain mode).
func (c *CodecContext) SendFrame(frame *astiav.Frame) error {
	if c.closed {
		return ErrClosed
	}
	return c.ctx.SendFrame(frame)
}

// ReceivePacket pulls one encoded packet. Returns astiav.ErrEagain when
// more input is needed and astiav.ErrEof once the drain is exhausted.
func (c *CodecContext) ReceivePacket(pkt *astiav.Packet) error {
	if c.closed {
		return ErrClosed
	}
	return c.ctx.ReceivePacket(pkt)
}

// FlushBuffers exits a decoder's drain mode in place, without
// destroying the context (spec §4.2.4 step 4: decoders, unlike
// encoders, accept further input after this call).
func (c *CodecContext) FlushBuffers() {
	if c.closed {
		return
	}
	c.ctx.FlushBuffers()
}

// Close frees the underlying codec context. Safe to call more than
// once.
func (c *CodecContext) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.ctx != nil {
		c.ctx.Free()
		c.ctx = nil
	}
}
