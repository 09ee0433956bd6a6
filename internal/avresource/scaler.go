package avresource

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// Scaler wraps a SoftwareScaleContext together with the scratch
// destination frame it writes into, re-creating both only when the
// source geometry or pixel format actually changes. Video frames
// arrive at varying resolutions across a stream's lifetime (a
// reconfigure, a corrupt SPS correction, a still-image fallback), so
// the re-creation check runs on every ScaleTo call rather than once at
// construction.
type Scaler struct {
	ssc    *astiav.SoftwareScaleContext
	dst    *astiav.Frame
	srcW   int
	srcH   int
	srcFmt astiav.PixelFormat
	dstW   int
	dstH   int
	dstFmt astiav.PixelFormat
	closed bool
}

// NewScaler returns an empty Scaler; the first ScaleTo call allocates
// the native context for the source frame it is given.
func NewScaler() *Scaler {
	return &Scaler{}
}

func (s *Scaler) ensure(src *astiav.Frame, dstW, dstH int, dstFmt astiav.PixelFormat) error {
	sw, sh, sp := src.Width(), src.Height(), src.PixelFormat()
	if s.ssc != nil && sw == s.srcW && sh == s.srcH && sp == s.srcFmt &&
		dstW == s.dstW && dstH == s.dstH && dstFmt == s.dstFmt {
		return nil
	}
	s.free()

	flags := astiav.NewSoftwareScaleContextFlags()
	ssc, err := astiav.CreateSoftwareScaleContext(sw, sh, sp, dstW, dstH, dstFmt, flags)
	if err != nil {
		return fmt.Errorf("avresource: CreateSoftwareScaleContext(%dx%d %v -> %dx%d %v): %w", sw, sh, sp, dstW, dstH, dstFmt, err)
	}

	dst := astiav.AllocFrame()
	dst.SetWidth(dstW)
	dst.SetHeight(dstH)
	dst.SetPixelFormat(dstFmt)
	if err := dst.AllocBuffer(1); err != nil {
		dst.Free()
		ssc.Free()
		return fmt.Errorf("avresource: scaler dst AllocBuffer: %w", err)
	}

	s.ssc, s.dst = ssc, dst
	s.srcW, s.srcH, s.srcFmt = sw, sh, sp
	s.dstW, s.dstH, s.dstFmt = dstW, dstH, dstFmt
	return nil
}

// ScaleTo converts src into dstFmt at dstW x dstH, returning a freshly
// allocated, tightly packed Go byte slice of the result. The returned
// slice owns its memory; it is not backed by native buffers.
func (s *Scaler) ScaleTo(src *astiav.Frame, dstW, dstH int, dstFmt astiav.PixelFormat) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.ensure(src, dstW, dstH, dstFmt); err != nil {
		return nil, err
	}
	if err := s.ssc.ScaleFrame(src, s.dst); err != nil {
		return nil, fmt.Errorf("avresource: ScaleFrame: %w", err)
	}
	n, err := s.dst.ImageBufferSize(1)
	if err != nil {
		return nil, fmt.Errorf("avresource: ImageBufferSize: %w", err)
	}
	out := make([]byte, n)
	if _, err := s.dst.ImageCopyToBuffer(out, 1); err != nil {
		return nil, fmt.Errorf("avresource: ImageCopyToBuffer: %w", err)
	}
	return out, nil
}

// ScaleToFrame converts src into dstFmt at dstW x dstH like ScaleTo,
// but returns the scaler's own live destination frame instead of a
// copied byte slice, for callers (the encoder path) that need to feed
// the result straight into another native call (CodecContext.SendFrame)
// without a Go-side round trip. The returned frame is owned by the
// Scaler and is only valid until the next ScaleTo/ScaleToFrame call.
func (s *Scaler) ScaleToFrame(src *astiav.Frame, dstW, dstH int, dstFmt astiav.PixelFormat) (*astiav.Frame, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.ensure(src, dstW, dstH, dstFmt); err != nil {
		return nil, err
	}
	if err := s.ssc.ScaleFrame(src, s.dst); err != nil {
		return nil, fmt.Errorf("avresource: ScaleFrame: %w", err)
	}
	return s.dst, nil
}

func (s *Scaler) free() {
	if s.dst != nil {
		s.dst.Free()
		s.dst = nil
	}
	if s.ssc != nil {
		s.ssc.Free()
		s.ssc = nil
	}
}

// Close releases the native scale context and scratch frame. Safe to
// call more than once.
func (s *Scaler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.free()
}
