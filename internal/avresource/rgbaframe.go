package avresource

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// RGBASourceFrame owns a scratch astiav.Frame shaped as packed RGBA,
// reused across Fill calls the way FrameScratch is reused across
// decode iterations. It is the encode-path mirror of Scaler.ScaleTo's
// ImageCopyToBuffer: where that copies a native frame's image out to a
// Go slice, Fill copies a Go slice's bytes into a native frame's image
// buffer, via the symmetric ImageCopyFromBuffer.
type RGBASourceFrame struct {
	frame  *astiav.Frame
	w, h   int
	closed bool
}

// NewRGBASourceFrame allocates an empty RGBASourceFrame; the first
// Fill call shapes it to width x height.
func NewRGBASourceFrame() *RGBASourceFrame {
	return &RGBASourceFrame{frame: astiav.AllocFrame()}
}

// Fill (re)shapes the frame to width x height if needed and copies
// payload (tightly packed RGBA bytes) into its native image buffer.
func (r *RGBASourceFrame) Fill(width, height int, payload []byte) (*astiav.Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if width != r.w || height != r.h {
		r.frame.Unref()
		r.frame.SetWidth(width)
		r.frame.SetHeight(height)
		r.frame.SetPixelFormat(astiav.PixelFormatRgba)
		if err := r.frame.AllocBuffer(1); err != nil {
			return nil, fmt.Errorf("avresource: RGBASourceFrame.AllocBuffer: %w", err)
		}
		r.w, r.h = width, height
	}
	if _, err := r.frame.ImageCopyFromBuffer(payload, 1); err != nil {
		return nil, fmt.Errorf("avresource: ImageCopyFromBuffer: %w", err)
	}
	return r.frame, nil
}

// Close frees the underlying frame. Safe to call more than once.
func (r *RGBASourceFrame) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.frame != nil {
		r.frame.Free()
		r.frame = nil
	}
}
