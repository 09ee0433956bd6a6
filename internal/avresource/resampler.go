package avresource

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// Resampler wraps a SoftwareResampleContext together with the scratch
// destination frame it converts into. libswresample configures itself
// lazily from the first frame passed to ConvertFrame, matching the
// teacher's recording path.
type Resampler struct {
	swr    *astiav.SoftwareResampleContext
	dst    *astiav.Frame
	closed bool
}

// NewResampler allocates the native resample context and an empty
// destination scratch frame (see Dst) up front; the caller shapes that
// frame to the encoder's layout, since the layout is only known once a
// target codec context is open.
func NewResampler() (*Resampler, error) {
	swr := astiav.AllocSoftwareResampleContext()
	if swr == nil {
		return nil, fmt.Errorf("avresource: AllocSoftwareResampleContext failed")
	}
	return &Resampler{swr: swr, dst: astiav.AllocFrame()}, nil
}

// ConvertTo resamples src into dst, where dst has already been shaped
// (channel layout, sample rate, sample format, AllocBuffer) to match
// the encoder's requirements by the caller.
func (r *Resampler) ConvertTo(src, dst *astiav.Frame) error {
	if r.closed {
		return ErrClosed
	}
	if err := r.swr.ConvertFrame(src, dst); err != nil {
		return fmt.Errorf("avresource: ConvertFrame: %w", err)
	}
	return nil
}

// Dst returns the resampler's scratch destination frame.
func (r *Resampler) Dst() (*astiav.Frame, error) {
	if r.closed {
		return nil, ErrClosed
	}
	return r.dst, nil
}

// Close releases the native resample context and scratch frame. Safe
// to call more than once.
func (r *Resampler) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.dst != nil {
		r.dst.Free()
		r.dst = nil
	}
	if r.swr != nil {
		r.swr.Free()
		r.swr = nil
	}
}
