package avresource

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// PCMSourceFrame owns a scratch astiav.Frame shaped to a host AudioData's
// sample format, rate, and channel layout, reused across Fill calls the
// way RGBASourceFrame is reused across the video encode path. It is the
// audio equivalent of RGBASourceFrame.Fill: where that copies a packed
// RGBA buffer into a frame's image via ImageCopyFromBuffer, Fill copies
// one or more host-supplied sample planes into the frame's native sample
// buffer via its per-plane data accessor, so libswresample has real PCM
// to resample instead of an unfilled buffer.
type PCMSourceFrame struct {
	frame  *astiav.Frame
	closed bool
}

// NewPCMSourceFrame allocates an empty PCMSourceFrame; the first Fill
// call shapes it to the caller's format/rate/layout/sample count.
func NewPCMSourceFrame() *PCMSourceFrame {
	return &PCMSourceFrame{frame: astiav.AllocFrame()}
}

// Fill (re)shapes the frame to format/sampleRate/numChannels/nbSamples
// and copies planes into its native sample buffer: one entry for
// interleaved formats, one entry per channel in channel order for
// planar formats.
func (p *PCMSourceFrame) Fill(format astiav.SampleFormat, sampleRate, numChannels, nbSamples int, planes [][]byte) (*astiav.Frame, error) {
	if p.closed {
		return nil, ErrClosed
	}

	p.frame.Unref()
	p.frame.SetSampleFormat(format)
	p.frame.SetSampleRate(sampleRate)
	p.frame.SetChannelLayout(astiav.ChannelLayoutForChannels(numChannels))
	p.frame.SetNbSamples(nbSamples)
	if err := p.frame.AllocBuffer(0); err != nil {
		return nil, fmt.Errorf("avresource: PCMSourceFrame.AllocBuffer: %w", err)
	}

	for i, plane := range planes {
		if err := p.frame.Data().SetBytes(i, plane); err != nil {
			return nil, fmt.Errorf("avresource: PCMSourceFrame.SetBytes plane %d: %w", i, err)
		}
	}
	return p.frame, nil
}

// Close frees the underlying frame. Safe to call more than once.
func (p *PCMSourceFrame) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.frame != nil {
		p.frame.Free()
		p.frame = nil
	}
}
