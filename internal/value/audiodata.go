package value

import "fmt"

// SampleFormat names an AudioData payload's sample encoding and planarity.
type SampleFormat int

// Supported sample formats.
const (
	SampleFormatU8 SampleFormat = iota
	SampleFormatS16
	SampleFormatS32
	SampleFormatF32
	SampleFormatU8Planar
	SampleFormatS16Planar
	SampleFormatS32Planar
	SampleFormatF32Planar
)

// BytesPerSample returns the sample width in bytes for the format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatU8, SampleFormatU8Planar:
		return 1
	case SampleFormatS16, SampleFormatS16Planar:
		return 2
	case SampleFormatS32, SampleFormatF32, SampleFormatS32Planar, SampleFormatF32Planar:
		return 4
	default:
		return 0
	}
}

// Planar reports whether channels are laid out as separate planes rather
// than interleaved.
func (f SampleFormat) Planar() bool {
	switch f {
	case SampleFormatU8Planar, SampleFormatS16Planar, SampleFormatS32Planar, SampleFormatF32Planar:
		return true
	default:
		return false
	}
}

// AudioData is an immutable-after-close carrier for one block of decoded
// or user-supplied PCM samples.
type AudioData struct {
	format     SampleFormat
	sampleRate int
	numFrames  int
	numChans   int
	timestamp  int64 // microseconds
	payload    []byte
	closed     bool
}

// AudioDataInit carries the construction parameters for an AudioData.
type AudioDataInit struct {
	Format     SampleFormat
	SampleRate int
	NumFrames  int
	NumChannels int
	Timestamp  int64
}

// NewAudioData constructs an AudioData that owns a copy of payload.
func NewAudioData(init AudioDataInit, payload []byte) (*AudioData, error) {
	want := init.Format.BytesPerSample() * init.NumFrames * init.NumChannels
	if len(payload) < want {
		return nil, fmt.Errorf("value: payload of %d bytes too small for %d frames x %d channels (need %d)",
			len(payload), init.NumFrames, init.NumChannels, want)
	}
	return &AudioData{
		format:     init.Format,
		sampleRate: init.SampleRate,
		numFrames:  init.NumFrames,
		numChans:   init.NumChannels,
		timestamp:  init.Timestamp,
		payload:    append([]byte(nil), payload[:want]...),
	}, nil
}

func (a *AudioData) checkClosed() error {
	if a.closed {
		return ErrClosed
	}
	return nil
}

// Format returns the sample format.
func (a *AudioData) Format() (SampleFormat, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	return a.format, nil
}

// SampleRate returns the sample rate in Hz.
func (a *AudioData) SampleRate() (int, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	return a.sampleRate, nil
}

// NumberOfFrames returns the number of sample frames.
func (a *AudioData) NumberOfFrames() (int, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	return a.numFrames, nil
}

// NumberOfChannels returns the channel count.
func (a *AudioData) NumberOfChannels() (int, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	return a.numChans, nil
}

// Timestamp returns the presentation timestamp in microseconds.
func (a *AudioData) Timestamp() (int64, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	return a.timestamp, nil
}

// Duration returns frames*1e6/sampleRate, the derived duration in microseconds.
func (a *AudioData) Duration() (int64, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	if a.sampleRate == 0 {
		return 0, nil
	}
	return int64(a.numFrames) * 1_000_000 / int64(a.sampleRate), nil
}

// AllocationSize returns the number of bytes one plane of frameCount
// samples (starting at frameOffset) requires for the given plane index.
func (a *AudioData) AllocationSize(planeIndex, frameOffset, frameCount int) (int, error) {
	if err := a.checkClosed(); err != nil {
		return 0, err
	}
	if frameCount <= 0 {
		frameCount = a.numFrames - frameOffset
	}
	bps := a.format.BytesPerSample()
	if a.format.Planar() {
		return bps * frameCount, nil
	}
	return bps * frameCount * a.numChans, nil
}

// CopyTo copies frameCount frames of plane planeIndex, starting at
// frameOffset, into dst. Bounds-checked against the format's layout.
func (a *AudioData) CopyTo(dst []byte, planeIndex, frameOffset, frameCount int) error {
	if err := a.checkClosed(); err != nil {
		return err
	}
	if planeIndex < 0 || (a.format.Planar() && planeIndex >= a.numChans) || (!a.format.Planar() && planeIndex != 0) {
		return fmt.Errorf("value: invalid plane index %d for format with planar=%v", planeIndex, a.format.Planar())
	}
	if frameOffset < 0 || frameOffset > a.numFrames {
		return fmt.Errorf("value: frame offset %d out of range [0, %d]", frameOffset, a.numFrames)
	}
	if frameCount <= 0 {
		frameCount = a.numFrames - frameOffset
	}
	if frameOffset+frameCount > a.numFrames {
		return fmt.Errorf("value: frame range [%d, %d) exceeds %d frames", frameOffset, frameOffset+frameCount, a.numFrames)
	}

	bps := a.format.BytesPerSample()
	var srcOffset, byteLen int
	if a.format.Planar() {
		planeSize := bps * a.numFrames
		srcOffset = planeIndex*planeSize + frameOffset*bps
		byteLen = frameCount * bps
	} else {
		srcOffset = frameOffset * bps * a.numChans
		byteLen = frameCount * bps * a.numChans
	}
	if len(dst) < byteLen {
		return fmt.Errorf("value: destination buffer of %d bytes too small for %d bytes", len(dst), byteLen)
	}
	if srcOffset+byteLen > len(a.payload) {
		return fmt.Errorf("value: computed source range [%d, %d) exceeds payload of %d bytes", srcOffset, srcOffset+byteLen, len(a.payload))
	}
	copy(dst, a.payload[srcOffset:srcOffset+byteLen])
	return nil
}

// Close releases the payload and marks the data closed. Idempotent.
func (a *AudioData) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.payload = nil
}

// Closed reports whether Close has been called.
func (a *AudioData) Closed() bool { return a.closed }
