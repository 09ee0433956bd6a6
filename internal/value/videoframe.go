package value

import "fmt"

// PixelFormat names the sample layout of a VideoFrame's payload.
type PixelFormat int

// Supported pixel formats. Decoder output is always PixelFormatRGBA;
// user-constructed frames destined for an encoder may use any of these.
const (
	PixelFormatRGBA PixelFormat = iota
	PixelFormatI420
	PixelFormatNV12
)

// String implements fmt.Stringer.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatRGBA:
		return "RGBA"
	case PixelFormatI420:
		return "I420"
	case PixelFormatNV12:
		return "NV12"
	default:
		return "unknown"
	}
}

// AllocationSize returns the number of bytes a frame of this format and
// dimensions requires.
func (f PixelFormat) AllocationSize(width, height int) int {
	switch f {
	case PixelFormatRGBA:
		return width * height * 4
	case PixelFormatI420:
		return width*height + 2*((width+1)/2)*((height+1)/2)
	case PixelFormatNV12:
		return width*height + 2*((width+1)/2)*((height+1)/2)
	default:
		return 0
	}
}

// VideoFrame is an immutable-after-close carrier for one decoded or
// user-supplied picture.
type VideoFrame struct {
	codedWidth, codedHeight     int
	displayWidth, displayHeight int
	format                      PixelFormat
	timestamp                   int64 // microseconds
	rotation                    Rotation
	flip                        bool
	colorSpace                  *ColorSpace
	payload                     []byte
	closed                      bool
}

// VideoFrameInit carries the construction parameters for a VideoFrame.
type VideoFrameInit struct {
	CodedWidth, CodedHeight     int
	DisplayWidth, DisplayHeight int
	Format                      PixelFormat
	Timestamp                  int64
	Rotation                    Rotation
	Flip                        bool
	ColorSpace                  *ColorSpace
}

// NewVideoFrame constructs a frame that owns a copy of payload. Display
// dimensions default to coded dimensions when left zero.
func NewVideoFrame(init VideoFrameInit, payload []byte) (*VideoFrame, error) {
	want := init.Format.AllocationSize(init.CodedWidth, init.CodedHeight)
	if len(payload) < want {
		return nil, fmt.Errorf("value: payload of %d bytes too small for %dx%d %s frame (need %d)",
			len(payload), init.CodedWidth, init.CodedHeight, init.Format, want)
	}
	if init.DisplayWidth == 0 {
		init.DisplayWidth = init.CodedWidth
	}
	if init.DisplayHeight == 0 {
		init.DisplayHeight = init.CodedHeight
	}
	return &VideoFrame{
		codedWidth:    init.CodedWidth,
		codedHeight:   init.CodedHeight,
		displayWidth:  init.DisplayWidth,
		displayHeight: init.DisplayHeight,
		format:        init.Format,
		timestamp:     init.Timestamp,
		rotation:      init.Rotation,
		flip:          init.Flip,
		colorSpace:    init.ColorSpace,
		payload:       append([]byte(nil), payload[:want]...),
	}, nil
}

// DisplayDimensions computes the display width/height derived from coded
// height and an optional display aspect ratio, per the worker's decode
// handler: displayWidth = round(codedHeight * aspectW / aspectH), with
// displayHeight equal to codedHeight. When aspectW/aspectH are zero,
// display dimensions equal coded dimensions.
func DisplayDimensions(codedWidth, codedHeight, aspectW, aspectH int) (int, int) {
	if aspectW <= 0 || aspectH <= 0 {
		return codedWidth, codedHeight
	}
	displayWidth := int((float64(codedHeight)*float64(aspectW))/float64(aspectH) + 0.5)
	return displayWidth, codedHeight
}

func (f *VideoFrame) checkClosed() error {
	if f.closed {
		return ErrClosed
	}
	return nil
}

// CodedWidth returns the coded (pre-display-scaling) width.
func (f *VideoFrame) CodedWidth() (int, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.codedWidth, nil
}

// CodedHeight returns the coded height.
func (f *VideoFrame) CodedHeight() (int, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.codedHeight, nil
}

// DisplayWidth returns the post-SAR display width.
func (f *VideoFrame) DisplayWidth() (int, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.displayWidth, nil
}

// DisplayHeight returns the post-SAR display height.
func (f *VideoFrame) DisplayHeight() (int, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.displayHeight, nil
}

// Format returns the pixel format.
func (f *VideoFrame) Format() (PixelFormat, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.format, nil
}

// Timestamp returns the presentation timestamp in microseconds.
func (f *VideoFrame) Timestamp() (int64, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.timestamp, nil
}

// Rotation returns the clockwise rotation in degrees.
func (f *VideoFrame) Rotation() (Rotation, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return f.rotation, nil
}

// HorizontalFlip reports whether the frame should be mirrored horizontally.
func (f *VideoFrame) HorizontalFlip() (bool, error) {
	if err := f.checkClosed(); err != nil {
		return false, err
	}
	return f.flip, nil
}

// ColorSpace returns the optional color-space metadata, or nil if unset.
func (f *VideoFrame) ColorSpace() (*ColorSpace, error) {
	if err := f.checkClosed(); err != nil {
		return nil, err
	}
	return f.colorSpace, nil
}

// AllocationSize returns the number of bytes CopyTo requires.
func (f *VideoFrame) AllocationSize() (int, error) {
	if err := f.checkClosed(); err != nil {
		return 0, err
	}
	return len(f.payload), nil
}

// CopyTo copies the payload into dst. Fails if dst is smaller than the payload.
func (f *VideoFrame) CopyTo(dst []byte) error {
	if err := f.checkClosed(); err != nil {
		return err
	}
	if len(dst) < len(f.payload) {
		return fmt.Errorf("value: destination buffer of %d bytes too small for %d byte frame", len(dst), len(f.payload))
	}
	copy(dst, f.payload)
	return nil
}

// Bytes returns a defensive copy of the payload for internal worker use.
func (f *VideoFrame) Bytes() ([]byte, error) {
	if err := f.checkClosed(); err != nil {
		return nil, err
	}
	return append([]byte(nil), f.payload...), nil
}

// Clone deep-copies the frame including metadata; mutation of the clone
// never affects the original.
func (f *VideoFrame) Clone() (*VideoFrame, error) {
	if err := f.checkClosed(); err != nil {
		return nil, err
	}
	var cs *ColorSpace
	if f.colorSpace != nil {
		copied := *f.colorSpace
		cs = &copied
	}
	return &VideoFrame{
		codedWidth:    f.codedWidth,
		codedHeight:   f.codedHeight,
		displayWidth:  f.displayWidth,
		displayHeight: f.displayHeight,
		format:        f.format,
		timestamp:     f.timestamp,
		rotation:      f.rotation,
		flip:          f.flip,
		colorSpace:    cs,
		payload:       append([]byte(nil), f.payload...),
	}, nil
}

// Close releases the payload and marks the frame closed. Idempotent.
func (f *VideoFrame) Close() {
	if f.closed {
		return
	}
	f.closed = true
	f.payload = nil
}

// Closed reports whether Close has been called.
func (f *VideoFrame) Closed() bool { return f.closed }
