package avresource

import (
	"fmt"

	"github.com/asticode/go-astiav"
)

// FormatContext owns an opened demuxer input and its stream table.
type FormatContext struct {
	fc     *astiav.FormatContext
	closed bool
}

// OpenInput opens url (a file path or URL) for demuxing, applying opts
// (probe size, format-specific flags) if non-nil.
func OpenInput(url string, opts *astiav.Dictionary) (*FormatContext, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("avresource: AllocFormatContext failed")
	}
	if err := fc.OpenInput(url, nil, opts); err != nil {
		fc.Free()
		return nil, fmt.Errorf("avresource: OpenInput(%s): %w", url, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.Free()
		return nil, fmt.Errorf("avresource: FindStreamInfo(%s): %w", url, err)
	}
	return &FormatContext{fc: fc}, nil
}

// Streams returns the input's stream table.
func (f *FormatContext) Streams() ([]*astiav.Stream, error) {
	if f.closed {
		return nil, ErrClosed
	}
	return f.fc.Streams(), nil
}

// ReadPacket reads the next demuxed packet into pkt, returning
// astiav.ErrEof at end of stream.
func (f *FormatContext) ReadPacket(pkt *astiav.Packet) error {
	if f.closed {
		return ErrClosed
	}
	return f.fc.ReadFrame(pkt)
}

// Close frees the format context. Safe to call more than once.
func (f *FormatContext) Close() {
	if f.closed {
		return
	}
	f.closed = true
	if f.fc != nil {
		f.fc.Free()
		f.fc = nil
	}
}
