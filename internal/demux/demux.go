// Package demux opens a container file, enumerates its tracks, and
// iterates demuxed packets as timestamp-rescaled, key/delta-classified
// encoded chunks ready to feed a codec worker's Decode handler.
package demux

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/avresource"
	"github.com/jmylchreest/codecrt/internal/value"
)

// TrackKind distinguishes a demuxed track's media type.
type TrackKind int

// Track kind values.
const (
	TrackVideo TrackKind = iota
	TrackAudio
	TrackOther
)

// String implements fmt.Stringer.
func (k TrackKind) String() string {
	switch k {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	default:
		return "other"
	}
}

// TrackInfo describes one stream of an opened container.
type TrackInfo struct {
	Index     int
	Kind      TrackKind
	Codec     string
	Extradata []byte

	// Video-only fields, zero for audio tracks.
	Width  int
	Height int

	// Audio-only fields, zero for video tracks.
	SampleRate  int
	NumChannels int
}

// Callbacks receives track metadata, demuxed chunks, and terminal
// errors as Demux iterates the container.
type Callbacks struct {
	OnTrack func(TrackInfo)
	OnChunk func(trackIndex int, chunk *value.EncodedChunk)
	OnError func(error)
}

// microsecondTimeBase is the rescale target for every emitted chunk's
// timestamp and duration (spec §4.4: "rescaling each to microseconds
// against its stream's time base").
var microsecondTimeBase = astiav.NewRational(1, 1_000_000)

// Demuxer opens a single container per instance (spec §4.4's "single
// open per instance" contract) and emits its packets as EncodedChunks.
type Demuxer struct {
	log *slog.Logger
	cb  Callbacks

	fc     *avresource.FormatContext
	pkt    *avresource.PacketScratch
	tracks []TrackInfo

	videoTrack int // index into tracks, -1 if none
	audioTrack int // index into tracks, -1 if none

	opened bool
	closed bool
}

// New constructs a Demuxer that reports through cb.
func New(log *slog.Logger, cb Callbacks) *Demuxer {
	return &Demuxer{log: log, cb: cb, videoTrack: -1, audioTrack: -1}
}

// Open opens path for demuxing and enumerates its tracks, invoking
// cb.OnTrack once per video/audio stream found. Non-audio/video streams
// (subtitles, data) are skipped; muxing and transport protocols are
// explicitly out of scope.
func (d *Demuxer) Open(path string) error {
	if d.opened {
		return fmt.Errorf("demux: Open called more than once on this instance")
	}

	fc, err := avresource.OpenInput(path, nil)
	if err != nil {
		return err
	}

	streams, err := fc.Streams()
	if err != nil {
		fc.Close()
		return err
	}

	for i, s := range streams {
		par := s.CodecParameters()
		switch par.MediaType() {
		case astiav.MediaTypeVideo:
			info := TrackInfo{
				Index:     i,
				Kind:      TrackVideo,
				Codec:     videoCodecName(par.CodecID()),
				Extradata: append([]byte(nil), par.Extradata()...),
				Width:     par.Width(),
				Height:    par.Height(),
			}
			d.addTrack(info)
		case astiav.MediaTypeAudio:
			info := TrackInfo{
				Index:       i,
				Kind:        TrackAudio,
				Codec:       audioCodecName(par.CodecID()),
				Extradata:   append([]byte(nil), par.Extradata()...),
				SampleRate:  par.SampleRate(),
				NumChannels: par.ChannelLayout().Channels(),
			}
			d.addTrack(info)
		default:
			continue
		}
	}

	d.fc = fc
	d.pkt = avresource.NewPacketScratch()
	d.opened = true
	return nil
}

func (d *Demuxer) addTrack(info TrackInfo) {
	d.tracks = append(d.tracks, info)
	switch info.Kind {
	case TrackVideo:
		if d.videoTrack < 0 {
			d.videoTrack = len(d.tracks) - 1
		}
	case TrackAudio:
		if d.audioTrack < 0 {
			d.audioTrack = len(d.tracks) - 1
		}
	}
	if d.cb.OnTrack != nil {
		d.cb.OnTrack(info)
	}
}

// GetVideoTrack returns the first video track, if any.
func (d *Demuxer) GetVideoTrack() (TrackInfo, bool) {
	if d.videoTrack < 0 {
		return TrackInfo{}, false
	}
	return d.tracks[d.videoTrack], true
}

// GetAudioTrack returns the first audio track, if any.
func (d *Demuxer) GetAudioTrack() (TrackInfo, bool) {
	if d.audioTrack < 0 {
		return TrackInfo{}, false
	}
	return d.tracks[d.audioTrack], true
}

// Tracks returns every tracked video/audio stream, in container order.
func (d *Demuxer) Tracks() []TrackInfo {
	return append([]TrackInfo(nil), d.tracks...)
}

// Demux reads the container to completion, invoking cb.OnChunk for
// every packet belonging to a tracked stream and cb.OnError for any
// read failure other than end of stream. Returns nil once the
// container is fully consumed.
func (d *Demuxer) Demux() error {
	if !d.opened {
		return fmt.Errorf("demux: Demux called before Open")
	}
	if d.closed {
		return fmt.Errorf("demux: Demux called after Close")
	}

	streams, err := d.fc.Streams()
	if err != nil {
		return err
	}

	pkt, err := d.pkt.Raw()
	if err != nil {
		return err
	}

	for {
		if err := d.fc.ReadPacket(pkt); err != nil {
			pkt.Unref()
			if errors.Is(err, astiav.ErrEof) {
				return nil
			}
			d.reportError(err)
			return err
		}

		d.handlePacket(pkt, streams)
		pkt.Unref()
	}
}

func (d *Demuxer) handlePacket(pkt *astiav.Packet, streams []*astiav.Stream) {
	streamIdx := pkt.StreamIndex()
	track, ok := d.trackFor(streamIdx)
	if !ok {
		return
	}

	stream := streams[streamIdx]
	pkt.RescaleTs(stream.TimeBase(), microsecondTimeBase)

	typ := value.ChunkTypeDelta
	if pkt.Flags().Has(astiav.PacketFlagKey) {
		typ = value.ChunkTypeKey
	}

	kind := value.ChunkKindVideo
	if track.Kind == TrackAudio {
		kind = value.ChunkKindAudio
	}

	chunk := value.NewEncodedChunk(kind, typ, pkt.Pts(), pkt.Data())
	if dur := pkt.Duration(); dur > 0 {
		chunk = chunk.WithDuration(dur)
	}

	if d.cb.OnChunk != nil {
		d.cb.OnChunk(track.Index, chunk)
	}
}

func (d *Demuxer) trackFor(streamIndex int) (TrackInfo, bool) {
	for _, t := range d.tracks {
		if t.Index == streamIndex {
			return t, true
		}
	}
	return TrackInfo{}, false
}

func (d *Demuxer) reportError(err error) {
	if d.cb.OnError != nil {
		d.cb.OnError(fmt.Errorf("demux: %w", err))
	}
}

// Close releases the format context. Idempotent.
func (d *Demuxer) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if d.pkt != nil {
		d.pkt.Close()
		d.pkt = nil
	}
	if d.fc != nil {
		d.fc.Close()
		d.fc = nil
	}
}
