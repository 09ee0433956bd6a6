package demux

import (
	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/codecid"
)

// videoCodecName resolves a demuxed stream's astiav.CodecID back to a
// canonical codecid.Video string, falling back to the raw decoder name
// astiav reports when the codec id isn't one codecrt's worker side
// knows how to encode (the track is still reported, just without a
// canonical codec string a decoder could be configured with).
func videoCodecName(id astiav.CodecID) string {
	switch id {
	case astiav.CodecIDH264:
		return string(codecid.VideoH264)
	case astiav.CodecIDHevc:
		return string(codecid.VideoH265)
	case astiav.CodecIDVp8:
		return string(codecid.VideoVP8)
	case astiav.CodecIDVp9:
		return string(codecid.VideoVP9)
	case astiav.CodecIDAv1:
		return string(codecid.VideoAV1)
	default:
		if dec := astiav.FindDecoder(id); dec != nil {
			return dec.Name()
		}
		return id.String()
	}
}

// audioCodecName is the audio-track counterpart of videoCodecName.
func audioCodecName(id astiav.CodecID) string {
	switch id {
	case astiav.CodecIDAac:
		return string(codecid.AudioAAC)
	case astiav.CodecIDMp3:
		return string(codecid.AudioMP3)
	case astiav.CodecIDOpus:
		return string(codecid.AudioOpus)
	case astiav.CodecIDVorbis:
		return string(codecid.AudioVorbis)
	case astiav.CodecIDFlac:
		return string(codecid.AudioFLAC)
	case astiav.CodecIDPcmS16le:
		return string(codecid.AudioPCM)
	default:
		if dec := astiav.FindDecoder(id); dec != nil {
			return dec.Name()
		}
		return id.String()
	}
}
