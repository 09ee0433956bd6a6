package worker

import (
	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/jmylchreest/codecrt/internal/value"
)

// videoCodecID maps a resolved codecid.Video to the astiav.CodecID the
// decoder path needs (the decoder side always goes through
// astiav.FindDecoder(codecID), unlike the encoder side which resolves
// a named encoder directly via astiav.FindEncoderByName).
func videoCodecID(v codecid.Video) (astiav.CodecID, bool) {
	switch v {
	case codecid.VideoH264:
		return astiav.CodecIDH264, true
	case codecid.VideoH265:
		return astiav.CodecIDHevc, true
	case codecid.VideoVP8:
		return astiav.CodecIDVp8, true
	case codecid.VideoVP9:
		return astiav.CodecIDVp9, true
	case codecid.VideoAV1:
		return astiav.CodecIDAv1, true
	default:
		return 0, false
	}
}

// audioCodecID maps a resolved codecid.Audio to the astiav.CodecID
// the decoder path needs.
func audioCodecID(a codecid.Audio) (astiav.CodecID, bool) {
	switch a {
	case codecid.AudioAAC:
		return astiav.CodecIDAac, true
	case codecid.AudioMP3:
		return astiav.CodecIDMp3, true
	case codecid.AudioOpus:
		return astiav.CodecIDOpus, true
	case codecid.AudioVorbis:
		return astiav.CodecIDVorbis, true
	case codecid.AudioFLAC:
		return astiav.CodecIDFlac, true
	case codecid.AudioPCM:
		return astiav.CodecIDPcmS16le, true
	default:
		return 0, false
	}
}

// audioSampleFormat maps a host-facing value.SampleFormat to the
// astiav.SampleFormat a source frame must carry for libswresample to
// read it correctly (the encode-path mirror of the hardcoded fltp
// produced on the decode path in audiodecoder.go's emitFrame).
func audioSampleFormat(f value.SampleFormat) (astiav.SampleFormat, bool) {
	switch f {
	case value.SampleFormatU8:
		return astiav.SampleFormatU8, true
	case value.SampleFormatS16:
		return astiav.SampleFormatS16, true
	case value.SampleFormatS32:
		return astiav.SampleFormatS32, true
	case value.SampleFormatF32:
		return astiav.SampleFormatFlt, true
	case value.SampleFormatU8Planar:
		return astiav.SampleFormatU8p, true
	case value.SampleFormatS16Planar:
		return astiav.SampleFormatS16p, true
	case value.SampleFormatS32Planar:
		return astiav.SampleFormatS32p, true
	case value.SampleFormatF32Planar:
		return astiav.SampleFormatFltp, true
	default:
		return 0, false
	}
}
