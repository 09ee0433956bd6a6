// Package codecid resolves WebCodecs-style codec strings (canonical names,
// registration-authority prefixes such as "avc1"/"hev1"/"vp09"/"av01", and
// libav encoder names) to the canonical codec identifiers and underlying
// libav encoder/decoder names the worker needs at configure time.
package codecid

import "strings"

// Video represents a video codec.
type Video string

// Video codec constants.
const (
	VideoH264 Video = "h264" // H.264/AVC
	VideoH265 Video = "h265" // H.265/HEVC
	VideoVP8  Video = "vp8"  // VP8
	VideoVP9  Video = "vp9"  // VP9
	VideoAV1  Video = "av1"  // AV1
)

// Audio represents an audio codec.
type Audio string

// Audio codec constants.
const (
	AudioAAC    Audio = "aac"    // AAC
	AudioMP3    Audio = "mp3"    // MP3
	AudioOpus   Audio = "opus"   // Opus
	AudioVorbis Audio = "vorbis" // Vorbis
	AudioFLAC   Audio = "flac"   // FLAC
	AudioPCM    Audio = "pcm"    // PCM
)

// HWAccel represents a hardware acceleration type, matching the libav
// encoder-name suffix family probed at configure time.
type HWAccel string

// Hardware acceleration constants. The platform-specific probe sequence
// that uses them is videotoolbox on macOS, nvenc/qsv/amf on Windows,
// vaapi/nvenc on Linux, falling back to the software encoder when none
// succeed.
const (
	HWAccelNone         HWAccel = "none"
	HWAccelNVENC        HWAccel = "nvenc"
	HWAccelQSV          HWAccel = "qsv"
	HWAccelVAAPI        HWAccel = "vaapi"
	HWAccelVideoToolbox HWAccel = "videotoolbox"
	HWAccelAMF          HWAccel = "amf"
)

// String returns the string representation of the video codec.
func (v Video) String() string { return string(v) }

// String returns the string representation of the audio codec.
func (a Audio) String() string { return string(a) }

// String returns the string representation of the hardware acceleration type.
func (h HWAccel) String() string { return string(h) }

// videoInfo contains metadata about a video codec.
type videoInfo struct {
	Name Video
	// Aliases holds every known alias: canonical name, registration-authority
	// prefix (avc1, hev1, vp09, av01), and libav encoder name.
	Aliases []string
	// Encoders maps hardware acceleration preference to the libav encoder name.
	Encoders map[HWAccel]string
}

// audioInfo contains metadata about an audio codec.
type audioInfo struct {
	Name    Audio
	Aliases []string
	Encoder string
}

var videoRegistry = map[Video]*videoInfo{
	VideoH264: {
		Name: VideoH264,
		Aliases: []string{
			"h264", "avc", "avc1", "avc3", "h.264",
			"libx264", "h264_nvenc", "h264_qsv", "h264_vaapi",
			"h264_videotoolbox", "h264_amf", "h264_mf", "h264_v4l2m2m",
		},
		Encoders: map[HWAccel]string{
			HWAccelNone:         "libx264",
			HWAccelNVENC:        "h264_nvenc",
			HWAccelQSV:          "h264_qsv",
			HWAccelVAAPI:        "h264_vaapi",
			HWAccelVideoToolbox: "h264_videotoolbox",
			HWAccelAMF:          "h264_amf",
		},
	},
	VideoH265: {
		Name: VideoH265,
		Aliases: []string{
			"h265", "hevc", "hev1", "hvc1", "h.265",
			"libx265", "hevc_nvenc", "hevc_qsv", "hevc_vaapi",
			"hevc_videotoolbox", "hevc_amf", "hevc_mf", "hevc_v4l2m2m",
		},
		Encoders: map[HWAccel]string{
			HWAccelNone:         "libx265",
			HWAccelNVENC:        "hevc_nvenc",
			HWAccelQSV:          "hevc_qsv",
			HWAccelVAAPI:        "hevc_vaapi",
			HWAccelVideoToolbox: "hevc_videotoolbox",
			HWAccelAMF:          "hevc_amf",
		},
	},
	VideoVP8: {
		Name:     VideoVP8,
		Aliases:  []string{"vp8", "libvpx"},
		Encoders: map[HWAccel]string{HWAccelNone: "libvpx"},
	},
	VideoVP9: {
		Name:    VideoVP9,
		Aliases: []string{"vp9", "vp09", "libvpx-vp9", "vp9_qsv", "vp9_vaapi"},
		Encoders: map[HWAccel]string{
			HWAccelNone:  "libvpx-vp9",
			HWAccelQSV:   "vp9_qsv",
			HWAccelVAAPI: "vp9_vaapi",
		},
	},
	VideoAV1: {
		Name: VideoAV1,
		Aliases: []string{
			"av1", "av01",
			"libaom-av1", "libsvtav1", "librav1e",
			"av1_nvenc", "av1_qsv", "av1_vaapi", "av1_amf",
		},
		Encoders: map[HWAccel]string{
			HWAccelNone:  "libaom-av1",
			HWAccelNVENC: "av1_nvenc",
			HWAccelQSV:   "av1_qsv",
			HWAccelVAAPI: "av1_vaapi",
			HWAccelAMF:   "av1_amf",
		},
	},
}

var audioRegistry = map[Audio]*audioInfo{
	AudioAAC: {
		Name:    AudioAAC,
		Aliases: []string{"aac", "mp4a", "libfdk_aac", "aac_at"},
		Encoder: "aac",
	},
	AudioMP3: {
		Name:    AudioMP3,
		Aliases: []string{"mp3", "mp3float", "libmp3lame"},
		Encoder: "libmp3lame",
	},
	AudioOpus: {
		Name:    AudioOpus,
		Aliases: []string{"opus", "libopus"},
		Encoder: "libopus",
	},
	AudioVorbis: {
		Name:    AudioVorbis,
		Aliases: []string{"vorbis", "libvorbis"},
		Encoder: "libvorbis",
	},
	AudioFLAC: {
		Name:    AudioFLAC,
		Aliases: []string{"flac", "libflac"},
		Encoder: "flac",
	},
	AudioPCM: {
		Name:    AudioPCM,
		Aliases: []string{"pcm", "pcm_s16le", "pcm_s24le", "pcm_s32le"},
		Encoder: "pcm_s16le",
	},
}

var videoAliasIndex map[string]Video
var audioAliasIndex map[string]Audio

func init() {
	videoAliasIndex = make(map[string]Video)
	for codec, info := range videoRegistry {
		for _, alias := range info.Aliases {
			videoAliasIndex[strings.ToLower(alias)] = codec
		}
	}

	audioAliasIndex = make(map[string]Audio)
	for codec, info := range audioRegistry {
		for _, alias := range info.Aliases {
			audioAliasIndex[strings.ToLower(alias)] = codec
		}
	}
}

// ParseVideo parses a string (codec name, registration-authority prefix, or
// libav encoder name) to a Video codec.
func ParseVideo(s string) (Video, bool) {
	if s == "" {
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if codec, ok := videoAliasIndex[s]; ok {
		return codec, true
	}
	return resolveVideoPrefix(s)
}

// resolveVideoPrefix matches WebCodecs registration-authority strings that
// carry profile/level suffixes, e.g. "avc1.64001f" or "vp09.00.10.08".
func resolveVideoPrefix(lower string) (Video, bool) {
	if len(lower) < 4 {
		return "", false
	}
	switch lower[:4] {
	case "avc1", "avc3":
		return VideoH264, true
	case "hev1", "hvc1":
		return VideoH265, true
	case "vp09":
		return VideoVP9, true
	case "av01":
		return VideoAV1, true
	}
	return "", false
}

// ParseAudio parses a string (codec name, registration-authority prefix, or
// libav encoder name) to an Audio codec.
func ParseAudio(s string) (Audio, bool) {
	if s == "" {
		return "", false
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if codec, ok := audioAliasIndex[s]; ok {
		return codec, true
	}
	if len(s) >= 4 && s[:4] == "mp4a" {
		return AudioAAC, true
	}
	return "", false
}

// NormalizeVideo normalizes a video codec/encoder name to its canonical form.
func NormalizeVideo(name string) string {
	if codec, ok := ParseVideo(name); ok {
		return string(codec)
	}
	return name
}

// NormalizeAudio normalizes an audio codec/encoder name to its canonical form.
func NormalizeAudio(name string) string {
	if codec, ok := ParseAudio(name); ok {
		return string(codec)
	}
	return name
}

// IsEncoder returns true if the name appears to be a libav encoder name
// rather than a bare codec name.
func IsEncoder(name string) bool {
	name = strings.ToLower(name)

	if strings.HasPrefix(name, "lib") {
		return true
	}

	hwSuffixes := []string{
		"_nvenc", "_qsv", "_vaapi", "_videotoolbox", "_amf",
		"_mf", "_v4l2m2m", "_cuvid", "_at", "_fixed",
	}
	for _, suffix := range hwSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// GetVideoEncoder returns the libav encoder name for a video codec with the
// given hardware acceleration preference. Falls back to the software
// encoder if the requested hwaccel is not registered for this codec.
func GetVideoEncoder(v Video, hwaccel HWAccel) string {
	info, ok := videoRegistry[v]
	if !ok {
		return string(v)
	}
	if info.Encoders == nil {
		return ""
	}
	if encoder, ok := info.Encoders[hwaccel]; ok {
		return encoder
	}
	if encoder, ok := info.Encoders[HWAccelNone]; ok {
		return encoder
	}
	return string(v)
}

// HWAccelEncoders returns the ordered list of hardware-accelerated encoder
// names registered for v, excluding the software fallback, following order.
func HWAccelEncoders(v Video, order []HWAccel) []string {
	info, ok := videoRegistry[v]
	if !ok || info.Encoders == nil {
		return nil
	}
	var encoders []string
	for _, hw := range order {
		if hw == HWAccelNone {
			continue
		}
		if encoder, ok := info.Encoders[hw]; ok {
			encoders = append(encoders, encoder)
		}
	}
	return encoders
}

// GetAudioEncoder returns the libav encoder name for an audio codec.
func GetAudioEncoder(a Audio) string {
	info, ok := audioRegistry[a]
	if !ok {
		return string(a)
	}
	return info.Encoder
}

// Match returns true if two codec strings represent the same codec.
func Match(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	va, vok := ParseVideo(a)
	vb, vbok := ParseVideo(b)
	if vok && vbok {
		return va == vb
	}
	aa, aok := ParseAudio(a)
	ab, abok := ParseAudio(b)
	if aok && abok {
		return aa == ab
	}
	return strings.EqualFold(a, b)
}

// ValidVideoCodecs returns a map of canonical video codec names to their
// Video type.
func ValidVideoCodecs() map[string]Video {
	return map[string]Video{
		"h264": VideoH264,
		"h265": VideoH265,
		"hevc": VideoH265,
		"vp8":  VideoVP8,
		"vp9":  VideoVP9,
		"av1":  VideoAV1,
	}
}

// ValidAudioCodecs returns a map of canonical audio codec names to their
// Audio type.
func ValidAudioCodecs() map[string]Audio {
	return map[string]Audio{
		"aac":    AudioAAC,
		"mp3":    AudioMP3,
		"opus":   AudioOpus,
		"vorbis": AudioVorbis,
		"flac":   AudioFLAC,
		"pcm":    AudioPCM,
	}
}

// ValidHWAccels returns a map of valid hardware acceleration names.
func ValidHWAccels() map[string]HWAccel {
	return map[string]HWAccel{
		"none":         HWAccelNone,
		"nvenc":        HWAccelNVENC,
		"qsv":          HWAccelQSV,
		"vaapi":        HWAccelVAAPI,
		"videotoolbox": HWAccelVideoToolbox,
		"amf":          HWAccelAMF,
	}
}

// ParseHWAccel parses a hardware acceleration string.
func ParseHWAccel(s string) (HWAccel, bool) {
	hw, ok := ValidHWAccels()[strings.ToLower(strings.TrimSpace(s))]
	return hw, ok
}
