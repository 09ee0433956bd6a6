package codecid

import "testing"

func TestParseVideo(t *testing.T) {
	tests := []struct {
		input    string
		expected Video
		ok       bool
	}{
		// Canonical names
		{"h264", VideoH264, true},
		{"h265", VideoH265, true},
		{"vp9", VideoVP9, true},
		{"av1", VideoAV1, true},
		// Aliases
		{"hevc", VideoH265, true},
		{"avc", VideoH264, true},
		{"avc1", VideoH264, true},
		{"hev1", VideoH265, true},
		{"hvc1", VideoH265, true},
		// Registration-authority prefixes with profile/level suffixes
		{"avc1.64001f", VideoH264, true},
		{"hev1.1.6.L93.B0", VideoH265, true},
		{"vp09.00.10.08", VideoVP9, true},
		{"av01.0.04M.08", VideoAV1, true},
		// Encoder names
		{"libx264", VideoH264, true},
		{"h264_nvenc", VideoH264, true},
		{"h264_qsv", VideoH264, true},
		{"h264_vaapi", VideoH264, true},
		{"libx265", VideoH265, true},
		{"hevc_nvenc", VideoH265, true},
		{"hevc_qsv", VideoH265, true},
		{"libvpx-vp9", VideoVP9, true},
		{"vp9_vaapi", VideoVP9, true},
		{"libaom-av1", VideoAV1, true},
		{"av1_nvenc", VideoAV1, true},
		// Case insensitive
		{"H264", VideoH264, true},
		{"HEVC", VideoH265, true},
		{"H264_NVENC", VideoH264, true},
		// Invalid
		{"", "", false},
		{"invalid", "", false},
		{"xyz123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseVideo(tt.input)
			if ok != tt.ok {
				t.Errorf("ParseVideo(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseVideo(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseAudio(t *testing.T) {
	tests := []struct {
		input    string
		expected Audio
		ok       bool
	}{
		{"aac", AudioAAC, true},
		{"mp3", AudioMP3, true},
		{"opus", AudioOpus, true},
		{"vorbis", AudioVorbis, true},
		{"flac", AudioFLAC, true},
		{"pcm", AudioPCM, true},
		{"mp4a", AudioAAC, true},
		{"mp4a.40.2", AudioAAC, true},
		{"mp3float", AudioMP3, true},
		{"libfdk_aac", AudioAAC, true},
		{"libmp3lame", AudioMP3, true},
		{"libopus", AudioOpus, true},
		{"", "", false},
		{"invalid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAudio(tt.input)
			if ok != tt.ok {
				t.Errorf("ParseAudio(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("ParseAudio(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeVideo(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"libx264", "h264"},
		{"hevc_nvenc", "h265"},
		{"avc1", "h264"},
		{"unknown_codec", "unknown_codec"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeVideo(tt.input); got != tt.expected {
				t.Errorf("NormalizeVideo(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeAudio(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"libmp3lame", "mp3"},
		{"libopus", "opus"},
		{"unknown_codec", "unknown_codec"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeAudio(tt.input); got != tt.expected {
				t.Errorf("NormalizeAudio(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsEncoder(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"libx264", true},
		{"h264_nvenc", true},
		{"h264_vaapi", true},
		{"h264_videotoolbox", true},
		{"h264", false},
		{"hevc", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsEncoder(tt.input); got != tt.expected {
				t.Errorf("IsEncoder(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetVideoEncoder(t *testing.T) {
	tests := []struct {
		codec    Video
		hwaccel  HWAccel
		expected string
	}{
		{VideoH264, HWAccelNone, "libx264"},
		{VideoH264, HWAccelNVENC, "h264_nvenc"},
		{VideoH264, HWAccelVAAPI, "h264_vaapi"},
		{VideoH264, HWAccelVideoToolbox, "h264_videotoolbox"},
		{VideoH265, HWAccelNone, "libx265"},
		{VideoVP9, HWAccelNone, "libvpx-vp9"},
		{VideoAV1, HWAccelNone, "libaom-av1"},
		// VP8 has no hardware encoders registered; falls back to software.
		{VideoVP8, HWAccelNVENC, "libvpx"},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec)+"/"+string(tt.hwaccel), func(t *testing.T) {
			if got := GetVideoEncoder(tt.codec, tt.hwaccel); got != tt.expected {
				t.Errorf("GetVideoEncoder(%v, %v) = %q, want %q", tt.codec, tt.hwaccel, got, tt.expected)
			}
		})
	}
}

func TestHWAccelEncoders(t *testing.T) {
	order := []HWAccel{HWAccelVideoToolbox, HWAccelNVENC, HWAccelQSV, HWAccelAMF, HWAccelVAAPI}
	got := HWAccelEncoders(VideoH264, order)
	want := []string{"h264_videotoolbox", "h264_nvenc", "h264_qsv", "h264_amf", "h264_vaapi"}
	if len(got) != len(want) {
		t.Fatalf("HWAccelEncoders length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("HWAccelEncoders[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetAudioEncoder(t *testing.T) {
	tests := []struct {
		codec    Audio
		expected string
	}{
		{AudioAAC, "aac"},
		{AudioMP3, "libmp3lame"},
		{AudioOpus, "libopus"},
		{AudioFLAC, "flac"},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec), func(t *testing.T) {
			if got := GetAudioEncoder(tt.codec); got != tt.expected {
				t.Errorf("GetAudioEncoder(%v) = %q, want %q", tt.codec, got, tt.expected)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"h264", "libx264", true},
		{"h264", "avc1", true},
		{"hevc", "h265", true},
		{"h264", "h265", false},
		{"aac", "mp4a", true},
		{"", "h264", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			if got := Match(tt.a, tt.b); got != tt.expected {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestParseHWAccel(t *testing.T) {
	tests := []struct {
		input    string
		expected HWAccel
		ok       bool
	}{
		{"vaapi", HWAccelVAAPI, true},
		{"VideoToolbox", HWAccelVideoToolbox, true},
		{"nvenc", HWAccelNVENC, true},
		{"bogus", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseHWAccel(tt.input)
			if ok != tt.ok || got != tt.expected {
				t.Errorf("ParseHWAccel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestValidVideoCodecs(t *testing.T) {
	codecs := ValidVideoCodecs()
	for _, name := range []string{"h264", "h265", "hevc", "vp8", "vp9", "av1"} {
		if _, ok := codecs[name]; !ok {
			t.Errorf("ValidVideoCodecs() missing %q", name)
		}
	}
}

func TestValidAudioCodecs(t *testing.T) {
	codecs := ValidAudioCodecs()
	for _, name := range []string{"aac", "mp3", "opus", "vorbis", "flac", "pcm"} {
		if _, ok := codecs[name]; !ok {
			t.Errorf("ValidAudioCodecs() missing %q", name)
		}
	}
}
