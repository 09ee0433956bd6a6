package worker

import "github.com/jmylchreest/codecrt/internal/value"

// BitrateMode mirrors VideoEncoderConfig.bitrateMode.
type BitrateMode string

// Bitrate modes.
const (
	BitrateModeConstant  BitrateMode = "constant"
	BitrateModeQuantizer BitrateMode = "quantizer"
)

// HWAccelPreference mirrors the hardwareAcceleration field shared by
// encoder and decoder configs.
type HWAccelPreference string

// Hardware-acceleration preferences.
const (
	HWAccelNoPreference    HWAccelPreference = "no-preference"
	HWAccelPreferHardware  HWAccelPreference = "prefer-hardware"
	HWAccelPreferSoftware  HWAccelPreference = "prefer-software"
)

// AVCFormat mirrors VideoEncoderConfig's avc.format field.
type AVCFormat string

// Bitstream formats for H.264/H.265 output.
const (
	AVCFormatAVC    AVCFormat = "avc"
	AVCFormatAnnexB AVCFormat = "annexb"
)

// VideoEncoderConfig is the flat, validated configuration a façade
// hands to a VideoEncoderWorker's Configure handler (spec §3 "Codec
// configuration", §6 "video encoder" fields).
type VideoEncoderConfig struct {
	Codec                string
	Width                int
	Height               int
	Bitrate              int64 // 0 means unset
	Framerate            float64
	HardwareAcceleration HWAccelPreference
	BitrateMode          BitrateMode
	AVCFormat            AVCFormat
	GOPSize              int
	LowLatency           bool
}

// VideoDecoderConfig is the flat configuration for a
// VideoDecoderWorker's Configure handler.
type VideoDecoderConfig struct {
	Codec               string
	CodedWidth           int
	CodedHeight          int
	Description          []byte // extradata, copied on construction
	OptimizeForLatency   bool
	DisplayAspectWidth   int
	DisplayAspectHeight  int
	Rotation             value.Rotation
	Flip                 bool
	ColorSpace           *value.ColorSpace
}

// AudioEncoderConfig is the flat configuration for an
// AudioEncoderWorker's Configure handler.
type AudioEncoderConfig struct {
	Codec      string
	SampleRate int
	NumChannels int
	Bitrate    int64
}

// AudioDecoderConfig is the flat configuration for an
// AudioDecoderWorker's Configure handler.
type AudioDecoderConfig struct {
	Codec       string
	SampleRate  int
	NumChannels int
	Description []byte
}
