package cmd

import (
	"fmt"

	"github.com/jmylchreest/codecrt/internal/codec"
	"github.com/jmylchreest/codecrt/internal/worker"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <kind> <codec>",
	Short: "Report whether a codec configuration is supported",
	Long: `probe checks a codec string against codecrt's codec registry and, for
video encoders, against the platform's hardware-encoder probe order, without
allocating a worker.

<kind> is one of: video-encoder, video-decoder, audio-encoder, audio-decoder.`,
	Args: cobra.ExactArgs(2),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().Int("width", 1280, "width, for video kinds")
	probeCmd.Flags().Int("height", 720, "height, for video kinds")
	probeCmd.Flags().Int("sample-rate", 48000, "sample rate, for audio kinds")
	probeCmd.Flags().Int("channels", 2, "channel count, for audio kinds")
}

func runProbe(c *cobra.Command, args []string) error {
	kind, codecStr := args[0], args[1]
	width, _ := c.Flags().GetInt("width")
	height, _ := c.Flags().GetInt("height")
	sampleRate, _ := c.Flags().GetInt("sample-rate")
	channels, _ := c.Flags().GetInt("channels")

	var supported bool
	switch kind {
	case "video-encoder":
		supported, _ = codec.IsVideoEncoderConfigSupported(worker.VideoEncoderConfig{
			Codec: codecStr, Width: width, Height: height,
		}, cfg.HWAccel.Order)
	case "video-decoder":
		supported, _ = codec.IsVideoDecoderConfigSupported(worker.VideoDecoderConfig{
			Codec: codecStr, CodedWidth: width, CodedHeight: height,
		})
	case "audio-encoder":
		supported, _ = codec.IsAudioEncoderConfigSupported(worker.AudioEncoderConfig{
			Codec: codecStr, SampleRate: sampleRate, NumChannels: channels,
		})
	case "audio-decoder":
		supported, _ = codec.IsAudioDecoderConfigSupported(worker.AudioDecoderConfig{
			Codec: codecStr, SampleRate: sampleRate, NumChannels: channels,
		})
	default:
		return fmt.Errorf("probe: unknown kind %q (want video-encoder, video-decoder, audio-encoder, audio-decoder)", kind)
	}

	fmt.Fprintf(c.OutOrStdout(), "%s %s: supported=%t\n", kind, codecStr, supported)
	return nil
}
