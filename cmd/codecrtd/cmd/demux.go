package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/codecrt/internal/demux"
	"github.com/jmylchreest/codecrt/internal/value"
	"github.com/jmylchreest/codecrt/pkg/bytesize"
	"github.com/spf13/cobra"
)

var demuxCmd = &cobra.Command{
	Use:   "demux <file>",
	Short: "Open a container, print its tracks, and count demuxed chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDemux,
}

func init() {
	rootCmd.AddCommand(demuxCmd)
}

func runDemux(c *cobra.Command, args []string) error {
	logger := slog.Default()
	counts := map[int]int{}
	totalBytes := map[int]int64{}

	d := demux.New(logger, demux.Callbacks{
		OnTrack: func(t demux.TrackInfo) {
			fmt.Fprintf(c.OutOrStdout(), "track %d: %s codec=%s width=%d height=%d sample_rate=%d channels=%d\n",
				t.Index, t.Kind, t.Codec, t.Width, t.Height, t.SampleRate, t.NumChannels)
		},
		OnChunk: func(trackIndex int, chunk *value.EncodedChunk) {
			counts[trackIndex]++
			if n, err := chunk.ByteLength(); err == nil {
				totalBytes[trackIndex] += int64(n)
			}
			chunk.Close()
		},
		OnError: func(err error) {
			logger.Error("demux error", "error", err)
		},
	})

	if err := d.Open(args[0]); err != nil {
		return fmt.Errorf("demux: %w", err)
	}
	defer d.Close()

	if err := d.Demux(); err != nil {
		return fmt.Errorf("demux: %w", err)
	}

	for idx, n := range counts {
		fmt.Fprintf(c.OutOrStdout(), "track %d: %d chunks, %s\n", idx, n, bytesize.Size(totalBytes[idx]))
	}
	return nil
}
