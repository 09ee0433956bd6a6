package cmd

import (
	"fmt"
	"os"

	"github.com/jmylchreest/codecrt/internal/imagedecoder"
	"github.com/jmylchreest/codecrt/pkg/bytesize"
	"github.com/spf13/cobra"
)

var decodeImageCmd = &cobra.Command{
	Use:   "decode-image <file>",
	Short: "Decode a still image to an RGBA frame and report its dimensions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecodeImage,
}

func init() {
	rootCmd.AddCommand(decodeImageCmd)
}

func runDecodeImage(c *cobra.Command, args []string) error {
	buf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("decode-image: %w", err)
	}

	d := imagedecoder.New()
	if err := d.Decode(buf); err != nil {
		return fmt.Errorf("decode-image: %w", err)
	}

	frame, err := d.Frame()
	if err != nil {
		return fmt.Errorf("decode-image: %w", err)
	}
	defer frame.Close()

	tracks := d.Tracks()
	width, _ := frame.CodedWidth()
	height, _ := frame.CodedHeight()
	size, _ := frame.AllocationSize()

	fmt.Fprintf(c.OutOrStdout(), "format=%s width=%d height=%d rgba_size=%s complete=%t\n",
		tracks[0].Format, width, height, bytesize.Size(size), d.Complete())
	return nil
}
