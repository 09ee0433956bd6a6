// Package imagedecoder decodes a single still-image buffer into an RGBA
// value.VideoFrame, the way a host's ImageDecoder binding decodes a
// still picture (JPEG, PNG, WebP, BMP) rather than a bitstream track.
package imagedecoder

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/jmylchreest/codecrt/internal/value"
)

// Track describes imagedecoder's single pseudo-track (spec §4.5:
// "tracks exposes a single pseudo-track"), reported once Decode
// succeeds.
type Track struct {
	Width  int
	Height int
	Format string // the sniffed container format: "jpeg", "png", "webp", "bmp"
}

// ImageDecoder decodes exactly one image buffer per instance.
type ImageDecoder struct {
	decoded  bool
	complete bool
	track    Track
	frame    *value.VideoFrame
}

// New constructs an unused ImageDecoder.
func New() *ImageDecoder {
	return &ImageDecoder{}
}

// Decode decodes buf (a complete in-memory image buffer, standing in
// for the spec's in-memory I/O context) to an RGBA VideoFrame. Calling
// Decode more than once replaces any previously decoded frame.
func (d *ImageDecoder) Decode(buf []byte) error {
	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("imagedecoder: decode: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rgba := toRGBA(img, width, height)

	frame, err := value.NewVideoFrame(value.VideoFrameInit{
		CodedWidth:  width,
		CodedHeight: height,
		Format:      value.PixelFormatRGBA,
	}, rgba)
	if err != nil {
		return fmt.Errorf("imagedecoder: %w", err)
	}

	d.frame = frame
	d.track = Track{Width: width, Height: height, Format: format}
	d.decoded = true
	d.complete = true
	return nil
}

// toRGBA converts any decoded image.Image to tightly packed RGBA bytes,
// matching the payload layout value.PixelFormatRGBA.AllocationSize expects.
func toRGBA(img image.Image, width, height int) []byte {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Stride == width*4 {
		return append([]byte(nil), nrgba.Pix...)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dst.Set(x, y, img.At(img.Bounds().Min.X+x, img.Bounds().Min.Y+y))
		}
	}
	return dst.Pix
}

// Complete reports whether Decode has succeeded (spec §4.5: "complete
// is true after decode").
func (d *ImageDecoder) Complete() bool { return d.complete }

// Tracks returns the single pseudo-track once decoded, or nil before
// that.
func (d *ImageDecoder) Tracks() []Track {
	if !d.decoded {
		return nil
	}
	return []Track{d.track}
}

// Frame returns the decoded frame. The caller owns it and must Close it
// when done; a second call to Decode does not invalidate a frame
// already handed out.
func (d *ImageDecoder) Frame() (*value.VideoFrame, error) {
	if !d.decoded {
		return nil, fmt.Errorf("imagedecoder: Frame called before a successful Decode")
	}
	return d.frame, nil
}

func init() {
	// jpeg and png self-register via their own package init; only the
	// x/image formats need registering here.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
}
