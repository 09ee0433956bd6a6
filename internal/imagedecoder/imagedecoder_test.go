package imagedecoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageDecoder_StartsIncomplete(t *testing.T) {
	d := New()
	assert.False(t, d.Complete())
	assert.Nil(t, d.Tracks())
}

func TestImageDecoder_FrameBeforeDecodeIsError(t *testing.T) {
	d := New()
	_, err := d.Frame()
	require.Error(t, err)
}

func TestImageDecoder_DecodePNGProducesRGBAFrame(t *testing.T) {
	d := New()
	require.NoError(t, d.Decode(samplePNG(t, 4, 3)))
	assert.True(t, d.Complete())

	tracks := d.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, 4, tracks[0].Width)
	assert.Equal(t, 3, tracks[0].Height)
	assert.Equal(t, "png", tracks[0].Format)

	frame, err := d.Frame()
	require.NoError(t, err)
	w, err := frame.CodedWidth()
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	fmtGot, err := frame.Format()
	require.NoError(t, err)
	assert.Equal(t, "RGBA", fmtGot.String())
}

func TestImageDecoder_DecodeRejectsGarbage(t *testing.T) {
	d := New()
	err := d.Decode([]byte("not an image"))
	require.Error(t, err)
	assert.False(t, d.Complete())
}
