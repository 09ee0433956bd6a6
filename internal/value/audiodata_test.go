package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAudioData_Interleaved(t *testing.T) {
	// 10 frames, stereo, S16 interleaved => 10*2*2 = 40 bytes.
	payload := make([]byte, 40)
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16, SampleRate: 48000, NumFrames: 10, NumChannels: 2,
	}, payload)
	require.NoError(t, err)

	frames, err := a.NumberOfFrames()
	require.NoError(t, err)
	assert.Equal(t, 10, frames)
}

func TestNewAudioData_PayloadTooSmall(t *testing.T) {
	_, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16, SampleRate: 48000, NumFrames: 10, NumChannels: 2,
	}, make([]byte, 4))
	assert.Error(t, err)
}

func TestAudioData_Duration(t *testing.T) {
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatF32, SampleRate: 48000, NumFrames: 48000, NumChannels: 1,
	}, make([]byte, 48000*4))
	require.NoError(t, err)

	dur, err := a.Duration()
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), dur, "48000 frames at 48kHz is exactly one second")
}

func TestAudioData_CopyTo_Interleaved(t *testing.T) {
	payload := make([]byte, 8) // 2 frames, 2 channels, S16 interleaved
	for i := range payload {
		payload[i] = byte(i)
	}
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16, SampleRate: 44100, NumFrames: 2, NumChannels: 2,
	}, payload)
	require.NoError(t, err)

	dst := make([]byte, 4)
	require.NoError(t, a.CopyTo(dst, 0, 1, 1))
	assert.Equal(t, payload[4:8], dst)
}

func TestAudioData_CopyTo_Planar(t *testing.T) {
	// 4 frames, 2 channels, S16 planar: plane0 then plane1, 8 bytes (4 frames x 2 bytes) per plane.
	const frames = 4
	payload := make([]byte, frames*2*2) // 2 channels * frames * 2 bytes
	for i := range payload {
		payload[i] = byte(i)
	}
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16Planar, SampleRate: 44100, NumFrames: frames, NumChannels: 2,
	}, payload)
	require.NoError(t, err)

	dst := make([]byte, frames*2)
	require.NoError(t, a.CopyTo(dst, 1, 0, frames))
	assert.Equal(t, payload[frames*2:frames*2*2], dst, "plane 1 starts after plane 0's full extent")
}

func TestAudioData_CopyTo_OutOfRange(t *testing.T) {
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16, SampleRate: 44100, NumFrames: 4, NumChannels: 1,
	}, make([]byte, 8))
	require.NoError(t, err)

	err = a.CopyTo(make([]byte, 100), 0, 3, 5)
	assert.Error(t, err, "frame range extending past NumFrames must fail")
}

func TestAudioData_CloseRejectsAllAccessors(t *testing.T) {
	a, err := NewAudioData(AudioDataInit{
		Format: SampleFormatS16, SampleRate: 44100, NumFrames: 1, NumChannels: 1,
	}, make([]byte, 2))
	require.NoError(t, err)
	a.Close()
	a.Close()

	_, err = a.SampleRate()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = a.Duration()
	assert.ErrorIs(t, err, ErrClosed)
	err = a.CopyTo(make([]byte, 10), 0, 0, 1)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSampleFormat_BytesPerSampleAndPlanar(t *testing.T) {
	assert.Equal(t, 1, SampleFormatU8.BytesPerSample())
	assert.Equal(t, 2, SampleFormatS16.BytesPerSample())
	assert.Equal(t, 4, SampleFormatF32.BytesPerSample())
	assert.False(t, SampleFormatS16.Planar())
	assert.True(t, SampleFormatS16Planar.Planar())
}
