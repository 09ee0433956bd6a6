package codec

import (
	"testing"

	"github.com/jmylchreest/codecrt/internal/codecerr"
	"github.com/jmylchreest/codecrt/internal/value"
	"github.com/jmylchreest/codecrt/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAudioEncoder(t *testing.T) *AudioEncoder {
	t.Helper()
	e := NewAudioEncoder(testLogger(), Thresholds{Soft: 16, Hard: 64}, 8, Callbacks{})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestAudioEncoder_StartsUnconfigured(t *testing.T) {
	e := newTestAudioEncoder(t)
	assert.Equal(t, StateUnconfigured, e.State())
}

func TestAudioEncoder_ConfigureRejectsZeroSampleRate(t *testing.T) {
	e := newTestAudioEncoder(t)
	err := e.Configure(worker.AudioEncoderConfig{Codec: "aac", SampleRate: 0, NumChannels: 2})
	require.Error(t, err)
	var ce *codecerr.CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, codecerr.KindTypeError, ce.Kind)
}

func TestAudioEncoder_EncodeBeforeConfigureIsInvalidState(t *testing.T) {
	e := newTestAudioEncoder(t)
	ad, err := value.NewAudioData(value.AudioDataInit{
		Format: value.SampleFormatF32, SampleRate: 48000, NumFrames: 4, NumChannels: 2,
	}, make([]byte, 4*2*4))
	require.NoError(t, err)

	err = e.Encode(ad)
	require.Error(t, err)
	var ce *codecerr.CodecError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, codecerr.KindInvalidState, ce.Kind)
}

func TestAudioEncoder_EncodeAfterConfigureEnqueues(t *testing.T) {
	e := newTestAudioEncoder(t)
	require.NoError(t, e.Configure(worker.AudioEncoderConfig{Codec: "aac", SampleRate: 48000, NumChannels: 2}))

	ad, err := value.NewAudioData(value.AudioDataInit{
		Format: value.SampleFormatF32, SampleRate: 48000, NumFrames: 4, NumChannels: 2,
	}, make([]byte, 4*2*4))
	require.NoError(t, err)

	require.NoError(t, e.Encode(ad))
}

func TestIsAudioEncoderConfigSupported_RejectsUnknownCodec(t *testing.T) {
	ok, _ := IsAudioEncoderConfigSupported(worker.AudioEncoderConfig{Codec: "not-a-codec", SampleRate: 48000, NumChannels: 2})
	assert.False(t, ok)
}

func TestIsAudioEncoderConfigSupported_AcceptsKnownCodec(t *testing.T) {
	ok, _ := IsAudioEncoderConfigSupported(worker.AudioEncoderConfig{Codec: "aac", SampleRate: 48000, NumChannels: 2})
	assert.True(t, ok)
}
