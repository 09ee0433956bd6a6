package worker

import (
	"testing"

	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/stretchr/testify/assert"
)

func TestProbeOrderFromStrings_ParsesKnownNames(t *testing.T) {
	order := probeOrderFromStrings([]string{"videotoolbox", "nvenc", "bogus"})
	assert.Equal(t, []codecid.HWAccel{codecid.HWAccelVideoToolbox, codecid.HWAccelNVENC}, order)
}

func TestProbeOrderFromStrings_EmptyFallsBackToDefault(t *testing.T) {
	order := probeOrderFromStrings(nil)
	assert.Equal(t, defaultProbeOrder(), order)
}

func TestProbeOrderFromStrings_AllUnparseableFallsBack(t *testing.T) {
	order := probeOrderFromStrings([]string{"bogus", "none"})
	assert.Equal(t, defaultProbeOrder(), order)
}

func TestCandidateEncoderNames_SoftwareLastAlways(t *testing.T) {
	w := &VideoEncoderWorker{order: []codecid.HWAccel{codecid.HWAccelVAAPI, codecid.HWAccelNVENC}}
	names := w.candidateEncoderNames(VideoEncoderConfig{Codec: "h264"})
	require := assert.New(t)
	require.NotEmpty(names)
	require.Equal("libx264", names[len(names)-1])
}

func TestCandidateEncoderNames_PreferSoftwareSkipsHardware(t *testing.T) {
	w := &VideoEncoderWorker{order: []codecid.HWAccel{codecid.HWAccelVAAPI, codecid.HWAccelNVENC}}
	names := w.candidateEncoderNames(VideoEncoderConfig{Codec: "h264", HardwareAcceleration: HWAccelPreferSoftware})
	assert.Equal(t, []string{"libx264"}, names)
}

func TestThreadCountHint_CapsAtMax(t *testing.T) {
	assert.Equal(t, 16, threadCountHint(64))
	assert.Equal(t, 16, threadCountHint(16))
}

func TestThreadCountHint_PassesThroughBelowMax(t *testing.T) {
	assert.Equal(t, 4, threadCountHint(4))
	assert.Equal(t, 1, threadCountHint(1))
}

func TestThreadCountHint_NonPositiveIsNoHint(t *testing.T) {
	assert.Equal(t, 0, threadCountHint(0))
	assert.Equal(t, 0, threadCountHint(-1))
}

func TestApplyEncoderTunings_X264(t *testing.T) {
	opts := astiav.NewDictionary()
	defer opts.Free()
	applyEncoderTunings("libx264", opts)

	for key, want := range map[string]string{"preset": "fast", "tune": "zerolatency", "forced-idr": "1"} {
		entry := opts.Get(key, nil, 0)
		if assert.NotNil(t, entry, key) {
			assert.Equal(t, want, entry.Value(), key)
		}
	}
}
