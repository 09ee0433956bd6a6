package worker

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/shirou/gopsutil/v4/cpu"
)

// defaultProbeOrder returns the platform-specific hardware-encoder
// probe order (spec §4.2.1 step 2): videotoolbox on macOS; nvenc/qsv/
// amf on Windows; vaapi/nvenc on Linux.
func defaultProbeOrder() []codecid.HWAccel {
	switch runtime.GOOS {
	case "darwin":
		return []codecid.HWAccel{codecid.HWAccelVideoToolbox}
	case "windows":
		return []codecid.HWAccel{codecid.HWAccelNVENC, codecid.HWAccelQSV, codecid.HWAccelAMF}
	case "linux":
		return []codecid.HWAccel{codecid.HWAccelVAAPI, codecid.HWAccelNVENC}
	default:
		return nil
	}
}

// probeOrderFromStrings converts the configured hwaccel.order strings
// to HWAccel values, falling back to defaultProbeOrder when empty or
// entirely unparseable.
func probeOrderFromStrings(order []string) []codecid.HWAccel {
	var out []codecid.HWAccel
	for _, s := range order {
		if hw, ok := codecid.ParseHWAccel(s); ok && hw != codecid.HWAccelNone {
			out = append(out, hw)
		}
	}
	if len(out) == 0 {
		return defaultProbeOrder()
	}
	return out
}

// logicalCPUCount probes the host's logical CPU count via gopsutil,
// returning 0 (no hint) if the probe fails.
func logicalCPUCount(log *slog.Logger) int {
	counts, err := cpu.CountsWithContext(context.Background(), true)
	if err != nil {
		log.Debug("cpu capability probe failed", "error", err)
		return 0
	}
	return counts
}

// threadCountHint caps a probed logical CPU count at maxThreadHint
// before it is handed to a codec context's SetThreadCount: unbounded
// slice/frame thread counts destabilize some encoders (hevc, hardware
// wrappers) under load, so callers get a capped hint rather than the
// raw core count.
func threadCountHint(logicalCPUs int) int {
	const maxThreadHint = 16
	if logicalCPUs <= 0 {
		return 0
	}
	if logicalCPUs > maxThreadHint {
		return maxThreadHint
	}
	return logicalCPUs
}

// logPlatformCapabilities records architecture and the resolved
// thread-count hint alongside the resolved encoder name, a natural
// extension of the configure handler's hardware-probe step (SPEC_FULL
// §5, not required by the base spec but informative for the
// preferSoftware decision).
func logPlatformCapabilities(log *slog.Logger, resolvedEncoder string, threadHint int) {
	log.Debug("platform capability probe",
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
		"thread_count_hint", threadHint,
		"resolved_encoder", resolvedEncoder,
	)
}
