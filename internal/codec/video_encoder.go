package codec

import (
	"log/slog"

	"github.com/jmylchreest/codecrt/internal/callback"
	"github.com/jmylchreest/codecrt/internal/codecerr"
	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/jmylchreest/codecrt/internal/queue"
	"github.com/jmylchreest/codecrt/internal/value"
	"github.com/jmylchreest/codecrt/internal/worker"
)

// VideoEncoder is the host-facing façade over a VideoEncoderWorker.
type VideoEncoder struct {
	*facade
	w *worker.VideoEncoderWorker
}

// NewVideoEncoder constructs an unconfigured VideoEncoder, starting
// its dedicated worker immediately (spec §3 "the façade exclusively
// owns its worker; worker is created at façade construction").
func NewVideoEncoder(log *slog.Logger, thresholds Thresholds, callbackQueueDepth int, hwOrder []string, cb Callbacks) *VideoEncoder {
	id := newID()
	log = log.With("codec_id", id, "role", "video_encoder")
	q := queue.New()
	gw := callback.New(callbackQueueDepth)

	e := &VideoEncoder{}
	dispatch := func(payload any) {
		if dispatchError(payload, cb) {
			return
		}
		if chunk, ok := payload.(*value.EncodedChunk); ok && cb.OutputChunk != nil {
			cb.OutputChunk(chunk)
		}
	}
	e.facade = newFacade(id, log, thresholds, q, gw, cb, false, dispatch)

	hooks := worker.Hooks{
		OutputChunk:   e.deliverChunk,
		Error:         e.onError,
		Dequeue:       e.onDequeue,
		FlushComplete: e.onFlushComplete,
	}
	e.w = worker.NewVideoEncoderWorker(q, log, hooks, hwOrder)
	return e
}

func (e *VideoEncoder) deliverChunk(chunk *value.EncodedChunk) {
	e.onOutputPosted()
	e.gw.Post(chunk, e.onOutputDelivered)
}

// Configure transitions unconfigured/configured -> configured.
func (e *VideoEncoder) Configure(cfg worker.VideoEncoderConfig) error {
	if err := e.checkNotClosed("configure"); err != nil {
		return err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return codecerr.TypeError("configure", nil)
	}
	e.state.Store(int32(StateConfigured))
	_, err := e.q.Enqueue(&queue.Message{ID: e.q.NewID(), Kind: queue.KindConfigure, Configure: cfg})
	return err
}

// Encode enqueues a frame for encoding.
func (e *VideoEncoder) Encode(frame *value.VideoFrame, keyFrame bool) error {
	return e.enqueueInput("encode", &queue.Message{
		ID:     e.q.NewID(),
		Kind:   queue.KindEncode,
		Encode: &queue.EncodeInput{VideoFrame: frame, KeyFrame: keyFrame},
	})
}

// Flush returns a channel settled once all in-flight encodes have
// drained.
func (e *VideoEncoder) Flush() <-chan error { return e.facade.Flush() }

// Reset discards in-flight work and returns to unconfigured.
func (e *VideoEncoder) Reset() error { return e.facade.Reset() }

// Close tears the encoder and its worker down permanently.
func (e *VideoEncoder) Close() error {
	err := e.facade.Close()
	e.w.Stop()
	return err
}

// IsVideoEncoderConfigSupported checks codec-name resolution, positive
// dimensions, and whether the codec registry names an encoder for the
// codec (a hardware encoder in hwOrder, or the software fallback)
// (SPEC_FULL §5 "IsConfigSupported"). It allocates no context and opens
// no encoder, so it does not detect an encoder that fails to open on
// this host, which Configure does report.
func IsVideoEncoderConfigSupported(cfg worker.VideoEncoderConfig, hwOrder []string) (bool, worker.VideoEncoderConfig) {
	video, ok := codecid.ParseVideo(cfg.Codec)
	if !ok || cfg.Width <= 0 || cfg.Height <= 0 {
		return false, cfg
	}
	if cfg.HardwareAcceleration != worker.HWAccelPreferSoftware {
		if names := codecid.HWAccelEncoders(video, parseHWOrder(hwOrder)); len(names) > 0 {
			return true, cfg
		}
	}
	return codecid.GetVideoEncoder(video, codecid.HWAccelNone) != "", cfg
}

func parseHWOrder(order []string) []codecid.HWAccel {
	var out []codecid.HWAccel
	for _, s := range order {
		if hw, ok := codecid.ParseHWAccel(s); ok {
			out = append(out, hw)
		}
	}
	return out
}
