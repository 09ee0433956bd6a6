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

// AudioEncoder is the host-facing façade over an AudioEncoderWorker.
type AudioEncoder struct {
	*facade
	w *worker.AudioEncoderWorker
}

// NewAudioEncoder constructs an unconfigured AudioEncoder, starting
// its dedicated worker immediately.
func NewAudioEncoder(log *slog.Logger, thresholds Thresholds, callbackQueueDepth int, cb Callbacks) *AudioEncoder {
	id := newID()
	log = log.With("codec_id", id, "role", "audio_encoder")
	q := queue.New()
	gw := callback.New(callbackQueueDepth)

	e := &AudioEncoder{}
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
	e.w = worker.NewAudioEncoderWorker(q, log, hooks)
	return e
}

func (e *AudioEncoder) deliverChunk(chunk *value.EncodedChunk) {
	e.onOutputPosted()
	e.gw.Post(chunk, e.onOutputDelivered)
}

// Configure transitions unconfigured/configured -> configured.
func (e *AudioEncoder) Configure(cfg worker.AudioEncoderConfig) error {
	if err := e.checkNotClosed("configure"); err != nil {
		return err
	}
	if cfg.SampleRate <= 0 || cfg.NumChannels <= 0 {
		return codecerr.TypeError("configure", nil)
	}
	e.state.Store(int32(StateConfigured))
	_, err := e.q.Enqueue(&queue.Message{ID: e.q.NewID(), Kind: queue.KindConfigure, Configure: cfg})
	return err
}

// Encode enqueues audio data for encoding.
func (e *AudioEncoder) Encode(audio *value.AudioData) error {
	return e.enqueueInput("encode", &queue.Message{
		ID:     e.q.NewID(),
		Kind:   queue.KindEncode,
		Encode: &queue.EncodeInput{AudioData: audio},
	})
}

// Flush returns a channel settled once all in-flight encodes have
// drained.
func (e *AudioEncoder) Flush() <-chan error { return e.facade.Flush() }

// Reset discards in-flight work and returns to unconfigured.
func (e *AudioEncoder) Reset() error { return e.facade.Reset() }

// Close tears the encoder and its worker down permanently.
func (e *AudioEncoder) Close() error {
	err := e.facade.Close()
	e.w.Stop()
	return err
}

// IsAudioEncoderConfigSupported probes codec-name resolution without
// allocating a full context.
func IsAudioEncoderConfigSupported(cfg worker.AudioEncoderConfig) (bool, worker.AudioEncoderConfig) {
	_, ok := codecid.ParseAudio(cfg.Codec)
	if !ok || cfg.SampleRate <= 0 || cfg.NumChannels <= 0 {
		return false, cfg
	}
	return true, cfg
}
