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

// AudioDecoder is the host-facing façade over an AudioDecoderWorker.
// Unlike VideoDecoder, audio decode carries no key-chunk precondition
// (spec §4.3 ties that precondition to video GOP structure only).
type AudioDecoder struct {
	*facade
	w *worker.AudioDecoderWorker
}

// NewAudioDecoder constructs an unconfigured AudioDecoder, starting its
// dedicated worker immediately.
func NewAudioDecoder(log *slog.Logger, thresholds Thresholds, callbackQueueDepth int, cb Callbacks) *AudioDecoder {
	id := newID()
	log = log.With("codec_id", id, "role", "audio_decoder")
	q := queue.New()
	gw := callback.New(callbackQueueDepth)

	d := &AudioDecoder{}
	dispatch := func(payload any) {
		if dispatchError(payload, cb) {
			return
		}
		if audio, ok := payload.(*value.AudioData); ok && cb.OutputAudio != nil {
			cb.OutputAudio(audio)
		}
	}
	d.facade = newFacade(id, log, thresholds, q, gw, cb, true, dispatch)

	hooks := worker.Hooks{
		OutputAudio:   d.deliverAudio,
		Error:         d.onError,
		Dequeue:       d.onDequeue,
		FlushComplete: d.onFlushComplete,
	}
	d.w = worker.NewAudioDecoderWorker(q, log, hooks)
	return d
}

func (d *AudioDecoder) deliverAudio(audio *value.AudioData) {
	d.onOutputPosted()
	d.gw.Post(audio, d.onOutputDelivered)
}

// Configure transitions unconfigured/configured -> configured.
func (d *AudioDecoder) Configure(cfg worker.AudioDecoderConfig) error {
	if err := d.checkNotClosed("configure"); err != nil {
		return err
	}
	if cfg.SampleRate <= 0 || cfg.NumChannels <= 0 {
		return codecerr.TypeError("configure", nil)
	}
	d.state.Store(int32(StateConfigured))
	_, err := d.q.Enqueue(&queue.Message{ID: d.q.NewID(), Kind: queue.KindConfigure, Configure: cfg})
	return err
}

// Decode enqueues an encoded chunk for decoding.
func (d *AudioDecoder) Decode(chunk *value.EncodedChunk) error {
	return d.enqueueInput("decode", &queue.Message{
		ID:     d.q.NewID(),
		Kind:   queue.KindDecode,
		Decode: &queue.DecodeInput{Chunk: chunk},
	})
}

// Flush returns a channel settled once all in-flight decodes have
// drained.
func (d *AudioDecoder) Flush() <-chan error { return d.facade.Flush() }

// Reset discards in-flight work and returns to unconfigured.
func (d *AudioDecoder) Reset() error { return d.facade.Reset() }

// Close tears the decoder and its worker down permanently.
func (d *AudioDecoder) Close() error {
	err := d.facade.Close()
	d.w.Stop()
	return err
}

// IsAudioDecoderConfigSupported probes codec-name resolution without
// allocating a full context.
func IsAudioDecoderConfigSupported(cfg worker.AudioDecoderConfig) (bool, worker.AudioDecoderConfig) {
	_, ok := codecid.ParseAudio(cfg.Codec)
	if !ok || cfg.SampleRate <= 0 || cfg.NumChannels <= 0 {
		return false, cfg
	}
	return true, cfg
}
