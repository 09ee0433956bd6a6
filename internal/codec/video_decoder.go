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

// VideoDecoder is the host-facing façade over a VideoDecoderWorker.
type VideoDecoder struct {
	*facade
	w *worker.VideoDecoderWorker
}

// NewVideoDecoder constructs an unconfigured VideoDecoder, starting
// its dedicated worker immediately.
func NewVideoDecoder(log *slog.Logger, thresholds Thresholds, callbackQueueDepth int, cb Callbacks) *VideoDecoder {
	id := newID()
	log = log.With("codec_id", id, "role", "video_decoder")
	q := queue.New()
	gw := callback.New(callbackQueueDepth)

	d := &VideoDecoder{}
	dispatch := func(payload any) {
		if dispatchError(payload, cb) {
			return
		}
		if frame, ok := payload.(*value.VideoFrame); ok && cb.OutputFrame != nil {
			cb.OutputFrame(frame)
		}
	}
	d.facade = newFacade(id, log, thresholds, q, gw, cb, true, dispatch)
	d.facade.firstKey = true

	hooks := worker.Hooks{
		OutputFrame:   d.deliverFrame,
		Error:         d.onError,
		Dequeue:       d.onDequeue,
		FlushComplete: d.onFlushComplete,
	}
	d.w = worker.NewVideoDecoderWorker(q, log, hooks)
	return d
}

func (d *VideoDecoder) deliverFrame(frame *value.VideoFrame) {
	d.onOutputPosted()
	d.gw.Post(frame, d.onOutputDelivered)
}

// Configure transitions unconfigured/configured -> configured and
// arms the key-chunk precondition for the next Decode call (spec
// §4.3 "Decode precondition").
func (d *VideoDecoder) Configure(cfg worker.VideoDecoderConfig) error {
	if err := d.checkNotClosed("configure"); err != nil {
		return err
	}
	if cfg.CodedWidth <= 0 || cfg.CodedHeight <= 0 || cfg.CodedWidth > 16384 || cfg.CodedHeight > 16384 {
		return codecerr.TypeError("configure", nil)
	}
	d.mu.Lock()
	d.state.Store(int32(StateConfigured))
	d.firstKey = true
	d.mu.Unlock()
	_, err := d.q.Enqueue(&queue.Message{ID: d.q.NewID(), Kind: queue.KindConfigure, Configure: cfg})
	return err
}

// Decode enqueues an encoded chunk for decoding, enforcing that the
// first chunk after configure/flush/reset is a key chunk (spec §4.3).
func (d *VideoDecoder) Decode(chunk *value.EncodedChunk) error {
	d.mu.Lock()
	needsKey := d.firstKey
	if needsKey {
		typ, err := chunk.Type()
		if err != nil {
			d.mu.Unlock()
			return codecerr.DataError("decode", err)
		}
		if typ != value.ChunkTypeKey {
			d.mu.Unlock()
			return codecerr.DataError("decode", nil)
		}
	}
	d.mu.Unlock()

	if err := d.enqueueInput("decode", &queue.Message{
		ID:     d.q.NewID(),
		Kind:   queue.KindDecode,
		Decode: &queue.DecodeInput{Chunk: chunk},
	}); err != nil {
		return err
	}
	if needsKey {
		d.mu.Lock()
		d.firstKey = false
		d.mu.Unlock()
	}
	return nil
}

// Flush returns a channel settled once all in-flight decodes have
// drained, and re-arms the key-chunk precondition.
func (d *VideoDecoder) Flush() <-chan error {
	ch := d.facade.Flush()
	out := make(chan error, 1)
	go func() {
		err := <-ch
		d.mu.Lock()
		d.firstKey = true
		d.mu.Unlock()
		out <- err
	}()
	return out
}

// Reset discards in-flight work, returns to unconfigured, and re-arms
// the key-chunk precondition.
func (d *VideoDecoder) Reset() error {
	err := d.facade.Reset()
	d.mu.Lock()
	d.firstKey = true
	d.mu.Unlock()
	return err
}

// Close tears the decoder and its worker down permanently.
func (d *VideoDecoder) Close() error {
	err := d.facade.Close()
	d.w.Stop()
	return err
}

// IsVideoDecoderConfigSupported probes codec-name resolution without
// allocating a full context.
func IsVideoDecoderConfigSupported(cfg worker.VideoDecoderConfig) (bool, worker.VideoDecoderConfig) {
	_, ok := codecid.ParseVideo(cfg.Codec)
	if !ok || cfg.CodedWidth <= 0 || cfg.CodedHeight <= 0 || cfg.CodedWidth > 16384 || cfg.CodedHeight > 16384 {
		return false, cfg
	}
	return true, cfg
}
