package worker

import (
	"fmt"
	"log/slog"

	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/avresource"
	"github.com/jmylchreest/codecrt/internal/codecerr"
	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/jmylchreest/codecrt/internal/queue"
	"github.com/jmylchreest/codecrt/internal/value"
)

// AudioDecoderWorker drives a libav audio decoder context, emitting
// decoded samples as planar float32 AudioData.
type AudioDecoderWorker struct {
	baseWorker
	hooks Hooks

	cfg   AudioDecoderConfig
	cctx  *avresource.CodecContext
	frame *avresource.FrameScratch
	pkt   *avresource.PacketScratch
}

// NewAudioDecoderWorker constructs a worker bound to q, emitting
// through hooks.
func NewAudioDecoderWorker(q *queue.MessageQueue, log *slog.Logger, hooks Hooks) *AudioDecoderWorker {
	w := &AudioDecoderWorker{baseWorker: newBaseWorker(q, log), hooks: hooks}
	w.start(w.dispatch)
	return w
}

// Stop joins the worker's consume loop after sealing its queue.
func (w *AudioDecoderWorker) Stop() { w.stop() }

func (w *AudioDecoderWorker) dispatch(msg *queue.Message) {
	switch msg.Kind {
	case queue.KindConfigure:
		cfg, _ := msg.Configure.(AudioDecoderConfig)
		w.handleConfigure(cfg)
	case queue.KindDecode:
		w.handleDecode(msg.Decode)
		w.hooks.emitDequeue(w.q.Size())
	case queue.KindFlush:
		w.handleFlush(msg.PromiseID)
	case queue.KindReset:
		w.handleReset()
	case queue.KindClose:
		w.handleClose()
	}
}

func (w *AudioDecoderWorker) handleConfigure(cfg AudioDecoderConfig) {
	w.teardownContext()

	audio, ok := codecid.ParseAudio(cfg.Codec)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("unknown audio codec %q", cfg.Codec)))
		return
	}
	codecID, ok := audioCodecID(audio)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("no decoder mapping for %s", audio)))
		return
	}
	w.cfg = cfg

	configure := func(ctx *astiav.CodecContext) {
		ctx.SetSampleRate(cfg.SampleRate)
		ctx.SetChannelLayout(astiav.ChannelLayoutForChannels(cfg.NumChannels))
		if len(cfg.Description) > 0 {
			ctx.SetExtradata(cfg.Description)
		}
	}

	opts := astiav.NewDictionary()
	defer opts.Free()

	cctx, err := avresource.OpenDecoder(codecID, configure, opts)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("configure", err))
		return
	}

	w.cctx = cctx
	w.frame = avresource.NewFrameScratch()
	w.pkt = avresource.NewPacketScratch()

	w.log.Info("audio decoder configured", "codec", string(audio), "sample_rate", cfg.SampleRate)
}

func (w *AudioDecoderWorker) handleDecode(in *queue.DecodeInput) {
	if w.cctx == nil || in == nil || in.Chunk == nil {
		w.hooks.emitError(codecerr.InvalidState("decode", fmt.Errorf("decoder not configured")))
		return
	}

	payload, err := in.Chunk.Bytes()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("decode", err))
		return
	}

	pkt, err := w.pkt.Raw()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("decode", err))
		return
	}
	if err := pkt.FromData(payload); err != nil {
		w.hooks.emitError(codecerr.OperationError("decode", err))
		return
	}
	timestamp, err := in.Chunk.Timestamp()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("decode", err))
		return
	}
	pkt.SetPts(timestamp)

	if err := w.cctx.SendPacket(pkt); err != nil {
		pkt.Unref()
		w.hooks.emitError(codecerr.OperationError("decode", err))
		return
	}
	pkt.Unref()
	w.drainFrames()
}

func (w *AudioDecoderWorker) drainFrames() {
	frame, err := w.frame.Raw()
	if err != nil {
		return
	}
	for {
		if err := w.cctx.ReceiveFrame(frame); err != nil {
			frame.Unref()
			return
		}
		w.emitFrame(frame)
		frame.Unref()
	}
}

func (w *AudioDecoderWorker) emitFrame(frame *astiav.Frame) {
	numChannels := frame.ChannelLayout().Channels()
	numFrames := frame.NbSamples()

	// libav's float planar decode output (fltp) carries one plane per
	// channel; concatenate them in channel order to match
	// value.SampleFormatF32Planar's layout.
	var payload []byte
	for ch := 0; ch < numChannels; ch++ {
		planeBytes, err := frame.Data().Bytes(ch)
		if err != nil {
			w.hooks.emitError(codecerr.OperationError("decode", err))
			return
		}
		payload = append(payload, planeBytes...)
	}

	ad, err := value.NewAudioData(value.AudioDataInit{
		Format:      value.SampleFormatF32Planar,
		SampleRate:  frame.SampleRate(),
		NumFrames:   numFrames,
		NumChannels: numChannels,
		Timestamp:   frame.Pts(),
	}, payload)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("decode", err))
		return
	}

	if w.hooks.OutputAudio != nil {
		w.hooks.OutputAudio(ad)
	}
}

func (w *AudioDecoderWorker) handleFlush(promiseID string) {
	if w.cctx == nil {
		w.hooks.emitFlushComplete(promiseID, nil)
		return
	}
	if err := w.cctx.SendPacket(nil); err != nil {
		w.hooks.emitFlushComplete(promiseID, codecerr.OperationError("flush", err))
		return
	}
	w.drainFrames()
	w.cctx.FlushBuffers()
	w.hooks.emitFlushComplete(promiseID, nil)
}

func (w *AudioDecoderWorker) handleReset() {
	w.teardownContext()
}

func (w *AudioDecoderWorker) handleClose() { w.handleReset() }

func (w *AudioDecoderWorker) teardownContext() {
	if w.pkt != nil {
		w.pkt.Close()
		w.pkt = nil
	}
	if w.frame != nil {
		w.frame.Close()
		w.frame = nil
	}
	if w.cctx != nil {
		w.cctx.Close()
		w.cctx = nil
	}
}
