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

// VideoDecoderWorker drives a libav video decoder context across its
// entire configured lifetime. Unlike the encoder side, a decoder does
// not need rebuilding across a flush: flush_buffers exits drain mode
// in place (spec §4.2.4 step 4).
type VideoDecoderWorker struct {
	baseWorker
	hooks Hooks

	cfg          VideoDecoderConfig
	video        codecid.Video
	cctx         *avresource.CodecContext
	scaler       *avresource.Scaler
	frame        *avresource.FrameScratch
	pkt          *avresource.PacketScratch
	firstDecoded bool
}

// NewVideoDecoderWorker constructs a worker bound to q, emitting
// through hooks.
func NewVideoDecoderWorker(q *queue.MessageQueue, log *slog.Logger, hooks Hooks) *VideoDecoderWorker {
	w := &VideoDecoderWorker{baseWorker: newBaseWorker(q, log), hooks: hooks}
	w.start(w.dispatch)
	return w
}

// Stop joins the worker's consume loop after sealing its queue.
func (w *VideoDecoderWorker) Stop() { w.stop() }

func (w *VideoDecoderWorker) dispatch(msg *queue.Message) {
	switch msg.Kind {
	case queue.KindConfigure:
		cfg, _ := msg.Configure.(VideoDecoderConfig)
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

func (w *VideoDecoderWorker) handleConfigure(cfg VideoDecoderConfig) {
	w.teardownContext()

	video, ok := codecid.ParseVideo(cfg.Codec)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("unknown video codec %q", cfg.Codec)))
		return
	}
	codecID, ok := videoCodecID(video)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("no decoder mapping for %s", video)))
		return
	}
	w.video = video
	w.cfg = cfg

	opts := astiav.NewDictionary()
	defer opts.Free()

	threads := threadCountHint(logicalCPUCount(w.log))
	configure := func(ctx *astiav.CodecContext) {
		if len(cfg.Description) > 0 {
			ctx.SetExtradata(cfg.Description)
		}
		// HEVC decode is single-threaded for stability, mirroring the
		// encode-side caution; every other codec uses the probed hint.
		switch {
		case video == codecid.VideoH265:
			ctx.SetThreadCount(1)
		case threads > 0:
			ctx.SetThreadCount(threads)
		}
	}

	cctx, err := avresource.OpenDecoder(codecID, configure, opts)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("configure", err))
		return
	}

	w.cctx = cctx
	w.scaler = avresource.NewScaler()
	w.frame = avresource.NewFrameScratch()
	w.pkt = avresource.NewPacketScratch()
	w.firstDecoded = false

	logPlatformCapabilities(w.log, "software", threads)
	w.log.Info("video decoder configured", "codec", string(video))
}

func (w *VideoDecoderWorker) handleDecode(in *queue.DecodeInput) {
	if w.cctx == nil || in == nil || in.Chunk == nil {
		w.hooks.emitError(codecerr.InvalidState("decode", fmt.Errorf("decoder not configured")))
		return
	}

	if !w.firstDecoded {
		typ, err := in.Chunk.Type()
		if err != nil {
			w.hooks.emitError(codecerr.InvalidState("decode", err))
			return
		}
		if typ != value.ChunkTypeKey {
			w.hooks.emitError(codecerr.DataError("decode", fmt.Errorf("first chunk after configure/flush/reset must be a key chunk")))
			return
		}
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
	w.firstDecoded = true
	w.drainFrames()
}

func (w *VideoDecoderWorker) drainFrames() {
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

// emitFrame converts a decoded frame to RGBA, derives display
// dimensions per spec §4.2.3, and emits a VideoFrame (spec §4.2.5:
// detached payload, no reference to scratch buffers post-emission).
func (w *VideoDecoderWorker) emitFrame(frame *astiav.Frame) {
	codedW, codedH := frame.Width(), frame.Height()
	rgba, err := w.scaler.ScaleTo(frame, codedW, codedH, astiav.PixelFormatRgba)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("decode", err))
		return
	}

	displayW, displayH := value.DisplayDimensions(codedW, codedH, w.cfg.DisplayAspectWidth, w.cfg.DisplayAspectHeight)

	vf, err := value.NewVideoFrame(value.VideoFrameInit{
		CodedWidth:    codedW,
		CodedHeight:   codedH,
		DisplayWidth:  displayW,
		DisplayHeight: displayH,
		Format:        value.PixelFormatRGBA,
		Timestamp:     frame.Pts(),
		Rotation:      w.cfg.Rotation,
		Flip:          w.cfg.Flip,
		ColorSpace:    w.cfg.ColorSpace,
	}, rgba)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("decode", err))
		return
	}

	if w.hooks.OutputFrame != nil {
		w.hooks.OutputFrame(vf)
	}
}

func (w *VideoDecoderWorker) handleFlush(promiseID string) {
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
	w.firstDecoded = false
	w.hooks.emitFlushComplete(promiseID, nil)
}

func (w *VideoDecoderWorker) handleReset() {
	w.teardownContext()
	w.firstDecoded = false
}

func (w *VideoDecoderWorker) handleClose() {
	w.handleReset()
}

func (w *VideoDecoderWorker) teardownContext() {
	if w.pkt != nil {
		w.pkt.Close()
		w.pkt = nil
	}
	if w.frame != nil {
		w.frame.Close()
		w.frame = nil
	}
	if w.scaler != nil {
		w.scaler.Close()
		w.scaler = nil
	}
	if w.cctx != nil {
		w.cctx.Close()
		w.cctx = nil
	}
}
