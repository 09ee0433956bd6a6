package worker

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/asticode/go-astiav"
	"github.com/jmylchreest/codecrt/internal/avresource"
	"github.com/jmylchreest/codecrt/internal/codecerr"
	"github.com/jmylchreest/codecrt/internal/codecid"
	"github.com/jmylchreest/codecrt/internal/queue"
	"github.com/jmylchreest/codecrt/internal/value"
)

// frameInfoEntry records the (timestamp, duration) a host-supplied
// frame carried, keyed by the monotone frameCount assigned as its pts
// (spec §4.2.2 step 3), so the corresponding output packet can restore
// it at emission time.
type frameInfoEntry struct {
	timestamp int64
	duration  int64
	hasDur    bool
}

// VideoEncoderWorker drives a libav video encoder context across its
// entire configured lifetime, rebuilding the context only across a
// flush (spec §4.2.4 step 3, the "EOF-locked encoder" design note).
type VideoEncoderWorker struct {
	baseWorker
	hooks Hooks
	order []codecid.HWAccel

	cfg           VideoEncoderConfig
	video         codecid.Video
	encoderName   string
	cctx          *avresource.CodecContext
	scaler        *avresource.Scaler
	src           *avresource.RGBASourceFrame
	pkt           *avresource.PacketScratch
	frameCount    int64
	frameInfo     map[int64]frameInfoEntry
	extradataSent bool
}

// NewVideoEncoderWorker constructs a worker bound to q, emitting
// through hooks. probeOrder is the configured platform hw-accel probe
// order (config.HWAccelConfig.Order, parsed).
func NewVideoEncoderWorker(q *queue.MessageQueue, log *slog.Logger, hooks Hooks, probeOrder []string) *VideoEncoderWorker {
	w := &VideoEncoderWorker{
		baseWorker: newBaseWorker(q, log),
		hooks:      hooks,
		order:      probeOrderFromStrings(probeOrder),
		frameInfo:  make(map[int64]frameInfoEntry),
	}
	w.start(w.dispatch)
	return w
}

// Stop joins the worker's consume loop after sealing its queue.
func (w *VideoEncoderWorker) Stop() { w.stop() }

func (w *VideoEncoderWorker) dispatch(msg *queue.Message) {
	switch msg.Kind {
	case queue.KindConfigure:
		cfg, _ := msg.Configure.(VideoEncoderConfig)
		w.handleConfigure(cfg)
	case queue.KindEncode:
		w.handleEncode(msg.Encode)
		w.hooks.emitDequeue(w.q.Size())
	case queue.KindFlush:
		w.handleFlush(msg.PromiseID)
	case queue.KindReset:
		w.handleReset()
	case queue.KindClose:
		w.handleClose()
	}
}

func (w *VideoEncoderWorker) handleConfigure(cfg VideoEncoderConfig) {
	w.teardownContext()

	video, ok := codecid.ParseVideo(cfg.Codec)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("unknown video codec %q", cfg.Codec)))
		return
	}
	w.video = video
	w.cfg = cfg

	threads := threadCountHint(logicalCPUCount(w.log))
	names := w.candidateEncoderNames(cfg)
	var lastErr error
	for _, name := range names {
		cctx, err := w.openEncoder(name, cfg, threads)
		if err != nil {
			lastErr = err
			w.log.Debug("encoder open attempt failed, trying next candidate", "encoder", name, "error", err)
			continue
		}
		w.cctx = cctx
		w.encoderName = name
		lastErr = nil
		break
	}
	if w.cctx == nil {
		w.hooks.emitError(codecerr.OperationError("configure", fmt.Errorf("no usable encoder for %s: %w", cfg.Codec, lastErr)))
		return
	}

	w.scaler = avresource.NewScaler()
	w.src = avresource.NewRGBASourceFrame()
	w.pkt = avresource.NewPacketScratch()
	w.frameInfo = make(map[int64]frameInfoEntry)
	w.extradataSent = false

	logPlatformCapabilities(w.log, w.encoderName, threads)
	w.log.Info("video encoder configured", "codec", string(video), "encoder", w.encoderName, "width", cfg.Width, "height", cfg.Height)
}

// candidateEncoderNames returns the ordered list of encoder names to
// attempt, per spec §4.2.1 steps 2-3: hardware names first (unless
// preferSoftware), then the software fallback.
func (w *VideoEncoderWorker) candidateEncoderNames(cfg VideoEncoderConfig) []string {
	video, _ := codecid.ParseVideo(cfg.Codec)
	var names []string
	if cfg.HardwareAcceleration != HWAccelPreferSoftware {
		names = append(names, codecid.HWAccelEncoders(video, w.order)...)
	}
	names = append(names, codecid.GetVideoEncoder(video, codecid.HWAccelNone))
	return names
}

func (w *VideoEncoderWorker) openEncoder(name string, cfg VideoEncoderConfig, threads int) (*avresource.CodecContext, error) {
	opts := astiav.NewDictionary()
	defer opts.Free()
	applyEncoderTunings(name, opts)

	framerate := cfg.Framerate
	if framerate <= 0 {
		framerate = 30
	}
	gop := cfg.GOPSize
	if gop <= 0 {
		gop = int(math.Round(framerate)) * 2
	}

	configure := func(ctx *astiav.CodecContext) {
		ctx.SetWidth(cfg.Width)
		ctx.SetHeight(cfg.Height)
		ctx.SetPixelFormat(astiav.PixelFormatYuv420P)
		ctx.SetTimeBase(astiav.NewRational(1, int(math.Round(framerate*1000))))
		ctx.SetFramerate(astiav.NewRational(int(math.Round(framerate*1000)), 1000))
		ctx.SetGopSize(gop)
		// Mandatory: B-frames disabled, the only portable keyframe-
		// forcing mechanism (spec §4.2.2 step 4, §9 "Keyframe forcing").
		ctx.SetMaxBFrames(0)
		if cfg.Bitrate > 0 {
			ctx.SetBitRate(cfg.Bitrate)
		}
		if cfg.AVCFormat != AVCFormatAnnexB {
			ctx.SetFlags(ctx.Flags().Add(astiav.CodecContextFlagGlobalHeader))
		}
		// HEVC software encoders are unstable under heavy slice
		// threading; keep them single-threaded and let everything
		// else use the probed core-count hint.
		switch {
		case name == "libx265":
			ctx.SetThreadCount(1)
		case threads > 0:
			ctx.SetThreadCount(threads)
		}
	}

	return avresource.OpenEncoderByName(name, configure, opts)
}

// applyEncoderTunings applies the per-encoder option sets of spec
// §4.2.1 step 6.
func applyEncoderTunings(encoderName string, opts *astiav.Dictionary) {
	switch encoderName {
	case "libx264":
		_ = opts.Set("preset", "fast", 0)
		_ = opts.Set("tune", "zerolatency", 0)
		_ = opts.Set("forced-idr", "1", 0)
	case "libx265":
		_ = opts.Set("preset", "fast", 0)
		_ = opts.Set("x265-params", "bframes=0:forced-idr=1", 0)
	case "libvpx", "libvpx-vp9":
		_ = opts.Set("quality", "realtime", 0)
		_ = opts.Set("speed", "6", 0)
	case "libsvtav1":
		_ = opts.Set("preset", "8", 0)
	case "libaom-av1":
		_ = opts.Set("cpu-used", "8", 0)
	case "h264_videotoolbox", "hevc_videotoolbox":
		_ = opts.Set("allow_sw", "1", 0)
	}
}

func (w *VideoEncoderWorker) handleEncode(in *queue.EncodeInput) {
	if w.cctx == nil || in == nil || in.VideoFrame == nil {
		w.hooks.emitError(codecerr.InvalidState("encode", fmt.Errorf("encoder not configured")))
		return
	}

	width, err := in.VideoFrame.CodedWidth()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("encode", err))
		return
	}
	height, _ := in.VideoFrame.CodedHeight()
	payload, err := in.VideoFrame.Bytes()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("encode", err))
		return
	}
	timestamp, _ := in.VideoFrame.Timestamp()

	srcFrame, err := w.src.Fill(width, height, payload)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}

	yuvFrame, err := w.scaler.ScaleToFrame(srcFrame, w.cfg.Width, w.cfg.Height, astiav.PixelFormatYuv420P)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}

	yuvFrame.SetPts(w.frameCount)
	entry := frameInfoEntry{timestamp: timestamp}
	if dur, derr := in.VideoFrame.Duration(); derr == nil {
		entry.duration, entry.hasDur = dur, true
	}
	w.frameInfo[w.frameCount] = entry
	w.frameCount++

	if in.KeyFrame {
		yuvFrame.SetPictureType(astiav.PictureTypeI)
		yuvFrame.SetKeyFrame(true)
	} else {
		yuvFrame.SetPictureType(astiav.PictureTypeNone)
		yuvFrame.SetKeyFrame(false)
	}

	if err := w.cctx.SendFrame(yuvFrame); err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}
	w.drainPackets()
}

// drainPackets pulls every packet currently available from the
// encoder and emits each as an owned EncodedChunk (spec §4.2.2 step 5,
// §4.2.5 emission rules).
func (w *VideoEncoderWorker) drainPackets() {
	pkt, err := w.pkt.Raw()
	if err != nil {
		return
	}
	for {
		if err := w.cctx.ReceivePacket(pkt); err != nil {
			pkt.Unref()
			return
		}
		w.emitPacket(pkt)
		pkt.Unref()
	}
}

func (w *VideoEncoderWorker) emitPacket(pkt *astiav.Packet) {
	info, ok := w.frameInfo[pkt.Pts()]
	delete(w.frameInfo, pkt.Pts())

	chunkType := value.ChunkTypeDelta
	if pkt.Flags().Has(astiav.PacketFlagKey) {
		chunkType = value.ChunkTypeKey
	}
	timestamp := pkt.Pts()
	if ok {
		timestamp = info.timestamp
	}

	data := pkt.Data()
	chunk := value.NewEncodedChunk(value.ChunkKindVideo, chunkType, timestamp, data)
	if ok && info.hasDur {
		chunk = chunk.WithDuration(info.duration)
	}

	if !w.extradataSent {
		w.extradataSent = true
		// Extradata, if the codec produced any, is implicitly carried
		// in the first output's bitstream for annexb; for avc format it
		// stays in the codec context's global-header extradata and is
		// not attached to this or any other output chunk.
	}

	if w.hooks.OutputChunk != nil {
		w.hooks.OutputChunk(chunk)
	}
}

func (w *VideoEncoderWorker) handleFlush(promiseID string) {
	if w.cctx == nil {
		w.hooks.emitFlushComplete(promiseID, nil)
		return
	}
	if err := w.cctx.SendFrame(nil); err != nil {
		w.hooks.emitFlushComplete(promiseID, codecerr.OperationError("flush", err))
		return
	}
	w.drainPackets()

	// The codec library refuses further input after an EOF-drain, so
	// the context is destroyed and rebuilt from the remembered
	// configuration, preserving frameCount (spec §4.2.4 step 3, §9
	// "EOF-locked encoder after drain").
	w.frameInfo = make(map[int64]frameInfoEntry)
	preservedFrameCount := w.frameCount

	cfg := w.cfg
	w.teardownContext()
	w.handleConfigure(cfg)
	w.frameCount = preservedFrameCount

	w.hooks.emitFlushComplete(promiseID, nil)
}

func (w *VideoEncoderWorker) handleReset() {
	w.teardownContext()
	w.frameCount = 0
	w.frameInfo = make(map[int64]frameInfoEntry)
}

func (w *VideoEncoderWorker) handleClose() {
	w.handleReset()
}

func (w *VideoEncoderWorker) teardownContext() {
	if w.pkt != nil {
		w.pkt.Close()
		w.pkt = nil
	}
	if w.src != nil {
		w.src.Close()
		w.src = nil
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
