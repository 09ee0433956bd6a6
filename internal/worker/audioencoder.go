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

// AudioEncoderWorker drives a libav audio encoder context, resampling
// host-supplied AudioData into the encoder's required layout/format/
// rate via libswresample (grounded in the teacher reference's AAC
// recording path: AllocSoftwareResampleContext + ConvertFrame).
type AudioEncoderWorker struct {
	baseWorker
	hooks Hooks

	cfg        AudioEncoderConfig
	cctx       *avresource.CodecContext
	resampler  *avresource.Resampler
	src        *avresource.PCMSourceFrame
	pkt        *avresource.PacketScratch
	frameCount int64
	frameInfo  map[int64]frameInfoEntry
}

// NewAudioEncoderWorker constructs a worker bound to q, emitting
// through hooks.
func NewAudioEncoderWorker(q *queue.MessageQueue, log *slog.Logger, hooks Hooks) *AudioEncoderWorker {
	w := &AudioEncoderWorker{baseWorker: newBaseWorker(q, log), hooks: hooks, frameInfo: make(map[int64]frameInfoEntry)}
	w.start(w.dispatch)
	return w
}

// Stop joins the worker's consume loop after sealing its queue.
func (w *AudioEncoderWorker) Stop() { w.stop() }

func (w *AudioEncoderWorker) dispatch(msg *queue.Message) {
	switch msg.Kind {
	case queue.KindConfigure:
		cfg, _ := msg.Configure.(AudioEncoderConfig)
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

func (w *AudioEncoderWorker) handleConfigure(cfg AudioEncoderConfig) {
	w.teardownContext()

	audio, ok := codecid.ParseAudio(cfg.Codec)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("configure", fmt.Errorf("unknown audio codec %q", cfg.Codec)))
		return
	}
	w.cfg = cfg
	encoderName := codecid.GetAudioEncoder(audio)

	configure := func(ctx *astiav.CodecContext) {
		ctx.SetSampleRate(cfg.SampleRate)
		ctx.SetChannelLayout(astiav.ChannelLayoutForChannels(cfg.NumChannels))
		ctx.SetTimeBase(astiav.NewRational(1, cfg.SampleRate))
		if cfg.Bitrate > 0 {
			ctx.SetBitRate(cfg.Bitrate)
		}
		ctx.SetStrictStdCompliance(astiav.StrictStdComplianceExperimental)
	}

	opts := astiav.NewDictionary()
	defer opts.Free()

	cctx, err := avresource.OpenEncoderByName(encoderName, configure, opts)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("configure", err))
		return
	}

	resampler, err := avresource.NewResampler()
	if err != nil {
		cctx.Close()
		w.hooks.emitError(codecerr.OperationError("configure", err))
		return
	}

	w.cctx = cctx
	w.resampler = resampler
	w.src = avresource.NewPCMSourceFrame()
	w.pkt = avresource.NewPacketScratch()
	w.frameInfo = make(map[int64]frameInfoEntry)

	w.log.Info("audio encoder configured", "codec", string(audio), "encoder", encoderName, "sample_rate", cfg.SampleRate)
}

func (w *AudioEncoderWorker) handleEncode(in *queue.EncodeInput) {
	if w.cctx == nil || in == nil || in.AudioData == nil {
		w.hooks.emitError(codecerr.InvalidState("encode", fmt.Errorf("encoder not configured")))
		return
	}

	dstFrame, err := w.resampler.Dst()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("encode", err))
		return
	}

	rawCtx, err := w.cctx.Raw()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("encode", err))
		return
	}

	numFrames, _ := in.AudioData.NumberOfFrames()
	sampleRate, _ := in.AudioData.SampleRate()
	numChannels, _ := in.AudioData.NumberOfChannels()
	format, err := in.AudioData.Format()
	if err != nil {
		w.hooks.emitError(codecerr.InvalidState("encode", err))
		return
	}
	sampleFormat, ok := audioSampleFormat(format)
	if !ok {
		w.hooks.emitError(codecerr.NotSupported("encode", fmt.Errorf("unsupported sample format %v", format)))
		return
	}

	numPlanes := 1
	if format.Planar() {
		numPlanes = numChannels
	}
	planes := make([][]byte, numPlanes)
	for i := range planes {
		size, err := in.AudioData.AllocationSize(i, 0, numFrames)
		if err != nil {
			w.hooks.emitError(codecerr.InvalidState("encode", err))
			return
		}
		buf := make([]byte, size)
		if err := in.AudioData.CopyTo(buf, i, 0, numFrames); err != nil {
			w.hooks.emitError(codecerr.InvalidState("encode", err))
			return
		}
		planes[i] = buf
	}

	srcFrame, err := w.src.Fill(sampleFormat, sampleRate, numChannels, numFrames, planes)
	if err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}

	dstFrame.SetSampleRate(rawCtx.SampleRate())
	dstFrame.SetChannelLayout(rawCtx.ChannelLayout())
	dstFrame.SetSampleFormat(rawCtx.SampleFormat())
	dstFrame.SetNbSamples(numFrames)
	if err := dstFrame.AllocBuffer(0); err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}

	if err := w.resampler.ConvertTo(srcFrame, dstFrame); err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}

	dstFrame.SetPts(w.frameCount)
	entry := frameInfoEntry{}
	if ts, terr := in.AudioData.Timestamp(); terr == nil {
		entry.timestamp = ts
	}
	w.frameInfo[w.frameCount] = entry
	w.frameCount += int64(numFrames)

	if err := w.cctx.SendFrame(dstFrame); err != nil {
		w.hooks.emitError(codecerr.OperationError("encode", err))
		return
	}
	w.drainPackets()
}

func (w *AudioEncoderWorker) drainPackets() {
	pkt, err := w.pkt.Raw()
	if err != nil {
		return
	}
	for {
		if err := w.cctx.ReceivePacket(pkt); err != nil {
			pkt.Unref()
			return
		}
		info, ok := w.frameInfo[pkt.Pts()]
		delete(w.frameInfo, pkt.Pts())
		timestamp := pkt.Pts()
		if ok {
			timestamp = info.timestamp
		}
		chunk := value.NewEncodedChunk(value.ChunkKindAudio, value.ChunkTypeKey, timestamp, pkt.Data())
		if w.hooks.OutputChunk != nil {
			w.hooks.OutputChunk(chunk)
		}
		pkt.Unref()
	}
}

func (w *AudioEncoderWorker) handleFlush(promiseID string) {
	if w.cctx == nil {
		w.hooks.emitFlushComplete(promiseID, nil)
		return
	}
	if err := w.cctx.SendFrame(nil); err != nil {
		w.hooks.emitFlushComplete(promiseID, codecerr.OperationError("flush", err))
		return
	}
	w.drainPackets()

	w.frameInfo = make(map[int64]frameInfoEntry)
	preserved := w.frameCount
	cfg := w.cfg
	w.teardownContext()
	w.handleConfigure(cfg)
	w.frameCount = preserved

	w.hooks.emitFlushComplete(promiseID, nil)
}

func (w *AudioEncoderWorker) handleReset() {
	w.teardownContext()
	w.frameCount = 0
	w.frameInfo = make(map[int64]frameInfoEntry)
}

func (w *AudioEncoderWorker) handleClose() { w.handleReset() }

func (w *AudioEncoderWorker) teardownContext() {
	if w.pkt != nil {
		w.pkt.Close()
		w.pkt = nil
	}
	if w.src != nil {
		w.src.Close()
		w.src = nil
	}
	if w.resampler != nil {
		w.resampler.Close()
		w.resampler = nil
	}
	if w.cctx != nil {
		w.cctx.Close()
		w.cctx = nil
	}
}
