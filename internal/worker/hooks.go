package worker

import "github.com/jmylchreest/codecrt/internal/value"

// Hooks are the typed callback functions a worker captures at Start,
// never a back-pointer to the owning façade (spec §9 "Cyclic ownership
// worker ↔ façade"). Every hook is invoked from the worker's own
// goroutine; callers that need host-thread delivery must route through
// an internal/callback.Gateway themselves.
type Hooks struct {
	// OutputChunk delivers an encoder's produced EncodedChunk.
	OutputChunk func(chunk *value.EncodedChunk)
	// OutputFrame delivers a decoder's produced VideoFrame.
	OutputFrame func(frame *value.VideoFrame)
	// OutputAudio delivers a decoder's produced AudioData.
	OutputAudio func(audio *value.AudioData)
	// Error reports an asynchronous worker-side failure. The façade
	// transitions to closed on receipt (spec §7).
	Error func(err error)
	// Dequeue reports the new queue size after an input is consumed.
	Dequeue func(newSize int)
	// FlushComplete reports the outcome of a Flush message by promise ID.
	FlushComplete func(promiseID string, err error)
}

func (h Hooks) emitError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}

func (h Hooks) emitDequeue(size int) {
	if h.Dequeue != nil {
		h.Dequeue(size)
	}
}

func (h Hooks) emitFlushComplete(promiseID string, err error) {
	if h.FlushComplete != nil {
		h.FlushComplete(promiseID, err)
	}
}
