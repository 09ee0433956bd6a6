// Package codec implements the host-facing codec façade: the WebCodecs
// public surface (configure/encode/decode/flush/reset/close, state,
// queue sizes, saturation, pendingFrames) in front of a per-codec
// internal/worker, wired through internal/queue and internal/callback
// (spec §4.3, §6).
package codec

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jmylchreest/codecrt/internal/callback"
	"github.com/jmylchreest/codecrt/internal/codecerr"
	"github.com/jmylchreest/codecrt/internal/queue"
	"github.com/jmylchreest/codecrt/internal/value"
)

// State is the WebCodecs state machine (spec §4.3).
type State int32

// States.
const (
	StateUnconfigured State = iota
	StateConfigured
	StateClosed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateConfigured:
		return "configured"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Callbacks are the user-supplied output/error callbacks every codec
// constructor takes (spec §6).
type Callbacks struct {
	OutputChunk func(*value.EncodedChunk)
	OutputFrame func(*value.VideoFrame)
	OutputAudio func(*value.AudioData)
	Error       func(error)
}

// Thresholds carries the soft/hard queue-size backpressure thresholds
// (spec §4.3, reference defaults 16/64).
type Thresholds struct {
	Soft int
	Hard int
}

// facade is the common state machine, queue accounting, and flush
// bookkeeping shared by every codec role. Role-specific types
// (VideoEncoder, VideoDecoder, AudioEncoder, AudioDecoder) embed it
// and supply the worker-specific Configure/Encode/Decode entry points.
type facade struct {
	mu sync.Mutex

	id  string
	log *slog.Logger

	state      atomic.Int32
	queueSize  atomic.Int64
	saturated  atomic.Bool
	pending    atomic.Int64
	thresholds Thresholds

	q        *queue.MessageQueue
	gw       *callback.Gateway
	cb       Callbacks
	decoder  bool // true for decode-side codecs (decodeQueueSize semantics)
	firstKey bool // whether the next decode must be a key chunk

	flushPromises map[string]chan error
}

func newFacade(id string, log *slog.Logger, thresholds Thresholds, q *queue.MessageQueue, gw *callback.Gateway, cb Callbacks, decoder bool, dispatch func(any)) *facade {
	f := &facade{
		id:            id,
		log:           log,
		thresholds:    thresholds,
		q:             q,
		gw:            gw,
		cb:            cb,
		decoder:       decoder,
		flushPromises: make(map[string]chan error),
	}
	f.state.Store(int32(StateUnconfigured))
	// The gateway's pump runs on its own goroutine, standing in for
	// the "host thread" dispatch loop (spec §9 "thread-safe function"
	// primitive): the worker posts (payload, finalizer) and this pump
	// is the only place the user's output/error callbacks are invoked.
	go f.gw.Run(dispatch)
	return f
}

// newID generates a codec instance ID for log correlation.
func newID() string {
	return uuid.NewString()
}

// State returns the façade's current WebCodecs state.
func (f *facade) State() State { return State(f.state.Load()) }

// QueueSize returns the current decodeQueueSize/encodeQueueSize.
func (f *facade) QueueSize() int { return int(f.queueSize.Load()) }

// Saturated returns the current codecSaturated flag.
func (f *facade) Saturated() bool { return f.saturated.Load() }

// PendingFrames returns the current pendingFrames counter (decoders).
func (f *facade) PendingFrames() int { return int(f.pending.Load()) }

// checkNotClosed returns an InvalidStateError if the façade is closed.
func (f *facade) checkNotClosed(op string) error {
	if f.State() == StateClosed {
		return codecerr.InvalidState(op, nil)
	}
	return nil
}

// enqueueInput validates state, enforces the hard threshold, and
// enqueues msg, updating queue accounting (spec §4.3 "Queue
// accounting").
func (f *facade) enqueueInput(op string, msg *queue.Message) error {
	if err := f.checkNotClosed(op); err != nil {
		return err
	}
	if f.State() != StateConfigured {
		return codecerr.InvalidState(op, nil)
	}

	f.mu.Lock()
	size := f.queueSize.Load()
	if int(size) >= f.thresholds.Hard {
		f.mu.Unlock()
		return codecerr.QuotaExceeded(op, nil)
	}
	newSize := f.queueSize.Add(1)
	if int(newSize) >= f.thresholds.Soft {
		f.saturated.Store(true)
	}
	f.mu.Unlock()

	if _, err := f.q.Enqueue(msg); err != nil {
		f.queueSize.Add(-1)
		return codecerr.InvalidState(op, err)
	}
	return nil
}

// onDequeue is the worker's dequeue hook: decrements the queue
// counter and clears saturation once below the soft threshold.
func (f *facade) onDequeue(_ int) {
	newSize := f.queueSize.Add(-1)
	if newSize < 0 {
		f.queueSize.Store(0)
		newSize = 0
	}
	if int(newSize) < f.thresholds.Soft {
		f.saturated.Store(false)
	}
}

// onOutputPosted increments the pending counter when the worker posts
// a produced output for delivery (spec §4.2.5: "before posting, the
// worker increments a pending counter"), distinct from enqueueInput's
// queue-depth accounting — an input that buffers without producing an
// output this round never touches this counter.
func (f *facade) onOutputPosted() {
	f.pending.Add(1)
}

// onOutputDelivered decrements pendingFrames once a produced output
// has been handed to the user callback, or cleaned up after an
// unhandled callback panic (spec §4.2.5, §4.3).
func (f *facade) onOutputDelivered() {
	if v := f.pending.Add(-1); v < 0 {
		f.pending.Store(0)
	}
}

// errDelivery wraps an asynchronous worker error for gateway delivery,
// so a dispatch function can tell it apart from the role's regular
// output payload (*value.VideoFrame, *value.EncodedChunk, ...).
type errDelivery struct {
	err error
}

// onError transitions the façade to closed per spec §7: an
// asynchronous worker error terminates the codec. The state transition
// happens immediately, but the error itself is posted through the
// callback gateway rather than invoked directly, so it reaches
// cb.Error on the host thread and is dropped like any other delivery
// once Close has unregistered the gateway (spec §4.6, §5 scenario 6's
// "no callbacks fire" after teardown).
func (f *facade) onError(err error) {
	f.state.Store(int32(StateClosed))
	f.gw.Post(errDelivery{err}, nil)
}

// dispatchError handles the errDelivery case shared by every role's
// dispatch function; callers check it before their role-specific
// payload type switch.
func dispatchError(payload any, cb Callbacks) bool {
	ed, ok := payload.(errDelivery)
	if !ok {
		return false
	}
	if cb.Error != nil {
		cb.Error(ed.err)
	}
	return true
}

// Flush enqueues a Flush message and returns a channel that receives
// the drain result exactly once (spec §4.3 "Flush bookkeeping").
// Resolves immediately if unconfigured.
func (f *facade) Flush() <-chan error {
	result := make(chan error, 1)
	if f.State() == StateUnconfigured {
		result <- nil
		return result
	}
	if err := f.checkNotClosed("flush"); err != nil {
		result <- err
		return result
	}

	promiseID := f.q.NewID()
	f.mu.Lock()
	f.flushPromises[promiseID] = result
	f.mu.Unlock()

	if _, err := f.q.Enqueue(&queue.Message{ID: f.q.NewID(), Kind: queue.KindFlush, PromiseID: promiseID}); err != nil {
		f.mu.Lock()
		delete(f.flushPromises, promiseID)
		f.mu.Unlock()
		result <- codecerr.InvalidState("flush", err)
	}
	return result
}

// onFlushComplete settles the recorded promise for promiseID, if any
// is still pending (a close-during-flush leaves it permanently
// unsettled and is the accepted orphaning path of spec §5/§8 scenario
// 6).
func (f *facade) onFlushComplete(promiseID string, err error) {
	f.mu.Lock()
	ch, ok := f.flushPromises[promiseID]
	delete(f.flushPromises, promiseID)
	f.mu.Unlock()
	if ok {
		ch <- err
	}
}

// Reset enqueues a Reset message and synchronously transitions to
// unconfigured; the worker's queue.Clear() runs synchronously on the
// consumer side, but per spec §5 the host-observable state change
// does not wait for that to finish.
func (f *facade) Reset() error {
	if err := f.checkNotClosed("reset"); err != nil {
		return err
	}
	f.state.Store(int32(StateUnconfigured))
	f.queueSize.Store(0)
	f.saturated.Store(false)
	f.pending.Store(0)
	f.firstKey = false

	f.mu.Lock()
	for id, ch := range f.flushPromises {
		delete(f.flushPromises, id)
		ch <- codecerr.InvalidState("reset", nil)
	}
	f.mu.Unlock()

	_, err := f.q.Enqueue(&queue.Message{ID: f.q.NewID(), Kind: queue.KindReset})
	return err
}

// Close enqueues a Close message, seals the queue, unregisters the
// callback gateway before the worker tears down native resources
// (spec §4.6), and transitions to closed. Pending flush promises are
// orphaned (spec §5 scenario 6).
func (f *facade) Close() error {
	if f.State() == StateClosed {
		return nil
	}
	f.state.Store(int32(StateClosed))
	f.gw.Unregister()

	f.mu.Lock()
	f.flushPromises = make(map[string]chan error)
	f.mu.Unlock()

	_, err := f.q.Enqueue(&queue.Message{ID: f.q.NewID(), Kind: queue.KindClose})
	f.q.Seal()
	return err
}
