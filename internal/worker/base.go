// Package worker implements the per-codec dedicated worker thread:
// a FIFO-consuming goroutine that drives one libav codec context over
// its lifetime and emits results through typed hooks (spec §4.2).
package worker

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/codecrt/internal/queue"
)

// state is the worker's own run state, distinct from the façade's
// WebCodecs state machine (spec §4.2 "idle -> running -> stopped").
type state int32

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// baseWorker owns the message queue's consumer side, the start/stop
// lifecycle, and the dispatch loop common to every codec role.
// Grounded in the teacher's internal/daemon.TranscodeJob lifecycle
// shape: a WaitGroup-joined goroutine gated by an atomic state and an
// atomic stop flag, rather than relying on context cancellation alone,
// since a worker must keep consuming queued messages (to run their
// release paths) even after a stop is requested.
type baseWorker struct {
	q       *queue.MessageQueue
	log     *slog.Logger
	state   atomic.Int32
	stopped atomic.Bool
	wg      sync.WaitGroup
}

func newBaseWorker(q *queue.MessageQueue, log *slog.Logger) baseWorker {
	return baseWorker{q: q, log: log}
}

// start spawns the consume loop on its own goroutine, dispatching each
// popped message to handle.
func (b *baseWorker) start(handle func(*queue.Message)) {
	if !b.state.CompareAndSwap(int32(stateIdle), int32(stateRunning)) {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			msg, ok := b.q.Pop(b.stopped.Load)
			if !ok {
				return
			}
			handle(msg)
		}
	}()
}

// stop signals the consume loop to exit once the queue drains and
// blocks until the goroutine has returned.
func (b *baseWorker) stop() {
	if !b.stopped.CompareAndSwap(false, true) {
		b.wg.Wait()
		return
	}
	b.q.Seal()
	b.q.WakeConsumer()
	b.wg.Wait()
	b.state.Store(int32(stateStopped))
}

// running reports whether the worker's consume loop is active.
func (b *baseWorker) running() bool {
	return state(b.state.Load()) == stateRunning
}
