package queue

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrSealed is returned by Enqueue once the queue has been sealed by Close.
var ErrSealed = fmt.Errorf("queue: enqueue after seal")

// MessageQueue is a single-producer/single-consumer FIFO of control
// messages, guarded by a mutex and condition variable rather than a Go
// channel: Drain and Clear need to observe and mutate the pending set as
// a whole, something a channel cannot express without parallel, racy
// bookkeeping (a channel's len() is not safe to combine with a separate
// "clear" operation without losing messages or double-counting).
type MessageQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	drained  *sync.Cond
	items    []*Message
	sealed   bool
	entropy  *ulid.MonotonicEntropy
}

// New constructs an empty, open MessageQueue.
func New() *MessageQueue {
	q := &MessageQueue{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	return q
}

// NewID mints a monotone, lexically sortable message identifier.
func (q *MessageQueue) NewID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), q.entropy)
	return id.String()
}

// Enqueue appends msg to the tail and wakes the consumer. Returns the new
// size. Never blocks; never drops. Fails only once the queue is sealed.
func (q *MessageQueue) Enqueue(msg *Message) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sealed {
		return len(q.items), ErrSealed
	}
	q.items = append(q.items, msg)
	q.notEmpty.Signal()
	return len(q.items), nil
}

// Pop blocks until a message is available or stopped reports true,
// returning (nil, false) when stopped and no message is pending. Intended
// for the worker's consume loop.
func (q *MessageQueue) Pop(stopped func() bool) (*Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !stopped() {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.drained.Broadcast()
	}
	return msg, true
}

// WakeConsumer wakes a worker blocked in Pop without enqueuing a message,
// used to notice a stop signal promptly.
func (q *MessageQueue) WakeConsumer() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// Drain blocks until the queue is empty. Used by Flush to wait for all
// in-flight work enqueued ahead of it to be consumed.
func (q *MessageQueue) Drain() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) != 0 {
		q.drained.Wait()
	}
}

// Clear discards all pending messages, releasing their resources via
// release, and wakes any Drain waiter. Used by Reset.
func (q *MessageQueue) Clear(release func(*Message)) {
	q.mu.Lock()
	pending := q.items
	q.items = nil
	q.mu.Unlock()

	for _, msg := range pending {
		if release != nil {
			release(msg)
		}
	}

	q.mu.Lock()
	q.drained.Broadcast()
	q.mu.Unlock()
}

// Size returns a best-effort snapshot of the pending count.
func (q *MessageQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Seal idempotently closes the queue to further Enqueue calls. The
// consumer continues draining existing messages until empty.
func (q *MessageQueue) Seal() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sealed = true
	q.notEmpty.Broadcast()
}

// Sealed reports whether Seal has been called.
func (q *MessageQueue) Sealed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sealed
}
