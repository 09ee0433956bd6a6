// Package callback implements the safe-callback gateway: the sole
// cross-thread bridge between a codec worker and the host thread's
// user-supplied output/error callbacks. A worker never calls the host
// directly; it posts through a Gateway, which pumps deliveries on the
// host thread and refuses to deliver once unregistered, so a worker
// that outlives host teardown cannot touch a torn-down host.
package callback

import (
	"sync"
	"sync/atomic"
)

// Delivery is one posted (payload, finalizer) pair. Dispatch invokes
// fn with payload; Finalizer always runs afterward, whether or not fn
// ran, so pending-counter bookkeeping on the worker side stays
// correct even across unregistration.
type Delivery struct {
	Payload   any
	Finalizer func()
}

// Gateway is a bounded, ordered pump from worker-posted deliveries to
// a single host-thread dispatch loop. It must be driven by calling
// Pump (or Run) from the host's event loop; Post is safe to call from
// any goroutine. The delivery channel is never closed (a worker may
// race a Post against teardown); Run instead exits on the stop signal.
type Gateway struct {
	ch         chan Delivery
	stop       chan struct{}
	registered atomic.Bool
	stopOnce   sync.Once
}

// New constructs a registered Gateway with a bounded delivery channel
// of depth queueDepth.
func New(queueDepth int) *Gateway {
	if queueDepth < 1 {
		queueDepth = 1
	}
	g := &Gateway{ch: make(chan Delivery, queueDepth), stop: make(chan struct{})}
	g.registered.Store(true)
	return g
}

// Post enqueues a delivery for the host pump. A no-op once Unregister
// has been called; in that case finalizer is run immediately so
// resources are still released, but the payload is never dispatched
// to the user callback — this is the documented, accepted orphaning
// of in-flight deliveries during abrupt teardown.
func (g *Gateway) Post(payload any, finalizer func()) {
	if !g.registered.Load() {
		if finalizer != nil {
			finalizer()
		}
		return
	}
	select {
	case g.ch <- Delivery{Payload: payload, Finalizer: finalizer}:
	case <-g.stop:
		if finalizer != nil {
			finalizer()
		}
	}
}

// Unregister idempotently stops future deliveries from reaching the
// host dispatch function and unblocks any goroutine parked in Run or
// blocked sending in Post. Must be called before the worker's codec
// context is torn down, per the ownership rule in §4.6: unregister
// first, free native resources after.
func (g *Gateway) Unregister() {
	if g.registered.CompareAndSwap(true, false) {
		g.stopOnce.Do(func() { close(g.stop) })
	}
}

// Registered reports whether the gateway still accepts and dispatches
// deliveries.
func (g *Gateway) Registered() bool {
	return g.registered.Load()
}

// Pump drains one pending delivery and dispatches it to dispatch,
// running the finalizer unconditionally afterward. Returns false if
// there is nothing pending. Intended to be called in a loop from the
// host's single-threaded event loop (e.g. once per tick).
func (g *Gateway) Pump(dispatch func(payload any)) bool {
	select {
	case d := <-g.ch:
		g.dispatch(d, dispatch)
		return true
	default:
		return false
	}
}

// Run blocks, dispatching deliveries as they arrive, until Unregister
// (or Close) is called. Intended for a host that dedicates a goroutine
// to the pump rather than polling. Before returning it takes any
// deliveries still queued and runs their finalizers; their payloads
// are not dispatched, since the gateway is no longer registered.
func (g *Gateway) Run(dispatch func(payload any)) {
	for {
		select {
		case d := <-g.ch:
			g.dispatch(d, dispatch)
		case <-g.stop:
			for {
				select {
				case d := <-g.ch:
					g.dispatch(d, dispatch)
				default:
					return
				}
			}
		}
	}
}

func (g *Gateway) dispatch(d Delivery, dispatch func(payload any)) {
	defer func() {
		recover() // a panicking user callback must not crash the pump
		if d.Finalizer != nil {
			d.Finalizer()
		}
	}()
	if g.registered.Load() && dispatch != nil {
		dispatch(d.Payload)
	}
}

// Close unregisters the gateway, unblocking any goroutine parked in
// Run or Post. Safe to call more than once.
func (g *Gateway) Close() {
	g.Unregister()
}
