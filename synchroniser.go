package amqp

import (
	"context"
	"sync"
	"sync/atomic"
)

// waiterResult is the one-shot completion a Synchroniser resolves or fails.
// It stands in for the source's asyncio.Future (spec.md §9: "Exception-based
// control flow → tagged error variants... express each awaitable method
// reply as an explicit one-shot completion").
type waiterResult struct {
	method Method
	err    error
}

// waiter is a single registered await: it may accept more than one method
// key (e.g. {BasicGetOK, BasicGetEmpty}), and is shared by every queue it
// sits in so that notify() can identify "the same record" invariant from
// spec.md §4.4.
type waiter struct {
	accepts   []methodKey
	done      chan waiterResult
	cancelled atomic.Bool
}

// Synchroniser correlates pending awaits with incoming method notifications,
// preserving FIFO order per method (spec.md §4.4). One instance is owned by
// the Connection (channel 0) and one by each open Channel. Notify and
// Killall run on the engine's single reader goroutine; Await is called by
// whichever goroutine issues the request (spec.md §9's Go realization of
// the source's coroutine-local await), so queue membership is guarded by mu.
type Synchroniser struct {
	mu     sync.Mutex
	queues map[methodKey][]*waiter
	failed error // set by killall; subsequent Await calls fail immediately
}

// NewSynchroniser constructs an empty Synchroniser.
func NewSynchroniser() *Synchroniser {
	return &Synchroniser{queues: make(map[methodKey][]*waiter)}
}

// Await reserves a waiter for every method in keys and returns a function
// that blocks (respecting ctx) until notify() resolves one of them, or the
// Synchroniser is killed. May be called from any goroutine; the returned
// wait function may also be called from any goroutine.
func (s *Synchroniser) Await(ctx context.Context, keys ...methodKey) func() (Method, error) {
	s.mu.Lock()
	if s.failed != nil {
		err := s.failed
		s.mu.Unlock()
		return func() (Method, error) { return nil, err }
	}

	w := &waiter{accepts: keys, done: make(chan waiterResult, 1)}
	for _, k := range keys {
		s.queues[k] = append(s.queues[k], w)
	}
	s.mu.Unlock()

	return func() (Method, error) {
		select {
		case r := <-w.done:
			return r.method, r.err
		case <-ctx.Done():
			// Cancellation does not remove the waiter from its queues: the
			// Synchroniser still consumes the matching frame when it
			// arrives so that per-channel frame order is preserved
			// (spec.md §5 Cancellation clause). It just stops anyone from
			// observing the result.
			w.cancelled.Store(true)
			return nil, ctx.Err()
		}
	}
}

// Notify pops the head waiter from method's queue and resolves it with
// result. If every other method the waiter accepted must also have the same
// record at its own queue head, those are popped too (spec.md §4.4's
// multi-method invariant). Called from the engine's reader goroutine.
func (s *Synchroniser) Notify(method methodKey, result Method) {
	s.mu.Lock()
	q := s.queues[method]
	if len(q) == 0 {
		s.mu.Unlock()
		log.WithField("method", method).Error("got an unexpected method notification with no registered waiter")
		return
	}
	w := q[0]
	s.queues[method] = q[1:]

	for _, k := range w.accepts {
		if k == method {
			continue
		}
		oq := s.queues[k]
		if len(oq) == 0 || oq[0] != w {
			log.WithField("method", k).Error("synchroniser invariant violated: multi-method waiter not at head of sibling queue")
			continue
		}
		s.queues[k] = oq[1:]
	}
	s.mu.Unlock()

	if !w.cancelled.Load() {
		select {
		case w.done <- waiterResult{method: result}:
		default:
		}
	}
}

// Killall records exc as the connection/channel-level failure and fails
// every outstanding waiter; every future Await call also fails with exc
// (spec.md §4.4/§7). Called from the engine's reader goroutine.
func (s *Synchroniser) Killall(exc error) {
	s.mu.Lock()
	s.failed = exc
	queues := s.queues
	s.queues = make(map[methodKey][]*waiter)
	s.mu.Unlock()

	for _, q := range queues {
		for _, w := range q {
			if w.cancelled.Load() {
				continue
			}
			select {
			case w.done <- waiterResult{err: exc}:
			default:
			}
		}
	}
}
