package amqp

import (
	"sync"
	"time"
)

// heartbeatMonitor emits an outbound heartbeat frame when nothing has been
// sent for the negotiated interval, and declares the connection lost when
// nothing has been received for twice that interval (spec.md §4.8). An
// interval of zero disables both timers entirely, resolving the source's
// ambiguity per spec.md §9.
type heartbeatMonitor struct {
	interval time.Duration
	onLost   func(error)
	send     func() error

	mu       sync.Mutex
	sendT    *time.Timer
	recvT    *time.Timer
	stopped  bool
	wg       sync.WaitGroup
	lastSent time.Time
}

func newHeartbeatMonitor(interval time.Duration, send func() error, onLost func(error)) *heartbeatMonitor {
	return &heartbeatMonitor{interval: interval, send: send, onLost: onLost}
}

// Start begins both timers. A no-op when interval is zero (disabled).
func (h *heartbeatMonitor) Start() {
	if h.interval <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.lastSent = time.Now()
	h.sendT = time.AfterFunc(h.interval, h.onSendTick)
	h.recvT = time.AfterFunc(2*h.interval, h.onRecvTimeout)
}

// FrameSent resets the emit timer; called by the engine every time any
// frame (including an explicit heartbeat) is successfully written.
func (h *heartbeatMonitor) FrameSent() {
	if h.interval <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.sendT == nil {
		return
	}
	h.lastSent = time.Now()
	h.sendT.Reset(h.interval)
}

// FrameReceived resets the receive-timeout timer; called on every inbound
// frame, including heartbeats (spec.md §4.2).
func (h *heartbeatMonitor) FrameReceived() {
	if h.interval <= 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.recvT == nil {
		return
	}
	h.recvT.Reset(2 * h.interval)
}

func (h *heartbeatMonitor) onSendTick() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	since := time.Since(h.lastSent)
	h.mu.Unlock()

	if since >= h.interval {
		h.wg.Add(1)
		defer h.wg.Done()
		if err := h.send(); err != nil {
			return // transport is already failing; the engine's read loop will notice
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.sendT.Reset(h.interval)
}

func (h *heartbeatMonitor) onRecvTimeout() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()
	h.onLost(ErrHeartbeatTimeout)
}

// Stop halts both timers. Idempotent.
func (h *heartbeatMonitor) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	if h.sendT != nil {
		h.sendT.Stop()
	}
	if h.recvT != nil {
		h.recvT.Stop()
	}
}

// WaitClosed completes once Stop has run and any pending emission has
// flushed (spec.md §4.8).
func (h *heartbeatMonitor) WaitClosed() {
	h.wg.Wait()
}
