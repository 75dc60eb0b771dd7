package amqp

import (
	"errors"
	"io"
	"sync"
	"time"
)

// engine is the Protocol Engine (spec.md §4.2): it owns the transport
// lifecycle, deframes inbound bytes into Frame values and hands each to the
// Frame Router, and serialises outbound frames under a single write lock.
// One reader goroutine per connection runs the entire receive pipeline to
// completion per frame (spec.md §5).
type engine struct {
	conn io.ReadWriteCloser

	writeLock sync.Mutex
	fw        *frameWriter

	dispatcher *dispatcher
	heartbeat  *heartbeatMonitor
	frameMax   uint32

	closeOnce sync.Once
	closed    chan struct{}
}

func newEngine(conn io.ReadWriteCloser, d *dispatcher) *engine {
	return &engine{
		conn:       conn,
		fw:         newFrameWriter(conn),
		dispatcher: d,
		frameMax:   131072,
		closed:     make(chan struct{}),
	}
}

// sendProtocolHeader writes the literal 8-octet AMQP protocol header; it
// must be the very first thing sent (spec.md §6).
func (e *engine) sendProtocolHeader() error {
	e.writeLock.Lock()
	defer e.writeLock.Unlock()
	_, err := e.conn.Write(protocolHeaderBytes[:])
	return err
}

func (e *engine) writeFrame(f Frame) error {
	e.writeLock.Lock()
	defer e.writeLock.Unlock()
	return e.writeFrameLocked(f)
}

// writeFrameLocked assumes the caller already holds writeLock; used by
// sender.sendContent to emit Publish+Header+Body without interleaving
// (spec.md §5).
func (e *engine) writeFrameLocked(f Frame) error {
	if err := e.fw.WriteFrame(f); err != nil {
		return err
	}
	if e.heartbeat != nil {
		e.heartbeat.FrameSent()
	}
	return nil
}

func (e *engine) sendHeartbeat() error {
	return e.writeFrame(&HeartbeatFrame{})
}

// startHeartbeat wires the heartbeat monitor in once Connection.Tune has
// negotiated an interval (spec.md §4.5 step 3).
func (e *engine) startHeartbeat(intervalSeconds uint16, onLost func(error)) {
	e.heartbeat = newHeartbeatMonitor(time.Duration(intervalSeconds)*time.Second, e.sendHeartbeat, onLost)
	e.heartbeat.Start()
}

// run is the reader goroutine: it parses as many complete frames as
// possible from the transport and dispatches each in turn, forever, until
// the transport fails (spec.md §4.2). On loss, it synthesises the
// poison-pill and fans it to every handler.
func (e *engine) run() {
	fr := newFrameReader(e.conn)
	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			e.onTransportError(classifyReadFailure(err))
			return
		}
		if e.heartbeat != nil {
			e.heartbeat.FrameReceived()
		}
		if dispatchErr := e.dispatcher.dispatch(frame); dispatchErr != nil {
			e.onTransportError(dispatchErr)
			return
		}
	}
}

// classifyReadFailure turns a frame decode failure into the AMQPError
// spec.md §7/§8 scenario 4 requires, leaving a genuine transport failure
// (socket closed, read error) untouched so it still surfaces as
// ConnectionLostError downstream.
func classifyReadFailure(err error) error {
	var syn *frameSyntaxError
	if errors.As(err, &syn) {
		return newAMQPError(syn.cause)
	}
	return err
}

func (e *engine) onTransportError(cause error) {
	e.dispatcher.dispatchAll(&poisonPill{cause: cause})
	e.Close()
}

// Close closes the underlying transport exactly once (spec.md §5 resource
// rules).
func (e *engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.closed)
		err = e.conn.Close()
	})
	return err
}
