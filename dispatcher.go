package amqp

import "github.com/pkg/errors"

// frameHandler is the per-channel sink the dispatcher routes frames to: the
// Connection Actor for channel 0, a Channel Actor for every other open
// channel id.
type frameHandler func(Frame)

// dispatcher demultiplexes inbound frames by channel id (spec.md §4.3).
// Heartbeat frames are consumed silently. Owned and mutated exclusively by
// the Protocol Engine's single reader goroutine (spec.md §5).
type dispatcher struct {
	handlers map[uint16]frameHandler
}

func newDispatcher() *dispatcher {
	return &dispatcher{handlers: make(map[uint16]frameHandler)}
}

func (d *dispatcher) addHandler(channel uint16, h frameHandler) {
	d.handlers[channel] = h
}

func (d *dispatcher) removeHandler(channel uint16) {
	delete(d.handlers, channel)
}

// dispatch routes a single inbound frame, per spec.md §4.3. An inbound
// frame whose channel id is neither 0 nor an open channel is a protocol
// error (spec.md §3 invariant).
func (d *dispatcher) dispatch(f Frame) error {
	if _, ok := f.(*HeartbeatFrame); ok {
		return nil
	}
	h, ok := d.handlers[f.Channel()]
	if !ok {
		return &AMQPError{
			ReplyCode: replyChannelError,
			ReplyText: errors.Errorf("frame received for unknown channel %d", f.Channel()).Error(),
		}
	}
	h(f)
	return nil
}

// dispatchAll fans a frame out to every registered handler; used
// exclusively for the poison-pill path (spec.md §4.3/§4.2).
func (d *dispatcher) dispatchAll(f Frame) {
	for _, h := range d.handlers {
		h(f)
	}
}

// poisonPill is the synthetic internal event fanned out to every handler
// to signal transport loss (spec.md §2 glossary / §4.2).
type poisonPill struct {
	cause error
}

func (*poisonPill) Channel() uint16 { return 0 }
