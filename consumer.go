package amqp

import (
	"context"
	"sync"
)

// consumerSink is how a Channel hands an assembled Delivery, or a terminal
// failure, to whichever consumer flavour owns a given tag (spec.md §4.7).
type consumerSink interface {
	deliver(Delivery)
	closeWithError(error)
}

// DeliveryHandler is invoked synchronously, on the connection's single
// reader goroutine, for every message a push-mode Consumer receives
// (spec.md §4.7 "push consumer"). It must not block for long, since it
// holds up delivery of every other channel and consumer on the connection.
type DeliveryHandler func(Delivery)

// Consumer is the push-mode consumer: the broker streams messages and
// handler is called for each (spec.md §4.7). A handler that panics is
// recovered, logged, and the message is rejected with requeue so that a
// single bad delivery cannot take down the reader goroutine.
type Consumer struct {
	Tag     string
	channel *Channel
	handler DeliveryHandler
	noAck   bool
}

func (c *Consumer) deliver(d Delivery) {
	d.noAck = c.noAck
	defer func() {
		if r := recover(); r != nil {
			log.WithField("consumer", c.Tag).WithField("panic", r).Error("consumer handler panicked; rejecting delivery")
			if !c.noAck {
				_ = d.Reject(true)
			}
		}
	}()
	c.handler(d)
}

func (c *Consumer) closeWithError(err error) {
	log.WithField("consumer", c.Tag).WithField("err", err).Info("consumer cancelled")
}

// Cancel stops this consumer (spec.md §4.7).
func (c *Consumer) Cancel(ctx context.Context) error {
	return c.channel.cancelConsumer(ctx, c.Tag)
}

// QueuedConsumer buffers deliveries for pull-style consumption via Get,
// rather than invoking a callback (spec.md §4.7's "queued consumer"
// abstraction, the Go-native analogue of the source's async generator).
//
// Once cancelled, already-buffered deliveries remain retrievable; Get/GetMany
// only return the terminal error once the buffer has drained. When the
// channel or connection goes away instead, the buffer drains the same way if
// noAck is true and is discarded at once if noAck is false (spec.md §8
// scenarios 7-9).
type QueuedConsumer struct {
	Tag     string
	channel *Channel
	noAck   bool

	mu    sync.Mutex
	queue []Delivery
	err   error
	wake  chan struct{}
}

func newQueuedConsumer(ch *Channel, tag string, noAck bool) *QueuedConsumer {
	return &QueuedConsumer{Tag: tag, channel: ch, noAck: noAck, wake: make(chan struct{})}
}

func (q *QueuedConsumer) deliver(d Delivery) {
	d.noAck = q.noAck
	q.mu.Lock()
	q.queue = append(q.queue, d)
	q.broadcastLocked()
	q.mu.Unlock()
}

func (q *QueuedConsumer) closeWithError(err error) {
	q.mu.Lock()
	if q.err == nil {
		q.err = err
	}
	// With no_ack=false the broker will redeliver anything still buffered
	// here once the channel or connection is gone, so handing it out now
	// would let the caller ack/reject a message the broker no longer
	// considers ours to ack. Discard it and surface the terminal error
	// immediately (spec.md §8 scenario 8). With no_ack=true the broker
	// already considers these delivered, so they stay queued and drain
	// normally (scenario 7). A consumer cancellation leaves the channel
	// open, so the buffer is kept and drains first in either mode.
	if !q.noAck && err != ErrConsumerCancelled {
		q.queue = nil
	}
	q.broadcastLocked()
	q.mu.Unlock()
}

func (q *QueuedConsumer) broadcastLocked() {
	close(q.wake)
	q.wake = make(chan struct{})
}

// Get blocks until a delivery is available, the consumer's terminal error
// fires with nothing left buffered, or ctx is done.
func (q *QueuedConsumer) Get(ctx context.Context) (Delivery, error) {
	for {
		q.mu.Lock()
		if len(q.queue) > 0 {
			d := q.queue[0]
			q.queue = q.queue[1:]
			q.mu.Unlock()
			return d, nil
		}
		if q.err != nil {
			err := q.err
			q.mu.Unlock()
			return Delivery{}, err
		}
		wake := q.wake
		q.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return Delivery{}, ctx.Err()
		}
	}
}

// GetMany blocks for at least one delivery (as Get does), then drains up to
// max-1 further deliveries that are already buffered without blocking again.
func (q *QueuedConsumer) GetMany(ctx context.Context, max int) ([]Delivery, error) {
	first, err := q.Get(ctx)
	if err != nil {
		return nil, err
	}
	out := []Delivery{first}

	q.mu.Lock()
	for len(out) < max && len(q.queue) > 0 {
		out = append(out, q.queue[0])
		q.queue = q.queue[1:]
	}
	q.mu.Unlock()
	return out, nil
}

// Empty reports whether no deliveries are currently buffered.
func (q *QueuedConsumer) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue) == 0
}

// Cancel stops this consumer. Buffered deliveries remain retrievable via Get
// until drained (spec.md §8 scenario 9).
func (q *QueuedConsumer) Cancel(ctx context.Context) error {
	return q.channel.cancelConsumer(ctx, q.Tag)
}
