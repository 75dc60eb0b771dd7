package amqp

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Channel is one multiplexed stream of AMQP traffic over a Connection
// (spec.md §4.6): declarations, bindings, publishing, and consuming all
// happen through a Channel. Channels are independent of one another; a
// channel-level error closes only that channel (spec.md §3 invariant).
type Channel struct {
	connection   *Connection
	id           uint16
	synchroniser *Synchroniser
	sender       *sender

	mu        sync.Mutex
	closing   bool
	closed    chan struct{}
	closeOnce sync.Once

	consumers map[string]consumerSink
	pending   *partialMessage

	returns chan *UndeliverableMessage
}

// QueueInfo reports the server's view of a queue after DeclareQueue
// (spec.md §4.6). PurgeQueue and DeleteQueue return only a message count.
type QueueInfo struct {
	Name          string
	MessageCount  uint32
	ConsumerCount uint32
}

const pmDeliver, pmReturn, pmGetOK = 1, 2, 3

// partialMessage accumulates a has-content method's header and body frames
// (spec.md §4.1/§4.6). Owned exclusively by the connection's single reader
// goroutine, so it needs no locking: only one content assembly is ever in
// flight per channel at a time.
type partialMessage struct {
	kind     int
	deliver  *BasicDeliver
	ret      *BasicReturn
	getOK    *BasicGetOK
	bodySize uint64
	props    BasicProperties
	body     []byte
}

// basicGetOKResult threads the assembled Delivery through the Synchroniser
// alongside the raw BasicGetOK so that Channel.Get can complete only once
// the content that follows Basic.GetOK has fully arrived (spec.md §4.6).
type basicGetOKResult struct {
	*BasicGetOK
	Delivery Delivery
}

func newChannel(conn *Connection, id uint16) *Channel {
	ch := &Channel{
		connection:   conn,
		id:           id,
		synchroniser: NewSynchroniser(),
		closed:       make(chan struct{}),
		consumers:    make(map[string]consumerSink),
		returns:      make(chan *UndeliverableMessage, 16),
	}
	ch.sender = newSender(id, conn.engine)
	return ch
}

func (ch *Channel) open(ctx context.Context) error {
	ch.connection.engine.dispatcher.addHandler(ch.id, ch.handleFrame)
	if _, err := ch.call(ctx, &ChannelOpen{}, methodKey{classChannel, methodChannelOpenOK}); err != nil {
		ch.connection.engine.dispatcher.removeHandler(ch.id)
		return err
	}
	return nil
}

// call sends method and blocks for whichever of okKeys the broker replies
// with (spec.md §4.4's request/response correlation).
func (ch *Channel) call(ctx context.Context, method Method, okKeys ...methodKey) (Method, error) {
	wait := ch.synchroniser.Await(ctx, okKeys...)
	if err := ch.sender.sendMethod(method); err != nil {
		return nil, err
	}
	return wait()
}

// handleFrame is the Channel Actor's frame handler, registered with the
// connection's dispatcher under this channel's id (spec.md §4.3/§4.6). Runs
// on the engine's single reader goroutine.
func (ch *Channel) handleFrame(f Frame) {
	switch v := f.(type) {
	case *MethodFrame:
		switch m := v.Method.(type) {
		case *ChannelClose:
			ch.onServerClose(m)
		case *ChannelCloseOK:
			ch.onCloseOK()
		case *BasicDeliver:
			ch.pending = &partialMessage{kind: pmDeliver, deliver: m}
		case *BasicReturn:
			ch.pending = &partialMessage{kind: pmReturn, ret: m}
		case *BasicGetOK:
			ch.pending = &partialMessage{kind: pmGetOK, getOK: m}
		case *BasicGetEmpty:
			ch.synchroniser.Notify(methodKey{classBasic, methodBasicGetEmpty}, m)
		case *BasicCancel:
			ch.onServerCancel(m)
		default:
			ch.synchroniser.Notify(methodKey{m.ClassID(), m.MethodID()}, m)
		}
	case *HeaderFrame:
		ch.onHeader(v)
	case *BodyFrame:
		ch.onBody(v)
	case *poisonPill:
		// Connection.killAll drives channel teardown via killFromConnection.
	case *HeartbeatFrame:
	}
}

func (ch *Channel) onHeader(h *HeaderFrame) {
	if ch.pending == nil {
		log.Error("received content header with no preceding deliver/return/get-ok")
		return
	}
	ch.pending.bodySize = h.BodySize
	ch.pending.props = h.Properties
	ch.pending.body = make([]byte, 0, h.BodySize)
	if h.BodySize == 0 {
		ch.completePending()
	}
}

func (ch *Channel) onBody(b *BodyFrame) {
	if ch.pending == nil {
		log.Error("received content body with no preceding content header")
		return
	}
	ch.pending.body = append(ch.pending.body, b.Payload...)
	if uint64(len(ch.pending.body)) >= ch.pending.bodySize {
		ch.completePending()
	}
}

func (ch *Channel) completePending() {
	pm := ch.pending
	ch.pending = nil

	switch pm.kind {
	case pmDeliver:
		d := Delivery{
			Body:        pm.body,
			Properties:  pm.props,
			Exchange:    pm.deliver.Exchange,
			RoutingKey:  pm.deliver.RoutingKey,
			ConsumerTag: pm.deliver.ConsumerTag,
			DeliveryTag: pm.deliver.DeliveryTag,
			Redelivered: pm.deliver.Redelivered,
			channel:     ch,
		}
		ch.mu.Lock()
		sink, ok := ch.consumers[d.ConsumerTag]
		ch.mu.Unlock()
		if !ok {
			log.WithField("tag", d.ConsumerTag).Warn("delivery for unknown consumer tag")
			return
		}
		sink.deliver(d)
	case pmReturn:
		um := &UndeliverableMessage{
			ReplyCode:  pm.ret.ReplyCode,
			ReplyText:  pm.ret.ReplyText,
			Exchange:   pm.ret.Exchange,
			RoutingKey: pm.ret.RoutingKey,
		}
		select {
		case ch.returns <- um:
		default:
			log.WithField("exchange", um.Exchange).Warn("dropping Basic.Return: Returns() channel is full or undrained")
		}
	case pmGetOK:
		d := Delivery{
			Body:        pm.body,
			Properties:  pm.props,
			Exchange:    pm.getOK.Exchange,
			RoutingKey:  pm.getOK.RoutingKey,
			DeliveryTag: pm.getOK.DeliveryTag,
			Redelivered: pm.getOK.Redelivered,
			channel:     ch,
		}
		ch.synchroniser.Notify(methodKey{classBasic, methodBasicGetOK}, &basicGetOKResult{BasicGetOK: pm.getOK, Delivery: d})
	}
}

func (ch *Channel) onServerCancel(m *BasicCancel) {
	_ = ch.sender.sendMethod(&BasicCancelOK{ConsumerTag: m.ConsumerTag})
	ch.mu.Lock()
	sink, ok := ch.consumers[m.ConsumerTag]
	delete(ch.consumers, m.ConsumerTag)
	ch.mu.Unlock()
	if ok {
		sink.closeWithError(ErrConsumerCancelled)
	}
}

func (ch *Channel) onServerClose(m *ChannelClose) {
	_ = ch.sender.sendMethod(&ChannelCloseOK{})
	ch.teardown(newCloseError(m.ReplyCode, m.ReplyText, m.ClassID_, m.MethodID_))
}

func (ch *Channel) onCloseOK() {
	ch.synchroniser.Notify(methodKey{classChannel, methodChannelCloseOK}, &ChannelCloseOK{})
	ch.teardown(ErrClientChannelClosed)
}

// killFromConnection is invoked by the Connection when the whole transport
// is lost or the client closes the connection (spec.md §4.5 `_close_all`).
func (ch *Channel) killFromConnection(exc error) {
	ch.teardown(exc)
}

func (ch *Channel) teardown(exc error) {
	ch.mu.Lock()
	if ch.closing {
		ch.mu.Unlock()
		return
	}
	ch.closing = true
	sinks := make([]consumerSink, 0, len(ch.consumers))
	for _, s := range ch.consumers {
		sinks = append(sinks, s)
	}
	ch.consumers = make(map[string]consumerSink)
	ch.mu.Unlock()

	ch.synchroniser.Killall(exc)
	for _, s := range sinks {
		s.closeWithError(exc)
	}
	ch.connection.engine.dispatcher.removeHandler(ch.id)
	ch.connection.releaseChannel(ch.id)
	ch.closeOnce.Do(func() { close(ch.closed) })
}

// Close requests a graceful channel shutdown (spec.md §4.6). A second call
// is a documented no-op.
func (ch *Channel) Close(ctx context.Context) error {
	ch.mu.Lock()
	if ch.closing {
		ch.mu.Unlock()
		return nil
	}
	ch.mu.Unlock()

	wait := ch.synchroniser.Await(ctx, methodKey{classChannel, methodChannelCloseOK})
	if err := ch.sender.sendMethod(&ChannelClose{ReplyCode: 0, ReplyText: "channel closed by application"}); err != nil {
		ch.teardown(ErrClientChannelClosed)
		return err
	}
	if _, err := wait(); err != nil {
		if _, ok := err.(*AlreadyClosed); ok {
			return nil
		}
		if _, ok := err.(*ConnectionLostError); ok {
			return nil
		}
	}
	return nil
}

// Closed reports when this channel has fully shut down.
func (ch *Channel) Closed() <-chan struct{} { return ch.closed }

// Returns delivers the Basic.Returns the broker sends for a mandatory or
// immediate publish that could not be routed/delivered (spec.md §7). It
// buffers up to 16; a return that arrives while the buffer is full is
// logged and dropped.
func (ch *Channel) Returns() <-chan *UndeliverableMessage { return ch.returns }

// DeclareExchange declares an exchange (spec.md §4.6).
func (ch *Channel) DeclareExchange(ctx context.Context, name, kind string, durable, autoDelete, internal bool, args Table) error {
	_, err := ch.call(ctx, &ExchangeDeclare{
		Exchange: name, Type: kind, Durable: durable, AutoDelete: autoDelete, Internal: internal, Arguments: args,
	}, methodKey{classExchange, methodExchangeDeclareOK})
	return err
}

// DeleteExchange deletes an exchange.
func (ch *Channel) DeleteExchange(ctx context.Context, name string, ifUnused bool) error {
	_, err := ch.call(ctx, &ExchangeDelete{Exchange: name, IfUnused: ifUnused}, methodKey{classExchange, methodExchangeDeleteOK})
	return err
}

// DeclareQueue declares a queue (spec.md §4.6).
func (ch *Channel) DeclareQueue(ctx context.Context, name string, durable, exclusive, autoDelete bool, args Table) (QueueInfo, error) {
	result, err := ch.call(ctx, &QueueDeclare{
		Queue: name, Durable: durable, Exclusive: exclusive, AutoDelete: autoDelete, Arguments: args,
	}, methodKey{classQueue, methodQueueDeclareOK})
	if err != nil {
		return QueueInfo{}, err
	}
	ok := result.(*QueueDeclareOK)
	return QueueInfo{Name: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}, nil
}

// BindQueue binds a queue to an exchange under routingKey.
func (ch *Channel) BindQueue(ctx context.Context, queue, exchange, routingKey string, args Table) error {
	_, err := ch.call(ctx, &QueueBind{
		Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: args,
	}, methodKey{classQueue, methodQueueBindOK})
	return err
}

// UnbindQueue removes a binding.
func (ch *Channel) UnbindQueue(ctx context.Context, queue, exchange, routingKey string, args Table) error {
	_, err := ch.call(ctx, &QueueUnbind{
		Queue: queue, Exchange: exchange, RoutingKey: routingKey, Arguments: args,
	}, methodKey{classQueue, methodQueueUnbindOK})
	return err
}

// PurgeQueue discards every message currently on a queue.
func (ch *Channel) PurgeQueue(ctx context.Context, queue string) (uint32, error) {
	result, err := ch.call(ctx, &QueuePurge{Queue: queue}, methodKey{classQueue, methodQueuePurgeOK})
	if err != nil {
		return 0, err
	}
	return result.(*QueuePurgeOK).MessageCount, nil
}

// DeleteQueue deletes a queue.
func (ch *Channel) DeleteQueue(ctx context.Context, queue string, ifUnused, ifEmpty bool) (uint32, error) {
	result, err := ch.call(ctx, &QueueDelete{
		Queue: queue, IfUnused: ifUnused, IfEmpty: ifEmpty,
	}, methodKey{classQueue, methodQueueDeleteOK})
	if err != nil {
		return 0, err
	}
	return result.(*QueueDeleteOK).MessageCount, nil
}

// Qos sets the prefetch limits that govern how many unacknowledged
// deliveries the broker will have in flight on this channel.
func (ch *Channel) Qos(ctx context.Context, prefetchCount uint16, prefetchSize uint32, global bool) error {
	_, err := ch.call(ctx, &BasicQos{
		PrefetchSize: prefetchSize, PrefetchCount: prefetchCount, Global: global,
	}, methodKey{classBasic, methodBasicQosOK})
	return err
}

// Publish sends a message to exchange under routingKey (spec.md §4.6). The
// method, content header, and body frames are written contiguously so no
// other publish on this channel can interleave with them.
func (ch *Channel) Publish(exchange, routingKey string, mandatory, immediate bool, props BasicProperties, body []byte) error {
	return ch.sender.sendContent(&BasicPublish{
		Exchange: exchange, RoutingKey: routingKey, Mandatory: mandatory, Immediate: immediate,
	}, props, body)
}

// Get performs a one-shot Basic.Get; ok is false when the queue was empty
// (spec.md §4.6).
func (ch *Channel) Get(ctx context.Context, queue string, noAck bool) (delivery Delivery, ok bool, err error) {
	result, err := ch.call(ctx, &BasicGet{Queue: queue, NoAck: noAck},
		methodKey{classBasic, methodBasicGetOK}, methodKey{classBasic, methodBasicGetEmpty})
	if err != nil {
		return Delivery{}, false, err
	}
	switch r := result.(type) {
	case *basicGetOKResult:
		d := r.Delivery
		d.noAck = noAck
		return d, true, nil
	case *BasicGetEmpty:
		return Delivery{}, false, nil
	default:
		return Delivery{}, false, errors.Errorf("unexpected response to basic.get: %T", result)
	}
}

// Consume starts a push-mode consumer: handler is invoked for every
// delivery (spec.md §4.7). An empty tag is replaced with a generated one.
func (ch *Channel) Consume(ctx context.Context, queue, tag string, noAck, exclusive bool, args Table, handler DeliveryHandler) (*Consumer, error) {
	if tag == "" {
		tag = uuid.NewString()
	}
	result, err := ch.call(ctx, &BasicConsume{
		Queue: queue, ConsumerTag: tag, NoAck: noAck, Exclusive: exclusive, Arguments: args,
	}, methodKey{classBasic, methodBasicConsumeOK})
	if err != nil {
		return nil, err
	}
	ok := result.(*BasicConsumeOK)
	c := &Consumer{Tag: ok.ConsumerTag, channel: ch, handler: handler, noAck: noAck}
	ch.mu.Lock()
	ch.consumers[c.Tag] = c
	ch.mu.Unlock()
	return c, nil
}

// ConsumeQueued starts a pull-mode consumer (spec.md §4.7). An empty tag is
// replaced with a generated one.
func (ch *Channel) ConsumeQueued(ctx context.Context, queue, tag string, noAck, exclusive bool, args Table) (*QueuedConsumer, error) {
	if tag == "" {
		tag = uuid.NewString()
	}
	result, err := ch.call(ctx, &BasicConsume{
		Queue: queue, ConsumerTag: tag, NoAck: noAck, Exclusive: exclusive, Arguments: args,
	}, methodKey{classBasic, methodBasicConsumeOK})
	if err != nil {
		return nil, err
	}
	ok := result.(*BasicConsumeOK)
	qc := newQueuedConsumer(ch, ok.ConsumerTag, noAck)
	ch.mu.Lock()
	ch.consumers[qc.Tag] = qc
	ch.mu.Unlock()
	return qc, nil
}

func (ch *Channel) cancelConsumer(ctx context.Context, tag string) error {
	_, err := ch.call(ctx, &BasicCancel{ConsumerTag: tag}, methodKey{classBasic, methodBasicCancelOK})
	ch.mu.Lock()
	sink, ok := ch.consumers[tag]
	delete(ch.consumers, tag)
	ch.mu.Unlock()
	if ok {
		sink.closeWithError(ErrConsumerCancelled)
	}
	return err
}

func (ch *Channel) ack(tag uint64, multiple bool) error {
	return ch.sender.sendMethod(&BasicAck{DeliveryTag: tag, Multiple: multiple})
}

func (ch *Channel) nack(tag uint64, multiple, requeue bool) error {
	return ch.sender.sendMethod(&BasicNack{DeliveryTag: tag, Multiple: multiple, Requeue: requeue})
}

func (ch *Channel) reject(tag uint64, requeue bool) error {
	return ch.sender.sendMethod(&BasicReject{DeliveryTag: tag, Requeue: requeue})
}
