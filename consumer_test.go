package amqp

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discardingChannel builds a Channel whose outbound frames are written to a
// net.Pipe and silently discarded on the other end, so that reject/nack
// calls made from a recovering consumer handler have somewhere real to go.
func discardingChannel(t *testing.T) *Channel {
	t.Helper()
	client, server := net.Pipe()
	go io.Copy(io.Discard, server)
	t.Cleanup(func() { client.Close(); server.Close() })

	e := newEngine(client, newDispatcher())
	go e.run()
	return &Channel{id: 1, sender: newSender(1, e)}
}

func TestQueuedConsumerGetBlocksUntilDelivery(t *testing.T) {
	q := newQueuedConsumer(nil, "tag-1", true)

	type result struct {
		d   Delivery
		err error
	}
	got := make(chan result, 1)
	go func() {
		d, err := q.Get(context.Background())
		got <- result{d, err}
	}()

	select {
	case <-got:
		t.Fatal("Get returned before any delivery was queued")
	case <-time.After(20 * time.Millisecond):
	}

	q.deliver(Delivery{Body: []byte("payload")})

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, []byte("payload"), r.d.Body)
	case <-time.After(time.Second):
		t.Fatal("Get never woke up after delivery")
	}
}

func TestQueuedConsumerDrainsBufferedDeliveriesAfterCancel(t *testing.T) {
	// spec.md §8 scenarios 7-9: once cancelled, already-buffered deliveries
	// are still retrievable; only once the buffer is empty does Get start
	// returning the terminal error.
	q := newQueuedConsumer(nil, "tag-2", true)

	q.deliver(Delivery{Body: []byte("one")})
	q.deliver(Delivery{Body: []byte("two")})
	q.closeWithError(ErrConsumerCancelled)

	d1, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), d1.Body)

	d2, err := q.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), d2.Body)

	_, err = q.Get(context.Background())
	assert.Equal(t, ErrConsumerCancelled, err)

	// The terminal error is sticky.
	_, err = q.Get(context.Background())
	assert.Equal(t, ErrConsumerCancelled, err)
}

func TestQueuedConsumerDiscardsBufferOnCloseWithNoAckFalse(t *testing.T) {
	// spec.md §8 scenario 8: with no_ack=false, closing discards whatever is
	// already buffered — the broker will redeliver it — so the very next
	// Get() raises the terminal error immediately instead of returning the
	// buffered message.
	q := newQueuedConsumer(nil, "tag-8", false)

	q.deliver(Delivery{Body: []byte("buffered-before-close")})
	q.closeWithError(ErrClientConnectionClosed)

	_, err := q.Get(context.Background())
	assert.Equal(t, ErrClientConnectionClosed, err)
	assert.True(t, q.Empty())
}

func TestQueuedConsumerGetRespectsContextCancellation(t *testing.T) {
	q := newQueuedConsumer(nil, "tag-3", true)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := q.Get(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueuedConsumerGetManyDrainsWithoutBlockingTwice(t *testing.T) {
	q := newQueuedConsumer(nil, "tag-4", true)
	q.deliver(Delivery{Body: []byte("a")})
	q.deliver(Delivery{Body: []byte("b")})
	q.deliver(Delivery{Body: []byte("c")})

	got, err := q.GetMany(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []byte("a"), got[0].Body)
	assert.Equal(t, []byte("b"), got[1].Body)
	assert.False(t, q.Empty())

	rest, err := q.GetMany(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, []byte("c"), rest[0].Body)
	assert.True(t, q.Empty())
}

func TestConsumerHandlerPanicRejectsWithRequeue(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	ch := &Channel{id: 1, sender: newSender(1, newEngine(client, newDispatcher()))}

	frames := make(chan Frame, 1)
	go func() {
		if f, err := newFrameReader(server).ReadFrame(); err == nil {
			frames <- f
		}
	}()

	c := &Consumer{
		Tag:     "panicky",
		channel: ch,
		noAck:   false,
		handler: func(d Delivery) { panic("boom") },
	}

	// deliver must recover the panic rather than crash the caller (which, in
	// production, is the connection's single reader goroutine), and still
	// reject the delivery with requeue so a single bad handler can't wedge
	// the queue.
	assert.NotPanics(t, func() {
		c.deliver(Delivery{DeliveryTag: 9, channel: ch, noAck: false})
	})

	select {
	case f := <-frames:
		mf, ok := f.(*MethodFrame)
		require.True(t, ok)
		rej, ok := mf.Method.(*BasicReject)
		require.True(t, ok)
		assert.Equal(t, uint64(9), rej.DeliveryTag)
		assert.True(t, rej.Requeue)
	case <-time.After(time.Second):
		t.Fatal("no Basic.Reject was sent for the panicking delivery")
	}
}

func TestConsumerNoAckHandlerPanicDoesNotAttemptReject(t *testing.T) {
	c := &Consumer{
		Tag:   "noack-panicky",
		noAck: true,
		handler: func(d Delivery) {
			panic("boom")
		},
	}

	// With noAck true there is no delivery to reject, and channel is nil: a
	// reject attempt here would nil-deref, so deliver must skip it entirely.
	assert.NotPanics(t, func() {
		c.deliver(Delivery{DeliveryTag: 1, noAck: true})
	})
}
