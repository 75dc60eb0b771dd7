package amqp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchroniserResolvesWaitersInFIFOOrder(t *testing.T) {
	s := NewSynchroniser()
	key := methodKey{classQueue, methodQueueDeclareOK}

	waitA := s.Await(context.Background(), key)
	waitB := s.Await(context.Background(), key)

	first := &QueueDeclareOK{Queue: "first"}
	second := &QueueDeclareOK{Queue: "second"}
	s.Notify(key, first)
	s.Notify(key, second)

	gotA, err := waitA()
	require.NoError(t, err)
	gotB, err := waitB()
	require.NoError(t, err)

	assert.Equal(t, first, gotA)
	assert.Equal(t, second, gotB)
}

func TestSynchroniserMultiMethodWaiterPopsBothQueues(t *testing.T) {
	s := NewSynchroniser()
	okKey := methodKey{classBasic, methodBasicGetOK}
	emptyKey := methodKey{classBasic, methodBasicGetEmpty}

	wait := s.Await(context.Background(), okKey, emptyKey)
	s.Notify(emptyKey, &BasicGetEmpty{})

	result, err := wait()
	require.NoError(t, err)
	_, ok := result.(*BasicGetEmpty)
	assert.True(t, ok)

	// The sibling queue (okKey) must have been drained too, so a later
	// waiter on okKey isn't resolved by a notification that already went
	// to the multi-method waiter above.
	waitNext := s.Await(context.Background(), okKey)
	s.Notify(okKey, &BasicGetOK{DeliveryTag: 42})
	next, err := waitNext()
	require.NoError(t, err)
	ok2, ok := next.(*BasicGetOK)
	require.True(t, ok)
	assert.Equal(t, uint64(42), ok2.DeliveryTag)
}

func TestSynchroniserCancellationPreservesOrderForSiblingWaiters(t *testing.T) {
	s := NewSynchroniser()
	key := methodKey{classQueue, methodQueuePurgeOK}

	ctxA, cancelA := context.WithCancel(context.Background())
	waitA := s.Await(ctxA, key)
	waitB := s.Await(context.Background(), key)
	cancelA()

	_, errA := waitA()
	require.Error(t, errA)

	// The cancelled waiter still consumes the first notification, in queue
	// order; it is not removed from the queue just because it was cancelled.
	s.Notify(key, &QueuePurgeOK{MessageCount: 1})
	s.Notify(key, &QueuePurgeOK{MessageCount: 2})

	gotB, err := waitB()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), gotB.(*QueuePurgeOK).MessageCount)
}

func TestSynchroniserKillallFailsPendingAndFutureWaiters(t *testing.T) {
	s := NewSynchroniser()
	key := methodKey{classChannel, methodChannelCloseOK}

	wait := s.Await(context.Background(), key)
	exc := ErrClientConnectionClosed
	s.Killall(exc)

	_, err := wait()
	assert.Equal(t, exc, err)

	waitAfter := s.Await(context.Background(), key)
	_, err = waitAfter()
	assert.Equal(t, exc, err)
}

func TestSynchroniserAwaitRespectsContextTimeout(t *testing.T) {
	s := NewSynchroniser()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	wait := s.Await(ctx, methodKey{classConnection, methodConnectionOpenOK})
	_, err := wait()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
