package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan Event[DocumentEvent]) Event[DocumentEvent] {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event[DocumentEvent]{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroker[DocumentEvent]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := b.Subscribe(ctx)
	second := b.Subscribe(ctx)
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(TransitionedEvent, DocumentEvent{DocumentID: "doc-1", State: "stale"})

	for _, ch := range []<-chan Event[DocumentEvent]{first, second} {
		ev := recvEvent(t, ch)
		assert.Equal(t, TransitionedEvent, ev.Type)
		assert.Equal(t, "doc-1", ev.Payload.DocumentID)
		assert.False(t, ev.Timestamp.IsZero())
	}
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	b := NewBroker[DocumentEvent]()
	b.Close()

	ch := b.Subscribe(context.Background())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestPublishAfterCloseIsNoOp(t *testing.T) {
	b := NewBroker[DocumentEvent]()
	b.Close()
	b.Publish(StaleEvent, DocumentEvent{DocumentID: "doc-1"})
	b.Close() // double close is safe
}

func TestContextCancellationUnsubscribes(t *testing.T) {
	b := NewBroker[DocumentEvent]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	require.Equal(t, 1, b.SubscriberCount())

	cancel()
	require.Eventually(t, func() bool {
		return b.SubscriberCount() == 0
	}, time.Second, 10*time.Millisecond)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBrokerWithBuffer[DocumentEvent](1)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)

	// Second publish overflows the buffer and is dropped, not blocked on.
	b.Publish(StaleEvent, DocumentEvent{DocumentID: "first"})
	b.Publish(StaleEvent, DocumentEvent{DocumentID: "second"})

	ev := recvEvent(t, ch)
	assert.Equal(t, "first", ev.Payload.DocumentID)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected buffered event %q", ev.Payload.DocumentID)
	default:
	}
}
