package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroker_InitialValue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker[int]()
	ch := b.Subscribe(ctx, 7)

	assert.Equal(t, 7, <-ch)
}

func TestBroker_PublishCoalesces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker[int]()
	ch := b.Subscribe(ctx, 0)

	b.Publish(1)
	b.Publish(2)
	b.Publish(3)

	assert.Equal(t, 3, <-ch, "slow subscriber should see the latest value")
}

func TestBroker_UnsubscribeOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	b := NewBroker[string]()
	ch := b.Subscribe(ctx, "start")
	<-ch
	require.Equal(t, 1, b.Len())

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.Equal(t, 0, b.Len())

	// Publishing after teardown must not panic.
	b.Publish("late")
}
