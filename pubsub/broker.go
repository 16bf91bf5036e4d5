// ABOUTME: Context-scoped publish/subscribe with latest-value delivery
// ABOUTME: Used by the auth provider and sync session to push state to views
package pubsub

import (
	"context"
	"sync"
)

// Broker fans values out to subscribers. Each subscriber has a buffer of one;
// a slow subscriber sees only the most recent value.
type Broker[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a subscriber primed with initial. The channel is closed
// once ctx is done.
func (b *Broker[T]) Subscribe(ctx context.Context, initial T) <-chan T {
	ch := make(chan T, 1)
	ch <- initial

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		close(ch)
	}()

	return ch
}

// Publish delivers v to every subscriber without blocking.
func (b *Broker[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- v:
		default:
			// Drop the stale value and replace it.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Len reports the number of active subscribers.
func (b *Broker[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
