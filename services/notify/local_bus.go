package notify

import (
	"context"
	"log"
	"sync"

	redis_models "Courtside/models/redis"
)

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events are dropped for it.
const subscriberBuffer = 64

// LocalBus is an in-process Bus, used when no Redis is configured.
type LocalBus struct {
	mu          sync.RWMutex
	subscribers map[int]chan redis_models.GameEvent
	nextID      int
	recent      map[uint][]redis_models.GameEvent
}

func NewLocalBus() *LocalBus {
	return &LocalBus{
		subscribers: make(map[int]chan redis_models.GameEvent),
		recent:      make(map[uint][]redis_models.GameEvent),
	}
}

func (b *LocalBus) Publish(ctx context.Context, event redis_models.GameEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	history := append([]redis_models.GameEvent{event}, b.recent[event.GameID]...)
	if len(history) > RecentLimit {
		history = history[:RecentLimit]
	}
	b.recent[event.GameID] = history

	for id, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("[NOTIFY] Subscriber %d is full, dropping %s for game %d", id, event.Name, event.GameID)
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan redis_models.GameEvent, error) {
	ch := make(chan redis_models.GameEvent, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers, id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}

func (b *LocalBus) Recent(ctx context.Context, gameID uint, limit int) ([]redis_models.GameEvent, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	history := b.recent[gameID]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}
	out := make([]redis_models.GameEvent, limit)
	copy(out, history[:limit])
	return out, nil
}
