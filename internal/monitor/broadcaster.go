package monitor

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/platewatch/platewatch/pkg/types"
)

// Broadcaster fans accepted detections out to monitor subscribers. Each
// subscriber gets a small buffered channel; a subscriber that falls
// behind misses events rather than stalling the pipeline.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]chan types.Detection
	closed  bool
	logger  zerolog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan types.Detection),
		logger:  logger,
	}
}

// Subscribe registers a client and returns its id and event channel.
func (b *Broadcaster) Subscribe() (string, <-chan types.Detection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan types.Detection, 8)
	if b.closed {
		close(ch)
		return id, ch
	}
	b.clients[id] = ch
	b.logger.Debug().Str("client", id).Int("clients", len(b.clients)).Msg("stream client subscribed")
	return id, ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[id]; ok {
		close(ch)
		delete(b.clients, id)
		b.logger.Debug().Str("client", id).Int("clients", len(b.clients)).Msg("stream client unsubscribed")
	}
}

// Publish delivers a detection to every subscriber without blocking.
func (b *Broadcaster) Publish(d types.Detection) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.clients {
		select {
		case ch <- d:
		default:
			b.logger.Debug().Str("client", id).Msg("stream client too slow, event dropped")
		}
	}
}

// Close closes all subscriber channels. Further subscriptions get an
// already-closed channel.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.clients {
		close(ch)
		delete(b.clients, id)
	}
}
