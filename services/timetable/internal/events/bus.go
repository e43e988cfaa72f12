package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const KindDataUpdated = "data-updated"

type Event struct {
	Kind   string    `json:"kind"`
	Entity string    `json:"entity"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
}

func DataUpdated(entity, id string) Event {
	return Event{Kind: KindDataUpdated, Entity: entity, ID: id, At: time.Now().UTC()}
}

// Bus fans events out to in-process subscribers. With a Redis client the
// events travel through a pub/sub channel so every instance sees them; Run
// must then be started to deliver them locally.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	next    uint64
	closed  bool
	redis   *redis.Client
	channel string
	logger  *zap.Logger
}

func NewBus(redisClient *redis.Client, channel string, logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:    make(map[uint64]chan Event),
		redis:   redisClient,
		channel: channel,
		logger:  logger,
	}
}

// Subscribe returns a buffered channel and a cancel func that closes it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if b.redis == nil {
		b.deliver(event)
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redis.Publish(ctx, b.channel, payload).Err()
}

// Run relays Redis messages to local subscribers until ctx is done. It
// returns immediately when the bus has no Redis client.
func (b *Bus) Run(ctx context.Context) {
	if b.redis == nil {
		return
	}
	pubsub := b.redis.Subscribe(ctx, b.channel)
	defer func() { _ = pubsub.Close() }()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("dropping malformed event", zap.Error(err))
				continue
			}
			b.deliver(event)
		}
	}
}

func (b *Bus) deliver(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event subscriber full, dropping event", zap.String("entity", event.Entity))
		}
	}
}

// Close closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
