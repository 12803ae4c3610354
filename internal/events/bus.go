package events

import (
	"github.com/asaskevich/EventBus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Topics published by the marketplace services.
const (
	TopicProductCreated  = "product.created"
	TopicProductPromoted = "product.promoted"
	TopicMessageSent     = "message.sent"
)

// Bus wraps EventBus with an ants worker pool so publishers never block
// on slow subscribers (mail delivery, metrics flushes).
type Bus struct {
	bus  EventBus.Bus
	pool *ants.Pool
}

func New(workers int) (*Bus, error) {
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, err
	}
	return &Bus{bus: EventBus.New(), pool: pool}, nil
}

// Publish dispatches the event on the worker pool. Events are fire and
// forget; a full pool logs and drops rather than blocking the request path.
func (b *Bus) Publish(topic string, args ...interface{}) {
	err := b.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorf("event handler panic on %s: %v", topic, r)
			}
		}()
		b.bus.Publish(topic, args...)
	})
	if err != nil {
		zap.L().Warn("event dropped", zap.String("topic", topic), zap.Error(err))
	}
}

func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

func (b *Bus) Close() {
	b.pool.Release()
}
