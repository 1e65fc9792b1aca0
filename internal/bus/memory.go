package bus

import (
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// MemoryBus is an in-process Bus implementation. It dispatches envelopes
// synchronously on the caller's goroutine, which makes it deterministic
// enough for tests and embedding.
type MemoryBus struct {
	subscribeMu sync.Mutex
	handlers    cmap.ConcurrentMap[string, []Handler]
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: cmap.New[[]Handler](),
	}
}

func (b *MemoryBus) Subscribe(topic string, handler Handler) {
	b.subscribeMu.Lock()
	defer b.subscribeMu.Unlock()
	subscribers, _ := b.handlers.Get(topic)
	b.handlers.Set(topic, append(subscribers, handler))
}

func (b *MemoryBus) Publish(envelope Envelope) error {
	subscribers, ok := b.handlers.Get(envelope.Topic)
	if !ok {
		return nil
	}
	for _, handler := range subscribers {
		handler(envelope)
	}
	return nil
}

func (b *MemoryBus) Close() error {
	return nil
}
