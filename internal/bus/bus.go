package bus

import "time"

// Envelope wraps a message payload with its routing metadata. The sender
// stamp identifies the logical source of the message and is used by
// subscribers purely as a filter.
type Envelope struct {
	Topic       string
	SenderStamp uint32
	SampleTime  time.Time
	Payload     interface{}
}

// Handler receives envelopes for a subscribed topic. Handlers may be
// invoked from arbitrary goroutines and must synchronize any shared
// state themselves.
type Handler func(envelope Envelope)

// Bus is a minimal publish/subscribe transport. Delivery is best effort
// and fire-and-forget, there are no acknowledgements or retries.
type Bus interface {
	Subscribe(topic string, handler Handler)
	Publish(envelope Envelope) error
	Close() error
}
