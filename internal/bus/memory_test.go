package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryBus_DispatchesToAllSubscribers(t *testing.T) {
	// GIVEN
	memoryBus := NewMemoryBus()
	var first, second []Envelope
	memoryBus.Subscribe("topic", func(envelope Envelope) {
		first = append(first, envelope)
	})
	memoryBus.Subscribe("topic", func(envelope Envelope) {
		second = append(second, envelope)
	})

	// WHEN
	err := memoryBus.Publish(Envelope{
		Topic:       "topic",
		SenderStamp: 42,
		SampleTime:  time.Now(),
		Payload:     1.0,
	})

	// THEN
	assert.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, uint32(42), first[0].SenderStamp)
	assert.Equal(t, 1.0, first[0].Payload)
}

func TestMemoryBus_TopicIsolation(t *testing.T) {
	// GIVEN
	memoryBus := NewMemoryBus()
	var received []Envelope
	memoryBus.Subscribe("topic.a", func(envelope Envelope) {
		received = append(received, envelope)
	})

	// WHEN
	err := memoryBus.Publish(Envelope{Topic: "topic.b"})

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, received)
}

func TestMemoryBus_PublishWithoutSubscribersIsNoop(t *testing.T) {
	// GIVEN
	memoryBus := NewMemoryBus()

	// WHEN
	err := memoryBus.Publish(Envelope{Topic: "topic"})

	// THEN
	assert.NoError(t, err)
}
