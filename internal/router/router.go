package router

import (
	"sync/atomic"

	"github.com/veloflow/cruisectl/internal/bus"
	"github.com/veloflow/cruisectl/internal/messages"
	"github.com/veloflow/cruisectl/internal/ui"
	"github.com/veloflow/cruisectl/internal/util"
)

// MessageRouter filters inbound bus messages by sender stamp and forwards
// the numeric payloads into the shared values read by the control tick.
// Messages from unexpected senders are dropped silently, only the latest
// accepted value of each kind is kept.
type MessageRouter struct {
	inputSenderId   uint32
	controlSenderId uint32

	reading *util.SharedValue[float64]
	target  *util.SharedValue[float64]

	acceptedReadings atomic.Uint64
	droppedReadings  atomic.Uint64
	acceptedTargets  atomic.Uint64
	droppedTargets   atomic.Uint64
}

func NewMessageRouter(
	inputSenderId uint32,
	controlSenderId uint32,
	reading *util.SharedValue[float64],
	target *util.SharedValue[float64],
) *MessageRouter {
	return &MessageRouter{
		inputSenderId:   inputSenderId,
		controlSenderId: controlSenderId,
		reading:         reading,
		target:          target,
	}
}

// Attach subscribes the router's handlers on the given bus.
func (r *MessageRouter) Attach(b bus.Bus) {
	b.Subscribe(messages.TopicGroundSpeedReading, r.onGroundSpeedReading)
	b.Subscribe(messages.TopicGroundSpeedRequest, r.onGroundSpeedRequest)
}

func (r *MessageRouter) onGroundSpeedReading(envelope bus.Envelope) {
	if envelope.SenderStamp != r.inputSenderId {
		r.droppedReadings.Add(1)
		return
	}
	reading, ok := envelope.Payload.(messages.GroundSpeedReading)
	if !ok {
		r.droppedReadings.Add(1)
		return
	}
	r.reading.Set(reading.GroundSpeed)
	r.acceptedReadings.Add(1)
	ui.Debug("New reading: %v", reading.GroundSpeed)
}

func (r *MessageRouter) onGroundSpeedRequest(envelope bus.Envelope) {
	if envelope.SenderStamp != r.controlSenderId {
		r.droppedTargets.Add(1)
		return
	}
	request, ok := envelope.Payload.(messages.GroundSpeedRequest)
	if !ok {
		r.droppedTargets.Add(1)
		return
	}
	r.target.Set(request.GroundSpeed)
	r.acceptedTargets.Add(1)
	ui.Debug("New target set: %v", request.GroundSpeed)
}

func (r *MessageRouter) AcceptedReadings() uint64 {
	return r.acceptedReadings.Load()
}

func (r *MessageRouter) DroppedReadings() uint64 {
	return r.droppedReadings.Load()
}

func (r *MessageRouter) AcceptedTargets() uint64 {
	return r.acceptedTargets.Load()
}

func (r *MessageRouter) DroppedTargets() uint64 {
	return r.droppedTargets.Load()
}
