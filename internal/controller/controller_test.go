package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veloflow/cruisectl/internal/bus"
	"github.com/veloflow/cruisectl/internal/configuration"
	"github.com/veloflow/cruisectl/internal/control_loop"
	"github.com/veloflow/cruisectl/internal/messages"
	"github.com/veloflow/cruisectl/internal/util"
)

type MockBus struct {
	published []bus.Envelope
}

func (b *MockBus) Subscribe(topic string, handler bus.Handler) {
}

func (b *MockBus) Publish(envelope bus.Envelope) error {
	b.published = append(b.published, envelope)
	return nil
}

func (b *MockBus) Close() error {
	return nil
}

func present(value float64) configuration.Optional[float64] {
	return configuration.Optional[float64]{Value: value, Present: true}
}

func absent() configuration.Optional[float64] {
	return configuration.Optional[float64]{}
}

func createController(
	mockBus *MockBus,
	pid *control_loop.PidLoop,
	reading *util.SharedValue[float64],
	target *util.SharedValue[float64],
	freq uint32,
) SpeedController {
	return NewSpeedController(mockBus, pid, reading, target, freq, 7, 50)
}

func TestTick_SkipsWhenReadingMissing(t *testing.T) {
	// GIVEN
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), present(1.0), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 50)
	target.Set(8.0)

	// WHEN
	keepRunning := speedController.Tick()

	// THEN
	assert.True(t, keepRunning)
	assert.Empty(t, mockBus.published)
	snapshot := speedController.Snapshot()
	assert.Equal(t, uint64(0), snapshot.Ticks)
	assert.Equal(t, uint64(1), snapshot.SkippedTicks)
}

func TestTick_SkipsWhenTargetMissing(t *testing.T) {
	// GIVEN
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), present(1.0), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 50)
	reading.Set(5.0)

	// WHEN
	keepRunning := speedController.Tick()

	// THEN
	assert.True(t, keepRunning)
	assert.Empty(t, mockBus.published)
	snapshot := speedController.Snapshot()
	assert.Equal(t, uint64(0), snapshot.Ticks)
	assert.Equal(t, uint64(1), snapshot.SkippedTicks)
}

func TestTick_SkippedTicksDoNotMutatePidState(t *testing.T) {
	// GIVEN an integral gain that would accumulate if the tick ran
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(absent(), absent(), present(1.0), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 10)
	target.Set(10.0)

	speedController.Tick()
	speedController.Tick()
	speedController.Tick()

	// WHEN the missing input arrives
	reading.Set(0.0)
	speedController.Tick()

	// THEN the first published control reflects exactly one integration step
	assert.Len(t, mockBus.published, 1)
	request := mockBus.published[0].Payload.(messages.ActuationRequest)
	assert.InDelta(t, 1.0, float64(request.Acceleration), 1e-6)
}

func TestTick_PublishesProportionalControl(t *testing.T) {
	// GIVEN
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), absent(), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 50)
	reading.Set(5.0)
	target.Set(8.0)

	// WHEN
	speedController.Tick()

	// THEN
	assert.Len(t, mockBus.published, 1)
	envelope := mockBus.published[0]
	assert.Equal(t, messages.TopicActuationRequest, envelope.Topic)
	assert.Equal(t, uint32(7), envelope.SenderStamp)

	request := envelope.Payload.(messages.ActuationRequest)
	assert.Equal(t, float32(3.0), request.Acceleration)
	assert.Equal(t, float32(0.0), request.Steering)
	assert.True(t, request.IsValid)
}

func TestTick_IntegralClampReflectedInOutput(t *testing.T) {
	// GIVEN P=1, I=0.5, i-limit=2, 10 Hz and a sustained error of 10
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), present(0.5), present(2.0), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 10)
	reading.Set(0.0)
	target.Set(10.0)

	// WHEN
	for tick := 0; tick < 5; tick++ {
		speedController.Tick()
	}

	// THEN the integral contribution saturates once the limit is reached
	assert.Len(t, mockBus.published, 5)
	expected := []float32{10.5, 11.0, 11.0, 11.0, 11.0}
	for index, envelope := range mockBus.published {
		request := envelope.Payload.(messages.ActuationRequest)
		assert.Equal(t, expected[index], request.Acceleration)
	}
}

func TestSnapshot_TracksLastValues(t *testing.T) {
	// GIVEN
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), absent(), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 50)
	reading.Set(5.0)
	target.Set(8.0)

	// WHEN
	speedController.Tick()
	snapshot := speedController.Snapshot()

	// THEN
	assert.Equal(t, 5.0, snapshot.LastReading)
	assert.Equal(t, 8.0, snapshot.LastTarget)
	assert.Equal(t, 3.0, snapshot.LastControl)
	assert.Equal(t, uint64(1), snapshot.Ticks)
	assert.InDelta(t, 3.0, snapshot.MeanError, 1e-9)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	// GIVEN
	var reading, target util.SharedValue[float64]
	mockBus := &MockBus{}
	pid := control_loop.NewPidLoop(present(1.0), absent(), absent(), absent(), absent(), absent())
	speedController := createController(mockBus, pid, &reading, &target, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- speedController.Run(ctx)
	}()

	// WHEN
	cancel()

	// THEN
	assert.NoError(t, <-done)
}
