package controller

import (
	"context"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/veloflow/cruisectl/internal/bus"
	"github.com/veloflow/cruisectl/internal/control_loop"
	"github.com/veloflow/cruisectl/internal/messages"
	"github.com/veloflow/cruisectl/internal/ui"
	"github.com/veloflow/cruisectl/internal/util"
)

// Snapshot is a point-in-time view of the controller's observable values,
// used by the statistics collector and the REST api. It deliberately does
// not expose the PID internals (integral, previous error), those are
// owned by the tick alone.
type Snapshot struct {
	LastReading  float64 `json:"lastReading"`
	LastTarget   float64 `json:"lastTarget"`
	LastControl  float64 `json:"lastControl"`
	MeanError    float64 `json:"meanError"`
	Ticks        uint64  `json:"ticks"`
	SkippedTicks uint64  `json:"skippedTicks"`
}

type SpeedController interface {
	// Run executes the fixed-rate control loop until ctx is cancelled.
	Run(ctx context.Context) error
	// Tick runs a single control cycle. The returned flag reports
	// whether the loop should keep running.
	Tick() bool
	Snapshot() Snapshot
}

type speedController struct {
	bus bus.Bus
	pid *control_loop.PidLoop

	reading *util.SharedValue[float64]
	target  *util.SharedValue[float64]

	tickRate       time.Duration
	dt             float64
	outputSenderId uint32

	mu           sync.Mutex
	errorWindow  *rolling.PointPolicy
	lastReading  float64
	lastTarget   float64
	lastControl  float64
	ticks        uint64
	skippedTicks uint64
}

func NewSpeedController(
	b bus.Bus,
	pid *control_loop.PidLoop,
	reading *util.SharedValue[float64],
	target *util.SharedValue[float64],
	freq uint32,
	outputSenderId uint32,
	errorWindowSize int,
) SpeedController {
	return &speedController{
		bus:            b,
		pid:            pid,
		reading:        reading,
		target:         target,
		tickRate:       time.Second / time.Duration(freq),
		dt:             1.0 / float64(freq),
		outputSenderId: outputSenderId,
		errorWindow:    util.CreateRollingWindow(errorWindowSize),
	}
}

func (c *speedController) Run(ctx context.Context) error {
	tick := time.Tick(c.tickRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if !c.Tick() {
				return nil
			}
		}
	}
}

func (c *speedController) Tick() bool {
	// snapshot both inputs before computing the error so a message
	// arriving mid-tick cannot produce a torn view
	reading, hasReading := c.reading.Get()
	target, hasTarget := c.target.Get()

	// until both inputs have been seen at least once the tick is a
	// no-op, not an error
	if !hasReading || !hasTarget {
		c.mu.Lock()
		c.skippedTicks++
		c.mu.Unlock()
		return true
	}

	control := c.pid.Step(target, reading, c.dt)

	request := messages.ActuationRequest{
		Acceleration: float32(control),
		Steering:     0,
		IsValid:      true,
	}
	err := c.bus.Publish(bus.Envelope{
		Topic:       messages.TopicActuationRequest,
		SenderStamp: c.outputSenderId,
		SampleTime:  time.Now(),
		Payload:     request,
	})
	if err != nil {
		ui.Error("Error publishing actuation request: %v", err)
	}

	c.mu.Lock()
	c.lastReading = reading
	c.lastTarget = target
	c.lastControl = control
	c.ticks++
	c.errorWindow.Append(target - reading)
	c.mu.Unlock()

	return true
}

func (c *speedController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	meanError := 0.0
	if c.ticks > 0 {
		meanError = c.errorWindow.Reduce(rolling.Avg)
	}
	return Snapshot{
		LastReading:  c.lastReading,
		LastTarget:   c.lastTarget,
		LastControl:  c.lastControl,
		MeanError:    meanError,
		Ticks:        c.ticks,
		SkippedTicks: c.skippedTicks,
	}
}
