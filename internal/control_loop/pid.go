package control_loop

import (
	"math"

	"github.com/veloflow/cruisectl/internal/configuration"
)

// PidLoop holds the gain configuration and the mutable state of a PID
// controller. Every term is individually optional, an absent gain
// contributes nothing to the control value. The state is owned
// exclusively by the control tick and must not be shared.
type PidLoop struct {
	// Proportional constant
	p configuration.Optional[float64]
	// Derivative constant
	d configuration.Optional[float64]
	// Integral constant
	i configuration.Optional[float64]
	// Clamp for the absolute value of the integral error
	iLimit configuration.Optional[float64]
	// Lower output clamp
	outputMin configuration.Optional[float64]
	// Upper output clamp
	outputMax configuration.Optional[float64]

	// integral error accumulated across steps
	integral float64
	// error observed by the previous step
	prevError float64
}

func NewPidLoop(p, d, i, iLimit, outputMin, outputMax configuration.Optional[float64]) *PidLoop {
	return &PidLoop{
		p:         p,
		d:         d,
		i:         i,
		iLimit:    iLimit,
		outputMin: outputMin,
		outputMax: outputMax,
	}
}

// Step advances the loop by dt seconds and returns the control value for
// the given target and reading. dt must be positive, it is derived from
// the configured tick frequency and therefore a controller invariant
// rather than a runtime error path.
func (l *PidLoop) Step(target float64, reading float64, dt float64) float64 {
	err := target - reading

	control := 0.0

	if l.p.IsSet() {
		control += l.p.Get() * err
	}

	if l.d.IsSet() {
		control += l.d.Get() * (err - l.prevError) / dt
		l.prevError = err
	}

	if l.i.IsSet() {
		l.integral += err * dt
		if l.iLimit.IsSet() && math.Abs(l.integral) > l.iLimit.Get() {
			if l.integral > 0 {
				l.integral = l.iLimit.Get()
			} else {
				l.integral = -l.iLimit.Get()
			}
		}
		control += l.i.Get() * l.integral
	}

	if l.outputMin.IsSet() && control < l.outputMin.Get() {
		control = l.outputMin.Get()
	}

	if l.outputMax.IsSet() && control > l.outputMax.Get() {
		control = l.outputMax.Get()
	}

	return control
}
