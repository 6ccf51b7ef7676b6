package traction

import (
	"fmt"
	"strings"
)

// ElectricParameters is everything an electric unit needs at load time.
type ElectricParameters struct {
	Force  ForceRatings
	Curves Curves
}

// Electric is a straight electric locomotive fed from the line. It has no
// prime mover, so the throttle acts immediately and the available power
// grows with the square of the throttle fraction.
type Electric struct {
	params ElectricParameters
	chain  forceChain
	last   Telemetry
}

var _ PowerModel = (*Electric)(nil)

// NewElectric returns an electric unit with the controller closed.
func NewElectric(p ElectricParameters, opts ...Option) *Electric {
	return &Electric{
		params: p,
		chain:  newForceChain(p.Force, p.Curves, buildOptions(opts)),
	}
}

// Kind implements PowerModel.
func (e *Electric) Kind() string { return "electric" }

// Update implements PowerModel.
func (e *Electric) Update(dt float64, in Inputs) Telemetry {
	t := 0.0
	if in.Powered {
		t = throttleFraction(in.ThrottlePercent)
	}
	force := e.chain.step(dt, in, t, t*t)
	e.last = Telemetry{
		Powered:             in.Powered,
		MotiveForce:         force,
		FilteredMotiveForce: e.chain.state.Filtered,
		ThrottleCommanded:   t,
		ThrottleRamped:      t,
	}
	return e.last
}

// Telemetry implements PowerModel.
func (e *Electric) Telemetry() Telemetry { return e.last }

// Force returns the force path runtime state.
func (e *Electric) Force() ForceState { return e.chain.state }

// Status implements PowerModel.
func (e *Electric) Status() string {
	var b strings.Builder
	b.WriteString("\nElectric locomotive data:\n")
	state := "DOWN"
	if e.last.Powered {
		state = "UP"
	}
	fmt.Fprintf(&b, "Pantograph:                %s\n", state)
	fmt.Fprintf(&b, "Motive force:         %.0f N\n", e.last.MotiveForce)
	return b.String()
}
