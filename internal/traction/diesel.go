package traction

import (
	"fmt"
	"strings"
)

// DieselParameters is everything a diesel-electric unit needs at load time.
type DieselParameters struct {
	Engine EngineParameters
	Force  ForceRatings
	Curves Curves
}

// Diesel is a diesel-electric locomotive: a prime mover whose RPM follows
// the throttle with a rate limit, driving traction motors.
type Diesel struct {
	params DieselParameters
	engine EngineState
	chain  forceChain
	last   Telemetry
}

var _ PowerModel = (*Diesel)(nil)

// NewDiesel returns a diesel unit idling with the throttle closed.
func NewDiesel(p DieselParameters, opts ...Option) *Diesel {
	d := &Diesel{
		params: p,
		engine: NewEngineState(p.Engine),
		chain:  newForceChain(p.Force, p.Curves, buildOptions(opts)),
	}
	d.last = Telemetry{RPM: d.engine.RPM, Exhaust: Exhaust(p.Engine, 0, 0)}
	return d
}

// Kind implements PowerModel.
func (d *Diesel) Kind() string { return "diesel" }

// Update implements PowerModel. Exhaust and force use the engine as it stood
// at the end of the previous tick; the RPM ramp runs last.
func (d *Diesel) Update(dt float64, in Inputs) Telemetry {
	t := 0.0
	if in.Powered {
		t = throttleFraction(in.ThrottlePercent)
	}

	exhaust := Exhaust(d.params.Engine, t, d.engine.RPMRate)
	force := d.chain.step(dt, in, t, d.params.Engine.powerFraction(d.engine.RPM))
	d.engine.Advance(d.params.Engine, t, dt)

	d.last = Telemetry{
		Powered:             in.Powered,
		MotiveForce:         force,
		FilteredMotiveForce: d.chain.state.Filtered,
		ThrottleCommanded:   d.engine.Commanded,
		ThrottleRamped:      d.engine.Position,
		RPM:                 d.engine.RPM,
		RPMRate:             d.engine.RPMRate,
		Exhaust:             exhaust,
	}
	return d.last
}

// Telemetry implements PowerModel.
func (d *Diesel) Telemetry() Telemetry { return d.last }

// Engine returns the engine runtime state.
func (d *Diesel) Engine() EngineState { return d.engine }

// Force returns the force path runtime state.
func (d *Diesel) Force() ForceState { return d.chain.state }

// Status implements PowerModel.
func (d *Diesel) Status() string {
	var b strings.Builder
	b.WriteString("\nDiesel locomotive data:\n")
	b.WriteString("Diesel engine:             ")
	if d.last.Powered {
		b.WriteString("ON")
	} else {
		b.WriteString("OFF")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Diesel RPM:           %.0f\n", d.engine.RPM)
	return b.String()
}
