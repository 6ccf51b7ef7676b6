package traction

import (
	"math"

	"github.com/cxd309/traction-engine/internal/adhesion"
	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/filter"
)

// ForceState is the runtime state of the force path.
type ForceState struct {
	Average  float64 // running average force for derating, N
	Raw      float64 // raw force of the last tick, N
	Motive   float64 // final motive force, N
	Filtered float64 // filter output before limiting, N
}

// forceChain is the force path shared by all power models.
type forceChain struct {
	ratings ForceRatings
	curves  Curves
	scan    consist.ScanMode
	filter  filter.Filter
	limiter adhesion.Limiter
	state   ForceState

	analytic func(ForceRatings, analyticDemand) float64
}

func newForceChain(r ForceRatings, c Curves, o options) forceChain {
	fc := forceChain{
		ratings:  r,
		curves:   c,
		scan:     o.scan,
		filter:   o.filter,
		limiter:  o.limiter,
		analytic: analyticForce,
	}
	if fc.filter == nil {
		fc.filter = filter.NewSinglePole(o.filterTau)
	}
	if fc.limiter == nil {
		fc.limiter = adhesion.Unlimited{}
	}
	return fc
}

// step runs one tick of the force path and returns the signed motive force.
func (c *forceChain) step(dt float64, in Inputs, throttle, powerFraction float64) float64 {
	speed := math.Abs(in.Speed)

	force := 0.0
	if in.Powered {
		if c.curves.Traction != nil {
			force = curveForce(c.curves.Traction, throttle, speed)
		} else {
			force = c.analytic(c.ratings, analyticDemand{
				Throttle:      throttle,
				Speed:         speed,
				PowerFraction: powerFraction,
			})
		}
	}
	c.state.Raw = force

	force = derate(c.ratings, &c.state, force, dt)
	force = resolveDirection(force, in, c.scan)
	force = applyDynamicBrake(force, c.curves.DynamicBrake, throttleFraction(in.DynamicBrakePercent), in.Speed)

	c.state.Filtered = c.filter.Filter(force, dt)
	c.state.Motive = c.limiter.Limit(c.state.Filtered, dt)
	return c.state.Motive
}

// Option customises a power model.
type Option func(*options)

type options struct {
	scan      consist.ScanMode
	filter    filter.Filter
	filterTau float64
	limiter   adhesion.Limiter
}

// WithScanMode selects how a trailing unit finds the unit it follows.
func WithScanMode(m consist.ScanMode) Option {
	return func(o *options) { o.scan = m }
}

// WithFilter replaces the default single-pole force filter.
func WithFilter(f filter.Filter) Option {
	return func(o *options) { o.filter = f }
}

// WithFilterTau sets the time constant of the default force filter.
func WithFilterTau(tau float64) Option {
	return func(o *options) { o.filterTau = tau }
}

// WithLimiter sets the force limiter applied after filtering.
func WithLimiter(l adhesion.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
