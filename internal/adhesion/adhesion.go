// Package adhesion limits motive force to what the wheel/rail contact can
// transmit.
package adhesion

import "math"

// Gravity is standard gravitational acceleration, m/s².
const Gravity = 9.80665

// Limiter reduces the magnitude of a motive force; it never increases it
// and never flips its sign.
type Limiter interface {
	Limit(force, dt float64) float64
}

// Unlimited returns forces unchanged.
type Unlimited struct{}

// Limit implements Limiter.
func (Unlimited) Limit(force, _ float64) float64 { return force }

// Adhesion caps force at Coefficient × DriverMass × g.
type Adhesion struct {
	Coefficient float64 // dimensionless friction coefficient μ
	DriverMass  float64 // mass on driven axles, kg
}

// Max returns the largest force magnitude the contact can carry.
func (a Adhesion) Max() float64 {
	return a.Coefficient * a.DriverMass * Gravity
}

// Limit implements Limiter. A non-positive Max disables the cap.
func (a Adhesion) Limit(force, _ float64) float64 {
	limit := a.Max()
	if limit <= 0 || math.Abs(force) <= limit {
		return force
	}
	return math.Copysign(limit, force)
}

// Func adapts a plain function to Limiter.
type Func func(force, dt float64) float64

// Limit implements Limiter.
func (f Func) Limit(force, dt float64) float64 { return f(force, dt) }
