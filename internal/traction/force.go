package traction

import (
	"math"

	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/curve"
)

// analyticDemand carries what the power/RPM formula needs for one tick.
type analyticDemand struct {
	Throttle      float64 // fraction, 0-1
	Speed         float64 // absolute, m/s
	PowerFraction float64 // share of MaxPower available
}

// analyticForce caps the throttle share of peak force by the power available
// at the current speed. At standstill there is no power cap. Above the rated
// top speed the unit produces nothing.
func analyticForce(r ForceRatings, d analyticDemand) float64 {
	force := r.MaxForce * d.Throttle
	power := r.MaxPower * d.PowerFraction
	if d.Speed > 0 && force*d.Speed > power {
		force = power / d.Speed
	}
	if d.Speed > r.MaxSpeed {
		force = 0
	}
	return force
}

// curveForce reads the traction surface, flooring negative entries at zero.
func curveForce(c curve.Lookup, throttle, speed float64) float64 {
	f := c.Force(throttle, speed)
	if f < 0 {
		return 0
	}
	return f
}

// DerateFactor is the continuous-duty multiplier for a running average
// force avg.
func DerateFactor(r ForceRatings, avg float64) float64 {
	return 1 - (r.MaxForce-r.MaxContinuousForce)/(r.MaxForce*r.MaxContinuousForce)*avg
}

// derate discounts force by the running average held in s and folds the
// result back into the average.
func derate(r ForceRatings, s *ForceState, force, dt float64) float64 {
	if !r.Derates() {
		return force
	}
	force *= DerateFactor(r, s.Average)
	w := 0.0
	if r.ContinuousForceTimeFactor > 0 {
		w = math.Max(0, (r.ContinuousForceTimeFactor-dt)/r.ContinuousForceTimeFactor)
	}
	s.Average = w*s.Average + (1-w)*force
	return force
}

// applyDirection signs force according to a reverser setting.
func applyDirection(force float64, d consist.Direction) float64 {
	if d.Sign() == 0 {
		return 0
	}
	return d.Sign() * force
}

// resolveDirection signs force for this unit. The lead unit obeys its own
// reverser. A trailing unit produces nothing while the car it follows is in
// neutral and otherwise obeys its own reverser.
func resolveDirection(force float64, in Inputs, mode consist.ScanMode) float64 {
	if in.Lead {
		return applyDirection(force, in.Direction)
	}
	if leader, ok := consist.Leader(in.Consist, mode); ok && leader.Direction() == consist.Neutral {
		return 0
	}
	return applyDirection(force, in.Direction)
}

// applyDynamicBrake subtracts dynamic-brake force so that it opposes the
// direction of travel. A stationary unit brakes as if moving forward.
func applyDynamicBrake(force float64, brake curve.Lookup, fraction, speed float64) float64 {
	if fraction <= 0 || brake == nil {
		return force
	}
	f := brake.Force(fraction, math.Abs(speed))
	if f <= 0 {
		return force
	}
	if speed < 0 {
		return force + f
	}
	return force - f
}
