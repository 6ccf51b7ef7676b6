package traction

import "github.com/cxd309/traction-engine/internal/curve"

// DefaultRampRate is the ramp rate (fraction/s) used when the engine has no
// RPM data.
const DefaultRampRate = 0.2

// EngineParameters are the fixed prime-mover figures of a diesel unit.
// MaxRPM must exceed IdleRPM; the loader rejects anything else.
type EngineParameters struct {
	IdleRPM          float64 `json:"idle_rpm"`
	MaxRPM           float64 `json:"max_rpm"`
	MaxRPMChangeRate float64 `json:"max_rpm_change_rate"` // RPM/s

	IdleExhaust     float64 `json:"idle_exhaust"`
	MaxExhaust      float64 `json:"max_exhaust"`
	ExhaustDynamics float64 `json:"exhaust_dynamics"`
}

// DefaultEngineParameters returns the exhaust figures every diesel starts
// with; RPM data is left empty.
func DefaultEngineParameters() EngineParameters {
	return EngineParameters{
		IdleExhaust:     10,
		MaxExhaust:      50,
		ExhaustDynamics: 1.5,
	}
}

// RampRate is the speed (fraction of the RPM range per second) at which the
// engine follows the throttle.
func (p EngineParameters) RampRate() float64 {
	if p.IdleRPM == 0 || p.MaxRPM == 0 || p.MaxRPMChangeRate == 0 {
		return DefaultRampRate
	}
	return p.MaxRPMChangeRate / (p.MaxRPM - p.IdleRPM)
}

// rpmAt maps a ramp position (0-1) onto the RPM range.
func (p EngineParameters) rpmAt(position float64) float64 {
	return p.IdleRPM + position*(p.MaxRPM-p.IdleRPM)
}

// powerFraction is the share of rated power available at rpm.
func (p EngineParameters) powerFraction(rpm float64) float64 {
	if p.MaxRPM <= p.IdleRPM {
		return 1
	}
	return (rpm - p.IdleRPM) / (p.MaxRPM - p.IdleRPM)
}

// ForceRatings are the fixed traction figures shared by every power model.
type ForceRatings struct {
	MaxForce           float64 `json:"max_force"`            // peak tractive force, N
	MaxContinuousForce float64 `json:"max_continuous_force"` // N
	// ContinuousForceTimeFactor is the averaging window for derating, s.
	ContinuousForceTimeFactor float64 `json:"continuous_force_time_factor"`
	MaxPower                  float64 `json:"max_power"` // W
	MaxSpeed                  float64 `json:"max_speed"` // rated top speed, m/s
}

// Derates reports whether continuous-duty derating is active.
func (r ForceRatings) Derates() bool {
	return r.MaxForce > 0 && r.MaxContinuousForce > 0
}

// Curves are the optional force surfaces of a unit. A nil Traction selects
// the analytic force path; a nil DynamicBrake disables dynamic braking.
type Curves struct {
	Traction     curve.Lookup
	DynamicBrake curve.Lookup
}
