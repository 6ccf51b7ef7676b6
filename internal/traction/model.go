// Package traction computes the per-tick motive force of powered rail
// vehicles.
//
// Each vehicle type is a PowerModel. Every tick the host calls Update with
// the elapsed time and the unit's control Inputs; the model returns the
// signed motive force together with cab and exhaust telemetry. Update never
// fails: parameters are validated when they are loaded, and dt == 0 or a
// standstill are handled without division.
//
// Per tick a unit runs, in order:
//
//  1. raw force from the traction curve, or from the power/RPM formula
//  2. continuous-duty derating against the running average force
//  3. direction: own reverser, or neutral when the followed unit is
//  4. dynamic braking against the direction of travel
//  5. low-pass filtering and adhesion limiting
//
// Diesel units additionally ramp engine RPM toward the throttle after the
// force is computed, so force and exhaust lag the engine by one tick.
package traction

import "github.com/cxd309/traction-engine/internal/consist"

// Inputs are the controls and surroundings of one unit for one tick. They
// are supplied fresh every tick and never retained.
type Inputs struct {
	Powered             bool
	ThrottlePercent     float64 // 0-100
	Direction           consist.Direction
	DynamicBrakePercent float64 // 0-100
	Speed               float64 // signed, m/s
	// Lead is true for the unit holding the train's controls.
	Lead bool
	// Consist is the lead train, valid for this tick only.
	Consist consist.View
}

// Telemetry is what a unit reports after a tick.
type Telemetry struct {
	Powered             bool    `json:"powered"`
	MotiveForce         float64 `json:"motive_force"`          // N, signed
	FilteredMotiveForce float64 `json:"filtered_motive_force"` // N, before adhesion limiting
	ThrottleCommanded   float64 `json:"throttle_commanded"`    // fraction
	ThrottleRamped      float64 `json:"throttle_ramped"`       // fraction
	RPM                 float64 `json:"rpm"`
	RPMRate             float64 `json:"rpm_rate"` // RPM/s
	Exhaust             float64 `json:"exhaust"`  // particles/s
}

// PowerModel is the contract every traction type satisfies.
type PowerModel interface {
	// Kind names the traction type ("diesel", "electric").
	Kind() string
	// Update advances the model by dt seconds.
	Update(dt float64, in Inputs) Telemetry
	// Telemetry returns the result of the last Update.
	Telemetry() Telemetry
	// Status is a short human-readable report for the cab display.
	Status() string
}

// throttleFraction converts a 0-100 percent control into a 0-1 fraction.
func throttleFraction(percent float64) float64 {
	t := percent / 100
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
