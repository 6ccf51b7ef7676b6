// Package kinematics defines the MotionModel interface the host uses to turn
// the train's net motive force into speed, along with built-in
// implementations.
//
// Adding a new resistance model requires only implementing MotionModel and
// registering it in the JSON discriminator in the train package; the
// simulation engine itself never needs to change.
package kinematics

import "math"

// MotionModel is the physics contract every kinematics implementation must satisfy.
// Velocities are in m/s, forces in N, masses in kg and time in seconds.
type MotionModel interface {
	// VMax returns the train's maximum permissible speed (m/s); 0 means unlimited.
	VMax() float64

	// Resistance returns the magnitude of the running resistance at speed |v|.
	Resistance(v float64) float64

	// Step advances the signed velocity v under the signed motive force over
	// dt seconds and returns the new velocity.
	Step(v, force, mass, dt float64) float64
}

// integrate is the explicit Euler step shared by the built-in models.
// Resistance always opposes motion, and a step never carries the velocity
// through zero.
func integrate(m MotionModel, v, force, mass, dt float64) float64 {
	if mass <= 0 || dt <= 0 {
		return v
	}

	if v == 0 {
		// Breakaway: the train moves only once the force beats standing resistance.
		r0 := m.Resistance(0)
		if math.Abs(force) <= r0 {
			return 0
		}
		a := (force - math.Copysign(r0, force)) / mass
		return capSpeed(m, a*dt)
	}

	a := (force - math.Copysign(m.Resistance(v), v)) / mass
	newV := v + a*dt
	if newV*v < 0 {
		// A moving train comes to rest first; it may set off the other way
		// on the next step.
		return 0
	}
	return capSpeed(m, newV)
}

func capSpeed(m MotionModel, v float64) float64 {
	vMax := m.VMax()
	if vMax <= 0 || math.Abs(v) <= vMax {
		return v
	}
	return math.Copysign(vMax, v)
}
