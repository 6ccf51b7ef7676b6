package traction

const (
	minExhaust   = 5.0
	decelExhaust = 3.0
)

// Exhaust returns the particle emission rate for throttle fraction t while
// the engine RPM changes at rpmRate. Accelerating engines puff hard,
// decelerating engines almost stop smoking.
func Exhaust(p EngineParameters, t, rpmRate float64) float64 {
	e := p.IdleExhaust + (p.MaxExhaust-p.IdleExhaust)*t
	if e < minExhaust {
		e = minExhaust
	}
	switch {
	case rpmRate > 0:
		e *= p.ExhaustDynamics * p.MaxExhaust
	case rpmRate < 0:
		e = decelExhaust
	}
	return e
}
