package traction

// EngineState is the runtime state of the prime mover: a ramp position that
// chases the commanded throttle fraction, and the RPM derived from it.
type EngineState struct {
	Commanded float64 // throttle fraction the ramp is chasing
	Position  float64 // ramped fraction, 0-1
	RPM       float64
	RPMRate   float64 // RPM/s
	prevRPM   float64
}

// NewEngineState returns an engine at rest at idle.
func NewEngineState(p EngineParameters) EngineState {
	return EngineState{RPM: p.IdleRPM, prevRPM: p.IdleRPM}
}

// Advance moves the ramp position toward target at the engine's ramp rate
// for dt seconds without overshooting, then refreshes RPM and its rate of
// change. A zero dt keeps the previous rate.
func (s *EngineState) Advance(p EngineParameters, target, dt float64) {
	s.Commanded = target
	if s.Position != target {
		step := p.RampRate() * dt
		if target < s.Position {
			s.Position -= step
			if s.Position < target {
				s.Position = target
			}
		} else {
			s.Position += step
			if s.Position > target {
				s.Position = target
			}
		}
		s.RPM = p.rpmAt(s.Position)
	}

	if dt > 0 {
		s.RPMRate = (s.RPM - s.prevRPM) / dt
		s.prevRPM = s.RPM
	}
}
