// Package filter provides the low-pass filter applied to motive force to
// emulate the lag of traction-motor inductance.
package filter

import "math"

// Filter is a stateful filter advanced once per tick.
type Filter interface {
	// Filter feeds x into the filter over dt seconds and returns the new output.
	Filter(x, dt float64) float64
	// Value returns the current output without advancing the filter.
	Value() float64
	// Reset forces the output to x.
	Reset(x float64)
}

// SinglePole is a first-order low-pass filter with time constant Tau.
// The discretisation is exact for a step input held over dt, so any dt is
// stable. dt == 0 leaves the output untouched and Tau <= 0 passes the input
// straight through.
type SinglePole struct {
	Tau float64 // seconds
	y   float64
}

// NewSinglePole returns a filter with time constant tau seconds.
func NewSinglePole(tau float64) *SinglePole {
	return &SinglePole{Tau: tau}
}

// Filter implements Filter.
func (f *SinglePole) Filter(x, dt float64) float64 {
	if f.Tau <= 0 {
		f.y = x
		return f.y
	}
	if dt <= 0 {
		return f.y
	}
	alpha := 1 - math.Exp(-dt/f.Tau)
	f.y += alpha * (x - f.y)
	return f.y
}

// Value implements Filter.
func (f *SinglePole) Value() float64 { return f.y }

// Reset implements Filter.
func (f *SinglePole) Reset(x float64) { f.y = x }

// Passthrough returns its input unchanged.
type Passthrough struct{ y float64 }

// Filter implements Filter.
func (p *Passthrough) Filter(x, _ float64) float64 {
	p.y = x
	return x
}

// Value implements Filter.
func (p *Passthrough) Value() float64 { return p.y }

// Reset implements Filter.
func (p *Passthrough) Reset(x float64) { p.y = x }
