// Package curve provides the force-curve lookups used by powered units: a
// 2-D surface mapping (control fraction, speed) to force.
//
// A Table is immutable once built and may be shared by every unit of the
// same rolling-stock type.
package curve

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Lookup is the read-only force surface contract.
type Lookup interface {
	// Force returns the force (N) available at control fraction control
	// (0-1) and absolute speed speed (m/s).
	Force(control, speed float64) float64
}

var (
	ErrEmptyTable      = errors.New("force table has no notches")
	ErrNotchOrder      = errors.New("notch control values must be strictly increasing")
	ErrTooFewPoints    = errors.New("a notch curve needs at least two points")
	ErrLengthsMismatch = errors.New("speeds and forces differ in length")
	ErrSpeedOrder      = errors.New("notch speeds must be strictly increasing")
)

// Notch is one speed/force curve recorded at a fixed control fraction.
type Notch struct {
	Control float64   `json:"control" mapstructure:"control"`
	Speeds  []float64 `json:"speeds" mapstructure:"speeds"` // m/s, strictly increasing
	Forces  []float64 `json:"forces" mapstructure:"forces"` // N
}

// Table interpolates linearly in speed along each notch curve, then
// linearly between the two notches bracketing the control fraction.
// Both axes are clamped at their ends.
type Table struct {
	notches  []Notch
	controls []float64
	curves   []interp.PiecewiseLinear
}

// NewTable validates the notches and fits one piecewise linear curve per
// notch.
func NewTable(notches []Notch) (*Table, error) {
	if len(notches) == 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{
		notches:  make([]Notch, len(notches)),
		controls: make([]float64, len(notches)),
		curves:   make([]interp.PiecewiseLinear, len(notches)),
	}
	for i, n := range notches {
		if i > 0 && n.Control <= notches[i-1].Control {
			return nil, fmt.Errorf("notch %d (control %.3f): %w", i, n.Control, ErrNotchOrder)
		}
		if len(n.Speeds) != len(n.Forces) {
			return nil, fmt.Errorf("notch %d: %w", i, ErrLengthsMismatch)
		}
		if len(n.Speeds) < 2 {
			return nil, fmt.Errorf("notch %d: %w", i, ErrTooFewPoints)
		}
		for j := 1; j < len(n.Speeds); j++ {
			if n.Speeds[j] <= n.Speeds[j-1] {
				return nil, fmt.Errorf("notch %d: %w", i, ErrSpeedOrder)
			}
		}
		if err := t.curves[i].Fit(n.Speeds, n.Forces); err != nil {
			return nil, fmt.Errorf("notch %d: %w", i, err)
		}
		t.controls[i] = n.Control
		t.notches[i] = Notch{
			Control: n.Control,
			Speeds:  append([]float64(nil), n.Speeds...),
			Forces:  append([]float64(nil), n.Forces...),
		}
	}
	return t, nil
}

// Force implements Lookup.
func (t *Table) Force(control, speed float64) float64 {
	last := len(t.controls) - 1
	if control <= t.controls[0] {
		return t.curves[0].Predict(speed)
	}
	if control >= t.controls[last] {
		return t.curves[last].Predict(speed)
	}
	// controls[i-1] < control <= controls[i]
	i := sort.SearchFloat64s(t.controls, control)
	lo, hi := t.controls[i-1], t.controls[i]
	fLo := t.curves[i-1].Predict(speed)
	fHi := t.curves[i].Predict(speed)
	return fLo + (fHi-fLo)*(control-lo)/(hi-lo)
}

// Notches returns a copy of the notch data the table was built from.
func (t *Table) Notches() []Notch {
	out := make([]Notch, len(t.notches))
	copy(out, t.notches)
	return out
}

type tableJSON struct {
	Notches []Notch `json:"notches"`
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Notches: t.notches})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Table) UnmarshalJSON(data []byte) error {
	var aux tableJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	built, err := NewTable(aux.Notches)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// Func adapts a plain function to Lookup.
type Func func(control, speed float64) float64

// Force implements Lookup.
func (f Func) Force(control, speed float64) float64 { return f(control, speed) }
