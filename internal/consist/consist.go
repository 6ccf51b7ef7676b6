// Package consist describes the read-only view of a train's cars that a
// powered unit consults once per tick to follow the controlling unit.
package consist

import (
	"fmt"
	"strings"
)

// Direction is the reverser setting of a drivable car.
type Direction uint8

const (
	Neutral Direction = iota
	Forward
	Reverse
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case Neutral:
		return "neutral"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	switch d {
	case Forward, Reverse, Neutral:
		return []byte(d.String()), nil
	}
	return nil, fmt.Errorf("unknown direction %d", uint8(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Accepts the long names and the cab abbreviations F, R and N.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection converts a reverser name to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "f":
		return Forward, nil
	case "reverse", "r":
		return Reverse, nil
	case "neutral", "n", "":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("unknown direction %q", s)
}

// Sign returns +1, -1 or 0 for Forward, Reverse and Neutral.
func (d Direction) Sign() float64 {
	switch d {
	case Forward:
		return 1
	case Reverse:
		return -1
	}
	return 0
}

// Car is what a powered unit may read about another car in the lead train.
type Car interface {
	Drivable() bool
	Direction() Direction
	// Controlling reports whether the car holds the train's controls.
	Controlling() bool
}

// View is the ordered sequence of cars in the lead train. A View is a
// snapshot for the current tick only and must not be retained.
type View interface {
	Len() int
	At(i int) Car
}

// ScanMode selects how a trailing unit finds the car it follows.
type ScanMode uint8

const (
	// ScanFirstDrivable consults the first drivable car and stops there.
	ScanFirstDrivable ScanMode = iota
	// ScanControlling looks through the whole consist for the controlling
	// car and falls back to the first drivable car when none is flagged.
	ScanControlling
)

// FirstDrivable returns the first drivable car of v.
func FirstDrivable(v View) (Car, bool) {
	if v == nil {
		return nil, false
	}
	for i := 0; i < v.Len(); i++ {
		if c := v.At(i); c != nil && c.Drivable() {
			return c, true
		}
	}
	return nil, false
}

// Controlling returns the car flagged as controlling, if any.
func Controlling(v View) (Car, bool) {
	if v == nil {
		return nil, false
	}
	for i := 0; i < v.Len(); i++ {
		if c := v.At(i); c != nil && c.Drivable() && c.Controlling() {
			return c, true
		}
	}
	return nil, false
}

// Leader returns the car a trailing unit follows under mode.
func Leader(v View, mode ScanMode) (Car, bool) {
	switch mode {
	case ScanControlling:
		if c, ok := Controlling(v); ok {
			return c, true
		}
		return FirstDrivable(v)
	case ScanFirstDrivable:
		return FirstDrivable(v)
	}
	return FirstDrivable(v)
}

// Cars is a slice-backed View, handy for hosts that already hold their
// consist as a slice.
type Cars []Car

func (c Cars) Len() int     { return len(c) }
func (c Cars) At(i int) Car { return c[i] }

// Snapshot is a plain value implementation of Car.
type Snapshot struct {
	IsDrivable    bool
	Dir           Direction
	IsControlling bool
}

func (s Snapshot) Drivable() bool       { return s.IsDrivable }
func (s Snapshot) Direction() Direction { return s.Dir }
func (s Snapshot) Controlling() bool    { return s.IsControlling }
