package curve

import (
	"encoding/json"
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Notch{
		{Control: 0, Speeds: []float64{0, 10, 40}, Forces: []float64{0, 0, 0}},
		{Control: 0.5, Speeds: []float64{0, 10, 40}, Forces: []float64{100e3, 80e3, 20e3}},
		{Control: 1, Speeds: []float64{0, 10, 40}, Forces: []float64{200e3, 160e3, 40e3}},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestTableForce(t *testing.T) {
	table := testTable(t)
	cases := []struct {
		control, speed, exp float64
	}{
		{1, 0, 200e3},
		{1, 5, 180e3},
		{0.5, 25, 50e3},
		{0.75, 10, 120e3},
		{0.25, 0, 50e3},
		{0, 20, 0},
		// Clamped on both axes.
		{1.5, 0, 200e3},
		{-1, 10, 0},
		{1, 100, 40e3},
	}
	for _, c := range cases {
		got := table.Force(c.control, c.speed)
		if !scalar.EqualWithinAbsOrRel(got, c.exp, 1e-9, 1e-12) {
			t.Errorf("Force(%.2f, %.2f) = %f, want %f", c.control, c.speed, got, c.exp)
		}
	}
}

func TestTableSingleNotch(t *testing.T) {
	table, err := NewTable([]Notch{{Control: 1, Speeds: []float64{0, 20}, Forces: []float64{100, 50}}})
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Force(0.3, 10); got != 75 {
		t.Fatalf("got %f", got)
	}
}

func TestTableErrors(t *testing.T) {
	if _, err := NewTable(nil); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
	_, err := NewTable([]Notch{
		{Control: 0.5, Speeds: []float64{0, 1}, Forces: []float64{1, 1}},
		{Control: 0.5, Speeds: []float64{0, 1}, Forces: []float64{1, 1}},
	})
	if !errors.Is(err, ErrNotchOrder) {
		t.Fatalf("expected ErrNotchOrder, got %v", err)
	}
	if _, err := NewTable([]Notch{{Control: 1, Speeds: []float64{0}, Forces: []float64{1}}}); !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := NewTable([]Notch{{Control: 1, Speeds: []float64{0, 1}, Forces: []float64{1}}}); !errors.Is(err, ErrLengthsMismatch) {
		t.Fatalf("expected ErrLengthsMismatch, got %v", err)
	}
	if _, err := NewTable([]Notch{{Control: 1, Speeds: []float64{1, 0}, Forces: []float64{1, 1}}}); !errors.Is(err, ErrSpeedOrder) {
		t.Fatalf("expected ErrSpeedOrder, got %v", err)
	}
}

func TestTableJSON(t *testing.T) {
	var table Table
	data := `{"notches":[{"control":1,"speeds":[0,10],"forces":[10,0]}]}`
	if err := json.Unmarshal([]byte(data), &table); err != nil {
		t.Fatal(err)
	}
	if got := table.Force(1, 5); got != 5 {
		t.Fatalf("got %f", got)
	}
	if err := json.Unmarshal([]byte(`{"notches":[]}`), &table); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}
