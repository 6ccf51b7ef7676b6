package filter

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestSinglePoleStep(t *testing.T) {
	f := NewSinglePole(0.5)
	got := f.Filter(100, 0.5)
	exp := 100 * (1 - math.Exp(-1))
	if !scalar.EqualWithinAbs(got, exp, 1e-9) {
		t.Fatalf("after one time constant got %f, want %f", got, exp)
	}
	for i := 0; i < 100; i++ {
		got = f.Filter(100, 0.5)
	}
	if !scalar.EqualWithinAbs(got, 100, 1e-9) {
		t.Fatalf("filter did not settle, got %f", got)
	}
}

func TestSinglePoleZeroDt(t *testing.T) {
	f := NewSinglePole(1)
	f.Filter(50, 1)
	before := f.Value()
	if got := f.Filter(1000, 0); got != before {
		t.Fatalf("dt=0 changed the output from %f to %f", before, got)
	}
}

func TestSinglePoleLargeDtStable(t *testing.T) {
	f := NewSinglePole(0.1)
	got := f.Filter(10, 1000)
	if got < 0 || got > 10 {
		t.Fatalf("output %f overshot the input", got)
	}
}

func TestSinglePolePassthrough(t *testing.T) {
	f := NewSinglePole(0)
	if got := f.Filter(42, 0); got != 42 {
		t.Fatalf("tau=0 should pass through, got %f", got)
	}
	f.Reset(7)
	if f.Value() != 7 {
		t.Fatal("reset ignored")
	}

	var p Passthrough
	if p.Filter(-3, 1) != -3 || p.Value() != -3 {
		t.Fatal("passthrough altered its input")
	}
}
