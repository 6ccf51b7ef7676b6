package traction

import (
	"testing"

	"github.com/cxd309/traction-engine/internal/adhesion"
	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/curve"
	"gonum.org/v1/gonum/floats/scalar"
)

func testDiesel(c Curves, opts ...Option) *Diesel {
	opts = append([]Option{WithFilterTau(0)}, opts...)
	return NewDiesel(DieselParameters{Engine: testEngine, Force: testRatings, Curves: c}, opts...)
}

func leadForward(throttle, speed float64) Inputs {
	return Inputs{
		Powered:         true,
		ThrottlePercent: throttle,
		Direction:       consist.Forward,
		Speed:           speed,
		Lead:            true,
	}
}

func TestDieselStandstillStart(t *testing.T) {
	d := testDiesel(Curves{})
	tel := d.Update(1, leadForward(50, 0))
	if tel.MotiveForce != 150e3 {
		t.Fatalf("motive force = %f, want 150000", tel.MotiveForce)
	}
	if tel.FilteredMotiveForce != tel.MotiveForce {
		t.Fatal("unlimited unit should report equal filtered and motive force")
	}
	if tel.ThrottleCommanded != 0.5 {
		t.Fatalf("commanded throttle = %f", tel.ThrottleCommanded)
	}
	if !scalar.EqualWithinAbs(tel.ThrottleRamped, 0.2, 1e-12) {
		t.Fatalf("ramped throttle = %f, want 0.2", tel.ThrottleRamped)
	}
	if !scalar.EqualWithinAbs(tel.RPM, 440, 1e-9) {
		t.Fatalf("rpm = %f, want 440", tel.RPM)
	}
	if tel.Exhaust != 30 {
		t.Fatalf("exhaust uses the previous rpm rate and should be steady 30, got %f", tel.Exhaust)
	}

	tel = d.Update(1, leadForward(50, 0))
	if tel.Exhaust != 30*1.5*50 {
		t.Fatalf("exhaust should spike while the engine accelerates, got %f", tel.Exhaust)
	}
}

func TestDieselForceUsesPreviousRPM(t *testing.T) {
	d := testDiesel(Curves{})
	// Engine at idle: no power available once moving.
	tel := d.Update(1, leadForward(100, 10))
	if tel.MotiveForce != 0 {
		t.Fatalf("idle engine produced %f while moving", tel.MotiveForce)
	}
	// Engine now at 0.2 of its range: 2e6 * 0.2 / 10.
	tel = d.Update(1, leadForward(100, 10))
	if !scalar.EqualWithinAbs(tel.MotiveForce, 40e3, 1e-6) {
		t.Fatalf("motive force = %f, want 40000", tel.MotiveForce)
	}
}

func TestDieselNeutralZeroes(t *testing.T) {
	flat := curve.Func(func(_, _ float64) float64 { return 999e3 })
	for _, c := range []Curves{{}, {Traction: flat}} {
		d := testDiesel(c)
		for _, speed := range []float64{-20, 0, 3, 15} {
			in := leadForward(100, speed)
			in.Direction = consist.Neutral
			if tel := d.Update(0.5, in); tel.MotiveForce != 0 {
				t.Fatalf("neutral lead unit produced %f at speed %f", tel.MotiveForce, speed)
			}
		}
	}
}

func TestDieselTrailingFollowsNeutralLeader(t *testing.T) {
	d := testDiesel(Curves{Traction: curve.Func(func(_, _ float64) float64 { return 500 })})
	in := Inputs{
		Powered:         true,
		ThrottlePercent: 100,
		Direction:       consist.Forward,
		Consist:         consist.Cars{consist.Snapshot{IsDrivable: true, Dir: consist.Neutral}},
	}
	if tel := d.Update(1, in); tel.MotiveForce != 0 {
		t.Fatalf("trailing unit produced %f behind a neutral leader", tel.MotiveForce)
	}
	if d.Force().Raw != 500 {
		t.Fatalf("raw force = %f, want 500", d.Force().Raw)
	}
}

func TestDieselCurvePrecedence(t *testing.T) {
	calls := 0
	counting := func(r ForceRatings, a analyticDemand) float64 {
		calls++
		return analyticForce(r, a)
	}

	d := testDiesel(Curves{Traction: curve.Func(func(c, _ float64) float64 { return c * 1000 })})
	d.chain.analytic = counting
	for i := 0; i < 20; i++ {
		d.Update(0.1, leadForward(float64(i*5), float64(i)))
	}
	if calls != 0 {
		t.Fatalf("analytic formula called %d times with a traction curve configured", calls)
	}
	if got := d.Telemetry().MotiveForce; !scalar.EqualWithinAbs(got, 950, 1e-9) {
		t.Fatalf("curve force = %f, want 950", got)
	}

	d = testDiesel(Curves{})
	d.chain.analytic = counting
	for i := 0; i < 20; i++ {
		d.Update(0.1, leadForward(50, 1))
	}
	if calls != 20 {
		t.Fatalf("analytic formula called %d times, want 20", calls)
	}
}

func TestDieselUnpowered(t *testing.T) {
	d := testDiesel(Curves{})
	d.Update(1, leadForward(100, 0))
	in := leadForward(100, 0)
	in.Powered = false
	tel := d.Update(1, in)
	if tel.MotiveForce != 0 {
		t.Fatalf("unpowered unit produced %f", tel.MotiveForce)
	}
	if tel.ThrottleCommanded != 0 {
		t.Fatal("unpowered engine should ramp back to idle")
	}
	if tel.RPM < testEngine.IdleRPM {
		t.Fatalf("rpm %f below idle", tel.RPM)
	}
}

func TestDieselDynamicBrake(t *testing.T) {
	brake := curve.Func(func(fraction, _ float64) float64 { return fraction * 200e3 })
	d := testDiesel(Curves{DynamicBrake: brake})
	in := leadForward(0, 12)
	in.DynamicBrakePercent = 25
	if tel := d.Update(1, in); tel.MotiveForce != -50e3 {
		t.Fatalf("dynamic brake force = %f, want -50000", tel.MotiveForce)
	}
}

func TestDieselFilterAndLimiter(t *testing.T) {
	limit := adhesion.Func(func(f, _ float64) float64 {
		if f > 100e3 {
			return 100e3
		}
		return f
	})
	d := NewDiesel(DieselParameters{Engine: testEngine, Force: testRatings},
		WithFilterTau(1), WithLimiter(limit))

	tel := d.Update(1, leadForward(100, 0))
	if tel.FilteredMotiveForce >= 300e3 || tel.FilteredMotiveForce <= 0 {
		t.Fatalf("filter should lag the 300 kN step, got %f", tel.FilteredMotiveForce)
	}
	for i := 0; i < 50; i++ {
		tel = d.Update(1, leadForward(100, 0))
	}
	if !scalar.EqualWithinAbs(tel.FilteredMotiveForce, 300e3, 1e-3) {
		t.Fatalf("filter did not settle: %f", tel.FilteredMotiveForce)
	}
	if tel.MotiveForce != 100e3 {
		t.Fatalf("limiter ignored: %f", tel.MotiveForce)
	}
}

func TestDieselZeroDt(t *testing.T) {
	d := testDiesel(Curves{})
	d.Update(0.7, leadForward(100, 0))
	rpm, rate := d.Engine().RPM, d.Engine().RPMRate
	d.Update(0, leadForward(100, 0))
	d.Update(0, leadForward(100, 0))
	if d.Engine().RPM != rpm || d.Engine().RPMRate != rate {
		t.Fatal("dt=0 updates changed the engine")
	}
}

func TestDieselStatus(t *testing.T) {
	d := testDiesel(Curves{})
	if got := d.Status(); got != "\nDiesel locomotive data:\nDiesel engine:             OFF\nDiesel RPM:           300\n" {
		t.Fatalf("unexpected status %q", got)
	}
	d.Update(1, leadForward(100, 0))
	exp := "\nDiesel locomotive data:\nDiesel engine:             ON\nDiesel RPM:           440\n"
	if got := d.Status(); got != exp {
		t.Fatalf("status = %q, want %q", got, exp)
	}
	if d.Kind() != "diesel" {
		t.Fatal("wrong kind")
	}
}

func TestElectric(t *testing.T) {
	e := NewElectric(ElectricParameters{Force: testRatings}, WithFilterTau(0))
	tel := e.Update(1, leadForward(50, 10))
	// min(150 kN, 2 MW * 0.25 / 10 m/s)
	if !scalar.EqualWithinAbs(tel.MotiveForce, 50e3, 1e-6) {
		t.Fatalf("motive force = %f, want 50000", tel.MotiveForce)
	}
	if tel.ThrottleRamped != 0.5 || tel.RPM != 0 {
		t.Fatal("electric units act on the throttle immediately and have no engine")
	}
	in := leadForward(50, 10)
	in.Direction = consist.Reverse
	if tel := e.Update(1, in); tel.MotiveForce >= 0 {
		t.Fatalf("reverse electric force = %f", tel.MotiveForce)
	}
	if e.Kind() != "electric" || e.Status() == "" {
		t.Fatal("electric identity")
	}
}
