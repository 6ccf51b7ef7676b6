package traction

import "testing"

func TestExhaustSteady(t *testing.T) {
	if got := Exhaust(testEngine, 0.5, 0); got != 30 {
		t.Fatalf("exhaust = %f, want 30", got)
	}
}

func TestExhaustFloor(t *testing.T) {
	p := testEngine
	p.IdleExhaust = 1
	p.MaxExhaust = 4
	for th := 0.0; th <= 1; th += 0.05 {
		if got := Exhaust(p, th, 0); got < 5 {
			t.Fatalf("throttle %f: exhaust %f below floor", th, got)
		}
	}
	for th := 0.0; th <= 1; th += 0.05 {
		if got := Exhaust(testEngine, th, 0); got < 5 {
			t.Fatalf("throttle %f: exhaust %f below floor", th, got)
		}
	}
}

func TestExhaustTransients(t *testing.T) {
	// 30 * 1.5 * 50
	if got := Exhaust(testEngine, 0.5, 12); got != 2250 {
		t.Fatalf("accelerating exhaust = %f, want 2250", got)
	}
	if got := Exhaust(testEngine, 0.5, -12); got != 3 {
		t.Fatalf("decelerating exhaust = %f, want 3", got)
	}
}
