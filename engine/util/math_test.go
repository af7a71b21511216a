package util

import (
	"math"
	"testing"
)

func TestRoundTo(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.04, 0.0},
		{0.05, 0.1},
		{-0.05, -0.1},
		{1.96, 2.0},
		{3.349, 3.3},
	}
	for _, c := range cases {
		if got := RoundTo(c.in, 1); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("RoundTo(%v, 1) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestInRange(t *testing.T) {
	if !InRange(0.5, 0, 1) || !InRange(0, 0, 1) || !InRange(1, 0, 1) {
		t.Error("expected inclusive bounds")
	}
	if InRange(1.1, 0, 1) || InRange(-0.1, 0, 1) {
		t.Error("expected values outside the range to be rejected")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 1) != 1 || Clamp(-5, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp misbehaved")
	}
}
