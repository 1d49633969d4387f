package units

import (
	"math"
	"testing"
)

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 270, 359.9} {
		got := RadToDeg(DegToRad(deg))
		if math.Abs(got-deg) > 1e-9 {
			t.Errorf("round trip %v -> %v", deg, got)
		}
	}
}

func TestAngularDistanceDeg(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{0, 30, 30},
		{350, 5, 15},
		{5, 350, 15},
		{0, 180, 180},
		{359, 1, 2},
		{90, 270, 180},
	}
	for _, c := range cases {
		if got := AngularDistanceDeg(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("AngularDistanceDeg(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestMillimetersToMeters(t *testing.T) {
	if got := MillimetersToMeters(1500); got != 1.5 {
		t.Errorf("got %v, want 1.5", got)
	}
}
