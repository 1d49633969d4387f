package nav

import "testing"

func newTestSafety() *SafetyMonitor {
	return NewSafetyMonitor(testConfig())
}

func TestSafetyStateMachine(t *testing.T) {
	m := newTestSafety()

	if m.State() != SafetyNormal {
		t.Fatalf("initial state = %v, want %v", m.State(), SafetyNormal)
	}
	if m.Stopped() {
		t.Fatal("Stopped() true in normal state")
	}

	m.EmergencyStop()
	if m.State() != SafetyEmergencyStopped {
		t.Errorf("state after stop = %v, want %v", m.State(), SafetyEmergencyStopped)
	}
	if !m.Stopped() {
		t.Error("Stopped() false after emergency stop")
	}

	// Re-entering the stopped state is allowed.
	m.EmergencyStop()
	if !m.Stopped() {
		t.Error("repeated emergency stop left the stopped state")
	}

	m.Resume()
	if m.State() != SafetyNormal {
		t.Errorf("state after resume = %v, want %v", m.State(), SafetyNormal)
	}

	// Resume from normal is a no-op.
	m.Resume()
	if m.Stopped() {
		t.Error("resume from normal entered the stopped state")
	}
}

func TestObstacleAhead(t *testing.T) {
	m := newTestSafety()

	cases := []struct {
		name     string
		samples  []RangeSample
		want     bool
		wantDist float64
	}{
		{
			name:    "empty scan",
			samples: nil,
			want:    false,
		},
		{
			name:     "close obstacle in sector",
			samples:  []RangeSample{{Quality: 50, AngleDeg: 5, Distance: 0.3}},
			want:     true,
			wantDist: 0.3,
		},
		{
			name:     "close obstacle across the wraparound",
			samples:  []RangeSample{{Quality: 50, AngleDeg: 355, Distance: 0.2}},
			want:     true,
			wantDist: 0.2,
		},
		{
			name:    "close obstacle outside sector",
			samples: []RangeSample{{Quality: 50, AngleDeg: 45, Distance: 0.2}},
			want:    false,
		},
		{
			name:     "distant obstacle in sector",
			samples:  []RangeSample{{Quality: 50, AngleDeg: 0, Distance: 2.0}},
			want:     false,
			wantDist: 2.0,
		},
		{
			name: "closest of several returns wins",
			samples: []RangeSample{
				{Quality: 50, AngleDeg: 20, Distance: 0.45},
				{Quality: 50, AngleDeg: 350, Distance: 0.25},
				{Quality: 50, AngleDeg: 10, Distance: 1.5},
			},
			want:     true,
			wantDist: 0.25,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blocked, dist := m.ObstacleAhead(tc.samples)
			if blocked != tc.want {
				t.Errorf("blocked = %v, want %v", blocked, tc.want)
			}
			if tc.wantDist != 0 && dist != tc.wantDist {
				t.Errorf("distance = %v, want %v", dist, tc.wantDist)
			}
		})
	}
}

func TestObstacleAheadIndependentOfState(t *testing.T) {
	m := newTestSafety()
	m.EmergencyStop()

	// The forward check never reads or writes the state machine.
	blocked, _ := m.ObstacleAhead([]RangeSample{{Quality: 50, AngleDeg: 0, Distance: 0.1}})
	if !blocked {
		t.Error("obstacle check suppressed while stopped")
	}
	if m.State() != SafetyEmergencyStopped {
		t.Error("obstacle check mutated the state machine")
	}
}
