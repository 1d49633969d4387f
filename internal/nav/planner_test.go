package nav

import (
	"math"
	"testing"
)

func plannerGrid(t *testing.T) *Grid {
	t.Helper()
	// One meter per cell keeps coordinates easy to reason about; a fresh
	// grid is all unknown, which the planner treats as traversable.
	return mustGrid(t, 50, 50, 1.0)
}

func TestPlanOnOpenGridReturnsAdjacentWaypoints(t *testing.T) {
	g := plannerGrid(t)
	p := NewPathPlanner(testConfig())

	start := Pose{X: 0, Y: 0}
	goal := Pose{X: 10, Y: 10}
	path := p.Plan(g, start, goal)
	if len(path) == 0 {
		t.Fatal("no path on an open grid")
	}

	sx, sy := g.WorldToGrid(start.X, start.Y)
	wantFirstX, wantFirstY := g.GridToWorld(sx, sy)
	if path[0].X != wantFirstX || path[0].Y != wantFirstY {
		t.Errorf("path starts at (%v, %v), want start cell center (%v, %v)",
			path[0].X, path[0].Y, wantFirstX, wantFirstY)
	}

	gx, gy := g.WorldToGrid(goal.X, goal.Y)
	wantLastX, wantLastY := g.GridToWorld(gx, gy)
	last := path[len(path)-1]
	if last.X != wantLastX || last.Y != wantLastY {
		t.Errorf("path ends at (%v, %v), want goal cell center (%v, %v)",
			last.X, last.Y, wantLastX, wantLastY)
	}

	// Consecutive waypoints occupy 8-adjacent cells.
	res := g.Resolution()
	for i := 1; i < len(path); i++ {
		dx := math.Abs(path[i].X - path[i-1].X)
		dy := math.Abs(path[i].Y - path[i-1].Y)
		if dx > res+1e-9 || dy > res+1e-9 || (dx == 0 && dy == 0) {
			t.Fatalf("waypoints %d and %d are not adjacent: (%v, %v) -> (%v, %v)",
				i-1, i, path[i-1].X, path[i-1].Y, path[i].X, path[i].Y)
		}
	}
}

func TestPlanFullyOccupiedGridIsUnreachable(t *testing.T) {
	g := plannerGrid(t)
	for iy := 0; iy < g.Height(); iy++ {
		for ix := 0; ix < g.Width(); ix++ {
			g.MarkOccupied(ix, iy)
		}
	}

	p := NewPathPlanner(testConfig())
	if path := p.Plan(g, Pose{X: 0, Y: 0}, Pose{X: 10, Y: 10}); len(path) != 0 {
		t.Errorf("got %d waypoints on a fully occupied grid, want none", len(path))
	}
}

func TestPlanRespectsSafetyMargin(t *testing.T) {
	g := mustGrid(t, 21, 21, 1.0)

	// Solid wall across the map at x index 10 with a single-cell gap. The
	// one-cell inflation radius closes the gap, so no crossing exists.
	for iy := 0; iy < g.Height(); iy++ {
		if iy == 10 {
			continue
		}
		g.MarkOccupied(10, iy)
	}

	cfg := testConfig()
	cfg.SafetyMarginMeters = 1.0
	p := NewPathPlanner(cfg)
	if path := p.Plan(g, Pose{X: -5, Y: 0}, Pose{X: 5, Y: 0}); len(path) != 0 {
		t.Errorf("path crossed an inflated wall: %d waypoints", len(path))
	}

	// With inflation disabled the gap is passable.
	cfg.SafetyMarginMeters = 0
	p = NewPathPlanner(cfg)
	if path := p.Plan(g, Pose{X: -5, Y: 0}, Pose{X: 5, Y: 0}); len(path) == 0 {
		t.Error("no path through the gap with zero safety margin")
	}
}

func TestPlanStartEqualsGoal(t *testing.T) {
	g := plannerGrid(t)
	p := NewPathPlanner(testConfig())

	path := p.Plan(g, Pose{X: 1, Y: 1}, Pose{X: 1, Y: 1})
	if len(path) != 1 {
		t.Fatalf("got %d waypoints for start == goal, want 1", len(path))
	}
}

func TestPlanWaypointHeadingsAreZero(t *testing.T) {
	g := plannerGrid(t)
	p := NewPathPlanner(testConfig())

	path := p.Plan(g, Pose{X: 0, Y: 0, Theta: 1.2}, Pose{X: 5, Y: 5, Theta: -0.7})
	for i, wp := range path {
		if wp.Theta != 0 {
			t.Fatalf("waypoint %d theta = %v, want 0", i, wp.Theta)
		}
	}
}

func TestPlanGoalOutsideMapIsUnreachable(t *testing.T) {
	g := plannerGrid(t)
	p := NewPathPlanner(testConfig())

	if path := p.Plan(g, Pose{X: 0, Y: 0}, Pose{X: 500, Y: 500}); len(path) != 0 {
		t.Errorf("got %d waypoints to an off-map goal, want none", len(path))
	}
}
