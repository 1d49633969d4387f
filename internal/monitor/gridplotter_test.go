package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rtk-robotics/rover/internal/nav"
)

func testGrid(t *testing.T) *nav.Grid {
	t.Helper()
	g, err := nav.NewGrid(60, 60, 0.25)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestObservedBounds(t *testing.T) {
	g := testGrid(t)
	if _, _, _, _, ok := observedBounds(g); ok {
		t.Fatal("bounds reported on an unexplored grid")
	}

	g.MarkOccupied(10, 20)
	g.MarkFree(30, 5)
	minX, minY, maxX, maxY, ok := observedBounds(g)
	if !ok {
		t.Fatal("no bounds on a touched grid")
	}
	if minX != 10 || minY != 5 || maxX != 30 || maxY != 20 {
		t.Errorf("bounds = (%d, %d)-(%d, %d)", minX, minY, maxX, maxY)
	}
}

func TestRenderPNGWritesFile(t *testing.T) {
	g := testGrid(t)
	for ix := 20; ix < 40; ix++ {
		g.MarkOccupied(ix, 30)
		for iy := 20; iy < 30; iy++ {
			g.MarkFree(ix, iy)
		}
	}

	path := filepath.Join(t.TempDir(), "map.png")
	if err := NewGridPlotter().RenderPNG(g, path); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("rendered PNG is empty")
	}
}

func TestRenderPNGRejectsUnexploredGrid(t *testing.T) {
	g := testGrid(t)
	path := filepath.Join(t.TempDir(), "map.png")
	if err := NewGridPlotter().RenderPNG(g, path); err == nil {
		t.Fatal("RenderPNG succeeded on an unexplored grid")
	}
}
