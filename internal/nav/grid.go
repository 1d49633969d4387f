package nav

import (
	"fmt"
	"math"
)

// Cell occupancy values. Cells start Unknown and are overwritten directly by
// scan ingestion; there is no probability blending.
const (
	OccupancyFree     = 0.0
	OccupancyUnknown  = 0.5
	OccupancyOccupied = 1.0
)

// Grid is a fixed-size 2D occupancy map. Cells hold values in [0, 1] and are
// stored in a single flat slice indexed by (ix, iy). Dimensions and
// resolution are immutable after construction; the origin is fixed so that
// grid index (0, 0) maps to -(size*resolution)/2 per axis, centering the
// robot's start pose at the middle of the map.
type Grid struct {
	width      int
	height     int
	resolution float64 // meters per cell
	originX    float64 // world coordinate of grid index (0, 0)
	originY    float64
	cells      []float64
}

// NewGrid creates a grid of width x height cells at the given resolution,
// with every cell initialised to Unknown.
func NewGrid(width, height int, resolution float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("grid resolution must be positive, got %v", resolution)
	}

	g := &Grid{
		width:      width,
		height:     height,
		resolution: resolution,
		originX:    -float64(width) * resolution / 2,
		originY:    -float64(height) * resolution / 2,
		cells:      make([]float64, width*height),
	}
	for i := range g.cells {
		g.cells[i] = OccupancyUnknown
	}
	return g, nil
}

func (g *Grid) idx(ix, iy int) int { return iy*g.width + ix }

// Width returns the number of cells along x.
func (g *Grid) Width() int { return g.width }

// Height returns the number of cells along y.
func (g *Grid) Height() int { return g.height }

// Resolution returns the cell size in meters.
func (g *Grid) Resolution() float64 { return g.resolution }

// Origin returns the world coordinate of grid index (0, 0).
func (g *Grid) Origin() (x, y float64) { return g.originX, g.originY }

// InBounds reports whether (ix, iy) addresses a cell inside the grid.
func (g *Grid) InBounds(ix, iy int) bool {
	return ix >= 0 && ix < g.width && iy >= 0 && iy < g.height
}

// WorldToGrid converts a world coordinate to a grid index by integer-floor
// division after subtracting the origin. The result may be out of bounds;
// callers check with InBounds.
func (g *Grid) WorldToGrid(x, y float64) (ix, iy int) {
	ix = int(math.Floor((x - g.originX) / g.resolution))
	iy = int(math.Floor((y - g.originY) / g.resolution))
	return ix, iy
}

// GridToWorld converts a grid index back to the world coordinate of the
// cell's low corner. Round-trip accuracy through WorldToGrid is bounded by
// half a cell per axis.
func (g *Grid) GridToWorld(ix, iy int) (x, y float64) {
	x = float64(ix)*g.resolution + g.originX
	y = float64(iy)*g.resolution + g.originY
	return x, y
}

// OccupancyAt returns the occupancy value of the cell, or Unknown when the
// index is out of bounds.
func (g *Grid) OccupancyAt(ix, iy int) float64 {
	if !g.InBounds(ix, iy) {
		return OccupancyUnknown
	}
	return g.cells[g.idx(ix, iy)]
}

// MarkOccupied overwrites the cell with full occupancy. Out-of-bounds
// indices are ignored.
func (g *Grid) MarkOccupied(ix, iy int) {
	if !g.InBounds(ix, iy) {
		return
	}
	g.cells[g.idx(ix, iy)] = OccupancyOccupied
}

// MarkFree overwrites the cell as free space. Out-of-bounds indices are
// ignored.
func (g *Grid) MarkFree(ix, iy int) {
	if !g.InBounds(ix, iy) {
		return
	}
	g.cells[g.idx(ix, iy)] = OccupancyFree
}

// Snapshot returns a deep copy of the grid. The copy shares no storage with
// the original, so it is safe to read while the original keeps mutating.
func (g *Grid) Snapshot() *Grid {
	cp := &Grid{
		width:      g.width,
		height:     g.height,
		resolution: g.resolution,
		originX:    g.originX,
		originY:    g.originY,
		cells:      make([]float64, len(g.cells)),
	}
	copy(cp.cells, g.cells)
	return cp
}

// Cells exposes the raw cell slice in row-major (iy, ix) order. Intended for
// renderers and exporters reading a Snapshot, not for mutation.
func (g *Grid) Cells() []float64 { return g.cells }
