package nav

import (
	"math"

	"github.com/rtk-robotics/rover/internal/units"
)

// ScanIngestor folds filtered range samples into the occupancy grid. Each
// sample endpoint is marked occupied and the cells along the ray from the
// grid's local origin to the endpoint are marked free. Updates overwrite
// cell values directly.
//
// The ingestor deliberately keeps the robot at the grid's local ray-casting
// origin instead of its tracked pose, so the map is only locally consistent
// and does not compose across robot displacement.
type ScanIngestor struct {
	grid        *Grid
	minQuality  float64
	minDistance float64
	maxDistance float64
}

// NewScanIngestor creates an ingestor writing into grid with the configured
// sample filter.
func NewScanIngestor(grid *Grid, cfg Config) *ScanIngestor {
	return &ScanIngestor{
		grid:        grid,
		minQuality:  cfg.MinSampleQuality,
		minDistance: cfg.MinScanRangeMeters,
		maxDistance: cfg.MaxScanRangeMeters,
	}
}

// accept applies the ingestion filter: malformed or out-of-range samples are
// dropped here rather than faulting downstream.
func (si *ScanIngestor) accept(s RangeSample) bool {
	return s.Quality > si.minQuality &&
		s.Distance > si.minDistance &&
		s.Distance < si.maxDistance
}

// Ingest updates the grid from one scan snapshot and returns the number of
// samples applied. An empty scan is a no-op, not an error.
func (si *ScanIngestor) Ingest(samples []RangeSample) int {
	applied := 0
	for _, s := range samples {
		if !si.accept(s) {
			continue
		}

		angleRad := units.DegToRad(s.AngleDeg)
		x := s.Distance * math.Cos(angleRad)
		y := s.Distance * math.Sin(angleRad)

		ix, iy := si.grid.WorldToGrid(x, y)
		if !si.grid.InBounds(ix, iy) {
			// Endpoint outside the map: skip the sample rather than
			// extrapolate a clipped ray.
			continue
		}

		si.grid.MarkOccupied(ix, iy)
		si.castRay(0, 0, ix, iy)
		applied++
	}
	return applied
}

// castRay marks every cell strictly between (x0, y0) and (x1, y1) as free.
// The endpoint is excluded (it holds the obstacle); cells falling outside
// the grid are skipped.
func (si *ScanIngestor) castRay(x0, y0, x1, y1 int) {
	points := bresenhamLine(x0, y0, x1, y1)
	for _, p := range points[:len(points)-1] {
		if si.grid.InBounds(p[0], p[1]) {
			si.grid.MarkFree(p[0], p[1])
		}
	}
}

// bresenhamLine rasterises the integer line from (x0, y0) to (x1, y1)
// inclusive of both endpoints.
func bresenhamLine(x0, y0, x1, y1 int) [][2]int {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx - dy

	points := make([][2]int, 0, dx+dy+1)
	x, y := x0, y0
	for {
		points = append(points, [2]int{x, y})
		if x == x1 && y == y1 {
			return points
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
