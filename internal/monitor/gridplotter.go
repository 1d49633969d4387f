// Package monitor renders the occupancy map for humans: PNG heatmaps for
// post-run analysis and a live HTML chart served from the rover's web
// server.
package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rtk-robotics/rover/internal/nav"
)

// occupancyXYZ adapts a grid region to the heatmap's data interface. Cell
// centers are reported in world coordinates so the axes read in meters.
type occupancyXYZ struct {
	grid          *nav.Grid
	minX, minY    int
	width, height int
}

func (o occupancyXYZ) Dims() (c, r int) { return o.width, o.height }

func (o occupancyXYZ) Z(c, r int) float64 {
	return o.grid.OccupancyAt(o.minX+c, o.minY+r)
}

func (o occupancyXYZ) X(c int) float64 {
	x, _ := o.grid.GridToWorld(o.minX+c, 0)
	return x
}

func (o occupancyXYZ) Y(r int) float64 {
	_, y := o.grid.GridToWorld(0, o.minY+r)
	return y
}

// GridPlotter renders occupancy grids to PNG heatmaps.
type GridPlotter struct {
	// Padding in cells added around the observed region when cropping.
	CropPadding int
}

// NewGridPlotter returns a plotter with default crop padding.
func NewGridPlotter() *GridPlotter {
	return &GridPlotter{CropPadding: 10}
}

// observedBounds finds the bounding box of cells that differ from unknown.
// The second result is false when the whole grid is unexplored.
func observedBounds(g *nav.Grid) (minX, minY, maxX, maxY int, ok bool) {
	minX, minY = g.Width(), g.Height()
	maxX, maxY = -1, -1
	for iy := 0; iy < g.Height(); iy++ {
		for ix := 0; ix < g.Width(); ix++ {
			if g.OccupancyAt(ix, iy) == nav.OccupancyUnknown {
				continue
			}
			if ix < minX {
				minX = ix
			}
			if iy < minY {
				minY = iy
			}
			if ix > maxX {
				maxX = ix
			}
			if iy > maxY {
				maxY = iy
			}
		}
	}
	return minX, minY, maxX, maxY, maxX >= 0
}

// RenderPNG writes a heatmap of the grid's observed region to path. The
// full map is mostly unexplored, so the render crops to the cells touched by
// scans plus padding; an entirely unexplored grid is an error.
func (gp *GridPlotter) RenderPNG(g *nav.Grid, path string) error {
	minX, minY, maxX, maxY, ok := observedBounds(g)
	if !ok {
		return fmt.Errorf("grid has no observed cells to render")
	}

	minX = max(0, minX-gp.CropPadding)
	minY = max(0, minY-gp.CropPadding)
	maxX = min(g.Width()-1, maxX+gp.CropPadding)
	maxY = min(g.Height()-1, maxY+gp.CropPadding)

	data := occupancyXYZ{
		grid:   g,
		minX:   minX,
		minY:   minY,
		width:  maxX - minX + 1,
		height: maxY - minY + 1,
	}

	p := plot.New()
	p.Title.Text = "Occupancy map"
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	heatmap := plotter.NewHeatMap(data, palette.Heat(16, 1))
	heatmap.Min = nav.OccupancyFree
	heatmap.Max = nav.OccupancyOccupied
	p.Add(heatmap)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
