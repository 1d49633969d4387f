package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rtk-robotics/rover/internal/nav"
)

// MapSource supplies the data the live map view renders.
type MapSource interface {
	Map() *nav.Grid
	State() nav.State
}

// MapChartHandler renders a live HTML scatter of the occupancy map using
// go-echarts. This is a debugging-only endpoint to visually inspect the map
// and current path without a frontend build. Query params:
//   - max_points (optional; default 8000) to reduce payload size
func MapChartHandler(source MapSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid := source.Map()
		state := source.State()

		maxPoints := 8000
		if mp := r.URL.Query().Get("max_points"); mp != "" {
			if v, err := strconv.Atoi(mp); err == nil && v > 100 && v <= 50000 {
				maxPoints = v
			}
		}

		occupied := make([]opts.ScatterData, 0, 1024)
		free := make([]opts.ScatterData, 0, 1024)
		maxAbs := 1.0
		for iy := 0; iy < grid.Height(); iy++ {
			for ix := 0; ix < grid.Width(); ix++ {
				occ := grid.OccupancyAt(ix, iy)
				if occ == nav.OccupancyUnknown {
					continue
				}
				x, y := grid.GridToWorld(ix, iy)
				if abs := math.Max(math.Abs(x), math.Abs(y)); abs > maxAbs {
					maxAbs = abs
				}
				point := opts.ScatterData{Value: []interface{}{x, y}}
				if occ >= nav.OccupancyOccupied {
					occupied = append(occupied, point)
				} else if occ == nav.OccupancyFree {
					free = append(free, point)
				}
			}
		}

		// Downsample by stride to stay within maxPoints; free cells dominate
		// so they bear the reduction.
		if len(free) > maxPoints {
			stride := (len(free) + maxPoints - 1) / maxPoints
			kept := free[:0]
			for i := 0; i < len(free); i += stride {
				kept = append(kept, free[i])
			}
			free = kept
		}

		path := make([]opts.ScatterData, 0, len(state.Path))
		for _, wp := range state.Path {
			path = append(path, opts.ScatterData{Value: []interface{}{wp.X, wp.Y}})
		}

		pad := maxAbs * 1.05

		// Force a square plot by using equal width/height and symmetric axis ranges
		scatter := charts.NewScatter()
		scatter.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Rover Occupancy Map", Theme: "dark", Width: "900px", Height: "900px"}),
			charts.WithTitleOpts(opts.Title{
				Title:    "Rover Occupancy Map",
				Subtitle: fmt.Sprintf("occupied=%d free=%d waypoints=%d", len(occupied), len(free), len(path)),
			}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		)

		scatter.AddSeries("free", free, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 2}))
		scatter.AddSeries("occupied", occupied, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
		if len(path) > 0 {
			scatter.AddSeries("path", path, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		}

		var buf bytes.Buffer
		if err := scatter.Render(&buf); err != nil {
			http.Error(w, fmt.Sprintf("failed to render chart: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}
