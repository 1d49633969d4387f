package lidar

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Status summarises scanner health for the HTTP API and logs.
type Status struct {
	ScanPoints  int       `json:"scan_points"`
	Samples     int64     `json:"samples"`
	Revolutions int64     `json:"revolutions"`
	ParseErrors int64     `json:"parse_errors"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Distance statistics over the last complete revolution, meters.
	// Zero-valued when no revolution has completed.
	MinDistance    float64 `json:"min_distance"`
	MaxDistance    float64 `json:"max_distance"`
	MeanDistance   float64 `json:"mean_distance"`
	StdDevDistance float64 `json:"stddev_distance"`
}

// Status returns counters and distance statistics for the last revolution.
func (w *Worker) Status() Status {
	w.mu.Lock()
	st := Status{
		ScanPoints:  len(w.latest),
		Samples:     w.samples,
		Revolutions: w.revolutions,
		ParseErrors: w.parseErrors,
		UpdatedAt:   w.updatedAt,
	}
	distances := make([]float64, 0, len(w.latest))
	for _, s := range w.latest {
		distances = append(distances, s.Distance)
	}
	w.mu.Unlock()

	if len(distances) == 0 {
		return st
	}

	st.MinDistance = distances[0]
	st.MaxDistance = distances[0]
	for _, d := range distances[1:] {
		if d < st.MinDistance {
			st.MinDistance = d
		}
		if d > st.MaxDistance {
			st.MaxDistance = d
		}
	}
	st.MeanDistance = stat.Mean(distances, nil)
	if len(distances) > 1 {
		st.StdDevDistance = stat.StdDev(distances, nil)
	}
	return st
}
