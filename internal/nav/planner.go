package nav

import (
	"container/heap"
	"math"
)

// PathPlanner searches the occupancy grid for a waypoint sequence between
// two poses using A* over 8-connected cells with uniform edge cost.
//
// The heuristic is Manhattan distance, which is not admissible for an
// 8-connected move set with uniform cost: diagonal moves cover more ground
// per unit cost than the heuristic assumes, so returned paths may be
// suboptimal. This matches the long-standing field behaviour and is kept so
// path outputs stay stable.
type PathPlanner struct {
	safetyMargin      float64
	occupiedThreshold float64
}

// NewPathPlanner creates a planner with the configured safety margin and
// occupancy threshold.
func NewPathPlanner(cfg Config) *PathPlanner {
	return &PathPlanner{
		safetyMargin:      cfg.SafetyMarginMeters,
		occupiedThreshold: cfg.OccupiedThreshold,
	}
}

type cell struct {
	X, Y int
}

// Plan returns a waypoint path from start to goal over the given grid, or an
// empty path when the goal is unreachable. Waypoint headings are fixed at 0.
// The planner only reads the grid, so callers hand it a snapshot when
// ingestion may run concurrently.
func (p *PathPlanner) Plan(grid *Grid, start, goal Pose) []Pose {
	sx, sy := grid.WorldToGrid(start.X, start.Y)
	gx, gy := grid.WorldToGrid(goal.X, goal.Y)

	cells := p.aStar(grid, cell{sx, sy}, cell{gx, gy})
	if len(cells) == 0 {
		return nil
	}

	path := make([]Pose, 0, len(cells))
	for _, c := range cells {
		wx, wy := grid.GridToWorld(c.X, c.Y)
		path = append(path, Pose{X: wx, Y: wy, Theta: 0})
	}
	return path
}

// aStar runs the search in grid index space. Edge cost is 1 per step for
// both axis-aligned and diagonal moves.
func (p *PathPlanner) aStar(grid *Grid, start, goal cell) []cell {
	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &openItem{cell: start, fScore: manhattan(start, goal)})

	cameFrom := make(map[cell]cell)
	gScore := map[cell]int{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem).cell

		if current == goal {
			return reconstructPath(cameFrom, start, current)
		}

		for _, n := range neighbors(current) {
			if !p.validCell(grid, n) {
				continue
			}
			tentative := gScore[current] + 1
			if existing, seen := gScore[n]; !seen || tentative < existing {
				cameFrom[n] = current
				gScore[n] = tentative
				heap.Push(open, &openItem{cell: n, fScore: tentative + manhattan(n, goal)})
			}
		}
	}

	// Open set exhausted without reaching the goal.
	return nil
}

// validCell requires the cell and its full square safety neighborhood to be
// in bounds and below the occupancy threshold. A single occupied neighbor
// within the inflation radius invalidates the cell.
func (p *PathPlanner) validCell(grid *Grid, c cell) bool {
	if !grid.InBounds(c.X, c.Y) {
		return false
	}

	radius := int(math.Ceil(p.safetyMargin / grid.Resolution()))
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			nx, ny := c.X+dx, c.Y+dy
			if grid.InBounds(nx, ny) && grid.OccupancyAt(nx, ny) > p.occupiedThreshold {
				return false
			}
		}
	}
	return true
}

func neighbors(c cell) [8]cell {
	return [8]cell{
		{c.X - 1, c.Y - 1}, {c.X, c.Y - 1}, {c.X + 1, c.Y - 1},
		{c.X - 1, c.Y}, {c.X + 1, c.Y},
		{c.X - 1, c.Y + 1}, {c.X, c.Y + 1}, {c.X + 1, c.Y + 1},
	}
}

func manhattan(a, b cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func reconstructPath(cameFrom map[cell]cell, start, current cell) []cell {
	path := []cell{current}
	for current != start {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
		path = append(path, current)
	}
	// Backtracked goal-to-start; reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openItem is an entry in the A* priority queue. Stale duplicates are
// allowed; a popped item whose score was since improved simply re-expands
// to no effect.
type openItem struct {
	cell   cell
	fScore int
}

type openSet []*openItem

func (s openSet) Len() int            { return len(s) }
func (s openSet) Less(i, j int) bool  { return s[i].fScore < s[j].fScore }
func (s openSet) Swap(i, j int)       { s[i], s[j] = s[j], s[i] }
func (s *openSet) Push(x interface{}) { *s = append(*s, x.(*openItem)) }
func (s *openSet) Pop() interface{} {
	old := *s
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*s = old[:n-1]
	return item
}
