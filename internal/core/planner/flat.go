package planner

import (
	"iter"

	"github.com/zeusync/navgraph/internal/core/pathfind"
	"github.com/zeusync/navgraph/internal/core/waypoint"
)

type ID = waypoint.ID

// Euclidean returns the straight-line heuristic over positions in store.
func Euclidean(store *waypoint.Store) pathfind.HeuristicFunc[ID] {
	return func(node, goal ID) float64 {
		a, okA := store.Position(node)
		b, okB := store.Position(goal)
		if !okA || !okB {
			return 0
		}
		return a.Distance(b)
	}
}

// Flat searches the level 0 NavMesh directly.
type Flat struct {
	store *waypoint.Store
	astar *pathfind.AStar[ID]
}

func NewFlat(store *waypoint.Store, opts ...pathfind.Option) *Flat {
	neighbors := func(id ID) iter.Seq2[ID, float64] {
		return store.NavMesh().Neighbors(id)
	}
	return &Flat{
		store: store,
		astar: pathfind.New(neighbors, Euclidean(store), opts...),
	}
}

// FindPath searches from start to goal.
func (f *Flat) FindPath(start, goal ID) (pathfind.Result, []ID) {
	return f.FindPathMulti([]ID{start}, []ID{goal})
}

// FindPathMulti searches from any of starts to any of goals. Unknown ids are
// ignored.
func (f *Flat) FindPathMulti(starts, goals []ID) (pathfind.Result, []ID) {
	starts, goals = f.known(starts), f.known(goals)
	if len(starts) == 0 || len(goals) == 0 {
		return pathfind.NoPath, nil
	}
	f.astar.Reset(starts, goals)
	res := f.astar.FindPath()
	return res, f.astar.Path()
}

// Expanded is the number of expansions of the last search.
func (f *Flat) Expanded() int { return f.astar.Expanded() }

func (f *Flat) known(ids []ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if f.store.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}
