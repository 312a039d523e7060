package pathfind

import (
	"iter"
	"math"
	"slices"

	"github.com/zeusync/navgraph/pkg/sequence"
)

// NeighborFunc yields the successors of a node together with the edge cost.
// Costs must be non-negative; negative or NaN costs are ignored.
type NeighborFunc[N comparable] func(node N) iter.Seq2[N, float64]

// HeuristicFunc estimates the cost from node to goal. It must never
// overestimate for the result to be optimal.
type HeuristicFunc[N comparable] func(node, goal N) float64

// Zero is the heuristic that turns A* into Dijkstra's algorithm.
func Zero[N comparable](N, N) float64 { return 0 }

type Option func(*config)

type config struct {
	maxExpansions int
}

// WithMaxExpansions stops the search after n expansions with PartialPath.
// n <= 0 means no limit.
func WithMaxExpansions(n int) Option {
	return func(c *config) { c.maxExpansions = n }
}

type record[N comparable] struct {
	node   N
	parent *record[N]
	g, h   float64
	seq    uint64
	item   *sequence.Item[*record[N]]
}

func (r *record[N]) f() float64 { return r.g + r.h }

// AStar is a reusable A* search over any graph given as a NeighborFunc.
// Open nodes are ordered by f = g + h; among equal f the node pushed first
// is expanded first. A node that is reached again with a lower cost is
// updated in place, or reopened if it was already expanded.
//
// An AStar is not safe for concurrent use. Reset it before every search.
type AStar[N comparable] struct {
	neighbors NeighborFunc[N]
	heuristic HeuristicFunc[N]
	cfg       config

	starts  []N
	goals   map[N]struct{}
	goalSeq []N

	nodes    map[N]*record[N]
	open     *sequence.Heap[*record[N]]
	seq      uint64
	expanded int
	best     *record[N]

	result Result
	path   []N
}

func New[N comparable](neighbors NeighborFunc[N], heuristic HeuristicFunc[N], opts ...Option) *AStar[N] {
	if heuristic == nil {
		heuristic = Zero[N]
	}
	a := &AStar[N]{
		neighbors: neighbors,
		heuristic: heuristic,
		goals:     make(map[N]struct{}),
		nodes:     make(map[N]*record[N]),
	}
	for _, opt := range opts {
		opt(&a.cfg)
	}
	a.open = sequence.NewHeap(func(x, y *record[N]) bool {
		fx, fy := x.f(), y.f()
		if fx != fy {
			return fx < fy
		}
		return x.seq < y.seq
	})
	return a
}

// MaxExpansions returns the expansion budget, 0 when unlimited.
func (a *AStar[N]) MaxExpansions() int { return a.cfg.maxExpansions }

// Reset prepares a search from any of starts to any of goals, discarding the
// state and result of the previous search.
func (a *AStar[N]) Reset(starts, goals []N) {
	a.open.Clear()
	clear(a.nodes)
	clear(a.goals)
	a.seq = 0
	a.expanded = 0
	a.best = nil
	a.result = NoPath
	a.path = a.path[:0]

	a.goalSeq = a.goalSeq[:0]
	for _, g := range goals {
		if _, dup := a.goals[g]; !dup {
			a.goals[g] = struct{}{}
			a.goalSeq = append(a.goalSeq, g)
		}
	}
	a.starts = a.starts[:0]
	for _, s := range starts {
		if _, dup := a.nodes[s]; dup {
			continue
		}
		a.starts = append(a.starts, s)
		a.push(&record[N]{node: s, h: a.estimate(s)})
	}
}

// ResetSingle is Reset with one start and one goal.
func (a *AStar[N]) ResetSingle(start, goal N) {
	a.Reset([]N{start}, []N{goal})
}

func (a *AStar[N]) estimate(n N) float64 {
	h := math.Inf(1)
	for _, g := range a.goalSeq {
		h = min(h, a.heuristic(n, g))
	}
	if math.IsInf(h, 1) {
		return 0
	}
	return h
}

func (a *AStar[N]) push(r *record[N]) {
	a.seq++
	r.seq = a.seq
	a.nodes[r.node] = r
	r.item = a.open.Push(r)
}

// FindPath runs the search prepared by Reset.
func (a *AStar[N]) FindPath() Result {
	a.path = a.path[:0]
	if len(a.goals) == 0 {
		a.result = NoPath
		return a.result
	}

	for {
		cur, ok := a.open.Pop()
		if !ok {
			a.result = NoPath
			return a.result
		}
		if _, isGoal := a.goals[cur.node]; isGoal {
			a.trace(cur)
			a.result = PathFound
			return a.result
		}
		if a.cfg.maxExpansions > 0 && a.expanded >= a.cfg.maxExpansions {
			a.trace(a.best)
			a.result = PartialPath
			return a.result
		}
		a.expand(cur)
	}
}

func (a *AStar[N]) expand(cur *record[N]) {
	a.expanded++
	if a.best == nil || cur.h < a.best.h || (cur.h == a.best.h && cur.g < a.best.g) {
		a.best = cur
	}

	for next, cost := range a.neighbors(cur.node) {
		if cost < 0 || math.IsNaN(cost) {
			continue
		}
		g := cur.g + cost
		rec, seen := a.nodes[next]
		if !seen {
			a.push(&record[N]{node: next, parent: cur, g: g, h: a.estimate(next)})
			continue
		}
		if g >= rec.g {
			continue
		}
		rec.g = g
		rec.parent = cur
		if rec.item.InHeap() {
			a.seq++
			rec.seq = a.seq
			a.open.Fix(rec.item)
			continue
		}
		a.push(rec)
	}
}

func (a *AStar[N]) trace(r *record[N]) {
	for ; r != nil; r = r.parent {
		a.path = append(a.path, r.node)
	}
	slices.Reverse(a.path)
}

// Result returns the outcome of the last FindPath.
func (a *AStar[N]) Result() Result { return a.result }

// Path returns the nodes of the last result from start to end. It is empty
// before FindPath and after NoPath.
func (a *AStar[N]) Path() []N {
	if len(a.path) == 0 {
		return nil
	}
	return slices.Clone(a.path)
}

// Cost returns the cost of the last path, or +Inf when there is none.
func (a *AStar[N]) Cost() float64 {
	if len(a.path) == 0 {
		return math.Inf(1)
	}
	return a.nodes[a.path[len(a.path)-1]].g
}

// Expanded is the number of node expansions of the last search.
func (a *AStar[N]) Expanded() int { return a.expanded }
