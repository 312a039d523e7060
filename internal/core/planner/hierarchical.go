package planner

import (
	"iter"

	"github.com/zeusync/navgraph/internal/core/hierarchy"
	"github.com/zeusync/navgraph/internal/core/observability/log"
	"github.com/zeusync/navgraph/internal/core/pathfind"
)

type Option func(*Hierarchical)

func WithLogger(l log.Log) Option {
	return func(h *Hierarchical) { h.logger = l }
}

// WithSearchOptions configures every sub-search.
func WithSearchOptions(opts ...pathfind.Option) Option {
	return func(h *Hierarchical) { h.searchOpts = append(h.searchOpts, opts...) }
}

// Hierarchical plans on the coarsest level the two endpoints have in common
// and then refines the route level by level down to the endpoints' level.
// Each refinement step only searches inside the collections of the coarse
// route, so the result is not necessarily the shortest path.
type Hierarchical struct {
	graph      *hierarchy.Graph
	astar      *pathfind.AStar[ID]
	allowed    map[ID]struct{}
	expanded   int
	searchOpts []pathfind.Option
	logger     log.Log
}

func NewHierarchical(graph *hierarchy.Graph, opts ...Option) *Hierarchical {
	h := &Hierarchical{
		graph:   graph,
		allowed: make(map[ID]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = log.OrNop(h.logger).With(log.String("component", "planner.hierarchical"))
	h.astar = pathfind.New(h.neighbors, Euclidean(graph.Store()), h.searchOpts...)
	return h
}

// neighbors restricts the hierarchy graph to the allowed node set.
func (h *Hierarchical) neighbors(id ID) iter.Seq2[ID, float64] {
	return func(yield func(ID, float64) bool) {
		for next, cost := range h.graph.Neighbors(id) {
			if _, ok := h.allowed[next]; !ok {
				continue
			}
			if !yield(next, cost) {
				return
			}
		}
	}
}

// Expanded is the total number of expansions of the last FindPath over all
// sub-searches.
func (h *Hierarchical) Expanded() int { return h.expanded }

// FindPath returns a route between two nodes of the same level. Endpoints on
// different levels, unknown endpoints and endpoints without a common
// collection give NoPath, as does any failed sub-search.
func (h *Hierarchical) FindPath(start, goal ID) (pathfind.Result, []ID) {
	h.expanded = 0
	startLevel, okS := h.graph.Level(start)
	goalLevel, okG := h.graph.Level(goal)
	if !okS || !okG || startLevel != goalLevel {
		return pathfind.NoPath, nil
	}
	if start == goal {
		return pathfind.PathFound, []ID{start}
	}

	// chains[i] is the ancestor i levels above the endpoint
	from := append([]ID{start}, h.graph.Ancestors(start)...)
	to := append([]ID{goal}, h.graph.Ancestors(goal)...)
	common := -1
	for i := 1; i < min(len(from), len(to)); i++ {
		if from[i] == to[i] {
			common = i
			break
		}
	}
	if common < 0 {
		h.logger.Debug("no common collection",
			log.Uint32("start", start),
			log.Uint32("goal", goal))
		return pathfind.NoPath, nil
	}

	route, ok := h.search(from[common-1], []ID{to[common-1]}, from[common])
	if !ok {
		return pathfind.NoPath, nil
	}
	for level := common - 1; level > 0; level-- {
		route, ok = h.refine(route, from[level-1], to[level-1])
		if !ok {
			h.logger.Debug("refinement failed",
				log.Uint32("start", start),
				log.Uint32("goal", goal),
				log.Int("level", startLevel+level-1))
			return pathfind.NoPath, nil
		}
	}
	return pathfind.PathFound, route
}

// refine turns a route of collections into a route through their children,
// starting at first and ending at last.
func (h *Hierarchical) refine(coarse []ID, first, last ID) ([]ID, bool) {
	fine := []ID{first}
	cur := first
	for i, col := range coarse {
		var (
			goals []ID
			area  = []ID{col}
		)
		if i == len(coarse)-1 {
			goals = []ID{last}
		} else {
			goals = h.graph.Children(coarse[i+1])
			area = append(area, coarse[i+1])
		}
		step, ok := h.search(cur, goals, area...)
		if !ok {
			return nil, false
		}
		fine = append(fine, step[1:]...)
		cur = step[len(step)-1]
	}
	return fine, true
}

// search runs A* from start to any goal through the children of area.
func (h *Hierarchical) search(start ID, goals []ID, area ...ID) ([]ID, bool) {
	clear(h.allowed)
	for _, col := range area {
		for _, ch := range h.graph.Children(col) {
			h.allowed[ch] = struct{}{}
		}
	}
	h.astar.Reset([]ID{start}, goals)
	res := h.astar.FindPath()
	h.expanded += h.astar.Expanded()
	if res != pathfind.PathFound {
		return nil, false
	}
	return h.astar.Path(), true
}
