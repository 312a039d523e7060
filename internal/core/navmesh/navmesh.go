// Package navmesh stores directed, weighted edges between waypoint ids. It
// knows nothing about positions; costs are supplied by the caller.
package navmesh

import (
	"iter"
	"slices"
)

// ID identifies a waypoint. It matches waypoint.ID.
type ID = uint32

// Edge is a directed traversable connection.
type Edge struct {
	From ID
	To   ID
	Cost float64
}

type outEdge struct {
	to   ID
	cost float64
}

// NavMesh is a multimap from source id to outgoing edges, with a reverse
// index so that removing a node also finds its incoming edges.
//
// Not safe for concurrent mutation.
type NavMesh struct {
	out   map[ID][]outEdge
	in    map[ID]map[ID]struct{}
	count int
}

func New() *NavMesh {
	return &NavMesh{
		out: make(map[ID][]outEdge),
		in:  make(map[ID]map[ID]struct{}),
	}
}

func (m *NavMesh) indexOf(from, to ID) int {
	return slices.IndexFunc(m.out[from], func(e outEdge) bool { return e.to == to })
}

// AddEdge inserts from→to. Self loops are rejected. Adding an edge that
// already exists keeps the original cost and returns false.
func (m *NavMesh) AddEdge(from, to ID, cost float64) bool {
	if from == to || m.indexOf(from, to) >= 0 {
		return false
	}
	m.out[from] = append(m.out[from], outEdge{to: to, cost: cost})
	sources, ok := m.in[to]
	if !ok {
		sources = make(map[ID]struct{})
		m.in[to] = sources
	}
	sources[from] = struct{}{}
	m.count++
	return true
}

// SetCost overrides the cost of an existing edge.
func (m *NavMesh) SetCost(from, to ID, cost float64) bool {
	i := m.indexOf(from, to)
	if i < 0 {
		return false
	}
	m.out[from][i].cost = cost
	return true
}

func (m *NavMesh) RemoveEdge(from, to ID) bool {
	i := m.indexOf(from, to)
	if i < 0 {
		return false
	}
	edges := slices.Delete(m.out[from], i, i+1)
	if len(edges) == 0 {
		delete(m.out, from)
	} else {
		m.out[from] = edges
	}
	m.unindex(from, to)
	m.count--
	return true
}

func (m *NavMesh) unindex(from, to ID) {
	if sources, ok := m.in[to]; ok {
		delete(sources, from)
		if len(sources) == 0 {
			delete(m.in, to)
		}
	}
}

// RemoveAllEdgesFrom drops every outgoing edge of from and returns how many
// were removed.
func (m *NavMesh) RemoveAllEdgesFrom(from ID) int {
	edges := m.out[from]
	for _, e := range edges {
		m.unindex(from, e.to)
	}
	delete(m.out, from)
	m.count -= len(edges)
	return len(edges)
}

// RemoveAllEdgesTo drops every incoming edge of to.
func (m *NavMesh) RemoveAllEdgesTo(to ID) int {
	sources := m.in[to]
	removed := 0
	for _, from := range slices.Sorted(mapKeys(sources)) {
		if m.RemoveEdge(from, to) {
			removed++
		}
	}
	return removed
}

// RemoveNode drops every edge touching id in either direction.
func (m *NavMesh) RemoveNode(id ID) int {
	return m.RemoveAllEdgesFrom(id) + m.RemoveAllEdgesTo(id)
}

func (m *NavMesh) ContainsEdge(from, to ID) bool {
	return m.indexOf(from, to) >= 0
}

// Cost returns the cost of from→to.
func (m *NavMesh) Cost(from, to ID) (float64, bool) {
	i := m.indexOf(from, to)
	if i < 0 {
		return 0, false
	}
	return m.out[from][i].cost, true
}

// Neighbors enumerates the targets and costs of from's outgoing edges in
// insertion order. Each range over the result starts a fresh enumeration.
func (m *NavMesh) Neighbors(from ID) iter.Seq2[ID, float64] {
	return func(yield func(ID, float64) bool) {
		for _, e := range m.out[from] {
			if !yield(e.to, e.cost) {
				return
			}
		}
	}
}

// Degree is the number of outgoing edges of from.
func (m *NavMesh) Degree(from ID) int { return len(m.out[from]) }

// HasIncoming reports whether any edge ends at to.
func (m *NavMesh) HasIncoming(to ID) bool { return len(m.in[to]) > 0 }

// Edges enumerates every edge, ordered by source id and then insertion order.
func (m *NavMesh) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, from := range slices.Sorted(mapKeys(m.out)) {
			for _, e := range m.out[from] {
				if !yield(Edge{From: from, To: e.to, Cost: e.cost}) {
					return
				}
			}
		}
	}
}

// Len is the total number of edges.
func (m *NavMesh) Len() int { return m.count }

func (m *NavMesh) Clear() {
	clear(m.out)
	clear(m.in)
	m.count = 0
}

func mapKeys[V any](m map[ID]V) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for k := range m {
			if !yield(k) {
				return
			}
		}
	}
}
