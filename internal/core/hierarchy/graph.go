package hierarchy

import (
	"iter"
	"maps"
	"slices"

	"github.com/zeusync/navgraph/internal/core/events/bus"
	"github.com/zeusync/navgraph/internal/core/geom"
	"github.com/zeusync/navgraph/internal/core/observability/log"
	"github.com/zeusync/navgraph/internal/core/waypoint"
	"github.com/zeusync/navgraph/pkg/sequence"
)

type ID = waypoint.ID

// Node is a snapshot of one hierarchy member.
type Node struct {
	ID       ID
	Kind     waypoint.Kind
	Level    int
	Parent   ID
	Children []ID
}

type collection struct {
	level    int
	children []ID
}

// Graph layers waypoint collections over a store. Every plain waypoint is a
// level 0 node. A collection at level L groups nodes of level L-1, and each
// node has at most one parent. A collection is positioned at the centroid of
// its children and is destroyed when its last child leaves.
//
// Graph follows store removals and moves through the store's event bus. Like
// the store it does no locking.
type Graph struct {
	store       *waypoint.Store
	collections map[ID]*collection
	parents     map[ID]ID
	levels      map[int]int

	subs   []bus.Subscription
	logger log.Log
}

type Option func(*Graph)

func WithLogger(l log.Log) Option {
	return func(g *Graph) { g.logger = l }
}

// New creates an empty hierarchy over store. When b is nil the store's own bus
// is used; without any bus, waypoints removed or moved directly through the
// store are not reflected.
func New(store *waypoint.Store, b bus.EventBus, opts ...Option) *Graph {
	g := &Graph{
		store:       store,
		collections: make(map[ID]*collection),
		parents:     make(map[ID]ID),
		levels:      make(map[int]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = log.OrNop(g.logger).With(log.String("component", "hierarchy"))

	if b == nil {
		b = store.Bus()
	}
	if b == nil {
		g.logger.Warn("no event bus, store changes will not be tracked")
		return g
	}
	g.subscribe(b, waypoint.EventRemoved, g.onRemoved)
	g.subscribe(b, waypoint.EventMoved, g.onMoved)
	g.subscribe(b, waypoint.EventCleared, func(waypoint.Event) { g.reset() })
	return g
}

func (g *Graph) subscribe(b bus.EventBus, eventType string, fn func(waypoint.Event)) {
	sub, err := b.Subscribe(eventType, func(ev bus.Event) error {
		if data, ok := ev.Data().(waypoint.Event); ok {
			fn(data)
		}
		return nil
	})
	if err != nil {
		g.logger.Error("subscribe failed", log.String("event", eventType), log.Error(err))
		return
	}
	g.subs = append(g.subs, sub)
}

// Close stops following store events.
func (g *Graph) Close() {
	for _, sub := range g.subs {
		_ = sub.Cancel()
	}
	g.subs = nil
}

// Store returns the waypoint store the hierarchy is built on.
func (g *Graph) Store() *waypoint.Store { return g.store }

// level returns the level of a hierarchy member.
func (g *Graph) level(id ID) (int, bool) {
	if c, ok := g.collections[id]; ok {
		return c.level, true
	}
	wp, ok := g.store.Get(id)
	if !ok || wp.Kind != waypoint.KindWaypoint {
		return 0, false
	}
	return 0, true
}

func (g *Graph) hasLevel(level int) bool {
	if level == 0 {
		return sequence.FromSeq(g.store.All()).Any(func(wp waypoint.Waypoint) bool {
			return wp.Kind == waypoint.KindWaypoint
		})
	}
	return g.levels[level] > 0
}

// canAdopt reports whether every child can be placed under a new collection
// at level.
func (g *Graph) canAdopt(level int, children []ID) bool {
	if level < 1 || !g.hasLevel(level-1) {
		return false
	}
	seen := make(map[ID]struct{}, len(children))
	for _, ch := range children {
		if _, dup := seen[ch]; dup {
			return false
		}
		seen[ch] = struct{}{}
		lvl, ok := g.level(ch)
		if !ok || lvl != level-1 {
			return false
		}
		if _, has := g.parents[ch]; has {
			return false
		}
	}
	return true
}

// InsertCollection registers an existing KindCollection waypoint as a
// collection at level with the given children.
func (g *Graph) InsertCollection(id ID, level int, children ...ID) bool {
	wp, ok := g.store.Get(id)
	if !ok || wp.Kind != waypoint.KindCollection {
		return false
	}
	if _, dup := g.collections[id]; dup {
		return false
	}
	if !g.canAdopt(level, children) {
		return false
	}

	g.collections[id] = &collection{level: level, children: slices.Clone(children)}
	g.levels[level]++
	for _, ch := range children {
		g.parents[ch] = id
	}
	if len(children) > 0 {
		g.recenter(id)
	}
	return true
}

// CreateCollection inserts a collection waypoint at the centroid of children
// and registers it.
func (g *Graph) CreateCollection(level int, name string, children ...ID) (ID, bool) {
	if !g.canAdopt(level, children) {
		return waypoint.InvalidID, false
	}
	id := g.store.InsertKind(g.centroid(children), waypoint.KindCollection, name)
	if !g.InsertCollection(id, level, children...) {
		g.store.Remove(id)
		return waypoint.InvalidID, false
	}
	return id, true
}

// Assign makes parent the collection of child. It fails when child already
// has a parent; Unassign it first.
func (g *Graph) Assign(child, parent ID) bool {
	c, ok := g.collections[parent]
	if !ok || child == parent {
		return false
	}
	lvl, ok := g.level(child)
	if !ok || lvl != c.level-1 {
		return false
	}
	if _, has := g.parents[child]; has {
		return false
	}
	c.children = append(c.children, child)
	g.parents[child] = parent
	g.recenter(parent)
	return true
}

// Unassign detaches child from its collection.
func (g *Graph) Unassign(child ID) bool {
	parent, ok := g.parents[child]
	if !ok {
		return false
	}
	g.detach(child, parent)
	return true
}

// RemoveCollection unregisters id, leaving its children without a parent,
// and removes its waypoint from the store.
func (g *Graph) RemoveCollection(id ID) bool {
	if _, ok := g.collections[id]; !ok {
		return false
	}
	g.destroy(id)
	return true
}

func (g *Graph) detach(child, parent ID) {
	delete(g.parents, child)
	c := g.collections[parent]
	if i := slices.Index(c.children, child); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
	if len(c.children) == 0 {
		g.logger.Debug("collection emptied, destroying", log.Uint32("id", parent))
		g.destroy(parent)
		return
	}
	g.recenter(parent)
}

func (g *Graph) destroy(id ID) {
	g.forget(id)
	g.store.Remove(id)
}

// forget drops every hierarchy record of id.
func (g *Graph) forget(id ID) {
	if c, ok := g.collections[id]; ok {
		for _, ch := range c.children {
			delete(g.parents, ch)
		}
		delete(g.collections, id)
		g.levels[c.level]--
		if g.levels[c.level] == 0 {
			delete(g.levels, c.level)
		}
	}
	if parent, ok := g.parents[id]; ok {
		g.detach(id, parent)
	}
}

func (g *Graph) centroid(ids []ID) geom.Vec3 {
	points := make([]geom.Vec3, 0, len(ids))
	for _, id := range ids {
		if p, ok := g.store.Position(id); ok {
			points = append(points, p)
		}
	}
	return geom.Centroid(points...)
}

// recenter moves id and every ancestor to the centroid of its children.
func (g *Graph) recenter(id ID) {
	for id != waypoint.InvalidID {
		c, ok := g.collections[id]
		if !ok || len(c.children) == 0 {
			return
		}
		g.store.Move(id, g.centroid(c.children))
		id = g.parents[id]
	}
}

func (g *Graph) onRemoved(ev waypoint.Event) {
	g.forget(ev.Waypoint.ID)
}

// onMoved reacts to plain waypoints only; collections are moved by recenter,
// which already walks up the ancestors.
func (g *Graph) onMoved(ev waypoint.Event) {
	if ev.Waypoint.Kind != waypoint.KindWaypoint {
		return
	}
	if parent, ok := g.parents[ev.Waypoint.ID]; ok {
		g.recenter(parent)
	}
}

func (g *Graph) reset() {
	clear(g.collections)
	clear(g.parents)
	clear(g.levels)
}

// Node returns a snapshot of a plain waypoint or registered collection.
func (g *Graph) Node(id ID) (Node, bool) {
	lvl, ok := g.level(id)
	if !ok {
		return Node{}, false
	}
	n := Node{ID: id, Kind: waypoint.KindWaypoint, Level: lvl, Parent: g.parents[id]}
	if c, isCol := g.collections[id]; isCol {
		n.Kind = waypoint.KindCollection
		n.Children = slices.Clone(c.children)
	}
	return n, true
}

// Graph returns the collection that contains id.
func (g *Graph) Graph(id ID) (Node, bool) {
	parent, ok := g.parents[id]
	if !ok {
		return Node{}, false
	}
	return g.Node(parent)
}

// Parent returns the collection id of id, or InvalidID.
func (g *Graph) Parent(id ID) ID { return g.parents[id] }

// Level returns the hierarchy level of id.
func (g *Graph) Level(id ID) (int, bool) { return g.level(id) }

// Children returns the members of collection id in assignment order.
func (g *Graph) Children(id ID) []ID {
	if c, ok := g.collections[id]; ok {
		return slices.Clone(c.children)
	}
	return nil
}

// Ancestors returns the collections above id, nearest first.
func (g *Graph) Ancestors(id ID) []ID {
	var out []ID
	for p, ok := g.parents[id]; ok; p, ok = g.parents[p] {
		out = append(out, p)
	}
	return out
}

// IsCollection reports whether id is a registered collection.
func (g *Graph) IsCollection(id ID) bool {
	_, ok := g.collections[id]
	return ok
}

// MaxLevel is the highest level with at least one collection, 0 when there
// are none.
func (g *Graph) MaxLevel() int {
	top := 0
	for lvl := range g.levels {
		top = max(top, lvl)
	}
	return top
}

// Collections returns the registered collections of level in ascending id
// order.
func (g *Graph) Collections(level int) []ID {
	return sequence.Keys(maps.All(g.collections)).
		Filter(func(id ID) bool { return g.collections[id].level == level }).
		Sort(func(a, b ID) bool { return a < b }).
		Collect()
}

// Walk visits the hierarchy depth first: roots in ascending id order, each
// node's children in assignment order before its next sibling. It stops when
// fn returns false.
func (g *Graph) Walk(fn func(Node) bool) {
	for wp := range g.store.All() {
		if _, has := g.parents[wp.ID]; has {
			continue
		}
		if wp.Kind == waypoint.KindCollection && !g.IsCollection(wp.ID) {
			continue
		}
		if !g.walk(wp.ID, fn) {
			return
		}
	}
}

func (g *Graph) walk(id ID, fn func(Node) bool) bool {
	n, ok := g.Node(id)
	if !ok {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, ch := range n.Children {
		if !g.walk(ch, fn) {
			return false
		}
	}
	return true
}

// Find returns the first node in Walk order accepted by pred.
func (g *Graph) Find(pred func(Node) bool) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	g.Walk(func(n Node) bool {
		if pred(n) {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// Neighbors yields the successors of id at its own level. Plain waypoints
// use the NavMesh. A collection leads to every other collection that one of
// its children has an edge into, at the distance between the two
// collections.
func (g *Graph) Neighbors(id ID) iter.Seq2[ID, float64] {
	c, isCol := g.collections[id]
	if !isCol {
		return g.store.NavMesh().Neighbors(id)
	}
	return func(yield func(ID, float64) bool) {
		from, _ := g.store.Position(id)
		seen := map[ID]struct{}{id: {}}
		for _, ch := range c.children {
			for next := range g.Neighbors(ch) {
				target, ok := g.parents[next]
				if !ok {
					continue
				}
				if _, dup := seen[target]; dup {
					continue
				}
				seen[target] = struct{}{}
				to, _ := g.store.Position(target)
				if !yield(target, from.Distance(to)) {
					return
				}
			}
		}
	}
}
