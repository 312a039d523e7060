package waypoint

import (
	"iter"
	"math"
	"slices"

	"github.com/zeusync/navgraph/internal/core/events/bus"
	"github.com/zeusync/navgraph/internal/core/geom"
	"github.com/zeusync/navgraph/internal/core/navmesh"
	"github.com/zeusync/navgraph/internal/core/observability/log"
)

// DefaultCellSize is the edge length of a spatial index cell in world units.
const DefaultCellSize = 16.0

const eventSource = "waypoint.store"

type slot struct {
	waypoint Waypoint
	live     bool
}

// Store owns every waypoint of one navigation graph and the NavMesh over them.
//
// Waypoints live in an arena indexed by id. The NavMesh only refers to ids, and
// Remove drops a waypoint's edges before returning, so no edge ever points at a
// removed waypoint.
//
// Store does no locking. Embedding code must not mutate it while a search or
// another mutation is running.
type Store struct {
	slots []slot
	count int
	grid  *grid
	mesh  *navmesh.NavMesh

	bus    bus.EventBus
	logger log.Log
}

type Option func(*Store)

// WithBus publishes insert/remove/move events to b.
func WithBus(b bus.EventBus) Option {
	return func(s *Store) { s.bus = b }
}

func WithLogger(l log.Log) Option {
	return func(s *Store) { s.logger = l }
}

// WithCellSize sets the spatial index cell size. Values <= 0 are ignored.
func WithCellSize(size float64) Option {
	return func(s *Store) {
		if size > 0 && !math.IsInf(size, 0) {
			s.grid = newGrid(size)
		}
	}
}

// WithMesh makes the store own an existing mesh instead of a fresh one.
func WithMesh(m *navmesh.NavMesh) Option {
	return func(s *Store) {
		if m != nil {
			s.mesh = m
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		grid: newGrid(DefaultCellSize),
		mesh: navmesh.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = log.OrNop(s.logger).With(log.String("component", "waypoint.store"))
	return s
}

// NavMesh returns the edge store owned by s.
func (s *Store) NavMesh() *navmesh.NavMesh { return s.mesh }

// Bus returns the event bus passed with WithBus, or nil.
func (s *Store) Bus() bus.EventBus { return s.bus }

func (s *Store) slotOf(id ID) *slot {
	if id == InvalidID || int(id) > len(s.slots) {
		return nil
	}
	sl := &s.slots[id-1]
	if !sl.live {
		return nil
	}
	return sl
}

// Insert stores a plain waypoint at pos and returns its new id. Inserting a
// position that is already stored creates a second waypoint.
func (s *Store) Insert(pos geom.Vec3) ID {
	return s.InsertKind(pos, KindWaypoint, "")
}

func (s *Store) InsertNamed(pos geom.Vec3, name string) ID {
	return s.InsertKind(pos, KindWaypoint, name)
}

func (s *Store) InsertKind(pos geom.Vec3, kind Kind, name string) ID {
	id := ID(len(s.slots) + 1)
	wp := Waypoint{ID: id, Position: pos, Kind: kind, Name: name}
	s.slots = append(s.slots, slot{waypoint: wp, live: true})
	s.count++
	s.grid.insert(id, pos)
	s.publish(EventInserted, wp, pos)
	return id
}

// InsertNoDuplicate returns the id of the closest stored plain waypoint within
// radius of pos, or inserts a new one when there is none.
func (s *Store) InsertNoDuplicate(pos geom.Vec3, radius float64) ID {
	if radius >= 0 {
		if id, ok := s.closest(pos, radius, func(w Waypoint) bool { return w.Kind == KindWaypoint }); ok {
			return id
		}
	}
	return s.Insert(pos)
}

// Remove deletes id and every NavMesh edge from or to it.
func (s *Store) Remove(id ID) bool {
	sl := s.slotOf(id)
	if sl == nil {
		return false
	}
	wp := sl.waypoint
	removed := s.mesh.RemoveNode(id)
	s.grid.remove(id, wp.Position)
	*sl = slot{}
	s.count--

	s.logger.Debug("waypoint removed",
		log.Uint32("id", id),
		log.Int("edges_removed", removed))
	s.publish(EventRemoved, wp, wp.Position)
	return true
}

// Move changes the position of id. Edges are left alone; relink through the
// connectivity builder when they must stay geometrically valid.
func (s *Store) Move(id ID, pos geom.Vec3) bool {
	sl := s.slotOf(id)
	if sl == nil {
		return false
	}
	prev := sl.waypoint.Position
	s.grid.move(id, prev, pos)
	sl.waypoint.Position = pos
	s.publish(EventMoved, sl.waypoint, prev)
	return true
}

// SetName renames id.
func (s *Store) SetName(id ID, name string) bool {
	sl := s.slotOf(id)
	if sl == nil {
		return false
	}
	sl.waypoint.Name = name
	return true
}

// Get returns a copy of the waypoint record.
func (s *Store) Get(id ID) (Waypoint, bool) {
	sl := s.slotOf(id)
	if sl == nil {
		return Waypoint{}, false
	}
	return sl.waypoint, true
}

// Position is a shortcut for Get(id).Position.
func (s *Store) Position(id ID) (geom.Vec3, bool) {
	sl := s.slotOf(id)
	if sl == nil {
		return geom.Vec3{}, false
	}
	return sl.waypoint.Position, true
}

func (s *Store) Contains(id ID) bool { return s.slotOf(id) != nil }

// Len is the number of live waypoints of every kind.
func (s *Store) Len() int { return s.count }

// All enumerates live waypoints in ascending id order.
func (s *Store) All() iter.Seq[Waypoint] {
	return func(yield func(Waypoint) bool) {
		for i := range s.slots {
			if !s.slots[i].live {
				continue
			}
			if !yield(s.slots[i].waypoint) {
				return
			}
		}
	}
}

// IDs returns the live ids of the given kinds in ascending order; no kinds
// means every kind.
func (s *Store) IDs(kinds ...Kind) []ID {
	out := make([]ID, 0, s.count)
	for wp := range s.All() {
		if matchKind(wp.Kind, kinds) {
			out = append(out, wp.ID)
		}
	}
	return out
}

func matchKind(k Kind, kinds []Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// FindWithinRadius returns every waypoint whose distance to pos is at most
// radius, in ascending id order.
func (s *Store) FindWithinRadius(pos geom.Vec3, radius float64) []ID {
	if radius < 0 || math.IsNaN(radius) {
		return nil
	}
	r2 := radius * radius
	var out []ID
	s.scan(pos, radius, func(wp Waypoint) {
		if wp.Position.DistanceSq(pos) <= r2 {
			out = append(out, wp.ID)
		}
	})
	slices.Sort(out)
	return out
}

// FindClosest returns the waypoint nearest to pos within maxDistance. A
// maxDistance <= 0 or +Inf searches without limit. Ties go to the lower id.
func (s *Store) FindClosest(pos geom.Vec3, maxDistance float64) (ID, bool) {
	if maxDistance <= 0 || math.IsNaN(maxDistance) {
		maxDistance = math.Inf(1)
	}
	return s.closest(pos, maxDistance, nil)
}

// closest finds the nearest kept waypoint at distance <= radius.
func (s *Store) closest(pos geom.Vec3, radius float64, keep func(Waypoint) bool) (ID, bool) {
	limit := radius * radius
	best, bestD := InvalidID, math.Inf(1)
	visit := func(wp Waypoint) {
		if keep != nil && !keep(wp) {
			return
		}
		d := wp.Position.DistanceSq(pos)
		if d > limit {
			return
		}
		if d < bestD || (d == bestD && wp.ID < best) {
			best, bestD = wp.ID, d
		}
	}

	if math.IsInf(radius, 1) {
		for wp := range s.All() {
			visit(wp)
		}
	} else {
		s.scan(pos, radius, visit)
	}
	return best, best != InvalidID
}

// scan visits every waypoint that may lie within radius of pos, and possibly more.
func (s *Store) scan(pos geom.Vec3, radius float64, visit func(Waypoint)) {
	if ids, ok := s.grid.candidates(pos, radius); ok {
		for _, id := range ids {
			if sl := s.slotOf(id); sl != nil {
				visit(sl.waypoint)
			}
		}
		return
	}
	for wp := range s.All() {
		visit(wp)
	}
}

// Link adds the edge from→to with the Euclidean distance as cost.
func (s *Store) Link(from, to ID) bool {
	a, okA := s.Position(from)
	b, okB := s.Position(to)
	if !okA || !okB {
		return false
	}
	return s.mesh.AddEdge(from, to, a.Distance(b))
}

// LinkBoth adds from→to and to→from.
func (s *Store) LinkBoth(a, b ID) bool {
	ab := s.Link(a, b)
	ba := s.Link(b, a)
	return ab || ba
}

// Clear removes every waypoint and edge. Ids keep increasing afterwards.
func (s *Store) Clear() {
	for i := range s.slots {
		s.slots[i] = slot{}
	}
	s.count = 0
	s.grid.clear()
	s.mesh.Clear()
	s.publish(EventCleared, Waypoint{}, geom.Vec3{})
}

func (s *Store) publish(eventType string, wp Waypoint, prev geom.Vec3) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(bus.NewEvent(eventType, eventSource, Event{Waypoint: wp, Previous: prev}))
	if err != nil {
		s.logger.Warn("waypoint event handler failed",
			log.String("event", eventType),
			log.Uint32("id", wp.ID),
			log.Error(err))
	}
}
