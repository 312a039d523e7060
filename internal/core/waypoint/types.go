package waypoint

import (
	"fmt"

	"github.com/zeusync/navgraph/internal/core/geom"
)

// ID identifies a waypoint within one Store. IDs start at 1 and are never reused.
type ID = uint32

// InvalidID is never assigned.
const InvalidID ID = 0

// Kind tags what a waypoint stands for.
type Kind uint8

const (
	// KindWaypoint is a plain navigable point.
	KindWaypoint Kind = iota
	// KindCollection groups other waypoints for hierarchical search.
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindWaypoint:
		return "waypoint"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Waypoint is a read-only snapshot of a stored point. Change it through the Store.
type Waypoint struct {
	ID       ID
	Position geom.Vec3
	Kind     Kind
	Name     string
}

// Event types published on the store's bus.
const (
	EventInserted = "waypoint.inserted"
	EventRemoved  = "waypoint.removed"
	EventMoved    = "waypoint.moved"
	EventCleared  = "waypoint.cleared"
)

// Event is the payload of every store event. Previous is the position before
// a move; for other events it equals Waypoint.Position.
type Event struct {
	Waypoint Waypoint
	Previous geom.Vec3
}
