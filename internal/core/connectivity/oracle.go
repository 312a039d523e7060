package connectivity

import (
	"context"

	"github.com/zeusync/navgraph/internal/core/geom"
)

// Oracle decides whether an agent can move in a straight line from one point
// to another. Implementations typically query scene geometry. An error means
// the answer is unknown; the builder then leaves the pair unlinked.
type Oracle interface {
	CanTraverse(ctx context.Context, from, to geom.Vec3) (bool, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, from, to geom.Vec3) (bool, error)

func (f OracleFunc) CanTraverse(ctx context.Context, from, to geom.Vec3) (bool, error) {
	return f(ctx, from, to)
}

// LineOfSight treats open space as fully traversable, optionally bounded by a
// maximum segment length.
type LineOfSight struct {
	MaxLength float64
}

func (o LineOfSight) CanTraverse(_ context.Context, from, to geom.Vec3) (bool, error) {
	if o.MaxLength > 0 && from.DistanceSq(to) > o.MaxLength*o.MaxLength {
		return false, nil
	}
	return true, nil
}

// Sphere is a spherical obstacle.
type Sphere struct {
	Center geom.Vec3
	Radius float64
}

// SphereObstacles blocks every segment that passes through one of its spheres.
type SphereObstacles struct {
	Spheres   []Sphere
	MaxLength float64
}

func (o SphereObstacles) CanTraverse(ctx context.Context, from, to geom.Vec3) (bool, error) {
	if ok, _ := (LineOfSight{MaxLength: o.MaxLength}).CanTraverse(ctx, from, to); !ok {
		return false, nil
	}
	for _, s := range o.Spheres {
		if geom.SegmentPointDistanceSq(from, to, s.Center) < s.Radius*s.Radius {
			return false, nil
		}
	}
	return true, nil
}
