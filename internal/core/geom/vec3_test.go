package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	a := V3(0, 0, 0)
	b := V3(3, 4, 12)
	assert.Equal(t, 169.0, a.DistanceSq(b))
	assert.Equal(t, 13.0, a.Distance(b))
	assert.Equal(t, a.Distance(b), b.Distance(a))
}

func TestCentroid(t *testing.T) {
	assert.Equal(t, Vec3{}, Centroid())
	c := Centroid(V3(0, 0, 0), V3(2, 0, 0), V3(1, 3, 0))
	assert.True(t, c.ApproxEqual(V3(1, 1, 0), 1e-12))
}

func TestSegmentPointDistanceSq(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		p    Vec3
		want float64
	}{
		{"perpendicular", V3(0, 0, 0), V3(10, 0, 0), V3(5, 2, 0), 4},
		{"before start", V3(0, 0, 0), V3(10, 0, 0), V3(-3, 4, 0), 25},
		{"past end", V3(0, 0, 0), V3(10, 0, 0), V3(13, 0, 4), 25},
		{"degenerate", V3(1, 1, 1), V3(1, 1, 1), V3(1, 1, 3), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SegmentPointDistanceSq(tt.a, tt.b, tt.p)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLerp(t *testing.T) {
	mid := V3(0, 0, 0).Lerp(V3(2, 4, -6), 0.5)
	assert.True(t, mid.ApproxEqual(V3(1, 2, -3), 1e-12))
	assert.False(t, math.IsNaN(mid.Length()))
}
