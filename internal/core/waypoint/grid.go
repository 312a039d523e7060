package waypoint

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/navgraph/internal/core/geom"
)

// maxQueryCells bounds how many cells a radius query visits before the caller
// should fall back to a linear scan.
const maxQueryCells = 4096

type cellCoord struct{ x, y, z int64 }

// grid is a uniform spatial hash. Cells are keyed by an xxhash digest of their
// integer coordinates; two cells sharing a digest only widen the candidate
// set, the exact distance test downstream filters them.
type grid struct {
	cellSize float64
	cells    map[uint64][]ID
}

func newGrid(cellSize float64) *grid {
	return &grid{
		cellSize: cellSize,
		cells:    make(map[uint64][]ID),
	}
}

func (g *grid) coord(p geom.Vec3) cellCoord {
	return cellCoord{
		x: int64(math.Floor(p.X / g.cellSize)),
		y: int64(math.Floor(p.Y / g.cellSize)),
		z: int64(math.Floor(p.Z / g.cellSize)),
	}
}

func cellKey(c cellCoord) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(c.x))
	binary.LittleEndian.PutUint64(buf[8:], uint64(c.y))
	binary.LittleEndian.PutUint64(buf[16:], uint64(c.z))
	return xxhash.Sum64(buf[:])
}

func (g *grid) insert(id ID, p geom.Vec3) {
	key := cellKey(g.coord(p))
	g.cells[key] = append(g.cells[key], id)
}

func (g *grid) remove(id ID, p geom.Vec3) {
	key := cellKey(g.coord(p))
	ids := g.cells[key]
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(g.cells, key)
		return
	}
	g.cells[key] = ids
}

func (g *grid) move(id ID, from, to geom.Vec3) {
	if g.coord(from) == g.coord(to) {
		return
	}
	g.remove(id, from)
	g.insert(id, to)
}

// candidates returns the ids in every cell overlapping the cube around p, or
// ok=false when that cube spans too many cells.
func (g *grid) candidates(p geom.Vec3, radius float64) (ids []ID, ok bool) {
	if math.IsInf(radius, 0) || radius/g.cellSize > maxQueryCells {
		return nil, false
	}
	lo := g.coord(p.Sub(geom.V3(radius, radius, radius)))
	hi := g.coord(p.Add(geom.V3(radius, radius, radius)))
	span := float64(hi.x-lo.x+1) * float64(hi.y-lo.y+1) * float64(hi.z-lo.z+1)
	if span > maxQueryCells || math.IsNaN(span) {
		return nil, false
	}

	visited := make(map[uint64]struct{})
	for x := lo.x; x <= hi.x; x++ {
		for y := lo.y; y <= hi.y; y++ {
			for z := lo.z; z <= hi.z; z++ {
				key := cellKey(cellCoord{x, y, z})
				if _, seen := visited[key]; seen {
					continue
				}
				visited[key] = struct{}{}
				ids = append(ids, g.cells[key]...)
			}
		}
	}
	return ids, true
}

func (g *grid) clear() { clear(g.cells) }
