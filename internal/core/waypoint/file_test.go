package waypoint

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/navgraph/internal/core/geom"
	"github.com/zeusync/navgraph/pkg/encoding"
)

const floatEps = 1e-4

func TestFileRoundTripPreservesOrderAndPositions(t *testing.T) {
	src := NewStore()
	positions := []geom.Vec3{
		geom.V3(0, 0, 0),
		geom.V3(1.25, -3.5, 7),
		geom.V3(1000.1, 20.02, -0.003),
		geom.V3(0.1, 0.2, 0.3),
	}
	for _, p := range positions {
		src.Insert(p)
	}
	// collections are not part of the file
	src.InsertKind(geom.V3(5, 5, 5), KindCollection, "group")

	path := filepath.Join(t.TempDir(), "waypoints.bin")
	require.NoError(t, src.WriteFile(path))

	dst := NewStore()
	require.NoError(t, dst.ReadFile(path))
	require.Equal(t, len(positions), dst.Len())

	i := 0
	for wp := range dst.All() {
		assert.Equal(t, ID(i+1), wp.ID)
		assert.True(t, wp.Position.ApproxEqual(positions[i], floatEps), "point %d: %v", i, wp.Position)
		i++
	}
}

func TestFileLayout(t *testing.T) {
	f := &File{Positions: []geom.Vec3{geom.V3(1, 2, 3)}}
	data, err := f.Serialize()
	require.NoError(t, err)
	require.Len(t, data, 4+4+12)
	assert.Equal(t, []byte{0x31, 0x54, 0x50, 0x57}, data[:4])
	assert.Equal(t, []byte{1, 0, 0, 0}, data[4:8])

	var back File
	require.NoError(t, back.Deserialize(data))
	assert.Equal(t, f.Positions, back.Positions)

	var _ encoding.Serializable = &back
}

func TestFileBadMagic(t *testing.T) {
	var buf bytes.Buffer
	w := encoding.NewBinaryWriter(&buf)
	w.Int32(0x12345678)
	w.Uint32(0)

	s := NewStore()
	_, err := s.ReadFrom(&buf)
	assert.ErrorIs(t, err, ErrBadMagic)
	assert.Zero(t, s.Len())
}

func TestFileTruncated(t *testing.T) {
	f := &File{Positions: []geom.Vec3{geom.V3(1, 2, 3), geom.V3(4, 5, 6)}}
	data, err := f.Serialize()
	require.NoError(t, err)

	for _, cut := range []int{0, 2, 6, len(data) - 1} {
		s := NewStore()
		_, err := s.ReadFrom(bytes.NewReader(data[:cut]))
		assert.ErrorIs(t, err, ErrCorruptFile, "cut at %d", cut)
		assert.Zero(t, s.Len(), "cut at %d", cut)
	}
}

func TestFileHugeCountRejected(t *testing.T) {
	var buf bytes.Buffer
	w := encoding.NewBinaryWriter(&buf)
	w.Int32(FileMagic)
	w.Uint32(0xFFFFFFFF)
	var f File
	_, err := f.ReadFrom(&buf)
	assert.ErrorIs(t, err, ErrCorruptFile)
}

func TestReadFileMissing(t *testing.T) {
	err := NewStore().ReadFile(filepath.Join(t.TempDir(), "nope.bin"))
	assert.Error(t, err)
}
