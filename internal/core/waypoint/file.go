package waypoint

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/zeusync/navgraph/internal/core/geom"
	"github.com/zeusync/navgraph/pkg/encoding"
)

// FileMagic opens every waypoint file ("WPT1").
const FileMagic int32 = 0x57505431

// maxFilePoints caps the count header so a corrupt file cannot force a huge allocation.
const maxFilePoints = 1 << 24

var _ encoding.Serializable = (*File)(nil)

// File is the on-disk waypoint list: a magic number, a point count and that
// many float32 positions, little-endian. Positions lose precision beyond float32.
type File struct {
	Positions []geom.Vec3
}

func (f *File) WriteTo(w io.Writer) (int64, error) {
	bw := encoding.NewBinaryWriter(w)
	bw.Int32(FileMagic)
	bw.Uint32(uint32(len(f.Positions)))
	for _, p := range f.Positions {
		bw.Float32(float32(p.X))
		bw.Float32(float32(p.Y))
		bw.Float32(float32(p.Z))
	}
	return bw.N(), bw.Err()
}

// ReadFrom replaces f.Positions with the file contents. On error f is unchanged.
func (f *File) ReadFrom(r io.Reader) (int64, error) {
	br := encoding.NewBinaryReader(r)
	magic := br.Int32()
	if err := br.Err(); err != nil {
		return br.N(), fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	if magic != FileMagic {
		return br.N(), fmt.Errorf("%w: got %#x", ErrBadMagic, uint32(magic))
	}

	count := br.Uint32()
	if err := br.Err(); err != nil {
		return br.N(), fmt.Errorf("%w: %w", ErrCorruptFile, err)
	}
	if count > maxFilePoints {
		return br.N(), fmt.Errorf("%w: point count %d exceeds limit", ErrCorruptFile, count)
	}

	positions := make([]geom.Vec3, 0, count)
	for i := uint32(0); i < count; i++ {
		x, y, z := br.Float32(), br.Float32(), br.Float32()
		if err := br.Err(); err != nil {
			return br.N(), fmt.Errorf("%w: point %d of %d: %w", ErrCorruptFile, i, count, err)
		}
		positions = append(positions, geom.V3(float64(x), float64(y), float64(z)))
	}
	f.Positions = positions
	return br.N(), nil
}

func (f *File) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *File) Deserialize(data []byte) error {
	_, err := f.ReadFrom(bytes.NewReader(data))
	return err
}

// Snapshot captures the positions of every plain waypoint in id order.
func (s *Store) Snapshot() *File {
	f := &File{}
	for wp := range s.All() {
		if wp.Kind == KindWaypoint {
			f.Positions = append(f.Positions, wp.Position)
		}
	}
	return f
}

// Restore inserts the file's positions in order and returns the new ids.
func (s *Store) Restore(f *File) []ID {
	ids := make([]ID, 0, len(f.Positions))
	for _, p := range f.Positions {
		ids = append(ids, s.Insert(p))
	}
	return ids
}

// WriteTo writes every plain waypoint. Edges and collections are not persisted.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	return s.Snapshot().WriteTo(w)
}

// ReadFrom appends the waypoints of a file to s. Nothing is inserted when the
// file is corrupt.
func (s *Store) ReadFrom(r io.Reader) (int64, error) {
	var f File
	n, err := f.ReadFrom(r)
	if err != nil {
		return n, err
	}
	s.Restore(&f)
	return n, nil
}

func (s *Store) WriteFile(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	w := bufio.NewWriter(file)
	if _, err = s.WriteTo(w); err != nil {
		return fmt.Errorf("write waypoints to %s: %w", path, err)
	}
	return w.Flush()
}

func (s *Store) ReadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err = s.ReadFrom(bufio.NewReader(file)); err != nil {
		return fmt.Errorf("read waypoints from %s: %w", path, err)
	}
	return nil
}
