package encoding

import (
	"encoding/binary"
	"io"
	"math"
)

// Serializable provides a clean, simple interface for serializing and deserializing values.
type Serializable interface {
	Serialize() ([]byte, error)
	Deserialize([]byte) error
}

// BinaryWriter writes fixed-size little-endian values and remembers the first
// error, so callers check once at the end.
type BinaryWriter struct {
	w   io.Writer
	buf [8]byte
	n   int64
	err error
}

func NewBinaryWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

func (bw *BinaryWriter) write(p []byte) {
	if bw.err != nil {
		return
	}
	n, err := bw.w.Write(p)
	bw.n += int64(n)
	bw.err = err
}

func (bw *BinaryWriter) Int32(v int32) { bw.Uint32(uint32(v)) }

func (bw *BinaryWriter) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(bw.buf[:4], v)
	bw.write(bw.buf[:4])
}

func (bw *BinaryWriter) Float32(v float32) { bw.Uint32(math.Float32bits(v)) }

// N is the number of bytes written so far.
func (bw *BinaryWriter) N() int64 { return bw.n }

func (bw *BinaryWriter) Err() error { return bw.err }

// BinaryReader is the reading counterpart of BinaryWriter.
type BinaryReader struct {
	r   io.Reader
	buf [8]byte
	n   int64
	err error
}

func NewBinaryReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: r}
}

func (br *BinaryReader) read(p []byte) bool {
	if br.err != nil {
		return false
	}
	n, err := io.ReadFull(br.r, p)
	br.n += int64(n)
	if err != nil {
		br.err = err
		return false
	}
	return true
}

func (br *BinaryReader) Int32() int32 { return int32(br.Uint32()) }

func (br *BinaryReader) Uint32() uint32 {
	if !br.read(br.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(br.buf[:4])
}

func (br *BinaryReader) Float32() float32 { return math.Float32frombits(br.Uint32()) }

func (br *BinaryReader) N() int64 { return br.n }

// Err returns the first read error; a short read surfaces as io.ErrUnexpectedEOF
// or io.EOF.
func (br *BinaryReader) Err() error { return br.err }
