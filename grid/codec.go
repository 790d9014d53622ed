package grid

import (
	"encoding/binary"
	"fmt"
)

// SparseThreshold is the fixed engine constant below which a grid is encoded
// sparse: non_space_cells / (W*H) < SparseThreshold.
const SparseThreshold = 0.20

// CompressedGrid is the wire form of a Grid: either a sparse list of
// (index, value) pairs or a dense row-major byte/rune array.
//
//   - Sparse: index = row*W + col, restricted to code points expressible in
//     a single byte (U+0000..U+00FF). A grid with any non-space cell above
//     U+00FF is never encoded sparse, even if its density qualifies.
//   - Dense narrow: one byte per cell (all cells fit in a single byte).
//   - Dense wide: one little-endian uint32 per cell, used only when some
//     cell holds a code point above U+00FF.
type CompressedGrid struct {
	W, H     int
	IsSparse bool
	Wide     bool // only meaningful when !IsSparse
	Data     []byte
}

// CorruptError reports a decode-time wire format violation.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("grid: corrupt encoding: %s", e.Reason)
}

// Encode chooses sparse or dense form for g and serializes it, using the
// package default SparseThreshold.
func Encode(g *Grid) *CompressedGrid {
	return EncodeWithThreshold(g, SparseThreshold)
}

// EncodeWithThreshold is Encode with a caller-supplied sparse/dense cutoff,
// for callers (the engine façade's configuration) that expose it as a tunable.
func EncodeWithThreshold(g *Grid, threshold float64) *CompressedGrid {
	total := g.W * g.H
	nonSpace := g.NonSpaceCount()
	wide := hasWideCell(g)

	if !wide && total > 0 && float64(nonSpace)/float64(total) < threshold {
		return encodeSparse(g, nonSpace)
	}
	return encodeDense(g, wide)
}

func hasWideCell(g *Grid) bool {
	for _, ch := range g.Cells {
		if ch != Space && (ch < 0 || ch > 0xFF) {
			return true
		}
	}
	return false
}

func encodeSparse(g *Grid, nonSpace int) *CompressedGrid {
	data := make([]byte, 4+nonSpace*5)
	binary.LittleEndian.PutUint32(data[0:4], uint32(nonSpace))
	off := 4
	for i, ch := range g.Cells {
		if ch == Space {
			continue
		}
		binary.LittleEndian.PutUint32(data[off:off+4], uint32(i))
		data[off+4] = byte(ch)
		off += 5
	}
	return &CompressedGrid{W: g.W, H: g.H, IsSparse: true, Data: data}
}

func encodeDense(g *Grid, wide bool) *CompressedGrid {
	if !wide {
		data := make([]byte, len(g.Cells))
		for i, ch := range g.Cells {
			data[i] = byte(ch)
		}
		return &CompressedGrid{W: g.W, H: g.H, IsSparse: false, Wide: false, Data: data}
	}
	data := make([]byte, len(g.Cells)*4)
	for i, ch := range g.Cells {
		binary.LittleEndian.PutUint32(data[i*4:i*4+4], uint32(ch))
	}
	return &CompressedGrid{W: g.W, H: g.H, IsSparse: false, Wide: true, Data: data}
}

// Decode reconstructs the Grid described by c, or returns a *CorruptError.
func Decode(c *CompressedGrid) (*Grid, error) {
	if c.IsSparse {
		return decodeSparse(c)
	}
	return decodeDense(c)
}

func decodeSparse(c *CompressedGrid) (*Grid, error) {
	if len(c.Data) < 4 {
		return nil, &CorruptError{Reason: "sparse payload shorter than count header"}
	}
	count := binary.LittleEndian.Uint32(c.Data[0:4])
	want := 4 + int(count)*5
	if len(c.Data) < want {
		return nil, &CorruptError{Reason: "sparse count implies read past end"}
	}
	g := New(c.W, c.H)
	total := c.W * c.H
	off := 4
	for i := uint32(0); i < count; i++ {
		index := binary.LittleEndian.Uint32(c.Data[off : off+4])
		value := c.Data[off+4]
		if int(index) >= total {
			return nil, &CorruptError{Reason: "sparse index out of range"}
		}
		g.Cells[index] = rune(value)
		off += 5
	}
	return g, nil
}

func decodeDense(c *CompressedGrid) (*Grid, error) {
	total := c.W * c.H
	if !c.Wide {
		if len(c.Data) != total {
			return nil, &CorruptError{Reason: "dense length mismatch"}
		}
		g := New(c.W, c.H)
		for i, b := range c.Data {
			g.Cells[i] = rune(b)
		}
		return g, nil
	}
	if len(c.Data) != total*4 {
		return nil, &CorruptError{Reason: "wide dense length mismatch"}
	}
	g := New(c.W, c.H)
	for i := 0; i < total; i++ {
		g.Cells[i] = rune(binary.LittleEndian.Uint32(c.Data[i*4 : i*4+4]))
	}
	return g, nil
}
