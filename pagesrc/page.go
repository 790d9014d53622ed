// Package pagesrc defines the interface the engine's core consumes from the
// (assumed, external) PDF parsing library: page dimensions, positioned
// glyphs, embedded image bounding boxes, whole-page text, and rasterization
// at a requested pixel size. The core never depends on a concrete parser —
// only on this interface — so it can be driven by a real parser adapter in
// production and by hand-built fixtures in tests.
package pagesrc

// Rect is an axis-aligned bounding box in PDF user space (origin bottom-left).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Area returns the rectangle's area, or 0 if degenerate.
func (r Rect) Area() float64 {
	w := r.X1 - r.X0
	h := r.Y1 - r.Y0
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Glyph is a single positioned character in PDF user space (origin
// bottom-left, y increasing upward).
type Glyph struct {
	Ch   rune
	X, Y float64
}

// PageRef exposes everything the engine's core needs from one page of a
// parsed PDF document.
type PageRef interface {
	// Dimensions returns the page's width and height, in points.
	Dimensions() (w, h float64)

	// Glyphs returns every positioned character drawn on the page.
	Glyphs() ([]Glyph, error)

	// EmbeddedImages returns the bounding boxes of every embedded raster image.
	EmbeddedImages() ([]Rect, error)

	// RawText returns the page's text with no layout preservation.
	RawText() (string, error)

	// Rasterize renders the page to pixel bytes at approximately the
	// requested size. Actual pixel rendering is this repo's Non-goal; real
	// implementations are provided by the external parser.
	Rasterize(w, h int) ([]byte, error)
}

// Document is the per-document handle the engine holds for its lifetime.
type Document interface {
	// NumPages returns the page count.
	NumPages() int

	// Page returns the 1-indexed page, or an error if out of range.
	Page(index int) (PageRef, error)
}
