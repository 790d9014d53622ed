// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfsrc

import (
	"fmt"
	"os"

	"github.com/chonker8/engine/logger"
	"github.com/chonker8/engine/pagesrc"
)

// defaultWidth and defaultHeight are US Letter in points, used when a page
// carries no usable MediaBox.
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// document adapts a Reader to pagesrc.Document. It keeps the backing
// *os.File alive for the Reader's lifetime: Reader reads lazily through it,
// and letting it fall out of scope risks the finalizer closing the
// descriptor out from under an in-flight Stream() read.
type document struct {
	f *os.File
	r *Reader
}

// OpenDocument parses the PDF at path and returns it as a pagesrc.Document.
func OpenDocument(path string) (pagesrc.Document, error) {
	f, r, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdfsrc: open %s: %w", path, err)
	}
	return &document{f: f, r: r}, nil
}

// Close releases the underlying file handle.
func (d *document) Close() error {
	return d.f.Close()
}

func (d *document) NumPages() int {
	return d.r.NumPage()
}

// MetadataFull exposes the document's Info/XMP metadata and access
// permissions, passed through from the underlying Reader. This is not part
// of pagesrc.Document; callers that want it type-assert for it.
func (d *document) MetadataFull() (MetadataFull, error) {
	return d.r.MetadataFull()
}

func (d *document) Page(index int) (pagesrc.PageRef, error) {
	if index < 1 || index > d.r.NumPage() {
		return nil, fmt.Errorf("pdfsrc: page %d out of range (1..%d)", index, d.r.NumPage())
	}
	return &pageAdapter{p: d.r.Page(index)}, nil
}

// pageAdapter adapts a Page to pagesrc.PageRef.
type pageAdapter struct {
	p Page
}

func (a *pageAdapter) Dimensions() (w, h float64) {
	box := a.p.MediaBox()
	if box.Kind() != Array || box.Len() != 4 {
		return defaultWidth, defaultHeight
	}
	x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
	x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
	w, h = x1-x0, y1-y0
	if w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// Glyphs walks the page's content stream and returns one entry per drawn
// character. Content panics on malformed content streams (the tokenizer has
// no recovery path of its own), so this method, like EmbeddedImages,
// converts that into an error return.
func (a *pageAdapter) Glyphs() (glyphs []pagesrc.Glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Glyphs: recovered from panic: %v", r))
			err = fmt.Errorf("pdfsrc: malformed content stream: %v", r)
		}
	}()

	content := a.p.Content()
	glyphs = make([]pagesrc.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		for _, ch := range t.S {
			if ch == '\n' {
				continue
			}
			glyphs = append(glyphs, pagesrc.Glyph{Ch: ch, X: t.X, Y: t.Y})
		}
	}
	return glyphs, nil
}

// EmbeddedImages returns the bounding box of every Do-invoked image XObject
// on the page, tracked by Content as it walks the content stream.
func (a *pageAdapter) EmbeddedImages() (rects []pagesrc.Rect, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("EmbeddedImages: recovered from panic: %v", r))
			err = fmt.Errorf("pdfsrc: malformed content stream: %v", r)
		}
	}()

	content := a.p.Content()
	rects = make([]pagesrc.Rect, 0, len(content.Rect))
	for _, r := range content.Rect {
		rects = append(rects, pagesrc.Rect{X0: r.Min.X, Y0: r.Min.Y, X1: r.Max.X, Y1: r.Max.Y})
	}
	return rects, nil
}

func (a *pageAdapter) RawText() (text string, err error) {
	return a.p.GetPlainText(nil)
}

// Rasterize returns a deterministic all-white placeholder buffer of the
// requested size (one grayscale byte per pixel). Producing real pixels from
// the content stream is this repo's documented Non-goal; callers that need
// OCR/LayoutAnalysis quality against real pixels must wire in a parser that
// actually rasterizes.
func (a *pageAdapter) Rasterize(w, h int) ([]byte, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pdfsrc: Rasterize: invalid size %dx%d", w, h)
	}
	buf := make([]byte, w*h)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf, nil
}
