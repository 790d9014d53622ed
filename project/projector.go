// Package project implements the spatial projector: mapping positioned
// glyphs (or plain wrapped text) onto a fixed-size character grid.
package project

import (
	"math"
	"sort"
	"strings"

	"github.com/chonker8/engine/grid"
	"github.com/chonker8/engine/pagesrc"
)

// Glyphs projects positioned glyphs in PDF user space (origin bottom-left,
// y increasing upward) onto a W×H grid (origin top-left, row increasing
// downward).
//
// Space, '\n', and '\r' glyphs are discarded before projection. Glyphs are
// sorted by (grid_y, grid_x) ascending, and glyphs sharing a cell by their
// page position, so that, when two glyphs land on the same cell, the
// right-most/lower-most one wins — a deterministic
// last-writer-wins rule, not an artifact of input order. Glyphs landing
// outside the grid are silently truncated.
func Glyphs(glyphs []pagesrc.Glyph, pageWidth, pageHeight float64, w, h int) *grid.Grid {
	g := grid.New(w, h)
	if pageWidth <= 0 || pageHeight <= 0 {
		return g
	}

	type placed struct {
		ch   rune
		gx   int
		gy   int
		x, y float64
	}

	var placements []placed
	for _, gl := range glyphs {
		if gl.Ch == ' ' || gl.Ch == '\n' || gl.Ch == '\r' {
			continue
		}
		gx := int(math.Round((gl.X / pageWidth) * float64(w)))
		gy := int(math.Round(((pageHeight - gl.Y) / pageHeight) * float64(h)))
		placements = append(placements, placed{ch: gl.Ch, gx: gx, gy: gy, x: gl.X, y: gl.Y})
	}

	sort.SliceStable(placements, func(i, j int) bool {
		if placements[i].gy != placements[j].gy {
			return placements[i].gy < placements[j].gy
		}
		if placements[i].gx != placements[j].gx {
			return placements[i].gx < placements[j].gx
		}
		// Same cell: the lower-most (smaller user-space y), then right-most,
		// glyph sorts last and is the one written.
		if placements[i].y != placements[j].y {
			return placements[i].y > placements[j].y
		}
		if placements[i].x != placements[j].x {
			return placements[i].x < placements[j].x
		}
		return placements[i].ch < placements[j].ch
	})

	for _, p := range placements {
		if p.gy < 0 || p.gy >= h || p.gx < 0 || p.gx >= w {
			continue
		}
		g.Set(p.gy, p.gx, p.ch)
	}

	return g
}

// Text projects a plain string — e.g. FastText output, which already
// preserves layout via whitespace — onto a W×H grid by splitting on
// newlines and placing each line row by row, top-down, truncated to W
// columns. A single line that both stands alone and exceeds W is instead
// wrapped character-by-character across consecutive rows.
func Text(text string, w, h int) *grid.Grid {
	g := grid.New(w, h)
	lines := strings.Split(text, "\n")

	if len(lines) == 1 && len([]rune(lines[0])) > w {
		wrapAcrossRows(g, lines[0], w, h)
		return g
	}

	for row, line := range lines {
		if row >= h {
			break
		}
		writeRow(g, row, line, w)
	}
	return g
}

func writeRow(g *grid.Grid, row int, line string, w int) {
	col := 0
	for _, ch := range line {
		if col >= w {
			break
		}
		g.Set(row, col, ch)
		col++
	}
}

func wrapAcrossRows(g *grid.Grid, line string, w, h int) {
	row, col := 0, 0
	for _, ch := range line {
		if row >= h {
			break
		}
		g.Set(row, col, ch)
		col++
		if col >= w {
			col = 0
			row++
		}
	}
}
