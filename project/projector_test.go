package project

import (
	"strings"
	"testing"

	"github.com/chonker8/engine/pagesrc"
	"github.com/stretchr/testify/assert"
)

func TestGlyphs_SingleGlyphLandsAtExpectedCell(t *testing.T) {
	glyphs := []pagesrc.Glyph{{Ch: 'A', X: 306, Y: 396}}
	g := Glyphs(glyphs, 612, 792, 200, 100)
	assert.Equal(t, 'A', g.At(50, 100))

	nonSpace := 0
	for _, ch := range g.Cells {
		if ch != ' ' {
			nonSpace++
		}
	}
	assert.Equal(t, 1, nonSpace)
}

func TestGlyphs_ZeroGlyphsProducesAllSpaceGrid(t *testing.T) {
	g := Glyphs(nil, 612, 792, 200, 100)
	assert.Equal(t, 0, g.NonSpaceCount())
}

func TestGlyphs_DiscardsWhitespaceGlyphs(t *testing.T) {
	glyphs := []pagesrc.Glyph{
		{Ch: ' ', X: 100, Y: 100},
		{Ch: '\n', X: 100, Y: 100},
		{Ch: '\r', X: 100, Y: 100},
		{Ch: 'x', X: 50, Y: 50},
	}
	g := Glyphs(glyphs, 200, 200, 100, 100)
	assert.Equal(t, 1, g.NonSpaceCount())
}

func TestGlyphs_OutOfBoundsSilentlyTruncated(t *testing.T) {
	glyphs := []pagesrc.Glyph{{Ch: 'Z', X: 1_000_000, Y: 1_000_000}}
	g := Glyphs(glyphs, 612, 792, 10, 10)
	assert.Equal(t, 0, g.NonSpaceCount())
}

func TestGlyphs_SameInputTwiceYieldsIdenticalGrid(t *testing.T) {
	glyphs := []pagesrc.Glyph{
		{Ch: 'A', X: 10, Y: 10},
		{Ch: 'B', X: 20, Y: 20},
		{Ch: 'C', X: 30, Y: 30},
	}
	g1 := Glyphs(glyphs, 100, 100, 50, 50)
	g2 := Glyphs(glyphs, 100, 100, 50, 50)
	assert.True(t, g1.Equal(g2))
}

func TestGlyphs_LastWriterWinsOnCellCollision(t *testing.T) {
	// Both glyphs round to the same cell; the one later in sorted
	// (grid_y, grid_x) order must win, deterministically.
	glyphs := []pagesrc.Glyph{
		{Ch: 'A', X: 10.1, Y: 50},
		{Ch: 'B', X: 10.2, Y: 50},
	}
	g1 := Glyphs(glyphs, 100, 100, 20, 20)
	reversed := []pagesrc.Glyph{glyphs[1], glyphs[0]}
	g2 := Glyphs(reversed, 100, 100, 20, 20)
	assert.True(t, g1.Equal(g2), "result must not depend on input order")
}

func TestText_SplitsLinesTopDownTruncated(t *testing.T) {
	text := "hello\nworld"
	g := Text(text, 5, 5)
	assert.Equal(t, "hello", g.Row(0))
	assert.Equal(t, "world", g.Row(1))
}

func TestText_TruncatesLongLineToWidth(t *testing.T) {
	text := "abc\n" + strings.Repeat("x", 20)
	g := Text(text, 5, 5)
	assert.Equal(t, "xxxxx", g.Row(1))
}

func TestText_SingleVeryLongLineWrapsCharacterwise(t *testing.T) {
	text := strings.Repeat("x", 12)
	g := Text(text, 5, 5)
	assert.Equal(t, "xxxxx", g.Row(0))
	assert.Equal(t, "xxxxx", g.Row(1))
	assert.Equal(t, "xx"+"   ", g.Row(2))
}

func TestText_TruncatesBeyondGridHeight(t *testing.T) {
	text := "a\nb\nc\nd\ne\nf"
	g := Text(text, 5, 3)
	assert.Equal(t, "a", strings.TrimRight(g.Row(0), " "))
	assert.Equal(t, "b", strings.TrimRight(g.Row(1), " "))
	assert.Equal(t, "c", strings.TrimRight(g.Row(2), " "))
}
