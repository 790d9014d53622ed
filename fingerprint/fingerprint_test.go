package fingerprint

import (
	"errors"
	"testing"

	"github.com/chonker8/engine/pagesrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	w, h      float64
	glyphs    []pagesrc.Glyph
	images    []pagesrc.Rect
	rawText   string
	rawErr    error
	imagesErr error
}

func (f *fakePage) Dimensions() (float64, float64)         { return f.w, f.h }
func (f *fakePage) Glyphs() ([]pagesrc.Glyph, error)        { return f.glyphs, nil }
func (f *fakePage) EmbeddedImages() ([]pagesrc.Rect, error) { return f.images, f.imagesErr }
func (f *fakePage) RawText() (string, error)                { return f.rawText, f.rawErr }
func (f *fakePage) Rasterize(w, h int) ([]byte, error)      { return make([]byte, w*h), nil }

func TestAnalyze_DenseBornDigitalText(t *testing.T) {
	p := &fakePage{
		w: 612, h: 792,
		rawText: "Hello world. This is a test of ordinary English prose, with real sentences and spacing.",
	}
	fp, err := Analyze(p)
	require.NoError(t, err)
	assert.Greater(t, fp.TextCoverage, 0.0)
	assert.Equal(t, 0.0, fp.ImageCoverage)
	assert.False(t, fp.HasTables)
}

func TestAnalyze_ScannedPageNoText(t *testing.T) {
	p := &fakePage{
		w: 612, h: 792,
		rawText: "",
		images:  []pagesrc.Rect{{X0: 0, Y0: 0, X1: 612, Y1: 792}},
	}
	fp, err := Analyze(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fp.TextCoverage)
	assert.Equal(t, 1.0, fp.ImageCoverage)
}

func TestAnalyze_ImageCoverageClampedAtOne(t *testing.T) {
	p := &fakePage{
		w: 100, h: 100,
		images: []pagesrc.Rect{
			{X0: 0, Y0: 0, X1: 100, Y1: 100},
			{X0: 0, Y0: 0, X1: 100, Y1: 100},
		},
	}
	fp, err := Analyze(p)
	require.NoError(t, err)
	assert.Equal(t, 1.0, fp.ImageCoverage)
}

func TestAnalyze_TableHint(t *testing.T) {
	p := &fakePage{w: 612, h: 792, rawText: "a | b | c\nd | e | f"}
	fp, err := Analyze(p)
	require.NoError(t, err)
	assert.True(t, fp.HasTables)
}

func TestAnalyze_PropagatesParserError(t *testing.T) {
	p := &fakePage{w: 612, h: 792, rawErr: errors.New("boom")}
	_, err := Analyze(p)
	require.Error(t, err)
	var fe *Error
	require.ErrorAs(t, err, &fe)
}

func TestAnalyze_ZeroAreaPageNoDivideByZero(t *testing.T) {
	p := &fakePage{w: 0, h: 0, rawText: "text"}
	fp, err := Analyze(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, fp.TextCoverage)
	assert.Equal(t, 0.0, fp.ImageCoverage)
}
