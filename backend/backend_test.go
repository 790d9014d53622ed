package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/chonker8/engine/pagesrc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	w, h    float64
	text    string
	textErr error
}

func (f *fakePage) Dimensions() (float64, float64)         { return f.w, f.h }
func (f *fakePage) Glyphs() ([]pagesrc.Glyph, error)        { return nil, nil }
func (f *fakePage) EmbeddedImages() ([]pagesrc.Rect, error) { return nil, nil }
func (f *fakePage) RawText() (string, error)                { return f.text, f.textErr }
func (f *fakePage) Rasterize(w, h int) ([]byte, error)      { return make([]byte, w*h), nil }

func TestNativeTextBackend_Extract(t *testing.T) {
	p := &fakePage{text: "hello world"}
	text, err := NativeTextBackend{}.Extract(context.Background(), Request{Page: p})
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestNativeTextBackend_PropagatesParserError(t *testing.T) {
	p := &fakePage{textErr: errors.New("boom")}
	_, err := NativeTextBackend{}.Extract(context.Background(), Request{Page: p})
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ParserError, be.Kind)
}

type fakeOCRModel struct {
	text string
	err  error
}

func (m *fakeOCRModel) Recognize(ctx context.Context, image []byte, w, h int) (string, error) {
	return m.text, m.err
}

func TestOCRBackend_Success(t *testing.T) {
	p := &fakePage{w: 612, h: 792}
	b := NewOCRBackend(&fakeOCRModel{text: "scanned text"})
	text, err := b.Extract(context.Background(), Request{Page: p})
	require.NoError(t, err)
	assert.Equal(t, "scanned text", text)
}

func TestOCRBackend_NoModelConfigured(t *testing.T) {
	p := &fakePage{w: 612, h: 792}
	b := &OCRBackend{}
	_, err := b.Extract(context.Background(), Request{Page: p})
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ModelMissing, be.Kind)
}

func TestOCRBackend_FallsBackToNativeTextOnModelFailure(t *testing.T) {
	p := &fakePage{w: 612, h: 792, text: "fallback text"}
	b := NewOCRBackend(&fakeOCRModel{err: errors.New("model crashed")})
	text, err := b.Extract(context.Background(), Request{Page: p})
	require.NoError(t, err)
	assert.Equal(t, "fallback text", text)
}

type fakeLayoutModel struct {
	text string
	err  error
}

func (m *fakeLayoutModel) Analyze(ctx context.Context, image []byte, tokens []string) (string, error) {
	return m.text, m.err
}

func TestLayoutAnalysisBackend_Success(t *testing.T) {
	p := &fakePage{w: 612, h: 792, text: "col1 col2"}
	b := NewLayoutAnalysisBackend(&fakeLayoutModel{text: "structured text"})
	text, err := b.Extract(context.Background(), Request{Page: p})
	require.NoError(t, err)
	assert.Equal(t, "structured text", text)
}

func TestLayoutAnalysisBackend_ModelRuntimeError(t *testing.T) {
	p := &fakePage{w: 612, h: 792}
	b := NewLayoutAnalysisBackend(&fakeLayoutModel{err: errors.New("oom")})
	_, err := b.Extract(context.Background(), Request{Page: p})
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ModelRuntime, be.Kind)
}

func TestFastTextBackend_MissingBinaryReturnsExternalToolFailed(t *testing.T) {
	b := NewFastTextBackend("/nonexistent/pdftotext-binary")
	p := &fakePage{w: 612, h: 792}
	_, err := b.Extract(context.Background(), Request{Page: p, PageIndex: 1, DocumentPath: "/tmp/doc.pdf"})
	require.Error(t, err)
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ExternalToolFailed, be.Kind)
}
