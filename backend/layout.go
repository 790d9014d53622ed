package backend

import (
	"context"
	"strings"
	"time"
)

// LayoutTimeout is the suggested timeout for one LayoutAnalysis invocation.
const LayoutTimeout = 30 * time.Second

// LayoutModel runs document-understanding over a rasterised page and a
// tokenised version of its native text, returning flattened text that
// preserves the reading order of detected blocks.
type LayoutModel interface {
	Analyze(ctx context.Context, image []byte, tokens []string) (string, error)
}

// LayoutAnalysisBackend combines rasterization with NativeText tokens to
// drive a document-understanding model, for pages whose layout (e.g. tables)
// defeats simpler extraction.
type LayoutAnalysisBackend struct {
	Model   LayoutModel
	Width   int
	Height  int
	Timeout time.Duration
}

// NewLayoutAnalysisBackend returns a LayoutAnalysis backend at OCR's raster resolution.
func NewLayoutAnalysisBackend(model LayoutModel) *LayoutAnalysisBackend {
	return &LayoutAnalysisBackend{Model: model, Width: OCRRasterWidth, Height: OCRRasterHeight, Timeout: LayoutTimeout}
}

func (b *LayoutAnalysisBackend) Extract(ctx context.Context, req Request) (string, error) {
	if b.Model == nil {
		return "", newError(ModelMissing, "no layout analysis model configured", nil)
	}

	w, h := b.Width, b.Height
	if w <= 0 {
		w = OCRRasterWidth
	}
	if h <= 0 {
		h = OCRRasterHeight
	}

	image, err := req.Page.Rasterize(w, h)
	if err != nil {
		return "", newError(ParserError, err.Error(), err)
	}

	nativeText, err := req.Page.RawText()
	if err != nil {
		return "", newError(ParserError, err.Error(), err)
	}
	tokens := tokenize(nativeText)

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = LayoutTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return safeExtract(func() (string, error) {
		text, err := b.Model.Analyze(rctx, image, tokens)
		if err != nil {
			if rctx.Err() == context.DeadlineExceeded {
				return "", newError(Timeout, "layout analysis model timed out", err)
			}
			return "", newError(ModelRuntime, err.Error(), err)
		}
		return text, nil
	})
}

func tokenize(text string) []string {
	return strings.Fields(text)
}
