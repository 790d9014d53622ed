package backend

import (
	"context"
	"time"

	"github.com/chonker8/engine/logger"
)

// OCRTimeout is the suggested timeout for one OCR invocation.
const OCRTimeout = 30 * time.Second

// OCRRasterWidth and OCRRasterHeight are the minimum rasterization
// resolution the OCR backend requests, per the spec's ≥1200×1600 floor.
const (
	OCRRasterWidth  = 1200
	OCRRasterHeight = 1600
)

// Model is a black-box image → text function, backed by whatever OCR model
// the host process wires in.
type Model interface {
	Recognize(ctx context.Context, image []byte, width, height int) (string, error)
}

// OCRBackend rasterises the page and feeds it to an OCR model adapter. If
// the model fails, it falls back to NativeText internally, reported as its
// own quality by the caller re-scoring the returned text.
type OCRBackend struct {
	Model   Model
	Width   int
	Height  int
	Timeout time.Duration
}

// NewOCRBackend returns an OCR backend at the spec's minimum raster resolution.
func NewOCRBackend(model Model) *OCRBackend {
	return &OCRBackend{Model: model, Width: OCRRasterWidth, Height: OCRRasterHeight, Timeout: OCRTimeout}
}

func (b *OCRBackend) Extract(ctx context.Context, req Request) (string, error) {
	if b.Model == nil {
		return "", newError(ModelMissing, "no OCR model configured", nil)
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

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = OCRTimeout
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return safeExtract(func() (string, error) {
		text, err := b.Model.Recognize(rctx, image, w, h)
		if err == nil {
			return text, nil
		}

		if rctx.Err() == context.DeadlineExceeded {
			return "", newError(Timeout, "ocr model timed out", err)
		}

		logger.Debug("ocr: model failed, falling back to native text internally", "err", err.Error(), true)
		fallback, ferr := NativeTextBackend{}.Extract(ctx, req)
		if ferr != nil {
			return "", newError(ModelRuntime, err.Error(), err)
		}
		return fallback, nil
	})
}
