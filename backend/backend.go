package backend

import (
	"context"
	"fmt"

	"github.com/chonker8/engine/logger"
	"github.com/chonker8/engine/pagesrc"
)

// Request bundles what a Backend needs to extract one page: the page
// reference itself, plus the 1-based page index and document path that
// external-tool backends (FastText) need to invoke a subprocess.
type Request struct {
	Page         pagesrc.PageRef
	PageIndex    int
	DocumentPath string
}

// Backend extracts text from one page. Implementations are stateless with
// respect to prior pages, though they may cache loaded model handles across
// calls (OCRBackend and LayoutAnalysisBackend hold theirs in a Model field).
type Backend interface {
	Extract(ctx context.Context, req Request) (string, error)
}

// safeExtract runs fn and converts any panic into a ModelRuntime error,
// so an unexpected panic inside a backend never escapes the fallback chain.
func safeExtract(fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("backend panic recovered: %v", r))
			err = newError(ModelRuntime, fmt.Sprintf("panic: %v", r), nil)
		}
	}()
	return fn()
}

// NativeTextBackend asks the parser for raw page text directly. Fast, lossy
// on layout, typically empty on scanned pages.
type NativeTextBackend struct{}

func (NativeTextBackend) Extract(ctx context.Context, req Request) (string, error) {
	return safeExtract(func() (string, error) {
		text, err := req.Page.RawText()
		if err != nil {
			return "", newError(ParserError, err.Error(), err)
		}
		return text, nil
	})
}
