// Package fingerprint characterises a page's content mix — how much of it is
// text vs. image, whether it looks tabular, and how trustworthy a quick text
// extraction already is — to drive the extraction router's method choice.
package fingerprint

import (
	"fmt"
	"time"

	"github.com/chonker8/engine/pagesrc"
	"github.com/chonker8/engine/quality"
)

// avgCharArea is the fixed heuristic constant (points²) used to approximate
// text coverage from a character count, per the engine's content model.
const avgCharArea = 10.0

// Fingerprint is the coarse feature vector driving extraction-method selection.
type Fingerprint struct {
	TextCoverage  float64
	ImageCoverage float64
	CharCount     uint64
	HasTables     bool
	TextQuality   float32
	AnalysisMs    uint64
}

// Error wraps a parser failure encountered while fingerprinting a page.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("fingerprint: %v", e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

// Analyze computes the Fingerprint for page.
func Analyze(page pagesrc.PageRef) (Fingerprint, error) {
	start := time.Now()

	w, h := page.Dimensions()
	pageArea := w * h

	rawText, err := page.RawText()
	if err != nil {
		return Fingerprint{}, &Error{Cause: err}
	}

	images, err := page.EmbeddedImages()
	if err != nil {
		return Fingerprint{}, &Error{Cause: err}
	}

	charCount := uint64(len([]rune(rawText)))

	textCoverage := 0.0
	if pageArea > 0 {
		textCoverage = clamp01(float64(charCount) * avgCharArea / pageArea)
	}

	imageCoverage := 0.0
	if pageArea > 0 {
		var sum float64
		for _, bbox := range images {
			sum += bbox.Area()
		}
		imageCoverage = clamp01(sum / pageArea)
	}

	fp := Fingerprint{
		TextCoverage:  textCoverage,
		ImageCoverage: imageCoverage,
		CharCount:     charCount,
		HasTables:     quality.HasTables(rawText),
		TextQuality:   quality.Score(rawText),
		AnalysisMs:    uint64(time.Since(start).Milliseconds()),
	}
	return fp, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
