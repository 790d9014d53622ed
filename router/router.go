// Package router implements the policy that picks an extraction backend
// from a page fingerprint and sequences the quality-gated fallback chain.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/chonker8/engine/backend"
	"github.com/chonker8/engine/fingerprint"
	"github.com/chonker8/engine/logger"
	"github.com/chonker8/engine/quality"
)

// DefaultPrimaryQualityGate and DefaultFallbackQualityGate are the engine's
// default quality gates (§6 primary_quality_gate / fallback_quality_gate).
const (
	DefaultPrimaryQualityGate  = 0.70
	DefaultFallbackQualityGate = 0.50
)

// DetermineStrategy picks the primary extraction method for fp. Priority
// order, first match wins; the mapping is a pure function of the
// fingerprint, so equal fingerprints always choose the same method.
func DetermineStrategy(fp fingerprint.Fingerprint) backend.Method {
	switch {
	case fp.TextCoverage > 0.8 && fp.ImageCoverage < 0.2:
		return backend.NativeText
	case fp.TextCoverage < 0.1 && fp.ImageCoverage > 0.8:
		return backend.OCR
	case fp.HasTables:
		return backend.LayoutAnalysis
	case fp.TextCoverage > 0.5:
		return backend.FastText
	case fp.TextQuality < 0.5:
		return backend.OCR
	default:
		return backend.NativeText
	}
}

// FallbackChain returns the fixed, ordered fallback list for primary (primary excluded).
func FallbackChain(primary backend.Method) []backend.Method {
	switch primary {
	case backend.NativeText:
		return []backend.Method{backend.FastText, backend.OCR}
	case backend.FastText:
		return []backend.Method{backend.NativeText, backend.OCR}
	case backend.OCR:
		return []backend.Method{backend.LayoutAnalysis, backend.NativeText}
	case backend.LayoutAnalysis:
		return []backend.Method{backend.OCR, backend.FastText, backend.NativeText}
	default:
		return nil
	}
}

// Router drives backends according to DetermineStrategy/FallbackChain,
// gated by PrimaryQualityGate and FallbackQualityGate.
type Router struct {
	Backends            map[backend.Method]backend.Backend
	PrimaryQualityGate   float32
	FallbackQualityGate  float32

	// BackendTimeout bounds a single backend invocation; zero means the
	// caller's ctx is used as-is with no additional deadline. MaxRetries is
	// the number of additional attempts at the same method after the first
	// one errors, before moving on to the next link in the fallback chain —
	// grounded on the teacher engine's per-page retry loop.
	BackendTimeout time.Duration
	MaxRetries     int
}

// New returns a Router with the engine's default quality gates and no
// per-backend timeout or retries; callers that want those set
// BackendTimeout/MaxRetries from EngineConfig after construction.
func New(backends map[backend.Method]backend.Backend) *Router {
	return &Router{
		Backends:            backends,
		PrimaryQualityGate:  DefaultPrimaryQualityGate,
		FallbackQualityGate: DefaultFallbackQualityGate,
	}
}

// attempt is one backend invocation's outcome, kept so ExtractWithFallback
// can fall back to "best result seen" if nothing clears its gate.
type attempt struct {
	result backend.Result
	err    error
}

// ExtractWithFallback invokes the primary method chosen for fp; if it
// succeeds with quality_score ≥ PrimaryQualityGate, it returns immediately.
// Otherwise it walks the fallback chain in order and accepts the first
// result with quality_score ≥ FallbackQualityGate. If nothing qualifies, it
// returns the best-scoring result seen, or the primary's error if every
// attempt errored.
func (r *Router) ExtractWithFallback(ctx context.Context, req backend.Request, fp fingerprint.Fingerprint) (backend.Result, error) {
	primary := DetermineStrategy(fp)
	logger.Debug(fmt.Sprintf("router: primary method selected: %s", primary), true)

	var attempts []attempt

	primaryAttempt := r.invoke(ctx, primary, req)
	attempts = append(attempts, primaryAttempt)
	if primaryAttempt.err == nil && primaryAttempt.result.QualityScore >= r.PrimaryQualityGate {
		logger.Debug(fmt.Sprintf("router: using primary method %s (quality %.2f)", primary, primaryAttempt.result.QualityScore), true)
		return primaryAttempt.result, nil
	}

	for _, method := range FallbackChain(primary) {
		logger.Debug(fmt.Sprintf("router: trying fallback method %s", method), true)
		a := r.invoke(ctx, method, req)
		attempts = append(attempts, a)
		if a.err == nil && a.result.QualityScore >= r.FallbackQualityGate {
			logger.Debug(fmt.Sprintf("router: using fallback method %s (quality %.2f)", method, a.result.QualityScore), true)
			return a.result, nil
		}
	}

	best, ok := bestAttempt(attempts)
	if ok {
		logger.Debug(fmt.Sprintf("router: no method cleared its gate, using best seen: %s (quality %.2f)", best.result.Method, best.result.QualityScore), true)
		return best.result, nil
	}

	logger.Debug("router: every method errored, returning primary's error", true)
	return backend.Result{}, primaryAttempt.err
}

// invoke calls method's backend, retrying up to r.MaxRetries additional
// times on error and bounding each individual attempt by r.BackendTimeout
// when set, the same shape as the teacher engine's
// extractPageWithRetries: timeout-per-attempt, bounded retry count, debug
// log on each retry.
func (r *Router) invoke(ctx context.Context, method backend.Method, req backend.Request) attempt {
	b, ok := r.Backends[method]
	if !ok {
		return attempt{err: fmt.Errorf("router: no backend registered for method %s", method)}
	}

	var lastErr error
	for try := 0; try <= r.MaxRetries; try++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if r.BackendTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, r.BackendTimeout)
		}

		start := time.Now()
		text, err := b.Extract(callCtx, req)
		elapsed := uint64(time.Since(start).Milliseconds())
		if cancel != nil {
			cancel()
		}

		if err == nil {
			return attempt{result: backend.Result{
				Text:         text,
				Method:       method,
				QualityScore: quality.Score(text),
				ExtractionMs: elapsed,
			}}
		}

		lastErr = err
		if try < r.MaxRetries {
			logger.Debug(fmt.Sprintf("router: retrying %s after error (attempt %d/%d): %v", method, try+1, r.MaxRetries, err), true)
		}
	}
	return attempt{err: lastErr}
}

func bestAttempt(attempts []attempt) (attempt, bool) {
	var best attempt
	found := false
	for _, a := range attempts {
		if a.err != nil {
			continue
		}
		if !found || a.result.QualityScore > best.result.QualityScore {
			best = a
			found = true
		}
	}
	return best, found
}
