// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/chonker8/engine/backend"
	"github.com/chonker8/engine/fingerprint"
	"github.com/chonker8/engine/grid"
	"github.com/chonker8/engine/logger"
	"github.com/chonker8/engine/pagesrc"
	"github.com/chonker8/engine/pdfsrc"
	"github.com/chonker8/engine/project"
	"github.com/chonker8/engine/router"
	"github.com/chonker8/engine/store"
)

// pageFuture lets a Load racing a Prefetch for the same page wait on the
// in-flight extraction instead of starting a second, duplicate one.
type pageFuture struct {
	done chan struct{}
	grid *grid.Grid
	err  error
}

// Engine is the single-threaded façade orchestrating the fingerprinter,
// router, and projector against one document's store. Concurrent callers
// are safe against each other (the store and the in-flight bookkeeping are
// both internally synchronized), but the engine still presents a logically
// single-actor view: a Load that observes a prior Save always sees it.
type Engine struct {
	cfg     EngineConfig
	doc     pagesrc.Document
	docPath string
	store   *store.Store
	router  *router.Router
	sem     *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[int]*pageFuture
}

// New builds an Engine around an already-open document and a caller-built
// backend set, storing its versioned pages alongside docPath per the
// on-disk layout convention ({cwd}/chonker_data/{stem}.store unless
// cfg.DataDir overrides the directory).
func New(doc pagesrc.Document, docPath string, cfg *EngineConfig, backends map[backend.Method]backend.Backend) (*Engine, error) {
	if cfg == nil {
		cfg = NewDefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: invalid config: %w", err)
	}
	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	storePath := filepath.Join(cfg.DataDir, stem(docPath)+".store")
	st, err := store.Open(storePath, store.Config{
		FlushBufferSize: cfg.FlushBufferSize,
		FlushIdleMs:     cfg.FlushIdleMs,
		LRUCapacity:     cfg.LRUCapacity,
		Compress:        cfg.Compress,
		SparseThreshold: cfg.SparseThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: open store: %w", err)
	}

	r := router.New(backends)
	r.PrimaryQualityGate = cfg.PrimaryQualityGate
	r.FallbackQualityGate = cfg.FallbackQualityGate
	r.BackendTimeout = cfg.BackendTimeout
	r.MaxRetries = cfg.MaxRetries

	logger.Debug(fmt.Sprintf("engine: opened document %s, store %s", docPath, storePath), true)

	return &Engine{
		cfg:      *cfg,
		doc:      doc,
		docPath:  docPath,
		store:    st,
		router:   r,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentBackends)),
		inFlight: make(map[int]*pageFuture),
	}, nil
}

// Open opens the PDF at path and returns an Engine backed by the stock
// backend set: NativeText always, FastText when cfg.FastTextBinaryPath is
// non-empty. OCR and LayoutAnalysis need model handles the engine can't
// construct on its own — wire them in via New if the host has one.
func Open(path string, cfg *EngineConfig) (*Engine, error) {
	doc, err := pdfsrc.OpenDocument(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = NewDefaultEngineConfig()
	}
	backends := map[backend.Method]backend.Backend{
		backend.NativeText: backend.NativeTextBackend{},
	}
	if cfg.FastTextBinaryPath != "" {
		backends[backend.FastText] = backend.NewFastTextBackend(cfg.FastTextBinaryPath)
	}
	return New(doc, path, cfg, backends)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PageCount returns the document's page count.
func (e *Engine) PageCount() int {
	return e.doc.NumPages()
}

// Has reports whether page has a value in the store.
func (e *Engine) Has(page int) bool {
	return e.store.HasPage(uint32(page))
}

// VersionInfo returns (min, max) persisted versions, (0, 0) if never flushed.
func (e *Engine) VersionInfo() (uint64, uint64) {
	return e.store.VersionInfo()
}

// Save enqueues grid as the latest value for page.
func (e *Engine) Save(page int, g *grid.Grid) (uint64, error) {
	return e.store.SavePage(uint32(page), g)
}

// SaveTagged forces a flush, tagging every record written in it.
func (e *Engine) SaveTagged(tag string) (uint64, error) {
	return e.store.SaveTagged(tag)
}

// Undo moves current_version back by one. False, not an error, at version ≤ 1.
func (e *Engine) Undo() (bool, error) {
	return e.store.Undo()
}

// Redo moves current_version forward by one. False, not an error, at the
// highest persisted version.
func (e *Engine) Redo() (bool, error) {
	return e.store.Redo()
}

// Checkout jumps current_version directly to v.
func (e *Engine) Checkout(v uint64) (bool, error) {
	return e.store.Checkout(v)
}

// Load returns page's grid, extracting it if the store has no record yet.
// A successful extraction is memoised: it's written through to the store
// at a new version, so a subsequent Load for the same page is a pure read.
func (e *Engine) Load(page int) (*grid.Grid, error) {
	return e.loadOrJoin(context.Background(), page)
}

// loadOrJoin is Load's body, parameterized on ctx so Prefetch's extractions
// can be cancelled the same way a directly-called Load's can't (Load always
// runs to completion against a background context).
func (e *Engine) loadOrJoin(ctx context.Context, page int) (*grid.Grid, error) {
	if e.store.HasPage(uint32(page)) {
		return e.store.LoadPage(uint32(page), e.cfg.GridWidth, e.cfg.GridHeight)
	}

	fut, owner := e.claimInFlight(page)
	if !owner {
		<-fut.done
		return fut.grid, fut.err
	}

	g, err := e.extract(ctx, page)
	fut.grid, fut.err = g, err
	close(fut.done)

	e.mu.Lock()
	delete(e.inFlight, page)
	e.mu.Unlock()

	return g, err
}

// claimInFlight returns the in-flight future for page, creating and
// claiming ownership of it if none exists yet.
func (e *Engine) claimInFlight(page int) (*pageFuture, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fut, ok := e.inFlight[page]; ok {
		return fut, false
	}
	fut := &pageFuture{done: make(chan struct{})}
	e.inFlight[page] = fut
	return fut, true
}

// extract runs the fingerprint → router → project pipeline for page and
// writes the result through the store. Every invocation is stamped with an
// extraction id threaded through the log/trace lines, so a router fallback
// narrative for one load_page call can be told apart from another's.
func (e *Engine) extract(ctx context.Context, page int) (*grid.Grid, error) {
	extractionID := uuid.NewString()
	logger.Debug(fmt.Sprintf("engine: load page %d starting extraction %s", page, extractionID), true)

	pageRef, err := e.doc.Page(page)
	if err != nil {
		return nil, fmt.Errorf("engine: page %d: %w", page, err)
	}

	fp, err := fingerprint.Analyze(pageRef)
	if err != nil {
		return nil, fmt.Errorf("engine: fingerprint page %d [%s]: %w", page, extractionID, err)
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("engine: acquire backend slot [%s]: %w", extractionID, err)
	}
	result, err := e.router.ExtractWithFallback(ctx, backend.Request{
		Page:         pageRef,
		PageIndex:    page,
		DocumentPath: e.docPath,
	}, fp)
	e.sem.Release(1)
	if err != nil {
		return nil, fmt.Errorf("engine: extract page %d [%s]: %w", page, extractionID, err)
	}
	logger.Debug(fmt.Sprintf("engine: extraction %s used %s (quality %.2f, %dms)",
		extractionID, result.Method, result.QualityScore, result.ExtractionMs), true)

	g := e.project(pageRef, result)

	if _, err := e.store.SavePage(uint32(page), g); err != nil {
		return nil, fmt.Errorf("engine: save page %d [%s]: %w", page, extractionID, err)
	}
	return g, nil
}

// project prefers positioned glyphs (more faithful to the page's actual
// layout) when the winning method was NativeText, since pageRef.Glyphs()
// and pageRef.RawText() describe the same extraction; every other method
// only hands back flattened text, which is wrapped as lines instead.
func (e *Engine) project(pageRef pagesrc.PageRef, result backend.Result) *grid.Grid {
	if result.Method == backend.NativeText {
		if glyphs, err := pageRef.Glyphs(); err == nil {
			w, h := pageRef.Dimensions()
			return project.Glyphs(glyphs, w, h, e.cfg.GridWidth, e.cfg.GridHeight)
		}
	}
	return project.Text(result.Text, e.cfg.GridWidth, e.cfg.GridHeight)
}
