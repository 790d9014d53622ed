// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

// Package engine implements the façade (C8): a single-threaded object
// holding the store, fingerprinter, router, and projector, orchestrating
// them into load/save/checkout/undo/redo/version_info/has/page_count.
package engine

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chonker8/engine/logger"
)

// EngineConfig holds every tunable the engine exposes, enumerated in the
// external-interfaces contract, plus the concurrency knobs that back the
// router's per-backend timeout/retry behavior.
type EngineConfig struct {
	GridWidth  int `validate:"min=1"`
	GridHeight int `validate:"min=1"`

	SparseThreshold float64 `validate:"min=0,max=1"`

	FlushBufferSize int `validate:"min=1"`
	FlushIdleMs     int `validate:"min=0"`
	LRUCapacity     int `validate:"min=1"`
	Compress        bool

	PrimaryQualityGate  float32 `validate:"min=0,max=1"`
	FallbackQualityGate float32 `validate:"min=0,max=1"`

	// MaxConcurrentBackends bounds how many external-tool/model backend
	// invocations (FastText, OCR, LayoutAnalysis) may be in flight at once
	// for this engine instance.
	MaxConcurrentBackends int `validate:"min=1,max=10"`

	// BackendTimeout and MaxRetries are threaded straight into the Router
	// (see engine.New) and bound every single backend invocation, including
	// retries of the same method before the fallback chain is tried.
	BackendTimeout time.Duration `validate:"required"`
	MaxRetries     int           `validate:"min=0,max=3"`

	// FastTextBinaryPath is the pdftotext-compatible executable the
	// FastText backend invokes. Empty disables the FastText backend.
	FastTextBinaryPath string

	// DataDir is the directory backing files are written under, relative
	// to the current working directory unless absolute.
	DataDir string

	Logger logger.LogFunc
}

// NewDefaultEngineConfig returns the engine's documented defaults.
func NewDefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		GridWidth:             200,
		GridHeight:            100,
		SparseThreshold:       0.20,
		FlushBufferSize:       100,
		FlushIdleMs:           5000,
		LRUCapacity:           5,
		Compress:              true,
		PrimaryQualityGate:    0.70,
		FallbackQualityGate:   0.50,
		MaxConcurrentBackends: 1,
		BackendTimeout:        30 * time.Second,
		MaxRetries:            3,
		FastTextBinaryPath:    "pdftotext",
		DataDir:               "chonker_data",
	}
}

// Validate checks the config against its field tags, failing fast on an
// engine misconfiguration rather than surfacing it mid-extraction.
func (cfg *EngineConfig) Validate() error {
	logger.Debug("engine: validating config")
	return validator.New().Struct(cfg)
}
