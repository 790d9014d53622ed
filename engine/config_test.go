// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultEngineConfig_Validates(t *testing.T) {
	cfg := NewDefaultEngineConfig()
	require.NoError(t, cfg.Validate())
}

func TestEngineConfig_Validate_RejectsZeroGridDimensions(t *testing.T) {
	cfg := NewDefaultEngineConfig()
	cfg.GridWidth = 0
	assert.Error(t, cfg.Validate())
}

func TestEngineConfig_Validate_RejectsOutOfRangeSparseThreshold(t *testing.T) {
	cfg := NewDefaultEngineConfig()
	cfg.SparseThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestEngineConfig_Validate_RejectsZeroBackendTimeout(t *testing.T) {
	cfg := NewDefaultEngineConfig()
	cfg.BackendTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestEngineConfig_Validate_RejectsExcessiveConcurrency(t *testing.T) {
	cfg := NewDefaultEngineConfig()
	cfg.MaxConcurrentBackends = 11
	assert.Error(t, cfg.Validate())
}
