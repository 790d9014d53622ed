// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"

	"github.com/chonker8/engine/pdfsrc"
)

// metadataProvider is implemented by documents that can surface the
// underlying parser's Info/XMP metadata and access permissions. It's kept
// separate from pagesrc.Document since metadata isn't part of the core
// extraction contract — a fixture Document used in tests need not implement it.
type metadataProvider interface {
	MetadataFull() (pdfsrc.MetadataFull, error)
}

// Metadata returns the document's Info/XMP metadata and access permissions.
// Returns an error if the concrete Document the engine was opened with
// doesn't expose metadata (e.g. a test fixture).
func (e *Engine) Metadata() (pdfsrc.MetadataFull, error) {
	mp, ok := e.doc.(metadataProvider)
	if !ok {
		return pdfsrc.MetadataFull{}, fmt.Errorf("engine: document does not expose metadata")
	}
	return mp.MetadataFull()
}
