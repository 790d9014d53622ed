// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/chonker8/engine/logger"
)

// Prefetch extracts and saves every page in pages concurrently, bounded by
// cfg.MaxConcurrentBackends the same way Load's own extraction is. A page
// already in the store is skipped; a page a concurrent Load is already
// extracting is joined rather than re-extracted, via the same in-flight
// future map Load uses.
//
// Prefetch is best-effort: it collects every page's error rather than
// aborting on the first one, and returns a combined error only if at least
// one page failed.
func (e *Engine) Prefetch(ctx context.Context, pages []int) error {
	logger.Debug(fmt.Sprintf("engine: prefetch requested for %d page(s)", len(pages)), true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, page := range pages {
		if e.store.HasPage(uint32(page)) {
			continue
		}
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			if _, err := e.loadOrJoin(ctx, page); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("page %d: %w", page, err))
				mu.Unlock()
			}
		}(page)
	}
	wg.Wait()

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("engine: prefetch failed on %d page(s): %w", len(errs), errs[0])
}
