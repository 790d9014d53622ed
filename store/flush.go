package store

import (
	"fmt"
	"time"

	"github.com/chonker8/engine/grid"
	"github.com/chonker8/engine/logger"
)

// flushLocked runs the flush protocol (§4.2): collapse the write buffer
// (already last-writer-wins, keyed by page), assign one new version to
// every survivor, serialize the whole snapshot atomically, then commit the
// in-memory state. On any I/O error the in-memory state is left exactly as
// it was, and the pending writes remain buffered for the next trigger.
//
// If tag is non-nil and the buffer is empty, the tag is instead attached to
// the records already persisted at the current version — SaveTagged's
// "nothing pending" case.
func (s *Store) flushLocked(tag *string) error {
	if len(s.writeBuffer) == 0 {
		if tag != nil {
			return s.tagCurrentVersionLocked(*tag)
		}
		return nil
	}

	newVersion := s.nextVersionLocked()
	pendingCount := len(s.writeBuffer)
	candidate := make([]PageRecord, len(s.records), len(s.records)+len(s.writeBuffer))
	copy(candidate, s.records)

	for _, pw := range s.writeBuffer {
		encoded := grid.EncodeWithThreshold(pw.Grid, s.cfg.SparseThreshold)
		candidate = append(candidate, PageRecord{
			Page:          pw.Page,
			Timestamp:     pw.ReceivedAt.UnixNano(),
			Encoded:       encoded,
			Density:       pw.Grid.Density(),
			SchemaVersion: SchemaVersion,
			Tag:           tag,
			Version:       newVersion,
		})
	}

	if err := s.persist(candidate, newVersion); err != nil {
		return err
	}

	s.records = candidate
	s.currentVersion = newVersion
	s.writeBuffer = make(map[uint32]PendingWrite)
	s.lastFlushAt = time.Now()
	logger.Debug(fmt.Sprintf("store: flushed %d record(s) at version %d", pendingCount, newVersion), true)
	return nil
}

func (s *Store) tagCurrentVersionLocked(tag string) error {
	if s.currentVersion == 0 {
		return nil
	}
	candidate := make([]PageRecord, len(s.records))
	copy(candidate, s.records)
	tagged := false
	for i := range candidate {
		if candidate[i].Version == s.currentVersion {
			t := tag
			candidate[i].Tag = &t
			tagged = true
		}
	}
	if !tagged {
		return nil
	}
	if err := s.persist(candidate, s.currentVersion); err != nil {
		return err
	}
	s.records = candidate
	return nil
}
