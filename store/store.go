// Package store implements the versioned, append-only page store: a write
// buffer batched to a backing file, a bounded LRU of decoded grids, and
// monotonically increasing versions that support checkout, undo, and redo.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chonker8/engine/grid"
	"golang.org/x/sync/errgroup"
)

// Config holds the store's tunables. Zero or negative numeric fields fall
// back to DefaultConfig's values via Open; Compress is used as given, so a
// zero Config stores payloads uncompressed.
type Config struct {
	FlushBufferSize int
	FlushIdleMs     int
	LRUCapacity     int
	Compress        bool
	SparseThreshold float64
}

// DefaultConfig returns the engine's default store tunables.
func DefaultConfig() Config {
	return Config{
		FlushBufferSize: 100,
		FlushIdleMs:     5000,
		LRUCapacity:     5,
		Compress:        true,
		SparseThreshold: grid.SparseThreshold,
	}
}

func (c Config) withDefaults() Config {
	if c.FlushBufferSize <= 0 {
		c.FlushBufferSize = 100
	}
	if c.FlushIdleMs <= 0 {
		c.FlushIdleMs = 5000
	}
	if c.LRUCapacity <= 0 {
		c.LRUCapacity = 5
	}
	if c.SparseThreshold <= 0 {
		c.SparseThreshold = grid.SparseThreshold
	}
	return c
}

// PendingWrite is one buffered, not-yet-flushed save.
type PendingWrite struct {
	Page       uint32
	Grid       *grid.Grid
	ReceivedAt time.Time
}

// Store is the versioned page store for one document. Every exported method
// holds the store's mutex for its whole duration, so concurrent calls are
// serialized — in practice it is owned by a single engine actor (§7
// scheduling model).
type Store struct {
	mu  sync.Mutex
	cfg Config
	path string

	records        []PageRecord
	currentVersion uint64
	writeBuffer    map[uint32]PendingWrite
	cache          *lruCache
	lastFlushAt    time.Time
}

// Open loads the backing file at path if it exists, or initializes a fresh,
// empty store. A corrupt or schema-incompatible existing file is a fatal
// error — Open never silently truncates or upgrades it.
func Open(path string, cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	s := &Store{
		cfg:         cfg,
		path:        path,
		writeBuffer: make(map[uint32]PendingWrite),
		cache:       newLRUCache(cfg.LRUCapacity),
		lastFlushAt: time.Now(),
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &IOError{Cause: err}
	}
	if len(body) == 0 {
		return s, nil
	}
	if len(body) < len(magic) || string(body[:len(magic)]) != magic {
		return nil, &CorruptError{Reason: "missing or invalid magic header"}
	}
	records, currentVersion, err := unmarshalSnapshot(body[len(magic):])
	if err != nil {
		return nil, err
	}
	s.records = records
	s.currentVersion = currentVersion
	return s, nil
}

const magic = "CHONK001"

// persist serializes records/currentVersion to the backing file atomically
// (write-temp-then-rename): the engine never exposes a partially-written
// file to a concurrent reader or a crash.
func (s *Store) persist(records []PageRecord, currentVersion uint64) error {
	body, err := marshalSnapshot(records, currentVersion, s.cfg.Compress)
	if err != nil {
		return &IOError{Cause: err}
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Cause: err}
		}
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &IOError{Cause: err}
	}
	if _, err := f.Write([]byte(magic)); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Cause: err}
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Cause: err}
	}

	// The data file's fsync and the containing directory's fsync touch
	// unrelated file descriptors, so they run concurrently rather than
	// back-to-back.
	var g errgroup.Group
	g.Go(f.Sync)
	dir := filepath.Dir(s.path)
	if dir == "" {
		dir = "."
	}
	g.Go(func() error {
		d, err := os.Open(dir)
		if err != nil {
			return err
		}
		defer d.Close()
		return d.Sync()
	})
	if err := g.Wait(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IOError{Cause: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IOError{Cause: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &IOError{Cause: err}
	}
	return nil
}

// SavePage enqueues grid as the latest value for page. Multiple saves to
// the same page within one buffer window collapse to the latest at flush
// time (the buffer is keyed by page). Returns the version the write belongs
// to: the version actually assigned by the flush that just ran, or the
// version a future flush will assign if nothing triggered one yet.
func (s *Store) SavePage(page uint32, g *grid.Grid) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.put(page, g)
	s.writeBuffer[page] = PendingWrite{Page: page, Grid: g, ReceivedAt: time.Now()}

	pendingVersion := s.nextVersionLocked()
	if s.shouldFlushLocked() {
		if err := s.flushLocked(nil); err != nil {
			return s.currentVersion, err
		}
		return s.currentVersion, nil
	}
	return pendingVersion, nil
}

func (s *Store) shouldFlushLocked() bool {
	if len(s.writeBuffer) >= s.cfg.FlushBufferSize {
		return true
	}
	return time.Since(s.lastFlushAt) >= time.Duration(s.cfg.FlushIdleMs)*time.Millisecond
}

// SaveTagged forces a flush, attaching tag to every record written in it. If
// nothing is pending, tag is instead attached to the records already at the
// current version.
func (s *Store) SaveTagged(tag string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(&tag); err != nil {
		return s.currentVersion, err
	}
	return s.currentVersion, nil
}

// LoadPage returns the grid for page: from the LRU if present, else the
// write buffer (latest wins), else the highest-version record at or below
// currentVersion, else an empty page reads as all-space — indistinguishable
// from a saved-empty page, by design. A record that fails to decode is a
// genuine failure, not an absent page, and is reported rather than swallowed.
func (s *Store) LoadPage(page uint32, w, h int) (*grid.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.cache.get(page); ok {
		return g, nil
	}
	if pw, ok := s.writeBuffer[page]; ok {
		s.cache.put(page, pw.Grid)
		return pw.Grid, nil
	}

	var best *PageRecord
	for i := range s.records {
		r := &s.records[i]
		if r.Page != page || r.Version > s.currentVersion {
			continue
		}
		if best == nil || r.Version > best.Version {
			best = r
		}
	}
	if best == nil {
		return grid.New(w, h), nil
	}
	g, err := grid.Decode(best.Encoded)
	if err != nil {
		return nil, err
	}
	s.cache.put(page, g)
	return g, nil
}

// HasPage reports whether page has a value in the buffer or visible record set.
func (s *Store) HasPage(page uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.writeBuffer[page]; ok {
		return true
	}
	for _, r := range s.records {
		if r.Page == page && r.Version <= s.currentVersion {
			return true
		}
	}
	return false
}

// CurrentVersion returns the store's current version pointer.
func (s *Store) CurrentVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentVersion
}

// VersionInfo returns (1, highest persisted version), or (0, 0) if the
// store has never been flushed.
func (s *Store) VersionInfo() (uint64, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versionInfoLocked()
}

func (s *Store) versionInfoLocked() (uint64, uint64) {
	var max uint64
	for _, r := range s.records {
		if r.Version > max {
			max = r.Version
		}
	}
	if max == 0 {
		return 0, 0
	}
	return 1, max
}

// nextVersionLocked returns the version number the next flush should use.
// It is deliberately not currentVersion+1: Undo and Checkout rewind
// currentVersion without deleting the now-superseded records ahead of it
// (see the Undo doc comment), so a later flush that only looked at
// currentVersion could mint a version number that collides with one of
// those still-present records. Taking the max over both currentVersion and
// every record's Version guarantees a fresh, never-before-used number.
func (s *Store) nextVersionLocked() uint64 {
	next := s.currentVersion
	for _, r := range s.records {
		if r.Version > next {
			next = r.Version
		}
	}
	return next + 1
}

// Undo flushes pending writes, then moves current_version back by one and
// invalidates the LRU. No record is dropped, including those above the new
// version — undo
// only moves the filter that load_page/version_info apply, per the record
// set's append-only, never-deleted lifecycle. Returns false (not an error)
// if already at version 1 or below.
func (s *Store) Undo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(nil); err != nil {
		return false, err
	}
	if s.currentVersion <= 1 {
		return false, nil
	}
	newVersion := s.currentVersion - 1
	if err := s.persist(s.records, newVersion); err != nil {
		return false, err
	}
	s.currentVersion = newVersion
	s.cache.clear()
	return true, nil
}

// Redo advances current_version by one if a later version exists in durable
// storage. Returns false (not an error) if already at the highest version.
func (s *Store) Redo() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, maxVersion := s.versionInfoLocked()
	if s.currentVersion >= maxVersion {
		return false, nil
	}
	newVersion := s.currentVersion + 1
	if err := s.persist(s.records, newVersion); err != nil {
		return false, err
	}
	s.currentVersion = newVersion
	s.cache.clear()
	return true, nil
}

// Checkout jumps current_version directly to v. Returns false (not an
// error) if v is outside [1, highest persisted version].
func (s *Store) Checkout(v uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(nil); err != nil {
		return false, err
	}
	_, maxVersion := s.versionInfoLocked()
	if v < 1 || v > maxVersion {
		return false, nil
	}
	if err := s.persist(s.records, v); err != nil {
		return false, err
	}
	s.currentVersion = v
	s.cache.clear()
	return true, nil
}

// TagAt returns the tag attached to the record(s) at version v, if any.
func (s *Store) TagAt(v uint64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Version == v && r.Tag != nil {
			return *r.Tag, true
		}
	}
	return "", false
}
