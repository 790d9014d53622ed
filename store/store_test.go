package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chonker8/engine/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridWith(ch rune, w, h int) *grid.Grid {
	g := grid.New(w, h)
	g.Set(0, 0, ch)
	return g
}

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "doc.store")
}

func TestSavePage_BufferedUntilFlushTrigger(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 100, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.CurrentVersion(), "below buffer threshold and idle window, nothing flushed yet")
	assert.Len(t, s.writeBuffer, 1)
}

func TestSavePage_FlushesWhenBufferFull(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 2, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	_, err = s.SavePage(1, gridWith('B', 2, 2))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), s.CurrentVersion())
	assert.Len(t, s.writeBuffer, 0)
}

func TestSavePage_CollapsesToLatestWithinWindow(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 10, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('B', 2, 2))
	require.NoError(t, err)
	assert.Len(t, s.writeBuffer, 1, "second save to the same page collapses, not appends")

	_, err = s.SaveTagged("snap")
	require.NoError(t, err)
	g, err := s.LoadPage(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'B', g.At(0, 0))
}

func TestLoadPage_NeverSavedIsAllSpace(t *testing.T) {
	s, err := Open(tempStorePath(t), DefaultConfig())
	require.NoError(t, err)
	g, err := s.LoadPage(7, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, g.NonSpaceCount())
}

func TestLoadPage_FromPersistedRecordAfterCacheClear(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('Z', 2, 2))
	require.NoError(t, err)
	require.Equal(t, uint64(1), s.CurrentVersion())

	s.cache.clear()
	g, err := s.LoadPage(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'Z', g.At(0, 0))
}

func TestUndoRedo_AcrossTwoPages(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	_, err = s.SavePage(0, gridWith('A', 2, 2)) // version -> 1
	require.NoError(t, err)
	_, err = s.SavePage(1, gridWith('B', 2, 2)) // version -> 2
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('C', 2, 2)) // version -> 3
	require.NoError(t, err)
	require.Equal(t, uint64(3), s.CurrentVersion())

	ok, err := s.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), s.CurrentVersion())

	g0, err := s.LoadPage(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'A', g0.At(0, 0))
	g1, err := s.LoadPage(1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'B', g1.At(0, 0))

	ok, err = s.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	g0, err = s.LoadPage(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'C', g0.At(0, 0))
}

func TestUndo_StopsAtVersionOne(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)

	ok, err := s.Undo()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), s.CurrentVersion())
}

func TestRedo_StopsAtHighestVersion(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)

	ok, err := s.Redo()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckout_IsDeterministic(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('B', 2, 2))
	require.NoError(t, err)

	ok, err := s.Checkout(1)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		g, err := s.LoadPage(0, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 'A', g.At(0, 0))
	}
}

func TestCheckout_OutOfRangeReturnsFalse(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)

	ok, err := s.Checkout(99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveTagged_AttachesTagAndSurvivesReload(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, Config{FlushBufferSize: 10, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	v, err := s.SaveTagged("checkpoint-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	tag, ok := s.TagAt(1)
	require.True(t, ok)
	assert.Equal(t, "checkpoint-1", tag)

	reopened, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	tag, ok = reopened.TagAt(1)
	require.True(t, ok)
	assert.Equal(t, "checkpoint-1", tag)
}

func TestVersionInfo_EmptyStore(t *testing.T) {
	s, err := Open(tempStorePath(t), DefaultConfig())
	require.NoError(t, err)
	min, max := s.VersionInfo()
	assert.Equal(t, uint64(0), min)
	assert.Equal(t, uint64(0), max)
}

func TestOpen_CorruptFileIsFatal(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("not a valid store file"), 0o644))

	_, err := Open(path, DefaultConfig())
	require.Error(t, err)
	var ce *CorruptError
	assert.ErrorAs(t, err, &ce)
}

func TestOpen_SchemaMismatchIsFatal(t *testing.T) {
	path := tempStorePath(t)
	body, err := marshalSnapshot([]PageRecord{{
		Page: 0, Version: 1, SchemaVersion: "9.9.9",
		Encoded: grid.Encode(gridWith('A', 2, 2)),
	}}, 1, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append([]byte(magic), body...), 0o644))

	_, err = Open(path, DefaultConfig())
	require.Error(t, err)
	var se *SchemaMismatchError
	assert.ErrorAs(t, err, &se)
}

func TestPersist_NoTempFileLeftBehindOnSuccess(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestReopen_PreservesStateAcrossProcesses(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(3, gridWith('Q', 2, 2))
	require.NoError(t, err)

	reopened, err := Open(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reopened.CurrentVersion())
	g, err := reopened.LoadPage(3, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'Q', g.At(0, 0))
}

func TestSavePage_IdleTimeoutTriggersFlush(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1000, FlushIdleMs: 20, LRUCapacity: 5})
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.CurrentVersion(), "still within the idle window")

	time.Sleep(30 * time.Millisecond)
	_, err = s.SavePage(1, gridWith('B', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.CurrentVersion())
	assert.Len(t, s.writeBuffer, 0)
}

func TestSavePage_ReturnsVersionActuallyAssignedWhenFlushRuns(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	v, err := s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v, "buffer size of 1 flushes inline, so the version returned must be the one just persisted")
	assert.Equal(t, uint64(1), s.CurrentVersion())
}

func TestSavePage_ReturnsPendingVersionWhenNotYetFlushed(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 100, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	v, err := s.SavePage(0, gridWith('A', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), s.CurrentVersion(), "nothing flushed yet")
	assert.Equal(t, uint64(1), v, "the version this write will get once a flush eventually runs")
}

// Reproduces the scenario from the store's version-collision review: Undo
// rewinds currentVersion without deleting the now-superseded record ahead
// of it, so a later flush must not reuse that record's version number.
func TestSavePage_AfterUndo_DoesNotCollideWithSupersededVersion(t *testing.T) {
	s, err := Open(tempStorePath(t), Config{FlushBufferSize: 1, FlushIdleMs: 60_000, LRUCapacity: 5})
	require.NoError(t, err)

	_, err = s.SavePage(0, gridWith('A', 2, 2)) // v1
	require.NoError(t, err)
	_, err = s.SavePage(1, gridWith('B', 2, 2)) // v2
	require.NoError(t, err)
	_, err = s.SavePage(0, gridWith('C', 2, 2)) // v3, page0 = C
	require.NoError(t, err)
	require.Equal(t, uint64(3), s.CurrentVersion())

	ok, err := s.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(2), s.CurrentVersion())

	v, err := s.SavePage(0, gridWith('D', 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), v, "must mint a fresh version rather than reusing v3, which the stale C record still occupies")
	assert.Equal(t, uint64(4), s.CurrentVersion())

	g, err := s.LoadPage(0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 'D', g.At(0, 0), "the new write must win, not the stale pre-undo record at the reused version number")

	// The superseded v3/C record is still in the log (Undo/Checkout never
	// delete records), but v4 is now the highest version, so Redo has
	// nowhere to go.
	ok, err = s.Redo()
	require.NoError(t, err)
	assert.False(t, ok, "v4 is already the highest version; nothing to redo to")
}
