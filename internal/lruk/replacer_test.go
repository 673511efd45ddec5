package lruk_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"keeldb/internal/lruk"
)

func TestEvictPrefersFramesWithFewerThanKAccesses(t *testing.T) {
	t.Parallel()

	r := lruk.New(4, 2)

	require.NoError(t, r.RecordAccess(1))
	require.NoError(t, r.RecordAccess(2))
	require.NoError(t, r.RecordAccess(2)) // frame 2 now has 2 accesses (full)

	// frame 1 has only one access (infinite k-distance); it must be
	// evicted before frame 2, regardless of recency.
	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, lruk.FrameID(1), victim)
}

func TestEvictAmongFullHistoriesPicksOldestKthAccess(t *testing.T) {
	t.Parallel()

	r := lruk.New(4, 2)

	require.NoError(t, r.RecordAccess(1))
	require.NoError(t, r.RecordAccess(1)) // frame 1: [t2, t1]
	require.NoError(t, r.RecordAccess(2))
	require.NoError(t, r.RecordAccess(2)) // frame 2: [t4, t3]

	// Frame 1's 2nd-most-recent access (t1) is older than frame 2's
	// (t3), so frame 1 has the larger backward k-distance.
	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, lruk.FrameID(1), victim)
}

func TestSetEvictableFalseExcludesFrameFromEviction(t *testing.T) {
	t.Parallel()

	r := lruk.New(2, 2)
	require.NoError(t, r.RecordAccess(1))
	require.NoError(t, r.RecordAccess(2))

	require.NoError(t, r.SetEvictable(1, false))
	require.Equal(t, 1, r.Size())

	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, lruk.FrameID(2), victim)

	_, ok = r.Evict()
	require.False(t, ok)
}

func TestRecordAccessErrorsAtCapacityForNewFrame(t *testing.T) {
	t.Parallel()

	r := lruk.New(1, 2)
	require.NoError(t, r.RecordAccess(1))
	require.ErrorIs(t, r.RecordAccess(2), lruk.ErrAtCapacity)
}

func TestSetEvictableUnknownFrame(t *testing.T) {
	t.Parallel()

	r := lruk.New(2, 2)
	require.ErrorIs(t, r.SetEvictable(99, true), lruk.ErrUnknownFrame)
}

func TestRemovePinnedFrameErrors(t *testing.T) {
	t.Parallel()

	r := lruk.New(2, 2)
	require.NoError(t, r.RecordAccess(1))
	require.NoError(t, r.SetEvictable(1, false))

	require.ErrorIs(t, r.Remove(1), lruk.ErrNotEvictable)
}

func TestRemoveUnknownFrameIsNoop(t *testing.T) {
	t.Parallel()

	r := lruk.New(2, 2)
	require.NoError(t, r.Remove(42))
}

func TestSizeTracksEvictableCount(t *testing.T) {
	t.Parallel()

	r := lruk.New(3, 2)
	require.Equal(t, 0, r.Size())

	require.NoError(t, r.RecordAccess(1))
	require.NoError(t, r.RecordAccess(2))
	require.Equal(t, 2, r.Size())

	require.NoError(t, r.SetEvictable(1, false))
	require.Equal(t, 1, r.Size())

	victim, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, lruk.FrameID(2), victim)
	require.Equal(t, 0, r.Size())
}
