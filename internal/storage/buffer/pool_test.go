package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/storage/disk"
	"pagedb/internal/utils"
)

func newTestPool(t *testing.T, poolSize, k int) *BufferPool {
	t.Helper()
	path, cleanup := utils.CreateTempFile(t)
	t.Cleanup(cleanup)
	fm, err := disk.NewFileManager(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	return NewBufferPool(poolSize, fm, k, nil)
}

func TestNewPageThenFetchReturnsSameData(t *testing.T) {
	bp := newTestPool(t, 4, 2)

	pageID, p := bp.NewPage()
	require.NotNil(t, p)
	copy(p.Data[:], "hello")
	require.True(t, bp.UnpinPage(pageID, true))

	fetched := bp.FetchPage(pageID)
	require.NotNil(t, fetched)
	assert.Equal(t, p.Data, fetched.Data)
	bp.UnpinPage(pageID, false)
}

func TestFetchPageMissReadsFromDiskAfterEviction(t *testing.T) {
	bp := newTestPool(t, 1, 2)

	pageID, p := bp.NewPage()
	copy(p.Data[:], "persisted")
	require.True(t, bp.UnpinPage(pageID, true))

	// Evict pageID's only frame by allocating another page.
	secondID, second := bp.NewPage()
	require.NotNil(t, second)
	require.True(t, bp.UnpinPage(secondID, false))

	fetched := bp.FetchPage(pageID)
	require.NotNil(t, fetched)
	assert.Equal(t, p.Data, fetched.Data, "dirty page must be written back before eviction")
	bp.UnpinPage(pageID, false)
}

func TestNewPageReturnsInvalidWhenPoolExhausted(t *testing.T) {
	bp := newTestPool(t, 1, 2)

	_, p1 := bp.NewPage()
	require.NotNil(t, p1) // still pinned, occupies the only frame

	pageID, p2 := bp.NewPage()
	assert.Equal(t, utils.InvalidPageID, pageID)
	assert.Nil(t, p2)
}

func TestUnpinPageOnUnknownPageReturnsFalse(t *testing.T) {
	bp := newTestPool(t, 2, 2)
	assert.False(t, bp.UnpinPage(99, false))
}

func TestUnpinPageBelowZeroReturnsFalse(t *testing.T) {
	bp := newTestPool(t, 2, 2)
	pageID, _ := bp.NewPage()
	require.True(t, bp.UnpinPage(pageID, false))
	assert.False(t, bp.UnpinPage(pageID, false))
}

func TestDeletePageFailsWhilePinned(t *testing.T) {
	bp := newTestPool(t, 2, 2)
	pageID, _ := bp.NewPage()
	assert.False(t, bp.DeletePage(pageID))

	require.True(t, bp.UnpinPage(pageID, false))
	assert.True(t, bp.DeletePage(pageID))
}

func TestDeletePageOnUnknownPageIsNoOpSuccess(t *testing.T) {
	bp := newTestPool(t, 2, 2)
	assert.True(t, bp.DeletePage(123))
}

func TestFlushPageWritesRegardlessOfDirtyFlag(t *testing.T) {
	bp := newTestPool(t, 2, 2)
	pageID, p := bp.NewPage()
	copy(p.Data[:], "clean but flushed anyway")
	require.True(t, bp.UnpinPage(pageID, false))

	assert.True(t, bp.FlushPage(pageID))
	got, err := bp.disk.ReadPage(pageID)
	require.NoError(t, err)
	assert.Equal(t, p.Data, got.Data)
}

func TestFlushAllPagesCoversEveryResidentPage(t *testing.T) {
	bp := newTestPool(t, 3, 2)
	var ids []utils.PageID
	for i := 0; i < 3; i++ {
		id, p := bp.NewPage()
		require.NotNil(t, p)
		require.True(t, bp.UnpinPage(id, true))
		ids = append(ids, id)
	}

	assert.NotPanics(t, bp.FlushAllPages)
	for _, id := range ids {
		assert.False(t, bp.frames[bp.pageTable[id]].Dirty, "page %d not flushed", id)
	}
}

func TestFreedFrameIsReusedBeforeEviction(t *testing.T) {
	// One frame: after the delete the replacer has nothing to evict, so
	// only the free list can supply the next page's frame.
	bp := newTestPool(t, 1, 2)
	id1, _ := bp.NewPage()
	require.True(t, bp.UnpinPage(id1, false))
	require.True(t, bp.DeletePage(id1))

	id2, p2 := bp.NewPage()
	require.NotNil(t, p2)
	assert.NotEqual(t, id1, id2)
}
