package buffer

import (
	"sync"

	"github.com/pkg/errors"

	"pagedb/internal/storage/disk"
	"pagedb/internal/storage/logmanager"
	"pagedb/internal/storage/page"
	"pagedb/internal/utils"
)

// BufferPool is a fixed pool of page frames backed by a disk.Manager,
// with eviction driven by an LRU-K Replacer. A single mutex serializes
// every public operation end-to-end, including the disk I/O a miss or a
// flush performs.
type BufferPool struct {
	mu sync.Mutex

	frames    []*page.Page
	pageTable map[utils.PageID]int
	freeList  []int

	replacer   Replacer
	disk       disk.Manager
	log        logmanager.Manager
	nextPageID int64
	poolSize   int
}

// NewBufferPool constructs a pool of poolSize frames. replacerK is the K
// parameter for the LRU-K policy. log may be nil.
func NewBufferPool(poolSize int, dm disk.Manager, replacerK int, log logmanager.Manager) *BufferPool {
	if poolSize <= 0 {
		panic("buffer: pool size must be positive")
	}

	freeList := make([]int, poolSize)
	for i := range freeList {
		freeList[i] = i
	}

	return &BufferPool{
		frames:    make([]*page.Page, poolSize),
		pageTable: make(map[utils.PageID]int, poolSize),
		freeList:  freeList,
		replacer:  NewLRUKReplacer(poolSize, replacerK),
		disk:      dm,
		log:       log,
		poolSize:  poolSize,
	}
}

// getFrame acquires a frame for a new resident page: a free frame if one
// is available, otherwise the replacer's current victim, writing it back
// first if dirty. ok is false if the pool is completely pinned.
func (bp *BufferPool) getFrame() (int, bool) {
	if len(bp.freeList) > 0 {
		frameID := bp.freeList[0]
		bp.freeList = bp.freeList[1:]
		return frameID, true
	}

	frameID, ok := bp.replacer.Evict()
	if !ok {
		return 0, false
	}

	victim := bp.frames[frameID]
	if victim != nil {
		if victim.Dirty {
			if err := bp.disk.WritePage(victim); err != nil {
				panic(errors.Wrap(err, "buffer: flush victim page during eviction"))
			}
		}
		delete(bp.pageTable, victim.Header.PageID)
		if bp.log != nil {
			bp.log.PageEvicted(int64(victim.Header.PageID), frameID, victim.Dirty)
		}
	}
	bp.frames[frameID] = nil
	return frameID, true
}

func (bp *BufferPool) allocatePageID() utils.PageID {
	id := bp.nextPageID
	bp.nextPageID++
	return utils.PageID(id)
}

// NewPage allocates a fresh page ID, pins it into a frame, and returns
// it. Returns (InvalidPageID, nil) if the pool has no evictable frame.
func (bp *BufferPool) NewPage() (utils.PageID, *page.Page) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.getFrame()
	if !ok {
		return utils.InvalidPageID, nil
	}

	pageID := bp.allocatePageID()
	p := &page.Page{}
	p.Header.PageID = pageID
	bp.frames[frameID] = p
	bp.pageTable[pageID] = frameID

	bp.replacer.RecordAccess(frameID, AccessTypeGet)
	p.PinCount = 1
	bp.replacer.SetEvictable(frameID, false)

	if bp.log != nil {
		bp.log.PageAdmitted(int64(pageID), frameID)
	}
	return pageID, p
}

// FetchPage pins pageID into memory, reading it from disk if it isn't
// already resident. Returns nil if the pool has no evictable frame.
func (bp *BufferPool) FetchPage(pageID utils.PageID) *page.Page {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable[pageID]; ok {
		p := bp.frames[frameID]
		p.PinCount++
		bp.replacer.SetEvictable(frameID, false)
		bp.replacer.RecordAccess(frameID, AccessTypeGet)
		return p
	}

	frameID, ok := bp.getFrame()
	if !ok {
		return nil
	}

	p, err := bp.disk.ReadPage(pageID)
	if err != nil {
		bp.freeList = append(bp.freeList, frameID)
		panic(errors.Wrapf(err, "buffer: read page %d from disk", pageID))
	}

	bp.frames[frameID] = p
	bp.pageTable[pageID] = frameID
	bp.replacer.RecordAccess(frameID, AccessTypeGet)
	p.PinCount = 1
	bp.replacer.SetEvictable(frameID, false)

	if bp.log != nil {
		bp.log.PageAdmitted(int64(pageID), frameID)
	}
	return p
}

// UnpinPage decrements pageID's pin count, marking it dirty if isDirty is
// true. Once the pin count reaches zero the frame becomes evictable.
// Returns false if pageID isn't resident or its pin count is already
// zero.
func (bp *BufferPool) UnpinPage(pageID utils.PageID, isDirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return false
	}
	p := bp.frames[frameID]
	if p.PinCount <= 0 {
		return false
	}

	p.Dirty = p.Dirty || isDirty
	p.PinCount--
	if p.PinCount == 0 {
		bp.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID's frame to disk regardless of its dirty flag,
// clearing the flag afterward. Returns false if pageID isn't resident.
func (bp *BufferPool) FlushPage(pageID utils.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return false
	}
	p := bp.frames[frameID]
	if err := bp.disk.WritePage(p); err != nil {
		panic(errors.Wrapf(err, "buffer: flush page %d", pageID))
	}
	p.Dirty = false
	if bp.log != nil {
		bp.log.PageFlushed(int64(pageID))
	}
	return true
}

// FlushAllPages writes every resident page to disk, regardless of its
// dirty flag.
func (bp *BufferPool) FlushAllPages() {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for pageID, frameID := range bp.pageTable {
		p := bp.frames[frameID]
		if err := bp.disk.WritePage(p); err != nil {
			panic(errors.Wrapf(err, "buffer: flush all pages, page %d", pageID))
		}
		p.Dirty = false
		if bp.log != nil {
			bp.log.PageFlushed(int64(pageID))
		}
	}
}

// DeletePage removes pageID from the pool and deallocates it on disk.
// Returns true if pageID wasn't resident to begin with. Returns false,
// leaving the page untouched, if it is still pinned.
func (bp *BufferPool) DeletePage(pageID utils.PageID) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return true
	}
	p := bp.frames[frameID]
	if p.PinCount > 0 {
		return false
	}

	bp.replacer.Remove(frameID)
	delete(bp.pageTable, pageID)
	bp.frames[frameID] = nil
	bp.freeList = append(bp.freeList, frameID)

	if err := bp.disk.DeallocatePage(pageID); err != nil {
		panic(errors.Wrapf(err, "buffer: deallocate page %d", pageID))
	}
	return true
}
