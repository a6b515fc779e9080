package buffer

import (
	"pagedb/internal/storage/page"
	"pagedb/internal/utils"
)

// noCopy lets `go vet`'s copylocks check catch an accidental value copy
// of a guard. Embed by value, never call Lock/Unlock directly.
//
// See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// BasicPageGuard holds a pinned page without acquiring its content
// latch. It unpins on Drop. A guard's zero value is a "null guard": its
// Page is nil and Drop is a no-op. Guards are non-copyable (the noCopy
// field makes `go vet` flag a stray value copy) — use Move to transfer
// ownership rather than assigning a guard directly.
type BasicPageGuard struct {
	noCopy noCopy

	bp   *BufferPool
	page *page.Page
}

// Page returns the guarded page, or nil for a null guard.
func (g *BasicPageGuard) Page() *page.Page {
	return g.page
}

// MarkDirty flags the guarded page dirty under the pool's mutex. No-op
// on a null guard.
func (g *BasicPageGuard) MarkDirty() {
	if g.page == nil {
		return
	}
	g.bp.mu.Lock()
	g.page.Dirty = true
	g.bp.mu.Unlock()
}

// Drop unpins the guarded page and nulls the guard. Safe to call more
// than once; safe to call on a null guard.
func (g *BasicPageGuard) Drop() {
	if g.page == nil {
		return
	}
	g.bp.UnpinPage(g.page.Header.PageID, false)
	g.page = nil
	g.bp = nil
}

// Move transfers ownership of the guarded page to the returned guard,
// leaving the receiver null.
func (g *BasicPageGuard) Move() BasicPageGuard {
	bp, p := g.bp, g.page
	g.bp = nil
	g.page = nil
	return BasicPageGuard{bp: bp, page: p}
}

// FetchPageBasic fetches pageID and wraps it in a BasicPageGuard. The
// returned guard is null if the pool has no evictable frame.
func (bp *BufferPool) FetchPageBasic(pageID utils.PageID) BasicPageGuard {
	p := bp.FetchPage(pageID)
	if p == nil {
		return BasicPageGuard{}
	}
	return BasicPageGuard{bp: bp, page: p}
}

// NewPageGuarded allocates a fresh page and wraps it in a BasicPageGuard.
func (bp *BufferPool) NewPageGuarded() (utils.PageID, BasicPageGuard) {
	pageID, p := bp.NewPage()
	if p == nil {
		return utils.InvalidPageID, BasicPageGuard{}
	}
	return pageID, BasicPageGuard{bp: bp, page: p}
}

// ReadPageGuard holds a pinned page with its content latch read-locked.
type ReadPageGuard struct {
	inner BasicPageGuard
}

// Page returns the guarded page, or nil for a null guard.
func (g *ReadPageGuard) Page() *page.Page {
	return g.inner.page
}

// Drop unlocks the content latch and unpins the page. No-op on a null
// guard.
func (g *ReadPageGuard) Drop() {
	if g.inner.page == nil {
		return
	}
	g.inner.page.RUnlock()
	g.inner.Drop()
}

// Move transfers ownership, leaving the receiver null.
func (g *ReadPageGuard) Move() ReadPageGuard {
	return ReadPageGuard{inner: g.inner.Move()}
}

// FetchPageRead fetches pageID, pins it, and read-locks its content
// latch.
func (bp *BufferPool) FetchPageRead(pageID utils.PageID) ReadPageGuard {
	p := bp.FetchPage(pageID)
	if p == nil {
		return ReadPageGuard{}
	}
	p.RLock()
	return ReadPageGuard{inner: BasicPageGuard{bp: bp, page: p}}
}

// WritePageGuard holds a pinned page with its content latch write-locked.
// Dropping it always marks the page dirty, since a writer guard exists
// precisely to mutate the page's data.
type WritePageGuard struct {
	inner BasicPageGuard
}

// Page returns the guarded page, or nil for a null guard.
func (g *WritePageGuard) Page() *page.Page {
	return g.inner.page
}

// Drop unlocks the content latch, marks the page dirty, and unpins it.
// No-op on a null guard.
func (g *WritePageGuard) Drop() {
	if g.inner.page == nil {
		return
	}
	p := g.inner.page
	p.Unlock()
	g.inner.bp.UnpinPage(p.Header.PageID, true)
	g.inner.page = nil
	g.inner.bp = nil
}

// Move transfers ownership, leaving the receiver null.
func (g *WritePageGuard) Move() WritePageGuard {
	return WritePageGuard{inner: g.inner.Move()}
}

// FetchPageWrite fetches pageID, pins it, and write-locks its content
// latch.
func (bp *BufferPool) FetchPageWrite(pageID utils.PageID) WritePageGuard {
	p := bp.FetchPage(pageID)
	if p == nil {
		return WritePageGuard{}
	}
	p.Lock()
	return WritePageGuard{inner: BasicPageGuard{bp: bp, page: p}}
}
