// Package disk provides the on-disk page store behind the buffer pool.
// It is a deliberately simple wrapper: page-aligned reads and writes
// against a single growable file, no WAL, no crash recovery.
package disk

import (
	"bytes"
	"os"
	"sync"

	"github.com/pkg/errors"

	"pagedb/internal/storage/page"
	"pagedb/internal/utils"
)

// Manager is the disk manager contract the buffer pool depends on.
// FileManager's DeallocatePage does nothing; the space of a deallocated
// page is never reclaimed by this simple implementation.
type Manager interface {
	ReadPage(pageID utils.PageID) (*page.Page, error)
	WritePage(p *page.Page) error
	DeallocatePage(pageID utils.PageID) error
}

// FileManager implements Manager over a single backing file, growing it
// on demand and reading/writing pages at page-aligned offsets.
type FileManager struct {
	mu   sync.Mutex
	file *os.File
	size int64
}

// NewFileManager opens (creating if necessary) the file at path as the
// backing store for page I/O.
func NewFileManager(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "disk: open backing file")
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "disk: stat backing file")
	}
	return &FileManager{file: f, size: info.Size()}, nil
}

func offsetOf(pageID utils.PageID) int64 {
	return int64(pageID) * utils.PageSize
}

// ReadPage reads the page at pageID's offset. Reading a page that was
// allocated but never written (beyond the current end of file, or an
// all-zero gap the file grew over) returns a freshly zeroed page rather
// than an error.
func (fm *FileManager) ReadPage(pageID utils.PageID) (*page.Page, error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	offset := offsetOf(pageID)
	buf := make([]byte, utils.PageSize)
	if offset >= fm.size {
		p := &page.Page{}
		p.Header.PageID = pageID
		return p, nil
	}

	if _, err := fm.file.ReadAt(buf, offset); err != nil {
		return nil, errors.Wrapf(err, "disk: read page %d", pageID)
	}
	if bytes.Equal(buf, make([]byte, utils.PageSize)) {
		p := &page.Page{}
		p.Header.PageID = pageID
		return p, nil
	}
	p, err := page.Deserialize(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "disk: decode page %d", pageID)
	}
	return p, nil
}

// WritePage writes p to its page ID's offset, growing the backing file
// if necessary.
func (fm *FileManager) WritePage(p *page.Page) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	offset := offsetOf(p.Header.PageID)
	needed := offset + utils.PageSize
	if needed > fm.size {
		if err := fm.file.Truncate(needed); err != nil {
			return errors.Wrapf(err, "disk: grow backing file to %d bytes", needed)
		}
		fm.size = needed
	}

	if _, err := fm.file.WriteAt(p.Serialize(), offset); err != nil {
		return errors.Wrapf(err, "disk: write page %d", p.Header.PageID)
	}
	return nil
}

// DeallocatePage is a no-op beyond acknowledging the call; this simple
// disk manager never reclaims or reuses freed page offsets.
func (fm *FileManager) DeallocatePage(pageID utils.PageID) error {
	return nil
}

// Close releases the backing file.
func (fm *FileManager) Close() error {
	return fm.file.Close()
}
