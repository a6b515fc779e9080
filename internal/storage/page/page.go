// Package page defines the fixed-size page frame shared by the disk
// manager and the buffer pool.
package page

import (
	"encoding/binary"
	"hash/crc32"
	"sync"

	"github.com/pkg/errors"

	"pagedb/internal/utils"
)

// HeaderSize is the number of bytes the on-disk header occupies ahead of
// the page's data bytes: an 8-byte page ID plus a 4-byte checksum,
// rounded up for alignment.
const HeaderSize = 16

// DataSize is the number of bytes available to callers in a page.
const DataSize = utils.PageSize - HeaderSize

// ErrBadSize is returned by Deserialize when the input isn't exactly
// utils.PageSize bytes long.
var ErrBadSize = errors.New("page: serialized buffer has the wrong size")

// ErrChecksumMismatch is returned by Deserialize when the stored checksum
// doesn't match the recomputed one, meaning the bytes were corrupted.
var ErrChecksumMismatch = errors.New("page: checksum mismatch")

// Page is a page frame: a fixed-size byte buffer plus the metadata the
// buffer pool needs to manage it. PinCount and Dirty are only ever
// written while the owning BufferPool's mutex is held; latch guards the
// Data bytes independently of that mutex and is acquired only through a
// ReadPageGuard or WritePageGuard.
type Page struct {
	latch sync.RWMutex

	Header   PageHeader
	Data     [DataSize]byte
	PinCount int32
	Dirty    bool
}

// PageHeader is the portion of a page that round-trips to disk.
type PageHeader struct {
	PageID   utils.PageID
	Checksum uint32
}

// RLock/RUnlock/Lock/Unlock expose the page's content latch to guards.
// They never touch PinCount or Dirty.
func (p *Page) RLock()   { p.latch.RLock() }
func (p *Page) RUnlock() { p.latch.RUnlock() }
func (p *Page) Lock()    { p.latch.Lock() }
func (p *Page) Unlock()  { p.latch.Unlock() }

// Reset zeroes a page's data and metadata in place, for reuse by a newly
// allocated frame. The caller is responsible for holding any locks.
func (p *Page) Reset() {
	p.Header = PageHeader{}
	p.Data = [DataSize]byte{}
	p.PinCount = 0
	p.Dirty = false
}

// Serialize packs the page's header and data into a utils.PageSize-byte
// buffer suitable for writing to disk. The checksum is recomputed from
// Data every time, so a stale Header.Checksum value is never trusted.
func (p *Page) Serialize() []byte {
	buf := make([]byte, utils.PageSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(p.Header.PageID))
	checksum := crc32.ChecksumIEEE(p.Data[:])
	binary.LittleEndian.PutUint32(buf[8:12], checksum)
	copy(buf[HeaderSize:], p.Data[:])
	return buf
}

// Deserialize reconstructs a Page from a utils.PageSize-byte buffer
// previously produced by Serialize, validating the checksum.
func Deserialize(buf []byte) (*Page, error) {
	if len(buf) != utils.PageSize {
		return nil, ErrBadSize
	}
	p := &Page{}
	p.Header.PageID = utils.PageID(binary.LittleEndian.Uint64(buf[0:8]))
	p.Header.Checksum = binary.LittleEndian.Uint32(buf[8:12])
	copy(p.Data[:], buf[HeaderSize:])
	if crc32.ChecksumIEEE(p.Data[:]) != p.Header.Checksum {
		return nil, ErrChecksumMismatch
	}
	return p, nil
}
