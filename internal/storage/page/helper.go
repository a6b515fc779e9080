package page

import "pagedb/internal/utils"

// NewTestPage builds a page pre-filled with data, for use by tests in
// other packages that need a ready-made frame without going through a
// disk manager.
func NewTestPage(pageID utils.PageID, data []byte) *Page {
	p := &Page{}
	p.Header.PageID = pageID
	copy(p.Data[:], data)
	return p
}
