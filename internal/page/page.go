// Package page defines the fixed-size on-disk/in-frame unit the buffer
// pool and disk I/O layers move around. It knows nothing about what the
// bytes mean — that is a concern of whatever sits on top of the buffer
// pool.
package page

import (
	"github.com/cespare/xxhash/v2"
)

// Size is the fixed frame/page size in bytes. A real deployment would
// make this configurable; keeldb fixes it the way the teacher fixes
// PageSize, since nothing downstream needs it to vary at runtime.
const Size = 4096

// ID identifies a logical page. Ids are assigned monotonically by a
// disk manager's AllocatePage.
type ID int64

// InvalidID is the reserved sentinel page id.
const InvalidID ID = -1

// Page is a fixed-size byte buffer holding one page's worth of raw
// bytes. The buffer pool resets it to zero on every fetch/new miss and
// never interprets its contents.
type Page struct {
	Data [Size]byte
}

// Reset zeroes the page's contents.
func (p *Page) Reset() {
	for i := range p.Data {
		p.Data[i] = 0
	}
}

// Checksum returns an xxhash64 digest of the page's contents. The
// buffer pool does not call it, and the wire format itself carries no
// checksum field.
func (p *Page) Checksum() uint64 {
	return xxhash.Sum64(p.Data[:])
}
