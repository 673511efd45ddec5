// Package atomicroot is the convenience wrapper every caller of an
// immutable trie ends up writing: a trie version has no internal
// synchronization by design, so publishing a new one under concurrent
// readers needs an external pointer swap. Modeled on the teacher's own
// atomic.Pointer[Snapshot] root-publishing pattern in its pager.
package atomicroot

import (
	"sync/atomic"

	"keeldb/trie"
)

// Root publishes successive *trie.Trie versions for concurrent access.
// Readers call Load and see either an old or a new version, never a
// partially built one; writers call Store or CompareAndSwap to publish a new
// version built from the one Load returned.
type Root struct {
	p atomic.Pointer[trie.Trie]
}

// NewRoot returns a Root initialized to t (nil is the empty trie).
func NewRoot(t *trie.Trie) *Root {
	r := &Root{}
	if t == nil {
		t = trie.New()
	}
	r.p.Store(t)
	return r
}

// Load returns the currently published trie version.
func (r *Root) Load() *trie.Trie {
	return r.p.Load()
}

// Store publishes t as the current version.
func (r *Root) Store(t *trie.Trie) {
	r.p.Store(t)
}

// CompareAndSwap publishes new in place of old, reporting whether it
// won the race. A caller retries its Put/Remove against a freshly
// Loaded version on failure.
func (r *Root) CompareAndSwap(old, new *trie.Trie) bool {
	return r.p.CompareAndSwap(old, new)
}
