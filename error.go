// Package keeldb ties together the persistent trie and the LRU-K
// buffer pool into a storage core: shared ambient concerns (errors,
// logging) live here, the two subsystems live in trie and bufferpool.
package keeldb

import "errors"

// Sentinels surfaced by the buffer pool and its collaborators. Capacity
// exhaustion and a missing page are deliberately not represented here:
// per spec they are "none" results, not errors.
//
//goland:noinspection GoUnusedGlobalVariable
var (
	// ErrClosed is returned by every error-returning BufferPoolManager
	// method other than Close when called after Close.
	ErrClosed = errors.New("keeldb: buffer pool is closed")

	// ErrInvalidPoolSize is returned by bufferpool.New for a
	// non-positive frame count.
	ErrInvalidPoolSize = errors.New("keeldb: pool size must be positive")

	// ErrInvalidReplacerK is returned by bufferpool.New for a
	// non-positive replacer history depth.
	ErrInvalidReplacerK = errors.New("keeldb: replacer k must be positive")
)
