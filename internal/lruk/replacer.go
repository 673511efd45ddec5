// Package lruk implements the LRU-K replacement policy: among a bounded
// set of frames marked evictable, the frame whose k-th most recent
// access is furthest in the past (or, for frames accessed fewer than k
// times, the one with the oldest single access) is the eviction
// victim. Grounded on the reference LRUKReplacer, with its std::multiset
// victim queue swapped for an ordered google/btree.BTreeG and its
// frame_id->node map swapped for an elastic/go-freelru backing map —
// used here purely as a hash table, since the replacer itself already
// bounds node_store at max_size_ entries and never needs freelru's own
// eviction to fire.
package lruk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/elastic/go-freelru"
	"github.com/google/btree"
)

// FrameID identifies a buffer pool frame slot.
type FrameID int

// Sentinel errors for the replacer's "this should never happen if the
// buffer pool is calling correctly" failure modes. These are never
// expected to surface from a correct buffer pool manager, but a typed
// error is the Go idiom here rather than a panic.
var (
	// ErrAtCapacity is returned by RecordAccess when frame_id is
	// unknown to the replacer and the replacer already tracks
	// max_size_ frames.
	ErrAtCapacity = errors.New("lruk: replacer at capacity")

	// ErrUnknownFrame is returned by SetEvictable for a frame_id the
	// replacer has never seen via RecordAccess.
	ErrUnknownFrame = errors.New("lruk: unknown frame id")

	// ErrNotEvictable is returned by Remove when frame_id is tracked
	// but currently pinned (not evictable).
	ErrNotEvictable = errors.New("lruk: frame is not evictable")
)

// LogicError reports a replacer contract violation: a call the buffer
// pool should never make on a correctly driven replacer. It wraps one
// of the sentinels above with the offending frame id and operation
// name, so a caller that does see one (a bug) gets enough context to
// find it without the replacer having to panic.
type LogicError struct {
	Op      string
	FrameID FrameID
	Err     error
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("lruk: %s frame %d: %v", e.Op, e.FrameID, e.Err)
}

func (e *LogicError) Unwrap() error { return e.Err }

type node struct {
	frameID   FrameID
	history   []int64 // front = most recent; capped at k entries
	evictable bool
}

// full reports whether the node has recorded k or more accesses.
func (n *node) full(k int) bool {
	return len(n.history) >= k
}

// oldest returns the timestamp at the back of the access window: the
// k-th most recent access once full, or the very first access
// otherwise. current_timestamp_ is a globally increasing counter, so
// this value is unique across all live nodes at any instant.
func (n *node) oldest() int64 {
	return n.history[len(n.history)-1]
}

// Replacer tracks frame access history and selects eviction victims
// under the LRU-K policy.
type Replacer struct {
	mu sync.Mutex

	k       int
	maxSize int

	currentTimestamp int64
	evictableSize    int

	nodes       *freelru.LRU[FrameID, *node]
	victimQueue *btree.BTreeG[*node]
}

// New returns a Replacer tracking up to numFrames frames, comparing
// their k most recent accesses.
func New(numFrames, k int) *Replacer {
	nodes, err := freelru.New[FrameID, *node](uint32(numFrames), hashFrameID)
	if err != nil {
		// Only non-nil for a zero/invalid capacity, which a buffer
		// pool never passes.
		panic("lruk: " + err.Error())
	}

	return &Replacer{
		k:           k,
		maxSize:     numFrames,
		nodes:       nodes,
		victimQueue: btree.NewG(32, lessNode(k)),
	}
}

func hashFrameID(f FrameID) uint32 {
	return uint32(f) ^ uint32(uint64(f)>>32)
}

// lessNode orders two nodes the way the reference Comparator does:
// nodes with fewer than k accesses sort before full ones (infinite
// backward k-distance), and within the same fullness, the node whose
// oldest-in-window timestamp is smaller sorts first.
func lessNode(k int) func(l, r *node) bool {
	return func(l, r *node) bool {
		lFull, rFull := l.full(k), r.full(k)
		if lFull && !rFull {
			return false
		}
		if !lFull && rFull {
			return true
		}
		return l.oldest() < r.oldest()
	}
}

// RecordAccess notes a new access to frameID at the current logical
// timestamp. If frameID is new and the replacer is already tracking
// maxSize frames, it returns ErrAtCapacity.
func (r *Replacer) RecordAccess(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentTimestamp++

	if n, ok := r.nodes.Get(frameID); ok {
		if n.evictable {
			r.victimQueue.Delete(n)
		}
		r.pushHistory(n)
		if n.evictable {
			r.victimQueue.ReplaceOrInsert(n)
		}
		return nil
	}

	if r.nodes.Len() >= r.maxSize {
		return &LogicError{Op: "RecordAccess", FrameID: frameID, Err: ErrAtCapacity}
	}

	n := &node{frameID: frameID, evictable: true}
	r.pushHistory(n)
	r.nodes.Add(frameID, n)
	r.victimQueue.ReplaceOrInsert(n)
	r.evictableSize++
	return nil
}

func (r *Replacer) pushHistory(n *node) {
	n.history = append([]int64{r.currentTimestamp}, n.history...)
	if len(n.history) > r.k {
		n.history = n.history[:r.k]
	}
}

// SetEvictable marks frameID evictable or not. Returns ErrUnknownFrame
// if the replacer has never recorded an access for frameID.
func (r *Replacer) SetEvictable(frameID FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes.Get(frameID)
	if !ok {
		return &LogicError{Op: "SetEvictable", FrameID: frameID, Err: ErrUnknownFrame}
	}
	if n.evictable == evictable {
		return nil
	}

	n.evictable = evictable
	if evictable {
		r.victimQueue.ReplaceOrInsert(n)
		r.evictableSize++
	} else {
		r.victimQueue.Delete(n)
		r.evictableSize--
	}
	return nil
}

// Evict removes and returns the current victim frame id: the
// evictable frame with the largest backward k-distance. Reports false
// if no frame is currently evictable.
func (r *Replacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	victim, ok := r.victimQueue.Min()
	if !ok {
		return 0, false
	}

	r.victimQueue.Delete(victim)
	r.nodes.Remove(victim.frameID)
	r.evictableSize--
	return victim.frameID, true
}

// Remove drops frameID from tracking entirely. Returns ErrNotEvictable
// if frameID is tracked but currently pinned. Removing an unknown
// frame id is a no-op, matching the reference implementation.
func (r *Replacer) Remove(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes.Get(frameID)
	if !ok {
		return nil
	}
	if !n.evictable {
		return &LogicError{Op: "Remove", FrameID: frameID, Err: ErrNotEvictable}
	}

	r.victimQueue.Delete(n)
	r.nodes.Remove(frameID)
	r.evictableSize--
	return nil
}

// Size returns the number of currently evictable frames.
func (r *Replacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictableSize
}
