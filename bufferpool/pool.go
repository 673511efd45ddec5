// Package bufferpool implements a fixed-size page cache mediating
// between in-memory frames and a backing block device: a pin/eviction
// protocol on top of internal/lruk's LRU-K replacement policy, with
// I/O issued through internal/diskscheduler. Grounded on the reference
// BufferPoolManager, rendered with context.Context in place of a
// future/promise pair and a functional-options constructor in place
// of the teacher's DBOption pattern.
package bufferpool

import (
	"context"
	"fmt"
	"sync"

	"keeldb"
	"keeldb/internal/diskio"
	"keeldb/internal/diskscheduler"
	"keeldb/internal/lruk"
	"keeldb/internal/page"
	"keeldb/logmgr"
)

// Frame is one slot in the buffer pool: a page's bytes plus the
// metadata the pool and replacer need to manage it.
type Frame struct {
	PageID   page.ID
	PinCount int
	Dirty    bool
	Data     page.Page
}

type config struct {
	logger           keeldb.Logger
	schedulerWorkers int
	logMgr           *logmgr.LogManager
}

// Option configures a BufferPoolManager at construction time.
type Option func(*config)

// WithLogger sets the logger the pool reports lifecycle and warning
// events to. Default is keeldb.DiscardLogger.
func WithLogger(l keeldb.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithSchedulerWorkers sets the disk scheduler's worker count. Default
// is 1, the only value that guarantees per-page-id request ordering.
func WithSchedulerWorkers(n int) Option {
	return func(c *config) { c.schedulerWorkers = n }
}

// WithLogManager attaches an optional write-ahead log collaborator.
// The pool's own invariants never call it; it is exposed for a caller
// layering WAL-before-flush discipline on top of the pool.
func WithLogManager(lm *logmgr.LogManager) Option {
	return func(c *config) { c.logMgr = lm }
}

// BufferPoolManager owns a fixed array of frames and mediates every
// page fetch, allocation, and eviction against them. All operations
// are serialized by a single mutex, held across I/O waits, per the
// simpler of the two concurrency models the spec permits.
type BufferPoolManager struct {
	mu sync.Mutex

	frames    []Frame
	freeList  []int
	pageTable map[page.ID]int

	replacer  *lruk.Replacer
	dm        *diskio.Manager
	scheduler *diskscheduler.Scheduler
	logger    keeldb.Logger
	logMgr    *logmgr.LogManager

	closed bool
}

// New constructs a pool of size frames backed by dm, with a replacer
// tracking the k most recent accesses per frame.
func New(size int, replacerK int, dm *diskio.Manager, opts ...Option) (*BufferPoolManager, error) {
	if size <= 0 {
		return nil, keeldb.ErrInvalidPoolSize
	}
	if replacerK <= 0 {
		return nil, keeldb.ErrInvalidReplacerK
	}

	cfg := config{logger: keeldb.DiscardLogger{}, schedulerWorkers: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	freeList := make([]int, size)
	for i := range freeList {
		freeList[i] = size - 1 - i // matches the reference's back-of-list-first free list order
	}

	bp := &BufferPoolManager{
		frames:    make([]Frame, size),
		freeList:  freeList,
		pageTable: make(map[page.ID]int, size),
		replacer:  lruk.New(size, replacerK),
		dm:        dm,
		scheduler: diskscheduler.New(dm, cfg.schedulerWorkers),
		logger:    cfg.logger,
		logMgr:    cfg.logMgr,
	}
	bp.logger.Info("buffer pool started", "size", size, "replacer_k", replacerK)
	return bp, nil
}

// acquireFrame returns a frame index ready for reuse: from the free
// list first, else by evicting and, if necessary, flushing a victim.
// Caller must hold mu.
func (bp *BufferPoolManager) acquireFrame(ctx context.Context) (int, bool, error) {
	if n := len(bp.freeList); n > 0 {
		idx := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return idx, true, nil
	}

	frameID, ok := bp.replacer.Evict()
	if !ok {
		bp.logger.Warn("buffer pool capacity exhausted")
		return 0, false, nil
	}

	idx := int(frameID)
	victim := &bp.frames[idx]
	delete(bp.pageTable, victim.PageID)

	if victim.Dirty {
		bp.logger.Warn("evicting dirty frame", "page_id", victim.PageID)
		if err := bp.flushFrameLocked(ctx, idx); err != nil {
			return 0, false, fmt.Errorf("bufferpool: flush evicted victim: %w", err)
		}
	}
	return idx, true, nil
}

// NewPage allocates a fresh page id and returns its pinned frame, or
// (nil, nil) if every frame is currently pinned.
func (bp *BufferPoolManager) NewPage(ctx context.Context) (*Frame, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil, keeldb.ErrClosed
	}

	idx, ok, err := bp.acquireFrame(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	id := bp.dm.AllocatePage()
	bp.pageTable[id] = idx

	f := &bp.frames[idx]
	f.PageID = id
	f.Dirty = false
	f.Data.Reset()
	f.PinCount = 1

	if err := bp.recordPin(idx); err != nil {
		return nil, err
	}
	return f, nil
}

// FetchPage returns id's frame, pinned, reading it from disk on a
// miss. Reports (nil, nil) if the page is not resident and every
// frame is currently pinned.
func (bp *BufferPoolManager) FetchPage(ctx context.Context, id page.ID) (*Frame, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil, keeldb.ErrClosed
	}

	if idx, ok := bp.pageTable[id]; ok {
		f := &bp.frames[idx]
		f.PinCount++
		if err := bp.recordPin(idx); err != nil {
			return nil, err
		}
		return f, nil
	}

	idx, ok, err := bp.acquireFrame(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	bp.pageTable[id] = idx
	f := &bp.frames[idx]
	f.PageID = id
	f.Dirty = false
	f.PinCount = 0
	f.Data.Reset()

	comp := diskscheduler.NewCompletion()
	bp.scheduler.Schedule(diskscheduler.Request{IsWrite: false, Data: &f.Data, PageID: id, Completion: comp})
	if err := comp.Wait(ctx); err != nil {
		delete(bp.pageTable, id)
		bp.freeList = append(bp.freeList, idx)
		return nil, fmt.Errorf("bufferpool: fetch page %d: %w", id, err)
	}

	f.PinCount = 1
	if err := bp.recordPin(idx); err != nil {
		return nil, err
	}
	return f, nil
}

// recordPin records an access and marks frameIdx non-evictable in the
// replacer. Wraps any LogicError the replacer returns: on a correctly
// driven pool this branch is unreachable.
func (bp *BufferPoolManager) recordPin(frameIdx int) error {
	fid := lruk.FrameID(frameIdx)
	if err := bp.replacer.RecordAccess(fid); err != nil {
		return fmt.Errorf("bufferpool: replacer contract violation: %w", err)
	}
	if err := bp.replacer.SetEvictable(fid, false); err != nil {
		return fmt.Errorf("bufferpool: replacer contract violation: %w", err)
	}
	return nil
}

// UnpinPage decrements id's pin count, marking its frame evictable
// once it reaches zero. Reports false if id is not resident or is
// already unpinned.
func (bp *BufferPoolManager) UnpinPage(id page.ID, isDirty bool) bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	idx, ok := bp.pageTable[id]
	if !ok {
		return false
	}
	f := &bp.frames[idx]
	if f.PinCount == 0 {
		return false
	}

	f.PinCount--
	if isDirty {
		f.Dirty = true
	}
	if f.PinCount == 0 {
		if err := bp.replacer.SetEvictable(lruk.FrameID(idx), true); err != nil {
			bp.logger.Warn("replacer contract violation on unpin", "page_id", id, "err", err)
		}
	}
	return true
}

// flushFrameLocked writes frameIdx's contents to disk and clears its
// dirty flag if set. Caller must hold mu.
func (bp *BufferPoolManager) flushFrameLocked(ctx context.Context, frameIdx int) error {
	f := &bp.frames[frameIdx]
	comp := diskscheduler.NewCompletion()
	bp.scheduler.Schedule(diskscheduler.Request{IsWrite: true, Data: &f.Data, PageID: f.PageID, Completion: comp})
	if err := comp.Wait(ctx); err != nil {
		return fmt.Errorf("bufferpool: flush page %d: %w", f.PageID, err)
	}
	f.Dirty = false
	return nil
}

// FlushPage writes id's frame to disk unconditionally, pinned or not,
// clearing its dirty flag. Reports false if id is not resident.
func (bp *BufferPoolManager) FlushPage(ctx context.Context, id page.ID) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return false, keeldb.ErrClosed
	}

	idx, ok := bp.pageTable[id]
	if !ok {
		return false, nil
	}
	if err := bp.flushFrameLocked(ctx, idx); err != nil {
		return false, err
	}
	return true, nil
}

// FlushAllPages flushes every resident frame.
func (bp *BufferPoolManager) FlushAllPages(ctx context.Context) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return keeldb.ErrClosed
	}

	for _, idx := range bp.pageTable {
		if err := bp.flushFrameLocked(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes id from the pool, flushing and returning its
// frame to the free list. Vacuously succeeds if id is not resident;
// fails if id is resident and pinned.
func (bp *BufferPoolManager) DeletePage(ctx context.Context, id page.ID) (bool, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return false, keeldb.ErrClosed
	}

	idx, ok := bp.pageTable[id]
	if !ok {
		return true, nil
	}

	f := &bp.frames[idx]
	if f.PinCount > 0 {
		return false, nil
	}

	delete(bp.pageTable, id)
	if err := bp.replacer.Remove(lruk.FrameID(idx)); err != nil {
		return false, fmt.Errorf("bufferpool: replacer contract violation: %w", err)
	}

	// Flush-then-reset: the deleted page's last image is written
	// before its metadata (including the dirty bit) is cleared.
	flushErr := bp.flushFrameLocked(ctx, idx)

	f.Dirty = false
	f.PageID = page.InvalidID
	f.PinCount = 0
	f.Data.Reset()
	bp.freeList = append(bp.freeList, idx)
	bp.dm.DeallocatePage(id)

	if flushErr != nil {
		return false, flushErr
	}
	return true, nil
}

// Close stops the pool's disk scheduler. It does not flush resident
// pages; call FlushAllPages first if that's required.
func (bp *BufferPoolManager) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	bp.closed = true
	bp.scheduler.Close()
	bp.logger.Info("buffer pool closed")
	return nil
}
