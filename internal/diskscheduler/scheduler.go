// Package diskscheduler sits between the buffer pool and internal/diskio:
// it accepts I/O requests and completes them asynchronously, the way the
// teacher's buffer pool talks to its disk manager through a scheduler
// facade instead of calling it inline.
package diskscheduler

import (
	"context"
	"fmt"
	"sync"

	"keeldb/internal/diskio"
	"keeldb/internal/page"
)

// Request describes one page read or write. Completion is fulfilled
// exactly once, after the request has been executed.
type Request struct {
	IsWrite    bool
	Data       *page.Page
	PageID     page.ID
	Completion *Completion
}

// Completion is a one-shot future: Wait blocks until fulfill is called
// exactly once, the Go stand-in for the source's promise/future pair.
type Completion struct {
	done chan struct{}
	err  error
	once sync.Once
}

// NewCompletion returns an unfulfilled Completion.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Wait blocks until the request is fulfilled or ctx is done, whichever
// comes first.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Completion) fulfill(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Scheduler queues disk requests onto a bounded channel drained by one
// or more worker goroutines. With the default worker count of one,
// requests are executed strictly FIFO, which is what guarantees that
// two requests touching the same page id complete in the order they
// were scheduled.
type Scheduler struct {
	dm      *diskio.Manager
	reqs    chan Request
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// New starts a Scheduler backed by dm with the given worker count.
// workers <= 1 is forced to 1: per-page-id ordering is only guaranteed
// with a single worker, and keeldb never needs more for the workloads
// its buffer pool drives.
func New(dm *diskio.Manager, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}

	s := &Scheduler{
		dm:   dm,
		reqs: make(chan Request, 256),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for req := range s.reqs {
		s.execute(req)
	}
}

func (s *Scheduler) execute(req Request) {
	var err error
	if req.IsWrite {
		err = s.dm.WritePage(req.PageID, req.Data)
	} else {
		var p *page.Page
		p, err = s.dm.ReadPage(req.PageID)
		if err == nil {
			*req.Data = *p
		}
	}
	if err != nil {
		err = fmt.Errorf("diskscheduler: page %d: %w", req.PageID, err)
	}
	req.Completion.fulfill(err)
}

// Schedule enqueues req. The caller should Wait on req.Completion to
// observe the result.
func (s *Scheduler) Schedule(req Request) {
	s.reqs <- req
}

// Close stops accepting new requests and waits for in-flight and
// already-queued requests to finish.
func (s *Scheduler) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	s.closeMu.Unlock()

	close(s.reqs)
	s.wg.Wait()
}
