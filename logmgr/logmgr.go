// Package logmgr is the buffer pool's optional write-ahead log
// collaborator. The spec places no requirement on it beyond being
// reachable, so keeldb gives it the smallest real implementation that
// makes "reachable" mean something: an append-only record sink a
// caller can layer WAL-before-dirty-flush discipline on top of.
package logmgr

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// LSN is a log sequence number: the byte offset of a record's start in
// the log file.
type LSN int64

// LogRecord is an opaque, caller-defined payload appended to the log.
type LogRecord struct {
	Data []byte
}

// LogManager appends records to a single side file and tracks how far
// the file has been synced to stable storage.
type LogManager struct {
	mu       sync.Mutex
	file     *os.File
	nextLSN  LSN
	flushed  LSN
}

// Open opens or creates the log file at path.
func Open(path string) (*LogManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logmgr: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("logmgr: stat %s: %w", path, err)
	}
	return &LogManager{file: f, nextLSN: LSN(fi.Size())}, nil
}

// Append writes rec to the log and returns the LSN it was assigned.
// The record is buffered in the OS page cache until Flush is called
// with an LSN at or beyond it.
func (lm *LogManager) Append(rec LogRecord) (LSN, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lsn := lm.nextLSN

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(rec.Data)))

	if _, err := lm.file.Write(lenPrefix[:]); err != nil {
		return 0, fmt.Errorf("logmgr: append: %w", err)
	}
	if _, err := lm.file.Write(rec.Data); err != nil {
		return 0, fmt.Errorf("logmgr: append: %w", err)
	}

	lm.nextLSN += LSN(4 + len(rec.Data))
	return lsn, nil
}

// Flush syncs the log file to stable storage if upTo is at or beyond
// the last flushed point.
func (lm *LogManager) Flush(upTo LSN) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if upTo < lm.flushed {
		return nil
	}
	if err := lm.file.Sync(); err != nil {
		return fmt.Errorf("logmgr: flush: %w", err)
	}
	lm.flushed = lm.nextLSN
	return nil
}

// Close closes the underlying log file.
func (lm *LogManager) Close() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.file.Close()
}
