//go:build linux

package diskio

import (
	"os"

	"golang.org/x/sys/unix"
)

// AlignSize is the required memory/offset alignment for O_DIRECT I/O.
// BlockSize is the minimum transfer granularity.
const (
	AlignSize = 4096
	BlockSize = 4096
)

// DirectIO reports whether OpenFile bypasses the page cache on this
// platform.
const DirectIO = true

// OpenFile opens path for direct, unbuffered I/O via O_DIRECT. The
// teacher's own internal/directio package never shipped a linux.go, so
// it never actually compiled on this GOOS; this fills that gap the way
// its darwin.go fills F_NOCACHE.
func OpenFile(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := unix.Open(path, flag|unix.O_DIRECT, uint32(perm))
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
