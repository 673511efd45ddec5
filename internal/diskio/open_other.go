//go:build !linux && !darwin

package diskio

import "os"

const (
	AlignSize = 0
	BlockSize = 4096
)

const DirectIO = false

// OpenFile falls back to a normal buffered open on platforms with no
// direct-I/O primitive wired up.
func OpenFile(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}
