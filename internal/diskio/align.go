package diskio

import "unsafe"

// IsAligned reports whether block starts on an AlignSize boundary.
// Adapted from https://github.com/ncw/directio, as the teacher's own
// internal/directio does.
func IsAligned(block []byte) bool {
	return alignment(block, AlignSize) == 0
}

// AlignedBlock returns a byte slice of length size, aligned to a
// multiple of AlignSize in memory (AlignSize must be a power of two,
// or zero to disable alignment on platforms that don't need it).
func AlignedBlock(size int) []byte {
	block := make([]byte, size+AlignSize)
	if AlignSize == 0 {
		return block
	}

	a := alignment(block, AlignSize)
	offset := 0
	if a != 0 {
		offset = AlignSize - a
	}
	block = block[offset : offset+size]
	if size != 0 && !IsAligned(block) {
		panic("diskio: failed to align block")
	}
	return block
}

func alignment(block []byte, alignSize int) int {
	return int(uintptr(unsafe.Pointer(&block[0])) & uintptr(alignSize-1))
}
