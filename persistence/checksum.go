package persistence

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Container files carry a CRC32 (IEEE) checksum over the metadata and
// features sections. CRC32 is fast, hardware-accelerated on modern CPUs and
// detects accidental storage corruption; it is not a tamper-proofing
// mechanism.

// crc32Table is the IEEE polynomial table, computed once.
var crc32Table = crc32.MakeTable(crc32.IEEE)

// ChecksumWriter wraps an io.Writer and computes a running CRC32 checksum.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

// NewChecksumWriter creates a new checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{
		w:    w,
		hash: crc32.New(crc32Table),
	}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	if _, err := cw.hash.Write(p); err != nil {
		return 0, err
	}
	return cw.w.Write(p)
}

// Sum returns the current checksum value.
func (cw *ChecksumWriter) Sum() uint32 {
	return cw.hash.Sum32()
}

// Checksum computes the CRC32 checksum of the given sections.
func Checksum(sections ...[]byte) uint32 {
	h := crc32.New(crc32Table)
	for _, s := range sections {
		_, _ = h.Write(s)
	}
	return h.Sum32()
}

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}
