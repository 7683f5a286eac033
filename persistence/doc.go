// Package persistence reads and writes the self-describing container file
// format for feature sets.
//
// # File Layout
//
// A container file is a fixed little-endian header, a codec-encoded
// metadata section and a dense row-major features section:
//
//	┌────────────────┐
//	│ header (96 B)  │ magic, version, element type, compression,
//	│                │ codec name, shape, offsets, CRC32
//	├────────────────┤
//	│ metadata       │ id, created_at, labels, names (JSON by default)
//	├── 64-B align ──┤
//	│ features       │ rows×cols elements, raw or LZ4/zstd compressed
//	└────────────────┘
//
// The five required fields are id, created_at, labels, names and features;
// loading fails with *ErrInvalidContainer unless all are present. Extra
// metadata fields are ignored, so the format tolerates additive producers.
//
// # Eager vs Mapped Loading
//
// Load reads everything into memory by default. With WithMmap(true) the
// features section stays on disk and pages in lazily through a read-only
// mapping; close the returned Container to release it. Mapping requires an
// uncompressed features section — compressed files fall back to an eager
// read.
//
// Writes are atomic (temp file + rename) but not crash-proof mid-rename on
// every filesystem; a partially visible file fails validation via checksum
// and header checks rather than loading garbage.
package persistence
