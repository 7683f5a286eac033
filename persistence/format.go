package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies container files (ASCII: "FSET").
	MagicNumber = 0x46534554
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000

	// HeaderSize is the fixed byte length of the file header.
	HeaderSize = 96

	// dataAlign aligns the features section so that a memory-mapped
	// element slice is always well-aligned for its element type.
	dataAlign = 64
)

// RequiredFields are the dataset names a valid container file must carry.
// Extra metadata fields are tolerated; missing ones fail the load.
var RequiredFields = []string{"id", "created_at", "labels", "names", "features"}

// ElemType encodes the feature element type in the header.
type ElemType uint8

const (
	ElemInvalid ElemType = 0
	ElemFloat32 ElemType = 1
	ElemFloat64 ElemType = 2
	ElemInt32   ElemType = 3
	ElemInt64   ElemType = 4
)

func (t ElemType) String() string {
	switch t {
	case ElemFloat32:
		return "float32"
	case ElemFloat64:
		return "float64"
	case ElemInt32:
		return "int32"
	case ElemInt64:
		return "int64"
	default:
		return fmt.Sprintf("ElemType(%d)", uint8(t))
	}
}

// size returns the element byte size, 0 for unknown codes.
func (t ElemType) size() int {
	switch t {
	case ElemFloat32, ElemInt32:
		return 4
	case ElemFloat64, ElemInt64:
		return 8
	default:
		return 0
	}
}

// Compression encodes the compression applied to the features section.
type Compression uint8

const (
	// CompressionNone stores features raw. Required for mmap loading.
	CompressionNone Compression = 0
	// CompressionLZ4 compresses features with LZ4 frames (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD compresses features with zstd (better ratio).
	CompressionZSTD Compression = 2
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
)

// ErrInvalidContainer indicates a container file missing required fields.
type ErrInvalidContainer struct {
	Missing []string
}

func (e *ErrInvalidContainer) Error() string {
	return fmt.Sprintf("invalid container: missing fields %v", e.Missing)
}

// ErrElementType indicates a load with a feature type parameter that does
// not match the element type recorded in the file.
type ErrElementType struct {
	File   ElemType
	Caller ElemType
}

func (e *ErrElementType) Error() string {
	return fmt.Sprintf("element type mismatch: file holds %s, caller expects %s", e.File, e.Caller)
}

// FileHeader is the fixed-size header at the start of every container file.
// All multi-byte fields are little-endian; the struct encodes packed via
// encoding/binary.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	Elem        uint8
	Compression uint8
	_           [2]byte
	CodecName   [8]byte // NUL-padded codec name for the metadata section
	Rows        uint64
	Cols        uint64
	MetaOffset  uint64
	MetaLength  uint64
	DataOffset  uint64 // 64-byte aligned start of the features section
	DataLength  uint64 // stored (possibly compressed) byte length
	RawLength   uint64 // uncompressed byte length (rows*cols*elemSize)
	Checksum    uint32 // CRC32 (IEEE) over meta and stored data sections
	_           [16]byte
}

func (h *FileHeader) codecName() string {
	i := 0
	for i < len(h.CodecName) && h.CodecName[i] != 0 {
		i++
	}
	return string(h.CodecName[:i])
}

// alignUp rounds n up to the next multiple of align.
func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}
