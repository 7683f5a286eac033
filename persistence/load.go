package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/featureset"
	"github.com/hupe1980/featureset/codec"
	"github.com/hupe1980/featureset/internal/mmap"
)

// Container is a loaded feature set plus the resources backing it.
//
// Eagerly loaded containers hold no resources and Close is a no-op. Mapped
// containers keep the file mapping alive; the contained set (and every view
// into it) becomes invalid once Close is called.
type Container[L comparable, N comparable, F featureset.Number] struct {
	set *featureset.FeatureSet[L, N, F]
	m   *mmap.File
}

// Set returns the loaded feature set. It is always owned (no parent),
// regardless of whether a view was saved.
func (c *Container[L, N, F]) Set() *featureset.FeatureSet[L, N, F] { return c.set }

// Mapped reports whether the features section is memory-mapped.
func (c *Container[L, N, F]) Mapped() bool { return c.m != nil }

// Valid reports whether the container holds a loaded set.
func (c *Container[L, N, F]) Valid() bool { return c != nil && c.set != nil }

// Close releases the file mapping, if any.
func (c *Container[L, N, F]) Close() error {
	if c == nil || c.m == nil {
		return nil
	}
	m := c.m
	c.m = nil
	return m.Close()
}

// Load reads a container file.
//
// The id, created_at, labels and names fields are always read fully into
// memory. The features matrix is read eagerly by default; with
// WithMmap(true) it is memory-mapped and paged in lazily on first access
// (compressed files silently fall back to an eager read). The returned set
// is owned — parent is nil even when the file was saved from a view.
func Load[L comparable, N comparable, F featureset.Number](ctx context.Context, path string, opts ...Option) (*Container[L, N, F], error) {
	o := applyOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = featureset.NoopLogger()
	}

	c, err := load[L, N, F](path, o)
	logger.LogLoad(ctx, path, err == nil && c.Mapped(), err)
	return c, err
}

func load[L comparable, N comparable, F featureset.Number](path string, o options) (*Container[L, N, F], error) {
	if o.mmap {
		c, fallback, err := loadMapped[L, N, F](path)
		if err != nil {
			return nil, err
		}
		if !fallback {
			return c, nil
		}
	}
	return loadEager[L, N, F](path, o)
}

func loadEager[L comparable, N comparable, F featureset.Number](path string, o options) (*Container[L, N, F], error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	header, metaBytes, stored, err := splitSections(raw)
	if err != nil {
		return nil, err
	}

	if o.verifyChecksum {
		if sum := Checksum(metaBytes, stored); sum != header.Checksum {
			return nil, &ChecksumMismatchError{Expected: header.Checksum, Actual: sum}
		}
	}

	data, err := decompressData(stored, Compression(header.Compression), int(header.RawLength))
	if err != nil {
		return nil, fmt.Errorf("decompress features: %w", err)
	}

	flat, err := decodeElems[F](data, int(header.Rows*header.Cols))
	if err != nil {
		return nil, err
	}

	set, err := assemble[L, N, F](header, metaBytes, flat)
	if err != nil {
		return nil, err
	}
	return &Container[L, N, F]{set: set}, nil
}

// loadMapped maps the file and carves the features slice out of the
// mapping. fallback is true (with the mapping closed) when the file is
// compressed and must be read eagerly instead.
func loadMapped[L comparable, N comparable, F featureset.Number](path string) (_ *Container[L, N, F], fallback bool, _ error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, false, err
	}

	header, metaBytes, stored, err := splitSections(m.Data)
	if err != nil {
		_ = m.Close()
		return nil, false, err
	}

	if Compression(header.Compression) != CompressionNone {
		_ = m.Close()
		return nil, true, nil
	}

	flat, err := bytesSlice[F](stored, int(header.Rows*header.Cols))
	if err != nil {
		_ = m.Close()
		return nil, false, err
	}

	set, err := assemble[L, N, F](header, metaBytes, flat)
	if err != nil {
		_ = m.Close()
		return nil, false, err
	}
	return &Container[L, N, F]{set: set, m: m}, false, nil
}

// splitSections parses the header and slices the metadata and stored
// features sections out of the raw file bytes.
func splitSections(raw []byte) (FileHeader, []byte, []byte, error) {
	var header FileHeader
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &header); err != nil {
		return header, nil, nil, &ErrInvalidContainer{Missing: RequiredFields}
	}
	if header.Magic != MagicNumber {
		return header, nil, nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return header, nil, nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}

	// The CRC covers only the meta and data sections, so every header field
	// here may be corrupt. Bounds are checked without forming sums that can
	// wrap around uint64.
	n := uint64(len(raw))
	if header.MetaOffset < HeaderSize || header.MetaOffset > n || header.MetaLength > n-header.MetaOffset ||
		header.DataOffset > n || header.DataLength > n-header.DataOffset ||
		header.DataOffset < header.MetaOffset+header.MetaLength {
		return header, nil, nil, &ErrInvalidContainer{Missing: []string{"features"}}
	}

	if size := ElemType(header.Elem).size(); size != 0 {
		elems := header.RawLength / uint64(size)
		consistent := header.RawLength%uint64(size) == 0
		if header.Rows == 0 || header.Cols == 0 {
			consistent = consistent && elems == 0
		} else {
			consistent = consistent && elems%header.Cols == 0 && elems/header.Cols == header.Rows
		}
		if Compression(header.Compression) == CompressionNone {
			consistent = consistent && header.DataLength == header.RawLength
		}
		if !consistent {
			return header, nil, nil, &ErrInvalidContainer{Missing: []string{"features"}}
		}
	}

	metaBytes := raw[header.MetaOffset : header.MetaOffset+header.MetaLength]
	stored := raw[header.DataOffset : header.DataOffset+header.DataLength]
	return header, metaBytes, stored, nil
}

// assemble validates the metadata section and builds the owned set.
func assemble[L comparable, N comparable, F featureset.Number](header FileHeader, metaBytes []byte, flat []F) (*featureset.FeatureSet[L, N, F], error) {
	elem, _ := elemTypeOf[F]()
	if ElemType(header.Elem) != elem {
		return nil, &ErrElementType{File: ElemType(header.Elem), Caller: elem}
	}

	c, ok := codec.ByName(header.codecName())
	if !ok {
		return nil, &ErrInvalidContainer{Missing: []string{"id", "created_at", "labels", "names"}}
	}

	if missing := missingFields(c, metaBytes); len(missing) > 0 {
		return nil, &ErrInvalidContainer{Missing: missing}
	}

	var meta metaSection[L, N]
	if err := c.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, meta.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return featureset.FromFlat(meta.Labels, meta.Names, flat,
		featureset.WithID(meta.ID),
		featureset.WithCreatedAt(createdAt),
	)
}

// missingFields checks required metadata keys as a subset test; extra keys
// are tolerated.
func missingFields(c codec.Codec, metaBytes []byte) []string {
	var fields map[string]any
	if err := c.Unmarshal(metaBytes, &fields); err != nil {
		return []string{"id", "created_at", "labels", "names"}
	}
	var missing []string
	for _, name := range RequiredFields {
		if name == "features" {
			continue // lives in the binary section, validated by the header
		}
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsValid reports whether the file at path is a well-formed container:
// parseable header and exactly the five required fields present (extra
// metadata fields are tolerated).
func IsValid(path string) bool {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return isValidContainer(raw)
}

// IsValidFile is IsValid over an already-open reader. The reader is consumed.
func IsValidFile(r io.Reader) bool {
	raw, err := io.ReadAll(r)
	if err != nil {
		return false
	}
	return isValidContainer(raw)
}

func isValidContainer(raw []byte) bool {
	header, metaBytes, _, err := splitSections(raw)
	if err != nil {
		return false
	}
	c, ok := codec.ByName(header.codecName())
	if !ok {
		return false
	}
	return len(missingFields(c, metaBytes)) == 0
}
