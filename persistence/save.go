package persistence

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/hupe1980/featureset"
)

// Ext is the default container file extension.
const Ext = ".fset"

// metaSection is the codec-encoded metadata object. The features field
// lives outside the codec as a dense binary section; its presence is
// recorded by the header.
type metaSection[L any, N any] struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Labels    []L    `json:"labels"`
	Names     []N    `json:"names"`
}

// Save writes fs to a container file at path.
//
// Saving goes through the accessor contract only, so saving a view persists
// exactly the materialized slice visible through it, never the root's full
// storage. The write is atomic: temp file plus rename.
func Save[L comparable, N comparable, F featureset.Number](ctx context.Context, path string, fs *featureset.FeatureSet[L, N, F], opts ...Option) error {
	o := applyOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = featureset.NoopLogger()
	}

	err := save(path, fs, o)
	logger.LogSave(ctx, path, fs.Rows(), fs.Cols(), err)
	return err
}

// SaveTo writes fs to <dir>/<id>.fset and returns the created path. The
// path is always logged.
func SaveTo[L comparable, N comparable, F featureset.Number](ctx context.Context, dir string, fs *featureset.FeatureSet[L, N, F], opts ...Option) (string, error) {
	o := applyOptions(opts)
	logger := o.logger
	if logger == nil {
		logger = featureset.NewLogger(nil)
	}

	path := filepath.Join(dir, fs.ID()+Ext)
	err := save(path, fs, o)
	logger.LogSave(ctx, path, fs.Rows(), fs.Cols(), err)
	if err != nil {
		return "", err
	}
	return path, nil
}

func save[L comparable, N comparable, F featureset.Number](path string, fs *featureset.FeatureSet[L, N, F], o options) error {
	elem, elemSize := elemTypeOf[F]()
	if elem == ElemInvalid {
		return &ErrElementType{File: ElemInvalid, Caller: ElemInvalid}
	}

	rows, cols := fs.Size()

	// Flatten through the accessors; for views this materializes exactly
	// the visible slice.
	flat := make([]F, 0, rows*cols)
	for _, row := range fs.Features() {
		flat = append(flat, row...)
	}

	meta := metaSection[L, N]{
		ID:        fs.ID(),
		CreatedAt: fs.CreatedAt().Format(time.RFC3339Nano),
		Labels:    fs.Labels(),
		Names:     fs.Names(),
	}
	metaBytes, err := o.codec.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	raw := sliceBytes(flat)
	stored, err := compressData(raw, o.compression)
	if err != nil {
		return fmt.Errorf("compress features: %w", err)
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Elem:        uint8(elem),
		Compression: uint8(o.compression),
		Rows:        uint64(rows),
		Cols:        uint64(cols),
		MetaOffset:  HeaderSize,
		MetaLength:  uint64(len(metaBytes)),
		DataOffset:  alignUp(HeaderSize+uint64(len(metaBytes)), dataAlign),
		DataLength:  uint64(len(stored)),
		RawLength:   uint64(rows * cols * elemSize),
		Checksum:    Checksum(metaBytes, stored),
	}
	copy(header.CodecName[:], o.codec.Name())

	return writeFile(path, func(w io.Writer) error {
		if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
			return err
		}
		if _, err := w.Write(metaBytes); err != nil {
			return err
		}
		pad := make([]byte, header.DataOffset-HeaderSize-uint64(len(metaBytes)))
		if _, err := w.Write(pad); err != nil {
			return err
		}
		_, err := w.Write(stored)
		return err
	})
}
