package persistence

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"unsafe"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/featureset"
)

var (
	// ErrBigEndian is returned on big-endian systems; the dense features
	// section is written in native little-endian byte order.
	ErrBigEndian = errors.New("big-endian systems are not supported")

	// ErrUnalignedAccess is returned when a mapped features section is not
	// aligned for its element type.
	ErrUnalignedAccess = errors.New("unaligned memory access detected")

	// ErrUnknownCompression is returned for an unrecognized compression code.
	ErrUnknownCompression = errors.New("unknown compression")
)

func init() {
	if !isLittleEndian() {
		panic(fmt.Sprintf("featureset/persistence: %v", ErrBigEndian))
	}
}

func isLittleEndian() bool {
	var test uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&test)) == 1
}

// elemTypeOf maps the feature type parameter to its header code and byte
// size. Named types resolve through their kind.
func elemTypeOf[F featureset.Number]() (ElemType, int) {
	var z F
	switch reflect.TypeOf(z).Kind() {
	case reflect.Float32:
		return ElemFloat32, 4
	case reflect.Float64:
		return ElemFloat64, 8
	case reflect.Int32:
		return ElemInt32, 4
	case reflect.Int64:
		return ElemInt64, 8
	default:
		return ElemInvalid, 0
	}
}

// sliceBytes reinterprets an element slice as raw bytes without copying.
func sliceBytes[F featureset.Number](s []F) []byte {
	if len(s) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(s[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*size)
}

// bytesSlice reinterprets raw bytes as an element slice without copying.
// The byte slice must be aligned for F; mapped sections are (the features
// section starts at a 64-byte aligned offset of a page-aligned mapping).
func bytesSlice[F featureset.Number](b []byte, count int) ([]F, error) {
	if count == 0 {
		return nil, nil
	}
	size := int(unsafe.Sizeof(*new(F)))
	if count < 0 || len(b)/size < count {
		return nil, io.ErrUnexpectedEOF
	}
	if uintptr(unsafe.Pointer(&b[0]))%uintptr(size) != 0 {
		return nil, fmt.Errorf("%w: features section at 0x%x", ErrUnalignedAccess, uintptr(unsafe.Pointer(&b[0])))
	}
	return unsafe.Slice((*F)(unsafe.Pointer(&b[0])), count), nil
}

// decodeElems copies raw little-endian bytes into a freshly allocated
// element slice (the eager-load path).
func decodeElems[F featureset.Number](b []byte, count int) ([]F, error) {
	// Validate before allocating: count comes from the (unchecksummed)
	// header and must never size an allocation on its own.
	size := int(unsafe.Sizeof(*new(F)))
	if count < 0 || count != len(b)/size || len(b)%size != 0 {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]F, count)
	if count == 0 {
		return out, nil
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), len(b)), b)
	return out, nil
}

// compressData applies the configured compression to the raw features bytes.
func compressData(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(raw, nil)
		_ = enc.Close()
		return out, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// decompressData reverses compressData. rawLen is the expected uncompressed
// length from the header, used only as a preallocation hint.
func decompressData(stored []byte, c Compression, rawLen int) ([]byte, error) {
	if rawLen < 0 {
		rawLen = 0
	}
	switch c {
	case CompressionNone:
		return stored, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(stored, make([]byte, 0, rawLen))
	case CompressionLZ4:
		out := make([]byte, 0, rawLen)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(stored))); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// writeFile writes a file atomically: temp file in the target directory,
// fsync, rename, then a best-effort directory sync.
func writeFile(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: keep the deferred cleanup away from the final file.
	tmpName = ""
	return nil
}
