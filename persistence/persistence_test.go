package persistence

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featureset"
	"github.com/hupe1980/featureset/codec"
)

func testSet(t *testing.T) *featureset.FeatureSet[int, string, float64] {
	t.Helper()
	fs, err := featureset.New(
		[]int{1, 2, 1},
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 2, 3},
			{4, 5, 6},
			{7, 8, 9},
		},
	)
	require.NoError(t, err)
	return fs
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	path := filepath.Join(t.TempDir(), "set.fset")

	require.NoError(t, Save(ctx, path, fs))

	c, err := Load[int, string, float64](ctx, path)
	require.NoError(t, err)
	defer c.Close()

	got := c.Set()
	assert.True(t, fs.Equal(got))
	assert.Nil(t, got.Parent())
	assert.Equal(t, fs.ID(), got.ID())
	assert.True(t, fs.CreatedAt().Equal(got.CreatedAt()))
	assert.False(t, c.Mapped())
	assert.True(t, c.Valid())
}

func TestSaveLoad_ViewPersistsMaterializedSlice(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)

	v, err := fs.View(featureset.Rows(0, 2), featureset.Cols("b", "c"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "view.fset")
	require.NoError(t, Save(ctx, path, v))

	c, err := Load[int, string, float64](ctx, path)
	require.NoError(t, err)
	defer c.Close()

	got := c.Set()
	assert.Nil(t, got.Parent())
	assert.Equal(t, []int{1, 1}, got.Labels())
	assert.Equal(t, []string{"b", "c"}, got.Names())
	assert.Equal(t, [][]float64{{2, 3}, {8, 9}}, got.Features())
}

func TestLoad_MmapEqualsEager(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	path := filepath.Join(t.TempDir(), "set.fset")
	require.NoError(t, Save(ctx, path, fs))

	eager, err := Load[int, string, float64](ctx, path)
	require.NoError(t, err)
	defer eager.Close()

	mapped, err := Load[int, string, float64](ctx, path, WithMmap(true))
	require.NoError(t, err)
	defer mapped.Close()

	assert.True(t, mapped.Mapped())
	assert.True(t, eager.Set().Equal(mapped.Set()))
	assert.Nil(t, mapped.Set().Parent())

	require.NoError(t, mapped.Close())
	// Close is idempotent.
	require.NoError(t, mapped.Close())
}

func TestSaveLoad_Compression(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)

	for _, tc := range []struct {
		name string
		comp Compression
	}{
		{"zstd", CompressionZSTD},
		{"lz4", CompressionLZ4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "set.fset")
			require.NoError(t, Save(ctx, path, fs, WithCompression(tc.comp)))

			c, err := Load[int, string, float64](ctx, path)
			require.NoError(t, err)
			defer c.Close()
			assert.True(t, fs.Equal(c.Set()))

			// Mapping is impossible for compressed features; Load falls
			// back to an eager read.
			mc, err := Load[int, string, float64](ctx, path, WithMmap(true))
			require.NoError(t, err)
			defer mc.Close()
			assert.False(t, mc.Mapped())
			assert.True(t, fs.Equal(mc.Set()))
		})
	}
}

func TestSaveTo_DefaultPath(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	dir := t.TempDir()

	path, err := SaveTo(ctx, dir, fs, WithLogger(featureset.NoopLogger()))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, fs.ID()+Ext), path)
	assert.True(t, IsValid(path))
}

func TestLoad_ElementTypeMismatch(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	path := filepath.Join(t.TempDir(), "set.fset")
	require.NoError(t, Save(ctx, path, fs))

	var elemErr *ErrElementType
	_, err := Load[int, string, float32](ctx, path)
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, ElemFloat64, elemErr.File)
	assert.Equal(t, ElemFloat32, elemErr.Caller)
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	path := filepath.Join(t.TempDir(), "set.fset")
	require.NoError(t, Save(ctx, path, fs))

	// Flip one byte in the features section.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0644))

	var sumErr *ChecksumMismatchError
	_, err = Load[int, string, float64](ctx, path)
	require.ErrorAs(t, err, &sumErr)

	// Verification can be disabled explicitly.
	c, err := Load[int, string, float64](ctx, path, WithChecksumVerify(false))
	require.NoError(t, err)
	defer c.Close()
}

// patchHeaderField overwrites one uint64 header field in place, simulating
// header corruption the section checksum does not cover.
func patchHeaderField(t *testing.T, path string, off int, v uint64) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	binary.LittleEndian.PutUint64(raw[off:], v)
	require.NoError(t, os.WriteFile(path, raw, 0644))
}

func TestLoad_CorruptHeader(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)

	// Byte offsets of the patched header fields.
	const (
		offRows       = 20
		offMetaOffset = 36
		offDataOffset = 52
	)

	for _, tc := range []struct {
		name string
		off  int
		v    uint64
	}{
		{"meta offset wraps", offMetaOffset, ^uint64(0) - 10},
		{"data offset wraps", offDataOffset, ^uint64(0) - 10},
		{"row count huge", offRows, 1 << 40},
		{"row count inconsistent", offRows, 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "set.fset")
			require.NoError(t, Save(ctx, path, fs))
			patchHeaderField(t, path, tc.off, tc.v)

			var invalid *ErrInvalidContainer
			_, err := Load[int, string, float64](ctx, path)
			require.ErrorAs(t, err, &invalid)

			_, err = Load[int, string, float64](ctx, path, WithMmap(true))
			require.Error(t, err)

			assert.False(t, IsValid(path))
		})
	}
}

func TestIsValid(t *testing.T) {
	ctx := context.Background()
	fs := testSet(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "set.fset")
	require.NoError(t, Save(ctx, path, fs))

	assert.True(t, IsValid(path))
	assert.False(t, IsValid(filepath.Join(dir, "missing.fset")))

	garbage := filepath.Join(dir, "garbage.fset")
	require.NoError(t, os.WriteFile(garbage, []byte("not a container"), 0644))
	assert.False(t, IsValid(garbage))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	assert.True(t, IsValidFile(f))
	assert.False(t, IsValidFile(bytes.NewReader([]byte("nope"))))
}

// writeWithMeta writes a structurally sound container whose metadata section
// is the given object, bypassing Save's always-complete metadata.
func writeWithMeta(t *testing.T, path string, meta map[string]any) {
	t.Helper()

	metaBytes, err := codec.Default.Marshal(meta)
	require.NoError(t, err)

	data := sliceBytes([]float64{1, 2})

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Elem:        uint8(ElemFloat64),
		Compression: uint8(CompressionNone),
		Rows:        1,
		Cols:        2,
		MetaOffset:  HeaderSize,
		MetaLength:  uint64(len(metaBytes)),
		DataOffset:  alignUp(HeaderSize+uint64(len(metaBytes)), dataAlign),
		DataLength:  uint64(len(data)),
		RawLength:   uint64(len(data)),
		Checksum:    Checksum(metaBytes, data),
	}
	copy(header.CodecName[:], codec.Default.Name())

	err = writeFile(path, func(w io.Writer) error {
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
		_, err := w.Write(data)
		return err
	})
	require.NoError(t, err)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "incomplete.fset")

	writeWithMeta(t, path, map[string]any{
		"id":     "abc",
		"labels": []int{1},
		// created_at and names are missing
	})

	var invalid *ErrInvalidContainer
	_, err := Load[int, string, float64](ctx, path)
	require.ErrorAs(t, err, &invalid)
	assert.ElementsMatch(t, []string{"created_at", "names"}, invalid.Missing)
	assert.False(t, IsValid(path))
}

func TestLoad_ExtraFieldsTolerated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "extra.fset")

	writeWithMeta(t, path, map[string]any{
		"id":         "abc",
		"created_at": "2024-03-01T12:00:00Z",
		"labels":     []int{7},
		"names":      []string{"x", "y"},
		"comment":    "produced by a newer writer",
	})

	assert.True(t, IsValid(path))

	c, err := Load[int, string, float64](ctx, path)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "abc", c.Set().ID())
	assert.Equal(t, []int{7}, c.Set().Labels())
	assert.Equal(t, [][]float64{{1, 2}}, c.Set().Features())
}
