package featureset

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
)

// Number constrains the feature element type to the numeric types the
// container (and its persistence layer) supports.
type Number interface {
	~int32 | ~int64 | ~float32 | ~float64
}

// FeatureSet is an immutable, label-and-name-indexed feature matrix.
//
// It holds M sample rows and K feature columns: one label per row, one
// pairwise-unique name per column, and an M×K numeric matrix aligned to both.
// Instances are created by the constructors, by the indexing operations
// (Get/View), by Merge, or by persistence.Load. Once constructed, a set is
// never mutated.
//
// A FeatureSet is either OWNED (independent storage, Parent() == nil) or a
// VIEW (row/column subset sharing the storage of its root owner). Views are
// cheap: they record index sets into the root instead of copying data. A
// view's lifetime must not exceed its root's; in particular, a view over a
// memory-mapped set becomes invalid once the mapping is closed.
//
// Accessors on owned sets return internal slices without copying. Callers
// must treat them as read-only, the same contract the rest of the library
// relies on for zero-copy access.
type FeatureSet[L comparable, N comparable, F Number] struct {
	id        string
	createdAt time.Time

	// Owned storage. Views leave these nil and read through parent.
	labels []L
	names  []N
	data   []F // row-major, rows*cols

	rows int
	cols int

	nameIndex map[N]int

	// parent is the root owner this set is a view into, nil for owned sets.
	// rowIdx/colIdx are index sets into the parent's storage and are only
	// populated on views.
	parent *FeatureSet[L, N, F]
	rowIdx []int
	colIdx []int
}

// New constructs an owned FeatureSet from explicit labels, names and a
// row-major feature matrix. The inputs are copied; the caller keeps
// ownership of its slices.
//
// It fails with *ErrShapeMismatch when len(labels) != len(features), when a
// feature row is ragged, or when len(names) disagrees with the row width.
func New[L comparable, N comparable, F Number](labels []L, names []N, features [][]F, opts ...Option) (*FeatureSet[L, N, F], error) {
	rows := len(labels)
	cols := len(names)

	if len(features) != rows {
		return nil, &ErrShapeMismatch{Rows: len(features), Cols: cols, Labels: rows, Names: cols}
	}
	for _, row := range features {
		if len(row) != cols {
			return nil, &ErrShapeMismatch{Rows: rows, Cols: len(row), Labels: rows, Names: cols}
		}
	}

	data := make([]F, 0, rows*cols)
	for _, row := range features {
		data = append(data, row...)
	}

	o := applyOptions(opts)
	return &FeatureSet[L, N, F]{
		id:        o.id,
		createdAt: o.createdAt,
		labels:    append([]L(nil), labels...),
		names:     append([]N(nil), names...),
		data:      data,
		rows:      rows,
		cols:      cols,
		nameIndex: buildNameIndex(names),
	}, nil
}

// FromFlat constructs an owned FeatureSet from a flat row-major data slice.
//
// Unlike New, the slices are NOT copied: the set takes them over as its
// backing storage. This is the zero-copy entry point used by the persistence
// layer (including memory-mapped loads). Callers must not modify the slices
// afterwards.
func FromFlat[L comparable, N comparable, F Number](labels []L, names []N, data []F, opts ...Option) (*FeatureSet[L, N, F], error) {
	rows := len(labels)
	cols := len(names)
	if len(data) != rows*cols {
		return nil, &ErrShapeMismatch{Rows: rows, Cols: cols, Labels: rows, Names: cols, Flat: len(data), FromFlat: true}
	}

	o := applyOptions(opts)
	return &FeatureSet[L, N, F]{
		id:        o.id,
		createdAt: o.createdAt,
		labels:    labels,
		names:     names,
		data:      data,
		rows:      rows,
		cols:      cols,
		nameIndex: buildNameIndex(names),
	}, nil
}

// FromMatrix constructs an owned FeatureSet from a feature matrix and a
// label vector, auto-assigning the column names 1..K.
func FromMatrix[L comparable, F Number](features [][]F, labels []L, opts ...Option) (*FeatureSet[L, int, F], error) {
	return FromMatrixFunc(features, labels, func(col int) int { return col + 1 }, opts...)
}

// FromMatrixFunc is FromMatrix for an arbitrary name type: nameFn maps the
// zero-based column ordinal to the column's name.
func FromMatrixFunc[L comparable, N comparable, F Number](features [][]F, labels []L, nameFn func(col int) N, opts ...Option) (*FeatureSet[L, N, F], error) {
	cols := 0
	if len(features) > 0 {
		cols = len(features[0])
	}
	names := make([]N, cols)
	for j := range names {
		names[j] = nameFn(j)
	}
	return New(labels, names, features, opts...)
}

// newView builds a view directly on root. rowIdx/colIdx are taken over by
// the view and must already be rebased onto the root's storage.
func newView[L comparable, N comparable, F Number](root *FeatureSet[L, N, F], rowIdx, colIdx []int) *FeatureSet[L, N, F] {
	v := &FeatureSet[L, N, F]{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		rows:      len(rowIdx),
		cols:      len(colIdx),
		parent:    root,
		rowIdx:    rowIdx,
		colIdx:    colIdx,
	}
	v.nameIndex = buildNameIndex(v.Names())
	return v
}

// ID returns the process-unique identifier assigned at construction.
func (fs *FeatureSet[L, N, F]) ID() string { return fs.id }

// CreatedAt returns the construction timestamp.
func (fs *FeatureSet[L, N, F]) CreatedAt() time.Time { return fs.createdAt }

// Rows returns M, the number of sample rows.
func (fs *FeatureSet[L, N, F]) Rows() int { return fs.rows }

// Cols returns K, the number of feature columns.
func (fs *FeatureSet[L, N, F]) Cols() int { return fs.cols }

// Size returns (M, K).
func (fs *FeatureSet[L, N, F]) Size() (rows, cols int) { return fs.rows, fs.cols }

// IsView reports whether fs shares storage with a root owner.
func (fs *FeatureSet[L, N, F]) IsView() bool { return fs.parent != nil }

// Parent returns the root owner this view reads through, or nil for owned
// sets. Views always chain directly to the ultimate owner, so Parent() of a
// view of a view is still the root.
func (fs *FeatureSet[L, N, F]) Parent() *FeatureSet[L, N, F] { return fs.parent }

// Root returns the ultimate owning set: fs itself when owned, Parent()
// otherwise.
func (fs *FeatureSet[L, N, F]) Root() *FeatureSet[L, N, F] {
	if fs.parent != nil {
		return fs.parent
	}
	return fs
}

// Labels returns the label vector in row order.
//
// For owned sets this is the internal slice (read-only contract); for views
// it is materialized on each call.
func (fs *FeatureSet[L, N, F]) Labels() []L {
	if fs.parent == nil {
		return fs.labels
	}
	out := make([]L, fs.rows)
	for i, ri := range fs.rowIdx {
		out[i] = fs.parent.labels[ri]
	}
	return out
}

// Names returns the column names in column order.
//
// For owned sets this is the internal slice (read-only contract); for views
// it is materialized on each call.
func (fs *FeatureSet[L, N, F]) Names() []N {
	if fs.parent == nil {
		return fs.names
	}
	out := make([]N, fs.cols)
	for j, cj := range fs.colIdx {
		out[j] = fs.parent.names[cj]
	}
	return out
}

// Features returns the M×K matrix as row slices.
//
// For owned sets the rows alias the internal backing array (read-only
// contract); for views the matrix is materialized.
func (fs *FeatureSet[L, N, F]) Features() [][]F {
	out := make([][]F, fs.rows)
	if fs.parent == nil {
		for i := range out {
			out[i] = fs.data[i*fs.cols : (i+1)*fs.cols]
		}
		return out
	}
	for i := range out {
		row := make([]F, fs.cols)
		for j := range row {
			row[j] = fs.at(i, j)
		}
		out[i] = row
	}
	return out
}

// at reads the cell at view-local coordinates.
func (fs *FeatureSet[L, N, F]) at(i, j int) F {
	if fs.parent == nil {
		return fs.data[i*fs.cols+j]
	}
	return fs.parent.data[fs.rowIdx[i]*fs.parent.cols+fs.colIdx[j]]
}

func (fs *FeatureSet[L, N, F]) labelAt(i int) L {
	if fs.parent == nil {
		return fs.labels[i]
	}
	return fs.parent.labels[fs.rowIdx[i]]
}

func (fs *FeatureSet[L, N, F]) nameAt(j int) N {
	if fs.parent == nil {
		return fs.names[j]
	}
	return fs.parent.names[fs.colIdx[j]]
}

// effectiveRows returns fs's row selection as indices into its root's
// storage. Owned sets select every row in order.
func (fs *FeatureSet[L, N, F]) effectiveRows() []int {
	if fs.parent != nil {
		return fs.rowIdx
	}
	idx := make([]int, fs.rows)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// effectiveCols is the column counterpart of effectiveRows.
func (fs *FeatureSet[L, N, F]) effectiveCols() []int {
	if fs.parent != nil {
		return fs.colIdx
	}
	idx := make([]int, fs.cols)
	for j := range idx {
		idx[j] = j
	}
	return idx
}

// Equal reports structural equality: same labels, names and feature values.
// View/owned status, id and timestamps do not participate.
func (fs *FeatureSet[L, N, F]) Equal(other *FeatureSet[L, N, F]) bool {
	if fs == other {
		return true
	}
	if other == nil || fs.rows != other.rows || fs.cols != other.cols {
		return false
	}
	for i := 0; i < fs.rows; i++ {
		if fs.labelAt(i) != other.labelAt(i) {
			return false
		}
	}
	for j := 0; j < fs.cols; j++ {
		if fs.nameAt(j) != other.nameAt(j) {
			return false
		}
	}
	for i := 0; i < fs.rows; i++ {
		for j := 0; j < fs.cols; j++ {
			if fs.at(i, j) != other.at(i, j) {
				return false
			}
		}
	}
	return true
}

// Hash returns a 64-bit digest over labels, names and feature values,
// consistent with Equal. The id, timestamp and view structure are excluded.
func (fs *FeatureSet[L, N, F]) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(fs.rows))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(fs.cols))
	_, _ = h.Write(buf[:])

	for i := 0; i < fs.rows; i++ {
		writeHashValue(h, fs.labelAt(i))
	}
	for j := 0; j < fs.cols; j++ {
		writeHashValue(h, fs.nameAt(j))
	}
	for i := 0; i < fs.rows; i++ {
		for j := 0; j < fs.cols; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(float64(fs.at(i, j))))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}

// writeHashValue feeds an opaque comparable value to the hasher. Labels and
// names are arbitrary comparable types, so they go through fmt; the NUL
// separator keeps adjacent values from running together.
func writeHashValue(h io.Writer, v any) {
	_, _ = fmt.Fprintf(h, "%v\x00", v)
}
