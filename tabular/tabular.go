// Package tabular adapts a feature set to generic row/column data
// processing.
//
// The adapter is built purely on the container's accessor contract (labels,
// names, features, size); it never reaches into storage. Iteration order is
// label order for rows and name order for columns.
package tabular

import (
	"iter"
	"reflect"

	"github.com/hupe1980/featureset"
)

// Schema describes the tabular shape of a feature set: the field
// identifiers and their uniform value kind.
type Schema[N comparable] struct {
	Fields []N
	Kind   reflect.Kind
}

// SchemaOf returns the schema of fs. Every field shares the feature element
// kind.
func SchemaOf[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F]) Schema[N] {
	var z F
	return Schema[N]{
		Fields: fs.Names(),
		Kind:   reflect.TypeOf(z).Kind(),
	}
}

// Rows iterates the samples in row-major order as (label, feature row)
// pairs. The yielded row slice is reused storage of the set's accessor
// contract: treat it as read-only and copy it if it must outlive the step.
func Rows[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F]) iter.Seq2[L, []F] {
	return func(yield func(L, []F) bool) {
		labels := fs.Labels()
		features := fs.Features()
		for i, label := range labels {
			if !yield(label, features[i]) {
				return
			}
		}
	}
}

// Columns iterates the features in name order as (name, column) pairs.
func Columns[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F]) iter.Seq2[N, []F] {
	return func(yield func(N, []F) bool) {
		for _, name := range fs.Names() {
			col, err := fs.ColSlice(featureset.All, name)
			if err != nil {
				return
			}
			if !yield(name, col) {
				return
			}
		}
	}
}

// Subset returns an index-preserving row subset of fs: a zero-copy view
// over the selected rows and every column.
func Subset[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F], rows featureset.RowSelector) (*featureset.FeatureSet[L, N, F], error) {
	return fs.View(rows, featureset.All)
}
