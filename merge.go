package featureset

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Merge combines two sets over the same samples, evaluated in order:
//
//  1. Identity: a and b are the same instance → a is returned unchanged.
//  2. Shared root: Root(a) and Root(b) are the same instance (pointer
//     identity, not structural equality) → the operands must select the
//     same rows (*ErrRowMismatch otherwise) and the result is a new view
//     into the shared root over the column union, a's columns first.
//  3. Generic: the label sequences must match exactly (*ErrLabelMismatch),
//     identically named columns must be value-identical (*ErrValueConflict),
//     and the result is a new owned set with a's names followed by the
//     names only b has, features concatenated horizontally.
//
// The shared-root path is the identity-aware fast path: no feature data is
// copied or compared, only column index sets are combined.
func Merge[L comparable, N comparable, F Number](a, b *FeatureSet[L, N, F]) (*FeatureSet[L, N, F], error) {
	if a == b {
		return a, nil
	}

	if a.Root() == b.Root() {
		return mergeSharedRoot(a, b)
	}
	return mergeGeneric(a, b)
}

// MergeAll is the left-associative fold of Merge.
func MergeAll[L comparable, N comparable, F Number](sets ...*FeatureSet[L, N, F]) (*FeatureSet[L, N, F], error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := sets[0]
	for _, next := range sets[1:] {
		var err error
		out, err = Merge(out, next)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func mergeSharedRoot[L comparable, N comparable, F Number](a, b *FeatureSet[L, N, F]) (*FeatureSet[L, N, F], error) {
	aRows := a.effectiveRows()
	bRows := b.effectiveRows()
	if !slices.Equal(aRows, bRows) {
		return nil, &ErrRowMismatch{A: aRows, B: bRows}
	}

	aCols := a.effectiveCols()
	seen := roaring.New()
	for _, j := range aCols {
		seen.Add(uint32(j))
	}

	union := append([]int(nil), aCols...)
	for _, j := range b.effectiveCols() {
		if !seen.Contains(uint32(j)) {
			seen.Add(uint32(j))
			union = append(union, j)
		}
	}

	return newView(a.Root(), append([]int(nil), aRows...), union), nil
}

func mergeGeneric[L comparable, N comparable, F Number](a, b *FeatureSet[L, N, F]) (*FeatureSet[L, N, F], error) {
	if a.rows != b.rows {
		return nil, &ErrLabelMismatch{Row: -1}
	}
	for i := 0; i < a.rows; i++ {
		if a.labelAt(i) != b.labelAt(i) {
			return nil, &ErrLabelMismatch{Row: i}
		}
	}

	// Columns shared by name must agree cell-for-cell before they collapse
	// into one.
	for j := 0; j < a.cols; j++ {
		name := a.nameAt(j)
		bj, ok := b.nameIndex[name]
		if !ok {
			continue
		}
		for i := 0; i < a.rows; i++ {
			if a.at(i, j) != b.at(i, bj) {
				return nil, &ErrValueConflict{Name: name, Row: i}
			}
		}
	}

	// onlyB: b's columns whose names a does not have, in b's order.
	var onlyB []int
	for j := 0; j < b.cols; j++ {
		if _, ok := a.nameIndex[b.nameAt(j)]; !ok {
			onlyB = append(onlyB, j)
		}
	}

	names := make([]N, 0, a.cols+len(onlyB))
	names = append(names, a.Names()...)
	for _, j := range onlyB {
		names = append(names, b.nameAt(j))
	}

	labels := append([]L(nil), a.Labels()...)

	cols := a.cols + len(onlyB)
	data := make([]F, 0, a.rows*cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			data = append(data, a.at(i, j))
		}
		for _, j := range onlyB {
			data = append(data, b.at(i, j))
		}
	}
	return FromFlat(labels, names, data)
}
