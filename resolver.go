package featureset

// buildNameIndex associates each column name with its position. On duplicate
// names the later position overwrites the earlier one, so lookups return the
// last occurrence. The names slice itself keeps all occurrences verbatim;
// only the index collapses duplicates.
//
// Duplicate names are tolerated rather than rejected, but code should not
// lean on the last-wins ordering: it is a tie-break, not a contract.
func buildNameIndex[N comparable](names []N) map[N]int {
	index := make(map[N]int, len(names))
	for j, name := range names {
		index[name] = j
	}
	return index
}

// ColumnIndex resolves a single name through the name index. The bool
// reports whether the name is known.
func (fs *FeatureSet[L, N, F]) ColumnIndex(name N) (int, bool) {
	j, ok := fs.nameIndex[name]
	return j, ok
}

// resolveName is ColumnIndex with the error the indexing engine surfaces.
func (fs *FeatureSet[L, N, F]) resolveName(name N) (int, error) {
	j, ok := fs.nameIndex[name]
	if !ok {
		return 0, &ErrUnknownName{Name: name}
	}
	return j, nil
}

// resolveNames resolves a sequence of names, order-preserving.
func (fs *FeatureSet[L, N, F]) resolveNames(names []N) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := fs.resolveName(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	return idx, nil
}
