package featureset

// At returns the single feature value at the given row and column name.
// Scalar × scalar selection never produces a container.
func (fs *FeatureSet[L, N, F]) At(row int, name N) (F, error) {
	var zero F
	if row < 0 || row >= fs.rows {
		return zero, &ErrRowRange{Index: row, Rows: fs.rows}
	}
	j, err := fs.resolveName(name)
	if err != nil {
		return zero, err
	}
	return fs.at(row, j), nil
}

// RowSlice returns the values of a single row at the selected columns as a
// plain ordered slice. Scalar × sequence selection never produces a
// container; views would add nothing for scalar extraction.
func (fs *FeatureSet[L, N, F]) RowSlice(row int, cols ColSelector[N]) ([]F, error) {
	if row < 0 || row >= fs.rows {
		return nil, &ErrRowRange{Index: row, Rows: fs.rows}
	}
	colIdx, err := fs.resolveColSel(cols)
	if err != nil {
		return nil, err
	}
	out := make([]F, len(colIdx))
	for k, j := range colIdx {
		out[k] = fs.at(row, j)
	}
	return out, nil
}

// ColSlice returns the values of a single named column at the selected rows
// as a plain ordered slice.
func (fs *FeatureSet[L, N, F]) ColSlice(rows RowSelector, name N) ([]F, error) {
	j, err := fs.resolveName(name)
	if err != nil {
		return nil, err
	}
	rowIdx, err := fs.resolveRows(rows)
	if err != nil {
		return nil, err
	}
	out := make([]F, len(rowIdx))
	for k, i := range rowIdx {
		out[k] = fs.at(i, j)
	}
	return out, nil
}

// Get returns a new OWNED FeatureSet holding the selected rows and columns.
// Labels, names and features are copied into independent storage; the result
// has no parent and survives its source.
func (fs *FeatureSet[L, N, F]) Get(rows RowSelector, cols ColSelector[N], opts ...Option) (*FeatureSet[L, N, F], error) {
	rowIdx, err := fs.resolveRows(rows)
	if err != nil {
		return nil, err
	}
	colIdx, err := fs.resolveColSel(cols)
	if err != nil {
		return nil, err
	}

	labels := make([]L, len(rowIdx))
	for k, i := range rowIdx {
		labels[k] = fs.labelAt(i)
	}
	names := make([]N, len(colIdx))
	for k, j := range colIdx {
		names[k] = fs.nameAt(j)
	}
	data := make([]F, 0, len(rowIdx)*len(colIdx))
	for _, i := range rowIdx {
		for _, j := range colIdx {
			data = append(data, fs.at(i, j))
		}
	}
	return FromFlat(labels, names, data, opts...)
}

// View returns a new FeatureSet whose storage is shared with fs's root.
//
// The selectors are resolved against fs, then rebased onto the root, so a
// view of a view links directly to the ultimate owner: view chains flatten
// and Parent() is always the root. No feature data is copied.
func (fs *FeatureSet[L, N, F]) View(rows RowSelector, cols ColSelector[N]) (*FeatureSet[L, N, F], error) {
	rowIdx, err := fs.resolveRows(rows)
	if err != nil {
		return nil, err
	}
	colIdx, err := fs.resolveColSel(cols)
	if err != nil {
		return nil, err
	}

	root := fs.Root()
	if fs.parent != nil {
		for k, i := range rowIdx {
			rowIdx[k] = fs.rowIdx[i]
		}
		for k, j := range colIdx {
			colIdx[k] = fs.colIdx[j]
		}
	}
	return newView(root, rowIdx, colIdx), nil
}

// Copy returns an owned deep copy of fs with a fresh identity. Copying a
// view materializes the visible slice out of its root, so the copy survives
// the root.
func (fs *FeatureSet[L, N, F]) Copy(opts ...Option) *FeatureSet[L, N, F] {
	data := make([]F, 0, fs.rows*fs.cols)
	for i := 0; i < fs.rows; i++ {
		for j := 0; j < fs.cols; j++ {
			data = append(data, fs.at(i, j))
		}
	}
	labels := append([]L(nil), fs.Labels()...)
	names := append([]N(nil), fs.Names()...)
	owned, _ := FromFlat(labels, names, data, opts...)
	return owned
}
