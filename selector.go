package featureset

// RowSelector selects sample rows. Row selectors are raw positional
// selectors: integer indices, half-open ranges and Boolean masks, with no
// name-resolver indirection.
//
// The interface is closed: the only implementations are the ones in this
// package, so a selector that misses a resolution rule cannot exist.
type RowSelector interface {
	rowSelector()
}

// ColSelector selects feature columns by name. Column selectors are always
// resolved through the name index.
//
// Like RowSelector, the interface is closed.
type ColSelector[N comparable] interface {
	colSelector()
}

// AllSelector selects every row or column. The package-level All value
// implements both selector kinds.
type AllSelector struct{}

func (AllSelector) rowSelector() {}
func (AllSelector) colSelector() {}

// All selects every row (as a RowSelector) or every column (as a
// ColSelector).
var All = AllSelector{}

type rowIndices struct{ idx []int }

func (rowIndices) rowSelector() {}

// Rows selects the given row indices, order-preserving. Indices may repeat.
func Rows(idx ...int) RowSelector {
	return rowIndices{idx: idx}
}

type rowRange struct{ start, stop int }

func (rowRange) rowSelector() {}

// RowRange selects the half-open index range [start, stop).
func RowRange(start, stop int) RowSelector {
	return rowRange{start: start, stop: stop}
}

type rowMask struct{ mask []bool }

func (rowMask) rowSelector() {}

// Mask selects the rows whose mask entry is true. The mask length must
// equal the row count.
func Mask(mask []bool) RowSelector {
	return rowMask{mask: mask}
}

type colNames[N comparable] struct{ names []N }

func (colNames[N]) colSelector() {}

// Cols selects the named columns, order-preserving.
func Cols[N comparable](names ...N) ColSelector[N] {
	return colNames[N]{names: names}
}

// resolveRows maps a row selector to view-local row indices.
func (fs *FeatureSet[L, N, F]) resolveRows(sel RowSelector) ([]int, error) {
	switch s := sel.(type) {
	case AllSelector:
		idx := make([]int, fs.rows)
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	case rowIndices:
		idx := make([]int, len(s.idx))
		for i, ri := range s.idx {
			if ri < 0 || ri >= fs.rows {
				return nil, &ErrRowRange{Index: ri, Rows: fs.rows}
			}
			idx[i] = ri
		}
		return idx, nil
	case rowRange:
		if s.start < 0 || s.stop > fs.rows || s.start > s.stop {
			return nil, &ErrRowRange{Index: s.start, Rows: fs.rows}
		}
		idx := make([]int, 0, s.stop-s.start)
		for i := s.start; i < s.stop; i++ {
			idx = append(idx, i)
		}
		return idx, nil
	case rowMask:
		if len(s.mask) != fs.rows {
			return nil, &ErrMaskLength{Got: len(s.mask), Want: fs.rows}
		}
		var idx []int
		for i, keep := range s.mask {
			if keep {
				idx = append(idx, i)
			}
		}
		return idx, nil
	default:
		// Unreachable: the interface is closed.
		return nil, &ErrRowRange{Index: -1, Rows: fs.rows}
	}
}

// resolveColSel maps a column selector to view-local column indices through
// the name index.
func (fs *FeatureSet[L, N, F]) resolveColSel(sel ColSelector[N]) ([]int, error) {
	switch s := sel.(type) {
	case AllSelector:
		idx := make([]int, fs.cols)
		for j := range idx {
			idx[j] = j
		}
		return idx, nil
	case colNames[N]:
		return fs.resolveNames(s.names)
	default:
		// Unreachable: the interface is closed.
		return nil, &ErrUnknownName{Name: nil}
	}
}
