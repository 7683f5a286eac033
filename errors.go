package featureset

import "fmt"

// ErrShapeMismatch indicates that label/name lengths disagree with the
// feature matrix dimensions at construction.
type ErrShapeMismatch struct {
	Rows     int  // rows seen in the feature matrix
	Cols     int  // columns seen in the feature matrix
	Labels   int  // len(labels)
	Names    int  // len(names)
	Flat     int  // flat data length, only meaningful when FromFlat is set
	FromFlat bool // true when the set was constructed from a flat slice
}

func (e *ErrShapeMismatch) Error() string {
	if e.FromFlat {
		return fmt.Sprintf("shape mismatch: %d labels × %d names requires %d elements, got %d",
			e.Labels, e.Names, e.Labels*e.Names, e.Flat)
	}
	return fmt.Sprintf("shape mismatch: features are %dx%d, labels=%d names=%d",
		e.Rows, e.Cols, e.Labels, e.Names)
}

// ErrUnknownName indicates that a column name could not be resolved.
type ErrUnknownName struct {
	Name any
}

func (e *ErrUnknownName) Error() string {
	return fmt.Sprintf("unknown feature name: %v", e.Name)
}

// ErrRowRange indicates a row index outside [0, Rows).
type ErrRowRange struct {
	Index int
	Rows  int
}

func (e *ErrRowRange) Error() string {
	return fmt.Sprintf("row index %d out of range [0,%d)", e.Index, e.Rows)
}

// ErrMaskLength indicates a Boolean row mask whose length disagrees with the
// row count.
type ErrMaskLength struct {
	Got  int
	Want int
}

func (e *ErrMaskLength) Error() string {
	return fmt.Sprintf("row mask length %d, want %d", e.Got, e.Want)
}

// ErrRowMismatch indicates a shared-root merge whose operands select
// different rows.
type ErrRowMismatch struct {
	A []int
	B []int
}

func (e *ErrRowMismatch) Error() string {
	return fmt.Sprintf("merge: row selections differ (%d vs %d rows)", len(e.A), len(e.B))
}

// ErrLabelMismatch indicates a merge whose operands carry different label
// sequences.
type ErrLabelMismatch struct {
	Row int // first differing row, -1 for a length mismatch
}

func (e *ErrLabelMismatch) Error() string {
	if e.Row < 0 {
		return "merge: label sequences differ in length"
	}
	return fmt.Sprintf("merge: labels differ at row %d", e.Row)
}

// ErrValueConflict indicates a merge where an identically named column holds
// different values in the two operands.
type ErrValueConflict struct {
	Name any
	Row  int
}

func (e *ErrValueConflict) Error() string {
	return fmt.Sprintf("merge: column %v conflicts at row %d", e.Name, e.Row)
}
