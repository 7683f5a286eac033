package featureset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAt_Scalar(t *testing.T) {
	fs := testSet(t)

	v, err := fs.At(1, "c")
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)

	var unknown *ErrUnknownName
	_, err = fs.At(0, "nope")
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)

	var rangeErr *ErrRowRange
	_, err = fs.At(2, "a")
	require.ErrorAs(t, err, &rangeErr)
}

func TestRowSlice(t *testing.T) {
	fs := testSet(t)

	row, err := fs.RowSlice(1, Cols("b", "d"))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 9}, row)

	all, err := fs.RowSlice(0, All)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, all)
}

func TestColSlice(t *testing.T) {
	fs := testSet(t)

	col, err := fs.ColSlice(All, "c")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 8}, col)

	ranged, err := fs.ColSlice(RowRange(1, 2), "c")
	require.NoError(t, err)
	assert.Equal(t, []float64{8}, ranged)
}

func TestRowSelectors(t *testing.T) {
	fs := testSet(t)

	masked, err := fs.ColSlice(Mask([]bool{false, true}), "a")
	require.NoError(t, err)
	assert.Equal(t, []float64{6}, masked)

	var maskErr *ErrMaskLength
	_, err = fs.ColSlice(Mask([]bool{true}), "a")
	require.ErrorAs(t, err, &maskErr)

	var rangeErr *ErrRowRange
	_, err = fs.ColSlice(Rows(0, 5), "a")
	require.ErrorAs(t, err, &rangeErr)

	_, err = fs.ColSlice(RowRange(1, 3), "a")
	require.ErrorAs(t, err, &rangeErr)
}

func TestGet_ReturnsOwnedCopy(t *testing.T) {
	fs := testSet(t)

	sub, err := fs.Get(Rows(1), Cols("b", "e"))
	require.NoError(t, err)

	assert.Nil(t, sub.Parent())
	assert.False(t, sub.IsView())
	assert.Equal(t, []int{2}, sub.Labels())
	assert.Equal(t, []string{"b", "e"}, sub.Names())
	assert.Equal(t, [][]float64{{7, 10}}, sub.Features())

	// Independent storage.
	assert.NotSame(t, &fs.data[0], &sub.data[0])
}

func TestView_SharesRootStorage(t *testing.T) {
	fs := testSet(t)

	v, err := fs.View(All, Cols("a", "b"))
	require.NoError(t, err)

	assert.True(t, v.IsView())
	assert.Same(t, fs, v.Parent())
	assert.Same(t, fs, v.Root())
	assert.Nil(t, v.data)
	assert.Equal(t, []string{"a", "b"}, v.Names())
	assert.Equal(t, [][]float64{{1, 2}, {6, 7}}, v.Features())
}

func TestView_AllEqualsSelf(t *testing.T) {
	fs := testSet(t)

	v, err := fs.View(All, All)
	require.NoError(t, err)

	assert.True(t, fs.Equal(v))
	assert.NotSame(t, fs, v)
}

func TestView_ChainsFlatten(t *testing.T) {
	fs := testSet(t)

	v1, err := fs.View(All, Cols("b", "c", "d"))
	require.NoError(t, err)

	v2, err := v1.View(Rows(1), Cols("c", "d"))
	require.NoError(t, err)

	// The nested view links to the ultimate owner, not v1.
	assert.Same(t, fs, v2.Parent())

	// And equals the single composed view.
	composed, err := fs.View(Rows(1), Cols("c", "d"))
	require.NoError(t, err)
	assert.True(t, composed.Equal(v2))
}

func TestView_ScalarExtractionStillWorks(t *testing.T) {
	fs := testSet(t)

	v, err := fs.View(All, Cols("d", "e"))
	require.NoError(t, err)

	cell, err := v.At(0, "e")
	require.NoError(t, err)
	assert.Equal(t, 5.0, cell)

	row, err := v.RowSlice(1, All)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 10}, row)

	// Names outside the view do not resolve, even though the root has them.
	var unknown *ErrUnknownName
	_, err = v.At(0, "a")
	require.ErrorAs(t, err, &unknown)
}

func TestGet_FromView(t *testing.T) {
	fs := testSet(t)

	v, err := fs.View(All, Cols("a", "c", "e"))
	require.NoError(t, err)

	sub, err := v.Get(Rows(0), Cols("c", "e"))
	require.NoError(t, err)
	assert.Nil(t, sub.Parent())
	assert.Equal(t, [][]float64{{3, 5}}, sub.Features())
}
