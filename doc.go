// Package featureset provides a typed, label-and-name-indexed feature matrix
// container for classification and regression workflows.
//
// A FeatureSet holds M labeled sample rows over K named feature columns. The
// container is immutable after construction; sub-selection produces either
// owned copies or zero-copy views, and sets sharing a common root merge
// through an identity-aware fast path that never touches feature data.
//
// # Quick Start
//
//	fs, _ := featureset.New(
//	    []int{1, 2},
//	    []string{"a", "b", "c"},
//	    [][]float64{{1, 2, 3}, {4, 5, 6}},
//	)
//
//	v, _ := fs.View(featureset.All, featureset.Cols("a", "b"))  // zero-copy
//	sub, _ := fs.Get(featureset.Rows(0), featureset.All)        // owned copy
//	cell, _ := fs.At(1, "c")                                    // scalar
//
// # Views and Merging
//
// Views record row/column index sets into their root owner instead of
// copying storage. View chains flatten: a view of a view links directly to
// the ultimate owner, which is what makes the merge fast path possible:
//
//	left, _ := fs.View(featureset.All, featureset.Cols("a", "b"))
//	right, _ := fs.View(featureset.All, featureset.Cols("b", "c"))
//	both, _ := featureset.Merge(left, right)  // view over a,b,c — no copies
//
// Sets without a shared root merge generically: labels must match, columns
// sharing a name must agree cell-for-cell, and the result owns its storage.
//
// # Persistence
//
// The persistence subpackage writes a self-describing container file (id,
// created_at, labels, names, features) and reads it back eagerly or through
// a memory-mapped features section:
//
//	_ = persistence.Save(ctx, "iris.fset", fs)
//	c, _ := persistence.Load[int, string, float64](ctx, "iris.fset", persistence.WithMmap(true))
//	defer c.Close()
//
// # Adapters
//
// The tabular subpackage exposes row/column iteration and a schema over the
// accessor contract, and the ensemble subpackage trains random forests (with
// n-fold cross-validation) on the extracted label vector and feature matrix.
package featureset
