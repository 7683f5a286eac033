// Package ensemble trains random-forest classifiers on feature sets.
//
// The package is an adapter: it consumes only the container's accessor
// contract, extracts the (label vector, feature matrix) pair and runs
// forest training, prediction, n-fold cross-validation and confusion
// matrices on it. Feature values are widened to float64 for tree growth.
package ensemble

import "errors"

var (
	// ErrEmptySet is returned when training on a set with no rows.
	ErrEmptySet = errors.New("ensemble: empty feature set")

	// ErrUntrained is returned when predicting with an untrained forest.
	ErrUntrained = errors.New("ensemble: forest is not trained")

	// ErrFoldCount is returned when the fold count exceeds the sample count.
	ErrFoldCount = errors.New("ensemble: more folds than samples")

	// ErrLengthMismatch is returned when actual/predicted label slices
	// disagree in length.
	ErrLengthMismatch = errors.New("ensemble: label slices differ in length")
)

// Config holds the forest hyperparameters. The zero value of a field means
// "unset"; Merge layers set fields over a base, which is how caller
// overrides combine with Default.
type Config struct {
	// SubFeatures is the number of candidate features per split.
	// -1 selects floor(sqrt(K)) automatically.
	SubFeatures int

	// Trees is the number of trees in the forest.
	Trees int

	// PartialSampling is the bootstrap sample fraction per tree.
	PartialSampling float64

	// MaxDepth limits tree depth; 0 means unbounded.
	MaxDepth int

	// MinLeafSamples is the minimum sample count in a leaf.
	MinLeafSamples int

	// MinSplitSamples is the minimum sample count to attempt a split.
	MinSplitSamples int

	// MinPurityIncrease is the minimum impurity decrease to accept a split.
	MinPurityIncrease float64

	// Folds is the fold count for cross-validation.
	Folds int

	// Seed seeds the per-tree generators. 0 means seed 1; randomness is
	// always explicit, never process-global.
	Seed int64
}

// Default returns the stock hyperparameters.
func Default() Config {
	return Config{
		SubFeatures:       -1,
		Trees:             10,
		PartialSampling:   0.7,
		MaxDepth:          0,
		MinLeafSamples:    1,
		MinSplitSamples:   2,
		MinPurityIncrease: 0.0,
		Folds:             4,
		Seed:              1,
	}
}

// Merge layers the set (non-zero) fields of over onto c and returns the
// result. MaxDepth and MinPurityIncrease default to zero, so their zero
// value is indistinguishable from "unset"; that is fine, the default IS
// zero.
func (c Config) Merge(over Config) Config {
	if over.SubFeatures != 0 {
		c.SubFeatures = over.SubFeatures
	}
	if over.Trees != 0 {
		c.Trees = over.Trees
	}
	if over.PartialSampling != 0 {
		c.PartialSampling = over.PartialSampling
	}
	if over.MaxDepth != 0 {
		c.MaxDepth = over.MaxDepth
	}
	if over.MinLeafSamples != 0 {
		c.MinLeafSamples = over.MinLeafSamples
	}
	if over.MinSplitSamples != 0 {
		c.MinSplitSamples = over.MinSplitSamples
	}
	if over.MinPurityIncrease != 0 {
		c.MinPurityIncrease = over.MinPurityIncrease
	}
	if over.Folds != 0 {
		c.Folds = over.Folds
	}
	if over.Seed != 0 {
		c.Seed = over.Seed
	}
	return c
}

// subFeatures resolves the per-split candidate count for k total features.
func (c Config) subFeatures(k int) int {
	if c.SubFeatures > 0 {
		return min(c.SubFeatures, k)
	}
	// auto: floor(sqrt(k)), at least 1
	n := 1
	for (n+1)*(n+1) <= k {
		n++
	}
	return min(n, k)
}
