package ensemble_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/featureset"
	"github.com/hupe1980/featureset/ensemble"
	"github.com/hupe1980/featureset/testutil"
)

func TestDefault(t *testing.T) {
	cfg := ensemble.Default()

	assert.Equal(t, -1, cfg.SubFeatures)
	assert.Equal(t, 10, cfg.Trees)
	assert.Equal(t, 0.7, cfg.PartialSampling)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, 1, cfg.MinLeafSamples)
	assert.Equal(t, 2, cfg.MinSplitSamples)
	assert.Equal(t, 0.0, cfg.MinPurityIncrease)
	assert.Equal(t, 4, cfg.Folds)
}

func TestConfig_Merge(t *testing.T) {
	merged := ensemble.Default().Merge(ensemble.Config{Trees: 25, Folds: 3})

	assert.Equal(t, 25, merged.Trees)
	assert.Equal(t, 3, merged.Folds)
	// untouched fields keep the defaults
	assert.Equal(t, 0.7, merged.PartialSampling)
	assert.Equal(t, -1, merged.SubFeatures)
}

func TestTrain_SeparableClasses(t *testing.T) {
	rng := testutil.NewRNG(42)
	fs := testutil.BalancedSet(rng, 3, 30, 4)

	forest, err := ensemble.Train(context.Background(), fs, ensemble.Config{Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 10, forest.Trees())
	assert.ElementsMatch(t, []int{1, 2, 3}, forest.Classes())

	predicted, err := ensemble.PredictSet(forest, fs)
	require.NoError(t, err)

	cm, err := ensemble.ConfusionMatrix(fs.Labels(), predicted)
	require.NoError(t, err)
	// Well-separated classes: training accuracy should be essentially perfect.
	assert.Greater(t, cm.Accuracy(), 0.95)
}

func TestTrain_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(1)
	fs := testutil.BalancedSet(rng, 2, 20, 3)
	ctx := context.Background()

	f1, err := ensemble.Train(ctx, fs, ensemble.Config{Seed: 5})
	require.NoError(t, err)
	f2, err := ensemble.Train(ctx, fs, ensemble.Config{Seed: 5})
	require.NoError(t, err)

	p1, err := ensemble.PredictSet(f1, fs)
	require.NoError(t, err)
	p2, err := ensemble.PredictSet(f2, fs)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestTrain_EmptySet(t *testing.T) {
	fs, err := featureset.New([]int{}, []string{"a"}, [][]float64{})
	require.NoError(t, err)

	_, err = ensemble.Train(context.Background(), fs, ensemble.Config{})
	require.ErrorIs(t, err, ensemble.ErrEmptySet)
}

func TestTrain_Cancelled(t *testing.T) {
	rng := testutil.NewRNG(3)
	fs := testutil.BalancedSet(rng, 2, 50, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ensemble.Train(ctx, fs, ensemble.Config{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCrossValidate(t *testing.T) {
	rng := testutil.NewRNG(42)
	fs := testutil.BalancedSet(rng, 2, 40, 3)

	accs, err := ensemble.CrossValidate(context.Background(), fs, ensemble.Config{Seed: 11})
	require.NoError(t, err)
	require.Len(t, accs, 4)
	for _, acc := range accs {
		assert.Greater(t, acc, 0.9)
	}
}

func TestCrossValidate_TooManyFolds(t *testing.T) {
	fs, err := featureset.New([]int{1, 2}, []string{"a"}, [][]float64{{1}, {2}})
	require.NoError(t, err)

	_, err = ensemble.CrossValidate(context.Background(), fs, ensemble.Config{Folds: 5})
	require.ErrorIs(t, err, ensemble.ErrFoldCount)
}

func TestConfusionMatrix(t *testing.T) {
	actual := []string{"cat", "cat", "dog", "dog"}
	predicted := []string{"cat", "dog", "dog", "dog"}

	cm, err := ensemble.ConfusionMatrix(actual, predicted)
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "dog"}, cm.Classes)
	assert.Equal(t, [][]int{{1, 1}, {0, 2}}, cm.Counts)
	assert.Equal(t, 0.75, cm.Accuracy())

	_, err = ensemble.ConfusionMatrix([]string{"a"}, []string{})
	require.ErrorIs(t, err, ensemble.ErrLengthMismatch)
}
