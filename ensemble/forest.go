package ensemble

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/featureset"
)

// Forest is a trained random-forest classifier over labels of type L.
type Forest[L comparable] struct {
	trees   []*treeNode
	classes []L
	cfg     Config
}

// Train extracts (labels, features) from fs and fits a forest with cfg
// merged over Default. Trees grow in parallel; each tree samples its own
// bootstrap with an explicit per-tree generator, so training is
// deterministic for a fixed seed.
func Train[L comparable, N comparable, F featureset.Number](ctx context.Context, fs *featureset.FeatureSet[L, N, F], cfg Config) (*Forest[L], error) {
	x, y, classes := extract(fs)
	if len(x) == 0 {
		return nil, ErrEmptySet
	}
	return train(ctx, x, y, classes, Default().Merge(cfg))
}

func train[L comparable](ctx context.Context, x [][]float64, y []int, classes []L, cfg Config) (*Forest[L], error) {
	n := len(x)
	k := len(x[0])

	params := treeParams{
		maxDepth:          cfg.MaxDepth,
		minLeaf:           cfg.MinLeafSamples,
		minSplit:          cfg.MinSplitSamples,
		subFeatures:       cfg.subFeatures(k),
		minPurityIncrease: cfg.MinPurityIncrease,
		classes:           len(classes),
	}
	sampleSize := max(1, int(math.Round(cfg.PartialSampling*float64(n))))

	trees := make([]*treeNode, cfg.Trees)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Per-tree generator: deterministic, contention-free.
			rnd := rand.New(rand.NewSource(cfg.Seed + int64(t)))

			idx := make([]int, sampleSize)
			for i := range idx {
				idx[i] = rnd.Intn(n)
			}
			trees[t] = growTree(x, y, idx, 0, params, rnd)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Forest[L]{trees: trees, classes: classes, cfg: cfg}, nil
}

// Trees returns the number of trees in the forest.
func (f *Forest[L]) Trees() int { return len(f.trees) }

// Classes returns the class labels in first-seen order.
func (f *Forest[L]) Classes() []L { return f.classes }

// Predict returns the majority vote over all trees for one feature row.
func (f *Forest[L]) Predict(row []float64) (L, error) {
	var zero L
	if len(f.trees) == 0 {
		return zero, ErrUntrained
	}
	votes := make([]int, len(f.classes))
	for _, t := range f.trees {
		votes[t.predict(row)]++
	}
	return f.classes[argmax(votes)], nil
}

// PredictMatrix predicts every row of a float64 matrix.
func (f *Forest[L]) PredictMatrix(x [][]float64) ([]L, error) {
	out := make([]L, len(x))
	for i, row := range x {
		label, err := f.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// PredictSet predicts every sample row of a feature set. The set's columns
// must line up with the training columns; the adapter does not reorder by
// name.
func PredictSet[L comparable, N comparable, F featureset.Number](f *Forest[L], fs *featureset.FeatureSet[L, N, F]) ([]L, error) {
	return f.PredictMatrix(toMatrix(fs))
}

// extract widens the feature matrix to float64 and encodes labels as class
// indices in first-seen order.
func extract[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F]) ([][]float64, []int, []L) {
	labels := fs.Labels()

	y := make([]int, len(labels))
	var classes []L
	classIndex := make(map[L]int)
	for i, label := range labels {
		ci, ok := classIndex[label]
		if !ok {
			ci = len(classes)
			classIndex[label] = ci
			classes = append(classes, label)
		}
		y[i] = ci
	}
	return toMatrix(fs), y, classes
}

func toMatrix[L comparable, N comparable, F featureset.Number](fs *featureset.FeatureSet[L, N, F]) [][]float64 {
	features := fs.Features()
	x := make([][]float64, len(features))
	for i, row := range features {
		xr := make([]float64, len(row))
		for j, v := range row {
			xr[j] = float64(v)
		}
		x[i] = xr
	}
	return x
}
