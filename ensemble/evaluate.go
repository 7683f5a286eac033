package ensemble

import (
	"context"
	"math/rand"

	"github.com/hupe1980/featureset"
)

// CrossValidate runs n-fold cross-validation (fold count from cfg merged
// over Default) and returns the per-fold accuracies. Sample order is
// shuffled once with the configured seed, then split into contiguous folds.
func CrossValidate[L comparable, N comparable, F featureset.Number](ctx context.Context, fs *featureset.FeatureSet[L, N, F], cfg Config) ([]float64, error) {
	x, y, classes := extract(fs)
	if len(x) == 0 {
		return nil, ErrEmptySet
	}

	eff := Default().Merge(cfg)
	n := len(x)
	if eff.Folds > n {
		return nil, ErrFoldCount
	}

	perm := rand.New(rand.NewSource(eff.Seed)).Perm(n)

	accuracies := make([]float64, eff.Folds)
	for fold := 0; fold < eff.Folds; fold++ {
		lo := fold * n / eff.Folds
		hi := (fold + 1) * n / eff.Folds
		holdout := perm[lo:hi]

		trainIdx := make([]int, 0, n-len(holdout))
		trainIdx = append(trainIdx, perm[:lo]...)
		trainIdx = append(trainIdx, perm[hi:]...)

		xt := make([][]float64, len(trainIdx))
		yt := make([]int, len(trainIdx))
		for i, src := range trainIdx {
			xt[i] = x[src]
			yt[i] = y[src]
		}

		forest, err := train(ctx, xt, yt, classes, eff)
		if err != nil {
			return nil, err
		}

		correct := 0
		for _, src := range holdout {
			label, err := forest.Predict(x[src])
			if err != nil {
				return nil, err
			}
			if label == classes[y[src]] {
				correct++
			}
		}
		if len(holdout) > 0 {
			accuracies[fold] = float64(correct) / float64(len(holdout))
		}
	}
	return accuracies, nil
}

// Confusion is a square confusion matrix: Counts[i][j] counts samples of
// actual class Classes[i] predicted as Classes[j].
type Confusion[L comparable] struct {
	Classes []L
	Counts  [][]int
}

// ConfusionMatrix tallies actual against predicted labels. Classes appear
// in first-seen order over actual then predicted.
func ConfusionMatrix[L comparable](actual, predicted []L) (*Confusion[L], error) {
	if len(actual) != len(predicted) {
		return nil, ErrLengthMismatch
	}

	index := make(map[L]int)
	var classes []L
	lookup := func(label L) int {
		i, ok := index[label]
		if !ok {
			i = len(classes)
			index[label] = i
			classes = append(classes, label)
		}
		return i
	}
	for _, l := range actual {
		lookup(l)
	}
	for _, l := range predicted {
		lookup(l)
	}

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := range actual {
		counts[index[actual[i]]][index[predicted[i]]]++
	}
	return &Confusion[L]{Classes: classes, Counts: counts}, nil
}

// Accuracy returns the fraction of samples on the matrix diagonal.
func (c *Confusion[L]) Accuracy() float64 {
	total, diag := 0, 0
	for i, row := range c.Counts {
		for j, n := range row {
			total += n
			if i == j {
				diag += n
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(diag) / float64(total)
}
