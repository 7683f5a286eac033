package ensemble

import (
	"math/rand"
	"sort"
)

// treeNode is one node of a CART classification tree. Internal nodes route
// x[feature] <= threshold to the left child; leaves carry the majority
// class index.
type treeNode struct {
	leaf      bool
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	pred      int // class index, leaves only
}

type treeParams struct {
	maxDepth          int
	minLeaf           int
	minSplit          int
	subFeatures       int
	minPurityIncrease float64
	classes           int
}

// growTree builds a tree over the samples in idx (indices into x/y).
func growTree(x [][]float64, y []int, idx []int, depth int, p treeParams, rnd *rand.Rand) *treeNode {
	counts := classCounts(y, idx, p.classes)
	majority := argmax(counts)

	if len(idx) < p.minSplit || (p.maxDepth > 0 && depth >= p.maxDepth) || isPure(counts) {
		return &treeNode{leaf: true, pred: majority}
	}

	feature, threshold, gain := bestSplit(x, y, idx, counts, p, rnd)
	if gain < p.minPurityIncrease || feature < 0 {
		return &treeNode{leaf: true, pred: majority}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return &treeNode{leaf: true, pred: majority}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(x, y, left, depth+1, p, rnd),
		right:     growTree(x, y, right, depth+1, p, rnd),
	}
}

func (n *treeNode) predict(row []float64) int {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.pred
}

// bestSplit searches a random feature subset for the split with the largest
// Gini gain. Returns feature -1 when no valid split exists.
func bestSplit(x [][]float64, y []int, idx []int, parentCounts []int, p treeParams, rnd *rand.Rand) (feature int, threshold, gain float64) {
	total := len(idx)
	parentImpurity := gini(parentCounts, total)

	feature = -1
	kTotal := len(x[idx[0]])
	candidates := rnd.Perm(kTotal)
	if p.subFeatures < kTotal {
		candidates = candidates[:p.subFeatures]
	}

	sorted := make([]int, len(idx))
	leftCounts := make([]int, p.classes)

	for _, f := range candidates {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return x[sorted[a]][f] < x[sorted[b]][f] })

		for c := range leftCounts {
			leftCounts[c] = 0
		}

		// Sweep split positions left to right, moving one sample at a time
		// and evaluating the midpoint between distinct adjacent values.
		for pos := 1; pos < total; pos++ {
			leftCounts[y[sorted[pos-1]]]++

			lo := x[sorted[pos-1]][f]
			hi := x[sorted[pos]][f]
			if lo == hi {
				continue
			}
			if pos < p.minLeaf || total-pos < p.minLeaf {
				continue
			}

			gl := giniLeft(leftCounts, pos)
			gr := giniRight(parentCounts, leftCounts, total-pos)
			weighted := (float64(pos)*gl + float64(total-pos)*gr) / float64(total)

			if g := parentImpurity - weighted; g > gain {
				gain = g
				feature = f
				threshold = (lo + hi) / 2
			}
		}
	}
	return feature, threshold, gain
}

func classCounts(y []int, idx []int, classes int) []int {
	counts := make([]int, classes)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sum += p * p
	}
	return 1 - sum
}

func giniLeft(leftCounts []int, total int) float64 {
	return gini(leftCounts, total)
}

func giniRight(parentCounts, leftCounts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 0.0
	for c := range parentCounts {
		p := float64(parentCounts[c]-leftCounts[c]) / float64(total)
		sum += p * p
	}
	return 1 - sum
}
