package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}

	a.Reset()
	c := NewRNG(42)
	assert.Equal(t, c.Float64(), a.Float64())
	assert.Equal(t, int64(42), a.Seed())
}

func TestRNG_FillUniform(t *testing.T) {
	rng := NewRNG(1)
	dst := make([]float64, 100)
	rng.FillUniform(dst)

	for _, v := range dst {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestBalancedSet(t *testing.T) {
	rng := NewRNG(7)
	fs := BalancedSet(rng, 3, 5, 4)

	rows, cols := fs.Size()
	assert.Equal(t, 15, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, []string{"f1", "f2", "f3", "f4"}, fs.Names())

	perClass := map[int]int{}
	for _, label := range fs.Labels() {
		perClass[label]++
	}
	assert.Equal(t, map[int]int{1: 5, 2: 5, 3: 5}, perClass)

	// Class offsets keep value ranges disjoint.
	for i, label := range fs.Labels() {
		for _, v := range fs.Features()[i] {
			lo := float64(label) * 2
			require.GreaterOrEqual(t, v, lo)
			require.Less(t, v, lo+1)
		}
	}
}
