package quadra

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridEndpoints(t *testing.T) {
	for _, method := range []Method{Trapezoidal, Simpson} {
		xs := Grid(0, 1, 11, method, nil)
		require.Len(t, xs, 11, "%s", method)
		assert.Equal(t, 0.0, xs[0])
		assert.Equal(t, 1.0, xs[len(xs)-1])
		assert.True(t, sort.Float64sAreSorted(xs))
	}
}

func TestGridMidpointCentering(t *testing.T) {
	xs := Grid(0, 1, 10, Midpoint, nil)
	require.Len(t, xs, 10)

	// Each sample sits at the center of its subinterval of width 0.1.
	for i, x := range xs {
		assert.InDelta(t, 0.05+0.1*float64(i), x, 1e-12, "sample %d", i)
	}
}

func TestEffectivePointsSimpsonAdjustment(t *testing.T) {
	tests := []struct {
		n      int
		method Method
		want   int
	}{
		{10, Simpson, 11}, // even points = odd subintervals: bump
		{11, Simpson, 11},
		{1000, Simpson, 1001},
		{10, Trapezoidal, 10},
		{10, Midpoint, 10},
		{10, MonteCarlo, 10},
	}

	for _, tt := range tests {
		got := EffectivePoints(tt.n, tt.method)
		assert.Equal(t, tt.want, got, "n=%d method=%s", tt.n, tt.method)

		if tt.method == Simpson {
			assert.Equal(t, 0, (got-1)%2, "subinterval count must be even")
		}
	}
}

func TestGridSimpsonUsesEffectiveCount(t *testing.T) {
	xs := Grid(0, 2, 100, Simpson, nil)
	assert.Len(t, xs, 101)
}

func TestGridMonteCarloWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs := Grid(-3, 7, 500, MonteCarlo, rng)
	require.Len(t, xs, 500)

	for _, x := range xs {
		assert.GreaterOrEqual(t, x, -3.0)
		assert.Less(t, x, 7.0)
	}
}

func TestGridMonteCarloIndependentSources(t *testing.T) {
	// Two distinct sources must produce distinct draw sequences.
	a := Grid(0, 1, 100, MonteCarlo, rand.New(rand.NewSource(1)))
	b := Grid(0, 1, 100, MonteCarlo, rand.New(rand.NewSource(2)))
	assert.NotEqual(t, a, b)

	// The same seed reproduces the sequence exactly.
	c := Grid(0, 1, 100, MonteCarlo, rand.New(rand.NewSource(1)))
	assert.Equal(t, a, c)
}

func TestGridDeterministicMethodsAreBitReproducible(t *testing.T) {
	for _, method := range []Method{Trapezoidal, Simpson, Midpoint} {
		a := Grid(-1.5, 2.5, 99, method, nil)
		b := Grid(-1.5, 2.5, 99, method, nil)
		assert.Equal(t, a, b, "%s", method)
	}
}
