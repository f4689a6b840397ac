package quadra

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// EffectivePoints returns the sample count actually used for a method.
// Simpson's rule needs an even number of subintervals, so an even point
// count is bumped to the next odd one instead of rejecting a UI-reachable
// value. All other methods use n unchanged.
func EffectivePoints(n int, method Method) int {
	if method == Simpson && n%2 == 0 {
		return n + 1
	}
	return n
}

// Grid produces the x-coordinates to evaluate for one request. The three
// classical rules are deterministic; Monte Carlo draws from rng, which the
// caller instantiates per request so concurrent requests never interleave.
func Grid(a, b float64, n int, method Method, rng *rand.Rand) []float64 {
	n = EffectivePoints(n, method)

	switch method {
	case Midpoint:
		// One sample at the center of each of the n subintervals.
		h := (b - a) / float64(n)
		return floats.Span(make([]float64, n), a+h/2, b-h/2)

	case MonteCarlo:
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = a + rng.Float64()*(b-a)
		}
		return xs

	default: // Trapezoidal, Simpson
		return floats.Span(make([]float64, n), a, b)
	}
}
