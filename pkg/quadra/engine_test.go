package quadra

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/integrate"
)

var allMethods = []Method{Trapezoidal, Simpson, Midpoint, MonteCarlo}

func TestParseMethod(t *testing.T) {
	for _, m := range allMethods {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	for _, bad := range []string{"", "gauss", "TRAPEZOIDAL", "simpsons"} {
		_, err := ParseMethod(bad)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr, "input %q", bad)
		assert.Equal(t, UnknownMethod, valErr.Kind)
	}
}

func TestIntegrateConstant(t *testing.T) {
	// Property: the integral of 1 over [a,b] is exactly b-a for every method.
	expr := mustCompile(t, "1")

	for _, method := range allMethods {
		for _, n := range []int{10, 57, 100, 1000} {
			q, err := Integrate(expr, -2, 3, n, method, rand.New(rand.NewSource(7)))
			require.NoError(t, err, "%s n=%d", method, n)
			assert.InDelta(t, 5.0, q.Value, 1e-9, "%s n=%d", method, n)
		}
	}
}

func TestIntegrateLinear(t *testing.T) {
	expr := mustCompile(t, "x")

	for _, method := range []Method{Trapezoidal, Simpson, Midpoint} {
		q, err := Integrate(expr, 0, 1, 100, method, nil)
		require.NoError(t, err, "%s", method)
		assert.InDelta(t, 0.5, q.Value, 1e-6, "%s", method)
	}
}

func TestSimpsonExactForCubics(t *testing.T) {
	// Simpson's rule is exact for polynomials of degree <= 3.
	tests := []struct {
		expr string
		a, b float64
		want float64
	}{
		{"x**3", 0, 1, 0.25},
		{"x**2", 0, 1, 1.0 / 3},
		{"2*x**3 - 5*x + 1", -1, 2, 2*15.0/4 - 5*3.0/2 + 3},
		{"x**3 - x**2 + x - 1", 0, 2, 4 - 8.0/3 + 2 - 2},
	}

	for _, tt := range tests {
		expr := mustCompile(t, tt.expr)
		q, err := Integrate(expr, tt.a, tt.b, 11, Simpson, nil)
		require.NoError(t, err, "%q", tt.expr)
		assert.InDelta(t, tt.want, q.Value, 1e-10, "%q", tt.expr)
	}
}

func TestDeterministicMethodsBitIdentical(t *testing.T) {
	expr := mustCompile(t, "sin(x) * exp(-x**2)")

	for _, method := range []Method{Trapezoidal, Simpson, Midpoint} {
		first, err := Integrate(expr, -1, 2, 151, method, nil)
		require.NoError(t, err)
		second, err := Integrate(expr, -1, 2, 151, method, nil)
		require.NoError(t, err)

		assert.Equal(t, first.Value, second.Value, "%s value", method)
		assert.Equal(t, first.X, second.X, "%s x_values", method)
		assert.Equal(t, first.Y, second.Y, "%s y_values", method)
	}
}

func TestErrorEstimateOnlyForMonteCarlo(t *testing.T) {
	expr := mustCompile(t, "x**2")

	for _, method := range []Method{Trapezoidal, Simpson, Midpoint} {
		q, err := Integrate(expr, 0, 1, 100, method, nil)
		require.NoError(t, err)
		assert.Nil(t, q.ErrorEstimate, "%s must not report an estimate", method)
	}

	q, err := Integrate(expr, 0, 1, 1000, MonteCarlo, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.NotNil(t, q.ErrorEstimate)
	assert.Greater(t, *q.ErrorEstimate, 0.0)

	// The estimate is the standard error of the mean scaled by the
	// interval; the seeded result must land within a few of them.
	assert.InDelta(t, 1.0/3, q.Value, *q.ErrorEstimate*5)
}

func TestMonteCarloDrawOrderPreserved(t *testing.T) {
	expr := mustCompile(t, "x")
	q, err := Integrate(expr, 0, 1, 200, MonteCarlo, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// Draws stay in draw order: a uniform sequence of 200 points is
	// essentially never sorted.
	sorted := true
	for i := 1; i < len(q.X); i++ {
		if q.X[i] < q.X[i-1] {
			sorted = false
			break
		}
	}
	assert.False(t, sorted)

	// y values line up with their x draws.
	for i := range q.X {
		assert.Equal(t, q.X[i], q.Y[i])
	}
}

func TestIntegrateFailsFastOnDomainFault(t *testing.T) {
	expr := mustCompile(t, "1/x")

	// The grid for [-1,1] includes 0 for the boundary-sampling rules.
	q, err := Integrate(expr, -1, 1, 11, Trapezoidal, nil)
	assert.Nil(t, q)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, 0.0, evalErr.At)
}

func TestIntegrateSimpsonReportsEffectiveCount(t *testing.T) {
	expr := mustCompile(t, "x**2")

	q, err := Integrate(expr, 0, 1, 1000, Simpson, nil)
	require.NoError(t, err)
	assert.Equal(t, 1001, q.N)
	assert.Equal(t, 0, (q.N-1)%2, "subinterval count must be even")
	assert.Len(t, q.X, 1001)
	assert.Len(t, q.Y, 1001)
	assert.InDelta(t, 1.0/3, q.Value, 1e-9)
}

func TestIntegrateMatchesGonum(t *testing.T) {
	// Cross-check the trapezoidal and Simpson sums against the gonum
	// implementations over the same evaluated samples.
	expr := mustCompile(t, "exp(-x**2) + sin(x)")

	q, err := Integrate(expr, -1, 2, 201, Trapezoidal, nil)
	require.NoError(t, err)
	assert.InDelta(t, integrate.Trapezoidal(q.X, q.Y), q.Value, 1e-10)

	q, err = Integrate(expr, -1, 2, 201, Simpson, nil)
	require.NoError(t, err)
	assert.InDelta(t, integrate.Simpsons(q.X, q.Y), q.Value, 1e-10)
}

func TestIntegrateRejectsTinyGrids(t *testing.T) {
	expr := mustCompile(t, "x")
	_, err := Integrate(expr, 0, 1, 1, Trapezoidal, nil)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, BadPointCount, valErr.Kind)
}

func TestMonteCarloConvergesOnKnownIntegral(t *testing.T) {
	// ∫₀^π sin(x) dx = 2
	expr := mustCompile(t, "sin(x)")

	q, err := Integrate(expr, 0, math.Pi, 1000, MonteCarlo, rand.New(rand.NewSource(99)))
	require.NoError(t, err)
	require.NotNil(t, q.ErrorEstimate)
	assert.InDelta(t, 2.0, q.Value, *q.ErrorEstimate*5)
}
