package quadra

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand"
)

// Point count bounds mirror what the UI offers, but are re-validated here:
// the transport-facing contract cannot assume a cooperative caller.
const (
	MinPoints = 10
	MaxPoints = 1000
)

// Request is the wire shape every transport (WebSocket, HTTP, CLI) decodes
// and hands to Handle. Seed is optional; when present, Monte Carlo draws
// become reproducible.
type Request struct {
	Function   string  `json:"function"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	NumPoints  int     `json:"num_points"`
	Method     string  `json:"method"`
	Seed       *int64  `json:"seed,omitempty"`
}

// Result is the wire shape returned for a successful integration.
// NumPoints reports the effective count actually used (Simpson bumps an
// even count by one). ErrorEstimate is present only for Monte Carlo.
type Result struct {
	Value         float64   `json:"value"`
	Method        string    `json:"method"`
	NumPoints     int       `json:"num_points"`
	XValues       []float64 `json:"x_values"`
	YValues       []float64 `json:"y_values"`
	ErrorEstimate *float64  `json:"error_estimate,omitempty"`
}

// Handle is the single entry point transports call into. It validates the
// request, compiles the expression, and runs the integration. Validation
// order is cheapest-first: method, then bounds, then point count, then
// compile. A malformed request is rejected before any evaluation work is
// spent.
//
// Every failure is one of ValidationError, ExpressionError, or
// EvaluationError; an unexpected internal fault is normalized to an
// EvaluationError so a live session survives repeated edits.
func Handle(req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = newEvaluationError(req.LowerBound, "internal evaluation fault: %v", r)
		}
	}()

	method, err := ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	if !isFinite(req.LowerBound) || !isFinite(req.UpperBound) {
		return nil, newValidationError(BadBounds, "bounds must be finite numbers")
	}
	if req.LowerBound >= req.UpperBound {
		return nil, newValidationError(BadBounds, "lower_bound must be less than upper_bound (got [%g, %g])",
			req.LowerBound, req.UpperBound)
	}

	if req.NumPoints < MinPoints || req.NumPoints > MaxPoints {
		return nil, newValidationError(BadPointCount, "num_points must be between %d and %d, got %d",
			MinPoints, MaxPoints, req.NumPoints)
	}

	expr, err := Compile(req.Function)
	if err != nil {
		return nil, err
	}

	q, err := Integrate(expr, req.LowerBound, req.UpperBound, req.NumPoints, method, newSource(req.Seed))
	if err != nil {
		return nil, err
	}

	return &Result{
		Value:         q.Value,
		Method:        string(method),
		NumPoints:     q.N,
		XValues:       q.X,
		YValues:       q.Y,
		ErrorEstimate: q.ErrorEstimate,
	}, nil
}

// newSource builds the per-request random source. A caller-supplied seed
// makes draws reproducible; otherwise the source is seeded from
// crypto/rand so concurrent unseeded requests stay independent.
func newSource(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}

	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand is documented to never fail on supported platforms;
		// fall back to a degenerate but valid source anyway.
		return rand.New(rand.NewSource(int64(math.Float64bits(math.Pi))))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]))))
}
