// Command quadcli evaluates a definite integral from the command line.
//
//	quadcli -f "sin(x)" -a 0 -b 3.14159 -n 500 -method simpson
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quadra-io/quadra/pkg/quadra"
)

func main() {
	var (
		function = flag.String("f", "", "expression to integrate, e.g. \"x**2 + sin(x)\"")
		lower    = flag.Float64("a", 0, "lower bound")
		upper    = flag.Float64("b", 1, "upper bound")
		points   = flag.Int("n", 100, "number of sample points (10-1000)")
		method   = flag.String("method", "simpson", "trapezoidal, simpson, midpoint or monte_carlo")
		seed     = flag.Int64("seed", 0, "random seed for monte_carlo (0 means random)")
		verbose  = flag.Bool("v", false, "print sample points")
	)
	flag.Parse()

	if *function == "" {
		fmt.Fprintln(os.Stderr, "quadcli: -f is required")
		flag.Usage()
		os.Exit(2)
	}

	req := quadra.Request{
		Function:   *function,
		LowerBound: *lower,
		UpperBound: *upper,
		NumPoints:  *points,
		Method:     *method,
	}
	if *seed != 0 {
		req.Seed = seed
	}

	result, err := quadra.Handle(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quadcli: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("∫ %s dx over [%g, %g]\n", *function, *lower, *upper)
	fmt.Printf("  method: %s (%d points)\n", result.Method, result.NumPoints)
	fmt.Printf("  value:  %.10g\n", result.Value)
	if result.ErrorEstimate != nil {
		fmt.Printf("  error:  ±%.4g\n", *result.ErrorEstimate)
	}

	if *verbose {
		for i := range result.XValues {
			fmt.Printf("  x=%-12g f(x)=%g\n", result.XValues[i], result.YValues[i])
		}
	}
}
