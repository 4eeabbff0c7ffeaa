package exclusivity

import (
	"fmt"
	"math/big"
	"runtime/debug"
	"slices"
)

// Algorithm computes the exclusivity probability for sample sizes A drawn
// without replacement from a population of size N.
//
// The value returned is 1 - P(no two samples share a value), i.e. the
// probability that at least one value is shared. Implementations do not
// validate their input: callers guarantee len(A) >= 2, every a >= 1 and
// sum(A) < N.
type Algorithm func(samples []int, population int) float64

// Variant names one Algorithm for benchmarking and reporting.
type Variant struct {
	Name    string
	Compute Algorithm
}

// Variant names as they appear in results.
const (
	NameNaive                  = "naive"
	NameAlgebraicallyOptimized = "algebraically_optimized"
	NameFullyOptimized         = "fully_optimized"
)

// Variants returns the three formulations in their fixed reporting order.
// The first entry is the reference the others are compared against.
func Variants() []Variant {
	return []Variant{
		{Name: NameNaive, Compute: Naive},
		{Name: NameAlgebraicallyOptimized, Compute: AlgebraicallyOptimized},
		{Name: NameFullyOptimized, Compute: FullyOptimized},
	}
}

// Evaluate runs the variant once. A panic inside the computation is returned
// as an error whose message carries the panic value and the goroutine stack.
func (v Variant) Evaluate(samples []int, population int) (p float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return v.Compute(samples, population), nil
}

// PanicError is a panic recovered from an Algorithm.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Naive is the reference formulation. For each sample a_i it multiplies
//
//	C(N - sum(A[:i]), a_i) / C(N, a_i)
//
// into a running float64 product and returns 1 - product. Each binomial is an
// exact big integer; only the per-sample ratio is rounded to float64.
func Naive(samples []int, population int) float64 {
	n := int64(population)
	p := 1.0
	var consumed int64
	for _, a := range samples {
		k := int64(a)
		numer := new(big.Int).Binomial(n-consumed, k)
		denom := new(big.Int).Binomial(n, k)
		p *= quotient(numer, denom)
		consumed += k
	}
	return 1.0 - p
}

// AlgebraicallyOptimized collapses the binomial ratios into falling factorials
// (the H function):
//
//	denom = Π_i H(N, a_i)    where H(N, a) = N·(N-1)···(N-a+1)
//	numer = H(N, sum(A))
//
// and returns 1 - numer/denom. Each H(N, a_i) is computed independently, so
// factors shared between samples are multiplied again for every sample.
func AlgebraicallyOptimized(samples []int, population int) float64 {
	denom := big.NewInt(1)
	sum := 0
	for _, a := range samples {
		denom.Mul(denom, fallingFactorial(population-a+1, population))
		sum += a
	}
	numer := fallingFactorial(population-sum+1, population)
	return 1.0 - quotient(numer, denom)
}

// FullyOptimized computes the same ratio as AlgebraicallyOptimized but never
// repeats a multiplication. With A sorted ascending, H(N, a_{i+1}) is
// H(N, a_i) widened by the factors in [N-a_{i+1}+1, N-a_i], so a single
// running h is extended sample by sample and folded into the denominator. The
// numerator is the last h extended down to N-sum(A)+1.
func FullyOptimized(samples []int, population int) float64 {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	// start is the lowest factor currently in h.
	start := population - sorted[0] + 1
	h := fallingFactorial(start, population)
	denom := new(big.Int).Set(h)
	sum := sorted[0]

	for _, a := range sorted[1:] {
		lo := population - a + 1
		h.Mul(h, fallingFactorial(lo, start-1))
		denom.Mul(denom, h)
		sum += a
		start = lo
	}

	numer := h.Mul(h, fallingFactorial(population-sum+1, start-1))
	return 1.0 - quotient(numer, denom)
}

// fallingFactorial returns the product of the integers in [lo, hi], or 1 when
// the window is empty.
func fallingFactorial(lo, hi int) *big.Int {
	return new(big.Int).MulRange(int64(lo), int64(hi))
}

// quotient returns numer/denom correctly rounded to float64. It panics on a
// zero denominator.
func quotient(numer, denom *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(numer, denom).Float64()
	return f
}
