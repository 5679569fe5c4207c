package tailbound

import "fmt"

// PhiTable holds φ(n) for every n in [0, limit]. Entry 0 is zero by
// convention and entry 1 is 1. A table is built once per evaluation and read
// by all summation modes; it is never mutated after SievePhi returns.
type PhiTable []int64

// SievePhi computes Euler's totient for all n in [0, limit] in one pass.
//
// The table starts at A[i] = i. For each p left untouched so far (A[p] == p,
// i.e. p is prime) every multiple m of p gets A[m] -= A[m]/p, which applies
// the factor (1 - 1/p) of φ(m) = m·∏_{p|m}(1 - 1/p) exactly once per
// distinct prime divisor. O(limit log log limit) time, O(limit) space.
func SievePhi(limit int) (PhiTable, error) {
	if limit < 0 {
		return nil, fmt.Errorf("totient sieve: limit must be ≥ 0, got %d", limit)
	}

	phi := make(PhiTable, limit+1)
	for i := range phi {
		phi[i] = int64(i)
	}
	for p := 2; p <= limit; p++ {
		if phi[p] != int64(p) {
			continue // p has a smaller prime factor, already corrected
		}
		for m := p; m <= limit; m += p {
			phi[m] -= phi[m] / int64(p)
		}
	}

	return phi, nil
}

// Limit returns the largest n the table covers.
func (t PhiTable) Limit() int {
	return len(t) - 1
}

// Phi returns φ(n). It panics if n is outside [0, Limit]; callers size the
// table to the largest q they will touch before summing.
func (t PhiTable) Phi(n int) int64 {
	return t[n]
}
