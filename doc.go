// Package tailbound replicates the numeric tail-bound verification used in a
// Goldbach-type argument.
//
// # Overview
//
// The verification compares a major-arc error allowance against the error
// budget the proof permits at a chosen even integer scale N. The central
// quantity is the truncated harmonic-totient sum
//
//	S(Q) = Σ_{q=2}^{Q} 1/(q·φ(q)),  Q = floor(N^(1/5))
//
// combined with a closed-form error envelope E(N, L) into
//
//	EMA   = (C_W / R) · E · S(Q),  R = N^(3/5)
//	Share = (S_floor / (8K)) · N / L²,  L = ln N
//
// The run is accepted when EMA/Share stays below fixed thresholds for both
// envelopes (trivial and uniform).
//
// # Components
//
// The package components:
//
//   - nthroot.go     - exact floor k-th roots of arbitrary-precision integers
//   - totient.go     - Euler totient sieve over [0, Q]
//   - harmonic.go    - S(Q) in three representations: float, decimal, fraction
//   - envelope.go    - trivial/uniform envelopes and per-q override tables
//   - margins.go     - the tail-margin evaluation and acceptance policy
//   - diagnostics.go - two-precision monotonicity and cross-mode diagnostics
//   - config.go      - constants file loading with warn-and-default semantics
//   - assertions.go  - test helpers for the replication properties
//
// # Quick Start
//
// Evaluate the tail margins at the reference scale:
//
//	n, err := tailbound.ParseN("4000000000000000000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	margins, err := tailbound.ComputeTailMargins(n, tailbound.DefaultConstants(), tailbound.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("S(Q)          = %.15f\n", margins.SumQ)
//	fmt.Printf("ratio_trivial = %.3e\n", margins.RatioTrivial)
//	fmt.Printf("ratio_uniform = %.3e\n", margins.RatioUniform)
//	fmt.Printf("accepted      = %v\n", margins.Passes())
//
// # Numeric Representations
//
// S(Q) can be evaluated three ways, all over one shared totient table:
//
//   - float:    native float64 accumulation, ~15-17 significant digits
//   - decimal:  shopspring/decimal with an explicit per-division precision
//   - fraction: exact big.Rat arithmetic, no rounding at all
//
// The three must agree to the precision of the least precise mode; the
// evaluator additionally checks S(Q-1) < S(Q) < S(Q+1) in the selected mode
// and aborts on violation. The check is a sanity oracle: every term
// 1/(q·φ(q)) is strictly positive for q ≥ 2, so monotonicity holds
// analytically.
//
// All computation is single-threaded and pure: every evaluation builds its
// own totient table, produces a fresh result record, and shares no state
// with any other evaluation.
package tailbound
