package tailbound

import (
	"fmt"
	"math/big"
)

// DiagnosticsOptions control the strict diagnostics sweep.
type DiagnosticsOptions struct {
	// BasePrec is the working decimal precision, floored at 50.
	BasePrec int32

	// HiPrec is the high decimal precision, floored at BasePrec+70 and 120.
	HiPrec int32

	// KMax is the half-width of the sweep window around Q.
	KMax int
}

// DefaultDiagnosticsOptions mirrors the published strict run: 50/120 digits,
// Q ± 5.
func DefaultDiagnosticsOptions() DiagnosticsOptions {
	return DiagnosticsOptions{
		BasePrec: 50,
		HiPrec:   120,
		KMax:     5,
	}
}

// Delta is one successive difference S(q) - S(q-1) in high precision.
// Every delta is a single positive term 1/(q·φ(q)); the sweep makes the
// smooth monotone growth around Q visible.
type Delta struct {
	Q     int    `json:"q"`
	Delta string `json:"delta"`
}

// Diagnostics is the strict-mode report: the harmonic sum at Q at two
// decimal precisions, the exact rational value, their residual, and the
// successive high-precision deltas above Q.
type Diagnostics struct {
	Q        int   `json:"Q"`
	BasePrec int32 `json:"base_prec"`
	HiPrec   int32 `json:"hi_prec"`

	SumDecimalBase string `json:"S_decimal_base"`
	SumDecimalHi   string `json:"S_decimal_hi"`
	SumFraction    string `json:"S_fraction"`

	// DecimalMinusFraction is |S_decimal_hi - S_fraction|, the accumulated
	// rounding of the decimal mode against the exact value.
	DecimalMinusFraction string `json:"S_decimal_minus_fraction_abs"`

	Deltas []Delta `json:"monotone_deltas_hi_prec"`
}

// RunDiagnostics recomputes S around Q = floor(n^(1/5)) at a base and a
// substantially higher precision and cross-checks the high-precision decimal
// value against the exact rational at Q. A verification aid; the core result
// does not depend on it.
func RunDiagnostics(n *big.Int, opts DiagnosticsOptions) (*Diagnostics, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("diagnostics: N must be a positive integer, got %v", n)
	}
	if opts.BasePrec < 50 {
		opts.BasePrec = 50
	}
	if floor := opts.BasePrec + 70; opts.HiPrec < floor {
		opts.HiPrec = floor
	}
	if opts.HiPrec < 120 {
		opts.HiPrec = 120
	}
	if opts.KMax < 1 {
		return nil, fmt.Errorf("diagnostics: kmax must be ≥ 1, got %d", opts.KMax)
	}

	Q, err := intRootFloorSmall(n, 5)
	if err != nil {
		return nil, err
	}

	phi, err := SievePhi(Q + opts.KMax)
	if err != nil {
		return nil, err
	}

	sumBase, err := phi.SumDecimal(Q, opts.BasePrec)
	if err != nil {
		return nil, err
	}
	sumHi, err := phi.SumDecimal(Q, opts.HiPrec)
	if err != nil {
		return nil, err
	}
	sumFrac, err := phi.SumFraction(Q)
	if err != nil {
		return nil, err
	}

	residual := sumHi.Sub(ratToDecimal(sumFrac, opts.HiPrec)).Abs()

	deltas := make([]Delta, 0, opts.KMax)
	prev := sumHi
	for k := 1; k <= opts.KMax; k++ {
		cur, err := phi.SumDecimal(Q+k, opts.HiPrec)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, Delta{Q: Q + k, Delta: cur.Sub(prev).String()})
		prev = cur
	}

	return &Diagnostics{
		Q:                    Q,
		BasePrec:             opts.BasePrec,
		HiPrec:               opts.HiPrec,
		SumDecimalBase:       sumBase.String(),
		SumDecimalHi:         sumHi.String(),
		SumFraction:          sumFrac.RatString(),
		DecimalMinusFraction: residual.String(),
		Deltas:               deltas,
	}, nil
}
