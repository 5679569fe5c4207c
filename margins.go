package tailbound

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Acceptance thresholds for EMA/Share. These are fixed constants of the
// verification, not tunables: the replication passes only when both hold.
const (
	MaxRatioTrivial = 1e-3
	MaxRatioUniform = 1e-8
)

// Baseline recorded at N* = 4×10^18 (Q = 5253). Any run within the window
// around N* must reproduce the float-mode S(Q) to BaselineTolerance.
const (
	BaselineSum       = 1.20348665358
	BaselineTolerance = 1e-10

	baselineScale  = 4.0e18
	baselineWindow = 0.5e18
)

// ErrNotMonotone reports a violation of S(Q-1) < S(Q) < S(Q+1). Each added
// term is strictly positive, so a violation means a defect in the sieve or
// the accumulation, never a recoverable runtime condition.
var ErrNotMonotone = errors.New("harmonic sum is not strictly increasing")

// ErrBaselineMismatch reports a float-mode S(Q) that disagrees with the
// recorded baseline at the reference scale.
var ErrBaselineMismatch = errors.New("harmonic sum deviates from recorded baseline")

// Constants are the proof-side constants of the tail inequality.
type Constants struct {
	// K is the guard-space divisor in the allowed share.
	K float64 `json:"K"`

	// SFloor is the allowed density floor in the allowed share.
	SFloor float64 `json:"S_floor"`

	// CW is the weight constant, conventionally 2×W_sup.
	CW float64 `json:"C_W"`
}

// DefaultConstants returns the published constants of the verification.
func DefaultConstants() Constants {
	return Constants{
		K:      10.0,
		SFloor: 1.2,
		CW:     2.0,
	}
}

func (c Constants) validate() error {
	if c.K <= 0 {
		return fmt.Errorf("constants: K must be > 0, got %g", c.K)
	}
	if c.SFloor <= 0 {
		return fmt.Errorf("constants: S_floor must be > 0, got %g", c.SFloor)
	}
	if c.CW <= 0 {
		return fmt.Errorf("constants: C_W must be > 0, got %g", c.CW)
	}
	return nil
}

// Options control how the tail-margin evaluation computes S(Q).
type Options struct {
	// Method selects the summation representation.
	Method SumMethod

	// Prec is the decimal precision (decimal places per division), consulted
	// only by MethodDecimal.
	Prec int32

	// RExp is the exponent of the R normalization, R = N^RExp.
	RExp float64
}

// DefaultOptions returns the defaults used by the published replication:
// decimal summation at 50 digits, R = N^0.6.
func DefaultOptions() Options {
	return Options{
		Method: MethodDecimal,
		Prec:   50,
		RExp:   0.6,
	}
}

// TailMargins is the result record of one closed-form evaluation. It is a
// pure return value: produced fresh per call, never mutated afterwards.
type TailMargins struct {
	Constants Constants `json:"constants"`
	Method    SumMethod `json:"method"`
	Prec      int32     `json:"prec,omitempty"`

	N    float64 `json:"N"`
	LogN float64 `json:"logN"`
	Q    int     `json:"Q"`
	R    float64 `json:"R"`

	SumQ float64 `json:"sum_q"`

	EMATrivial float64 `json:"EMA_trivial"`
	EMAUniform float64 `json:"EMA_uniform"`
	Share      float64 `json:"share"`

	RatioTrivial float64 `json:"ratio_trivial"`
	RatioUniform float64 `json:"ratio_uniform"`
}

// Passes reports whether both ratios stay under the acceptance thresholds.
func (m *TailMargins) Passes() bool {
	return m.RatioTrivial < MaxRatioTrivial && m.RatioUniform < MaxRatioUniform
}

// ComputeTailMargins evaluates the tail inequality at scale n.
//
// It derives Q = floor(n^(1/5)) and R = n^RExp, computes S(Q) in the selected
// representation over one shared totient table, verifies strict monotonicity
// at Q-1/Q/Q+1 in that same representation, and compares the error-margin
// allowance EMA = (C_W/R)·E·S(Q) under both envelopes against the allowed
// share (S_floor/(8K))·n/L².
func ComputeTailMargins(n *big.Int, c Constants, opts Options) (*TailMargins, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("tail margins: N must be a positive integer, got %v", n)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	Q, err := intRootFloorSmall(n, 5)
	if err != nil {
		return nil, err
	}

	// One table covers the monotonicity probes at Q-1, Q and Q+1; the sieve
	// is never rebuilt per mode.
	phi, err := SievePhi(Q + 1)
	if err != nil {
		return nil, err
	}

	strat := SumStrategy{Method: opts.Method, Prec: opts.Prec}
	sumQ, err := strat.Sum(phi, Q)
	if err != nil {
		return nil, err
	}
	if err := checkMonotone(phi, strat, Q, sumQ); err != nil {
		return nil, err
	}

	nf, _ := new(big.Float).SetInt(n).Float64()
	l := math.Log(nf)
	r := math.Pow(nf, opts.RExp)
	s := sumQ.Float64()

	emaTrivial := (c.CW / r) * EnvelopeTrivial(nf, l) * s
	emaUniform := (c.CW / r) * EnvelopeUniform(nf, l) * s
	share := (c.SFloor / (8.0 * c.K)) * nf / (l * l)

	return &TailMargins{
		Constants:    c,
		Method:       opts.Method,
		Prec:         opts.Prec,
		N:            nf,
		LogN:         l,
		Q:            Q,
		R:            r,
		SumQ:         s,
		EMATrivial:   emaTrivial,
		EMAUniform:   emaUniform,
		Share:        share,
		RatioTrivial: emaTrivial / share,
		RatioUniform: emaUniform / share,
	}, nil
}

// checkMonotone is the sanity oracle S(Q-1) < S(Q) < S(Q+1), evaluated in
// the strategy's own representation. The totient table must cover Q+1.
// Skipped for Q < 2 where the prefix sums are identically empty.
func checkMonotone(phi PhiTable, strat SumStrategy, Q int, sumQ SumValue) error {
	if Q < 2 {
		return nil
	}

	prev, err := strat.Sum(phi, Q-1)
	if err != nil {
		return err
	}
	next, err := strat.Sum(phi, Q+1)
	if err != nil {
		return err
	}

	below, err := prev.Cmp(sumQ)
	if err != nil {
		return err
	}
	above, err := sumQ.Cmp(next)
	if err != nil {
		return err
	}
	if below >= 0 || above >= 0 {
		return fmt.Errorf("%w in %s mode at Q=%d: S(Q-1)=%s, S(Q)=%s, S(Q+1)=%s",
			ErrNotMonotone, strat.Method, Q, prev, sumQ, next)
	}
	return nil
}

// CheckBaseline asserts the float-mode S(Q) against the recorded baseline
// when n lies within the reference window 4×10^18 ± 0.5×10^18. It returns
// whether the check applied at all; outside the window nothing is asserted.
func CheckBaseline(n *big.Int) (bool, error) {
	if n == nil || n.Sign() <= 0 {
		return false, fmt.Errorf("baseline: N must be a positive integer, got %v", n)
	}

	nf, _ := new(big.Float).SetInt(n).Float64()
	if math.Abs(nf-baselineScale) >= baselineWindow {
		return false, nil
	}

	Q, err := intRootFloorSmall(n, 5)
	if err != nil {
		return false, err
	}
	phi, err := SievePhi(Q)
	if err != nil {
		return false, err
	}
	s, err := phi.SumFloat(Q)
	if err != nil {
		return false, err
	}

	if math.Abs(s-BaselineSum) > BaselineTolerance {
		return true, fmt.Errorf("%w: got %.12f, expected %.12f at Q=%d",
			ErrBaselineMismatch, s, BaselineSum, Q)
	}
	return true, nil
}

// PerQOptions control the table-driven evaluation.
type PerQOptions struct {
	// QCap is the inclusive upper limit of the per-q summation.
	QCap int

	// RExp is the exponent of the R normalization.
	RExp float64

	// Fallback is the envelope substituted for every q the table misses.
	Fallback EnvelopeModel
}

// DefaultPerQOptions mirrors the published per-q run: q ≤ 1000, R = N^0.6,
// uniform fallback.
func DefaultPerQOptions() PerQOptions {
	return PerQOptions{
		QCap:     1000,
		RExp:     0.6,
		Fallback: ModelUniform,
	}
}

// PerQMargins is the result record of one table-driven evaluation.
type PerQMargins struct {
	Constants Constants     `json:"constants"`
	Fallback  EnvelopeModel `json:"fallback"`

	N    float64 `json:"N"`
	LogN float64 `json:"logN"`
	QCap int     `json:"Qcap"`
	R    float64 `json:"R"`

	// Missing counts moduli in [2, QCap] the override table had no row for;
	// each used the fallback envelope instead.
	Missing int `json:"missing"`

	EMA   float64 `json:"EMA"`
	Share float64 `json:"share"`
	Ratio float64 `json:"ratio"`
}

// ComputePerQMargins evaluates the tail inequality with per-q envelope
// overrides: EMA = (C_W/R)·Σ_{q=2}^{QCap} E(q)/(q·φ(q)), where E(q) comes
// from the table row for q or, when the row is missing, from the fallback
// envelope. A nil or empty table degrades to the pure fallback computation
// with every q counted as missing.
func ComputePerQMargins(n *big.Int, c Constants, table *PerQTable, opts PerQOptions) (*PerQMargins, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("per-q margins: N must be a positive integer, got %v", n)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if opts.QCap < 2 {
		return nil, fmt.Errorf("per-q margins: Qcap must be ≥ 2, got %d", opts.QCap)
	}
	if _, err := ParseEnvelopeModel(string(opts.Fallback)); err != nil {
		return nil, fmt.Errorf("per-q margins: fallback: %w", err)
	}

	phi, err := SievePhi(opts.QCap)
	if err != nil {
		return nil, err
	}

	nf, _ := new(big.Float).SetInt(n).Float64()
	l := math.Log(nf)
	r := math.Pow(nf, opts.RExp)

	ema := 0.0
	missing := 0
	for q := 2; q <= opts.QCap; q++ {
		eq := 0.0
		if entry, ok := table.Lookup(q); ok {
			eq = entry.Envelope(nf, l)
		} else {
			missing++
			eq, err = opts.Fallback.Eval(nf, l)
			if err != nil {
				return nil, err
			}
		}
		ema += eq / float64(int64(q)*phi.Phi(q))
	}
	ema *= c.CW / r

	share := (c.SFloor / (8.0 * c.K)) * nf / (l * l)

	return &PerQMargins{
		Constants: c,
		Fallback:  opts.Fallback,
		N:         nf,
		LogN:      l,
		QCap:      opts.QCap,
		R:         r,
		Missing:   missing,
		EMA:       ema,
		Share:     share,
		Ratio:     ema / share,
	}, nil
}

// EnvelopeMargin is the result record of a single-model sweep, the coarse
// variant that sums S up to a cap and applies one envelope closed form.
type EnvelopeMargin struct {
	Constants Constants     `json:"constants"`
	Model     EnvelopeModel `json:"model"`

	N    float64 `json:"N"`
	LogN float64 `json:"logN"`
	QCap int     `json:"Qcap"`
	R    float64 `json:"R"`

	SumQ  float64 `json:"sum_q"`
	EMA   float64 `json:"EMA"`
	Share float64 `json:"share"`
	Ratio float64 `json:"ratio"`
}

// ComputeEnvelopeMargin evaluates EMA = (C_W/R)·E·Σ_{q=2}^{qcap} 1/(q·φ(q))
// under a single envelope model. A qcap ≤ 0 defaults to floor(n^(1/5)).
func ComputeEnvelopeMargin(n *big.Int, c Constants, model EnvelopeModel, qcap int, rexp float64) (*EnvelopeMargin, error) {
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("envelope margin: N must be a positive integer, got %v", n)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	if qcap <= 0 {
		var err error
		qcap, err = intRootFloorSmall(n, 5)
		if err != nil {
			return nil, err
		}
	}

	phi, err := SievePhi(qcap)
	if err != nil {
		return nil, err
	}
	s, err := phi.SumFloat(qcap)
	if err != nil {
		return nil, err
	}

	nf, _ := new(big.Float).SetInt(n).Float64()
	l := math.Log(nf)
	r := math.Pow(nf, rexp)

	e, err := model.Eval(nf, l)
	if err != nil {
		return nil, err
	}

	ema := (c.CW / r) * e * s
	share := (c.SFloor / (8.0 * c.K)) * nf / (l * l)

	return &EnvelopeMargin{
		Constants: c,
		Model:     model,
		N:         nf,
		LogN:      l,
		QCap:      qcap,
		R:         r,
		SumQ:      s,
		EMA:       ema,
		Share:     share,
		Ratio:     ema / share,
	}, nil
}
