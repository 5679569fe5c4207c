package tailbound

import (
	"math"
	"math/big"
	"testing"
)

// AssertionConfig contains tolerances for the replication properties.
type AssertionConfig struct {
	// Float vs decimal-50 agreement on S(Q)
	FloatDecimalTol float64

	// Decimal-120 vs exact-fraction agreement on S(Q), as a decimal string
	// exponent (10^-DecimalFractionExp)
	DecimalFractionExp int32

	// Baseline tolerance at the reference scale
	BaselineTol float64
}

// DefaultAssertionConfig returns the published tolerances.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		FloatDecimalTol:    1e-10,
		DecimalFractionExp: 20,
		BaselineTol:        1e-10,
	}
}

// AssertRootContract verifies r = IntRootFloor(n, k) satisfies
// r^k ≤ n < (r+1)^k.
func AssertRootContract(t *testing.T, n *big.Int, k int) {
	t.Helper()

	r, err := IntRootFloor(n, k)
	if err != nil {
		t.Fatalf("IntRootFloor(%v, %d) failed: %v", n, k, err)
	}

	exp := big.NewInt(int64(k))
	low := new(big.Int).Exp(r, exp, nil)
	high := new(big.Int).Exp(new(big.Int).Add(r, big.NewInt(1)), exp, nil)

	if low.Cmp(n) > 0 {
		t.Errorf("root too large: %v^%d = %v > %v", r, k, low, n)
	}
	if high.Cmp(n) <= 0 {
		t.Errorf("root too small: (%v+1)^%d = %v ≤ %v", r, k, high, n)
	}

	t.Logf("✓ Root contract: floor(%v^(1/%d)) = %v", n, k, r)
}

// AssertMonotone verifies S(Q-1) < S(Q) < S(Q+1) strictly, in the given
// strategy's own representation. The table must cover Q+1.
func AssertMonotone(t *testing.T, phi PhiTable, strat SumStrategy, Q int) {
	t.Helper()

	sumQ, err := strat.Sum(phi, Q)
	if err != nil {
		t.Fatalf("S(%d) in %s mode failed: %v", Q, strat.Method, err)
	}
	if err := checkMonotone(phi, strat, Q, sumQ); err != nil {
		t.Errorf("monotonicity violated: %v", err)
		return
	}

	t.Logf("✓ Monotone at Q=%d (%s mode): S(Q)=%s", Q, sumQ.Method(), sumQ)
}

// AssertCrossModeAgreement verifies the three representations of S(Q) agree
// to the precision of the least precise mode: float within
// cfg.FloatDecimalTol of decimal-50, and decimal-120 within
// 10^-cfg.DecimalFractionExp of the exact fraction.
func AssertCrossModeAgreement(t *testing.T, phi PhiTable, Q int, cfg AssertionConfig) {
	t.Helper()

	sf, err := phi.SumFloat(Q)
	if err != nil {
		t.Fatalf("float S(%d) failed: %v", Q, err)
	}
	d50, err := phi.SumDecimal(Q, 50)
	if err != nil {
		t.Fatalf("decimal-50 S(%d) failed: %v", Q, err)
	}
	d120, err := phi.SumDecimal(Q, 120)
	if err != nil {
		t.Fatalf("decimal-120 S(%d) failed: %v", Q, err)
	}
	frac, err := phi.SumFraction(Q)
	if err != nil {
		t.Fatalf("fraction S(%d) failed: %v", Q, err)
	}

	if diff := math.Abs(sf - d50.InexactFloat64()); diff > cfg.FloatDecimalTol {
		t.Errorf("float vs decimal-50 disagree at Q=%d: |%.17g - %s| = %.3e (max %.0e)",
			Q, sf, d50, diff, cfg.FloatDecimalTol)
	}

	// Compare in decimal arithmetic: float64 cannot resolve 10^-20.
	residual := d120.Sub(ratToDecimal(frac, 140)).Abs()
	limit := decimalPow10(-cfg.DecimalFractionExp)
	if residual.Cmp(limit) > 0 {
		t.Errorf("decimal-120 vs fraction disagree at Q=%d: residual %s (max %s)",
			Q, residual, limit)
	}

	t.Logf("✓ Cross-mode agreement at Q=%d", Q)
	t.Logf("  float      = %.17g", sf)
	t.Logf("  decimal-50 = %s", d50)
	t.Logf("  fraction   ≈ %.17g", sumFloatOfRat(frac))
}

// PrintMargins outputs the full margin record to the test log.
func PrintMargins(t *testing.T, m *TailMargins) {
	t.Helper()

	t.Logf("\n=== Tail Margins ===")
	t.Logf("  N             = %.6g", m.N)
	t.Logf("  log N         = %.9f", m.LogN)
	t.Logf("  Q             = %d", m.Q)
	t.Logf("  R             = %.6g", m.R)
	t.Logf("  S(Q)          = %.15f  (%s mode)", m.SumQ, m.Method)
	t.Logf("  EMA trivial   = %.6g", m.EMATrivial)
	t.Logf("  EMA uniform   = %.6g", m.EMAUniform)
	t.Logf("  Share         = %.6g", m.Share)
	t.Logf("  ratio trivial = %.3e  (max %.0e)", m.RatioTrivial, MaxRatioTrivial)
	t.Logf("  ratio uniform = %.3e  (max %.0e)", m.RatioUniform, MaxRatioUniform)
	if m.Passes() {
		t.Logf("  ✓ accepted")
	} else {
		t.Logf("  ✗ rejected")
	}
}

func sumFloatOfRat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}
