package tailbound

import (
	"errors"
	"math"
	"math/big"
	"reflect"
	"testing"
)

func referenceN(t *testing.T) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString("4000000000000000000", 10)
	if !ok {
		t.Fatal("bad reference scale literal")
	}
	return n
}

func TestComputeTailMargins_ReferenceScale(t *testing.T) {
	m, err := ComputeTailMargins(referenceN(t), DefaultConstants(), DefaultOptions())
	if err != nil {
		t.Fatalf("ComputeTailMargins failed: %v", err)
	}

	if m.Q != 5253 {
		t.Errorf("Q = %d, want 5253", m.Q)
	}
	if math.Abs(m.LogN-42.832826035) > 1e-6 {
		t.Errorf("log N = %.9f, want 42.832826035 ± 1e-6", m.LogN)
	}
	if math.Abs(m.SumQ-1.203486653584392) > 1e-10 {
		t.Errorf("S(Q) = %.15f, want 1.203486653584392 ± 1e-10", m.SumQ)
	}
	if m.RatioTrivial >= MaxRatioTrivial {
		t.Errorf("ratio_trivial = %.3e, want < %.0e", m.RatioTrivial, MaxRatioTrivial)
	}
	if m.RatioUniform >= MaxRatioUniform {
		t.Errorf("ratio_uniform = %.3e, want < %.0e", m.RatioUniform, MaxRatioUniform)
	}
	if !m.Passes() {
		t.Error("reference scale must pass the acceptance policy")
	}

	PrintMargins(t, m)
}

func TestComputeTailMargins_FractionMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = MethodFraction

	m, err := ComputeTailMargins(referenceN(t), DefaultConstants(), opts)
	if err != nil {
		t.Fatalf("ComputeTailMargins failed: %v", err)
	}

	if m.Q != 5253 {
		t.Errorf("Q = %d, want 5253", m.Q)
	}
	if math.Abs(m.SumQ-1.203486653584392) > 1e-10 {
		t.Errorf("S(Q) = %.15f, want 1.203486653584392 ± 1e-10", m.SumQ)
	}
	if !m.Passes() {
		t.Error("fraction mode must pass at the reference scale")
	}
}

func TestComputeTailMargins_ModesAgree(t *testing.T) {
	n := referenceN(t)

	dec, err := ComputeTailMargins(n, DefaultConstants(), DefaultOptions())
	if err != nil {
		t.Fatalf("decimal mode failed: %v", err)
	}

	opts := DefaultOptions()
	opts.Method = MethodFraction
	frac, err := ComputeTailMargins(n, DefaultConstants(), opts)
	if err != nil {
		t.Fatalf("fraction mode failed: %v", err)
	}

	if math.Abs(dec.SumQ-frac.SumQ) > 1e-12 {
		t.Errorf("S(Q) disagrees across modes: %.15f vs %.15f", dec.SumQ, frac.SumQ)
	}
	if math.Abs(dec.RatioUniform-frac.RatioUniform) > 1e-12*frac.RatioUniform+1e-20 {
		t.Errorf("ratio_uniform disagrees across modes: %.6e vs %.6e", dec.RatioUniform, frac.RatioUniform)
	}
}

func TestComputeTailMargins_Idempotent(t *testing.T) {
	n := referenceN(t)

	a, err := ComputeTailMargins(n, DefaultConstants(), DefaultOptions())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := ComputeTailMargins(n, DefaultConstants(), DefaultOptions())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated evaluation differs:\n  %+v\n  %+v", a, b)
	}
}

func TestComputeTailMargins_InvalidInputs(t *testing.T) {
	n := referenceN(t)

	if _, err := ComputeTailMargins(nil, DefaultConstants(), DefaultOptions()); err == nil {
		t.Error("nil N should be rejected")
	}
	if _, err := ComputeTailMargins(big.NewInt(0), DefaultConstants(), DefaultOptions()); err == nil {
		t.Error("N = 0 should be rejected")
	}
	if _, err := ComputeTailMargins(big.NewInt(-4), DefaultConstants(), DefaultOptions()); err == nil {
		t.Error("negative N should be rejected")
	}

	bad := DefaultConstants()
	bad.K = 0
	if _, err := ComputeTailMargins(n, bad, DefaultOptions()); err == nil {
		t.Error("K = 0 should be rejected")
	}

	opts := DefaultOptions()
	opts.Method = "bogus"
	if _, err := ComputeTailMargins(n, DefaultConstants(), opts); err == nil {
		t.Error("unknown method should be rejected")
	}
}

func TestCheckBaseline(t *testing.T) {
	checked, err := CheckBaseline(referenceN(t))
	if err != nil {
		t.Fatalf("baseline check failed at the reference scale: %v", err)
	}
	if !checked {
		t.Error("reference scale must fall inside the baseline window")
	}

	checked, err = CheckBaseline(big.NewInt(1_000_000_000_000))
	if err != nil {
		t.Fatalf("baseline check errored outside the window: %v", err)
	}
	if checked {
		t.Error("1e12 lies outside the baseline window, nothing should be asserted")
	}

	if _, err := CheckBaseline(big.NewInt(0)); err == nil {
		t.Error("N = 0 should be rejected")
	}
}

func TestComputePerQMargins_EmptyTable(t *testing.T) {
	n := referenceN(t)
	c := DefaultConstants()
	opts := DefaultPerQOptions()

	m, err := ComputePerQMargins(n, c, nil, opts)
	if err != nil {
		t.Fatalf("ComputePerQMargins failed: %v", err)
	}

	// q = 2..1000 all miss.
	if m.Missing != 999 {
		t.Errorf("missing = %d, want 999", m.Missing)
	}

	// With every q on the fallback the EMA factors into the closed form
	// (C_W/R)·E_uniform·S(Qcap), up to float association.
	phi, err := SievePhi(opts.QCap)
	if err != nil {
		t.Fatalf("SievePhi failed: %v", err)
	}
	s, err := phi.SumFloat(opts.QCap)
	if err != nil {
		t.Fatalf("SumFloat failed: %v", err)
	}
	nf, _ := new(big.Float).SetInt(n).Float64()
	l := math.Log(nf)
	want := (c.CW / math.Pow(nf, opts.RExp)) * EnvelopeUniform(nf, l) * s

	if rel := math.Abs(m.EMA-want) / want; rel > 1e-12 {
		t.Errorf("EMA = %g, want %g (pure fallback product, rel diff %.3e)", m.EMA, want, rel)
	}

	t.Logf("✓ Empty table degrades to the fallback computation: EMA = %.6e, missing = %d", m.EMA, m.Missing)
}

func TestComputePerQMargins_TableOverrides(t *testing.T) {
	n := referenceN(t)
	c := DefaultConstants()
	opts := DefaultPerQOptions()

	// A zero-coefficient override at q = 2 removes exactly the fallback
	// contribution E_uniform/(2·φ(2)) from the sum.
	table := &PerQTable{entries: map[int]PerQEntry{
		2: {Q: 2, Form: FormCNOverLog, C1: 0, C2: 0},
	}}

	overridden, err := ComputePerQMargins(n, c, table, opts)
	if err != nil {
		t.Fatalf("ComputePerQMargins failed: %v", err)
	}
	baseline, err := ComputePerQMargins(n, c, nil, opts)
	if err != nil {
		t.Fatalf("ComputePerQMargins failed: %v", err)
	}

	if overridden.Missing != 998 {
		t.Errorf("missing = %d, want 998", overridden.Missing)
	}

	nf, _ := new(big.Float).SetInt(n).Float64()
	l := math.Log(nf)
	removed := (c.CW / math.Pow(nf, opts.RExp)) * EnvelopeUniform(nf, l) / 2.0
	want := baseline.EMA - removed
	if rel := math.Abs(overridden.EMA-want) / want; rel > 1e-9 {
		t.Errorf("EMA = %g, want %g (rel diff %.3e)", overridden.EMA, want, rel)
	}
}

func TestComputePerQMargins_InvalidInputs(t *testing.T) {
	n := referenceN(t)
	opts := DefaultPerQOptions()

	if _, err := ComputePerQMargins(nil, DefaultConstants(), nil, opts); err == nil {
		t.Error("nil N should be rejected")
	}

	opts.QCap = 1
	if _, err := ComputePerQMargins(n, DefaultConstants(), nil, opts); err == nil {
		t.Error("Qcap < 2 should be rejected")
	}

	opts = DefaultPerQOptions()
	opts.Fallback = "perq"
	if _, err := ComputePerQMargins(n, DefaultConstants(), nil, opts); err == nil {
		t.Error("unknown fallback model should be rejected")
	}
}

func TestComputeEnvelopeMargin(t *testing.T) {
	n := referenceN(t)
	c := DefaultConstants()

	uniform, err := ComputeEnvelopeMargin(n, c, ModelUniform, 0, 0.6)
	if err != nil {
		t.Fatalf("uniform margin failed: %v", err)
	}
	trivial, err := ComputeEnvelopeMargin(n, c, ModelTrivial, 0, 0.6)
	if err != nil {
		t.Fatalf("trivial margin failed: %v", err)
	}

	// Default cap is Q = floor(N^(1/5)).
	if uniform.QCap != 5253 {
		t.Errorf("default Qcap = %d, want 5253", uniform.QCap)
	}
	if uniform.Ratio >= MaxRatioUniform {
		t.Errorf("uniform ratio = %.3e, want < %.0e", uniform.Ratio, MaxRatioUniform)
	}
	if trivial.Ratio >= MaxRatioTrivial {
		t.Errorf("trivial ratio = %.3e, want < %.0e", trivial.Ratio, MaxRatioTrivial)
	}
	if uniform.Ratio >= trivial.Ratio {
		t.Error("uniform envelope must yield the smaller ratio")
	}

	capped, err := ComputeEnvelopeMargin(n, c, ModelUniform, 1000, 0.6)
	if err != nil {
		t.Fatalf("capped margin failed: %v", err)
	}
	if capped.QCap != 1000 {
		t.Errorf("Qcap = %d, want 1000", capped.QCap)
	}
	if capped.SumQ >= uniform.SumQ {
		t.Error("a lower cap must yield a strictly smaller sum")
	}
}

func TestErrNotMonotone_Sentinel(t *testing.T) {
	// The oracle can only fire on a defective table; feed it one directly.
	phi := PhiTable{0, 1, 1, -2, 1, 1}

	strat := SumStrategy{Method: MethodFraction}
	sumQ, err := strat.Sum(phi, 3)
	if err != nil {
		t.Fatalf("sum over defective table failed: %v", err)
	}
	err = checkMonotone(phi, strat, 3, sumQ)
	if err == nil {
		t.Fatal("defective table must trip the monotonicity oracle")
	}
	if !errors.Is(err, ErrNotMonotone) {
		t.Errorf("error %v does not wrap ErrNotMonotone", err)
	}
}
