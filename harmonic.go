package tailbound

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// SumMethod selects the numeric representation used to accumulate S(Q).
type SumMethod string

const (
	// MethodFloat accumulates in a native float64. Fastest, ~15-17
	// significant digits.
	MethodFloat SumMethod = "float"

	// MethodDecimal accumulates shopspring decimals, every division rounded
	// to an explicit number of decimal places. Deterministic in (Q, prec).
	MethodDecimal SumMethod = "decimal"

	// MethodFraction accumulates exact big.Rat values. No rounding at any
	// step; the denominator grows combinatorially with Q.
	MethodFraction SumMethod = "fraction"
)

// ParseSumMethod validates a method name from the CLI boundary.
func ParseSumMethod(s string) (SumMethod, error) {
	switch m := SumMethod(s); m {
	case MethodFloat, MethodDecimal, MethodFraction:
		return m, nil
	}
	return "", fmt.Errorf("unknown sum method %q (want float, decimal or fraction)", s)
}

// SumStrategy is one configured way of computing S(Q). Prec is the decimal
// precision and is only consulted by MethodDecimal; it is threaded through
// every division rather than set on any ambient context, so strategies at
// different precisions never interfere.
type SumStrategy struct {
	Method SumMethod
	Prec   int32
}

// Sum evaluates S(Q) = Σ_{q=2}^{Q} 1/(q·φ(q)) over the shared totient table.
// Q < 2 yields the empty sum. The table must cover [0, Q].
func (s SumStrategy) Sum(phi PhiTable, Q int) (SumValue, error) {
	switch s.Method {
	case MethodFloat:
		v, err := phi.SumFloat(Q)
		if err != nil {
			return SumValue{}, err
		}
		return SumValue{method: MethodFloat, f: v}, nil
	case MethodDecimal:
		v, err := phi.SumDecimal(Q, s.Prec)
		if err != nil {
			return SumValue{}, err
		}
		return SumValue{method: MethodDecimal, d: v}, nil
	case MethodFraction:
		v, err := phi.SumFraction(Q)
		if err != nil {
			return SumValue{}, err
		}
		return SumValue{method: MethodFraction, r: v}, nil
	}
	return SumValue{}, fmt.Errorf("unknown sum method %q", s.Method)
}

// SumValue is S(Q) in one representation. Values from the same strategy are
// exactly comparable, which is what the monotonicity oracle needs.
type SumValue struct {
	method SumMethod
	f      float64
	d      decimal.Decimal
	r      *big.Rat
}

// Method reports the representation this value was computed in.
func (v SumValue) Method() SumMethod {
	return v.method
}

// Float64 returns the value cast to float64. Exact for MethodFloat, a
// rounded cast for the other two.
func (v SumValue) Float64() float64 {
	switch v.method {
	case MethodDecimal:
		return v.d.InexactFloat64()
	case MethodFraction:
		f, _ := v.r.Float64()
		return f
	}
	return v.f
}

// Cmp compares two values of the same representation, returning -1, 0 or +1.
// Comparing across representations is refused: the whole point of the
// monotonicity oracle is that it runs inside one representation's exactness
// guarantees.
func (v SumValue) Cmp(o SumValue) (int, error) {
	if v.method != o.method {
		return 0, fmt.Errorf("cannot compare %s sum against %s sum", v.method, o.method)
	}
	switch v.method {
	case MethodDecimal:
		return v.d.Cmp(o.d), nil
	case MethodFraction:
		return v.r.Cmp(o.r), nil
	}
	switch {
	case v.f < o.f:
		return -1, nil
	case v.f > o.f:
		return 1, nil
	}
	return 0, nil
}

// String renders the value in its native representation.
func (v SumValue) String() string {
	switch v.method {
	case MethodDecimal:
		return v.d.String()
	case MethodFraction:
		return v.r.RatString()
	}
	return fmt.Sprintf("%.17g", v.f)
}

// SumFloat computes S(Q) in float64 arithmetic, increasing q order.
func (t PhiTable) SumFloat(Q int) (float64, error) {
	if err := t.checkRange(Q); err != nil {
		return 0, err
	}
	s := 0.0
	for q := 2; q <= Q; q++ {
		if ph := t[q]; ph != 0 {
			s += 1.0 / float64(int64(q)*ph)
		}
	}
	return s, nil
}

// SumDecimal computes S(Q) with every division rounded to prec decimal
// places. The terms themselves add exactly (decimal addition is exact), so
// the accumulated rounding error is below Q·10^(-prec)/2.
func (t PhiTable) SumDecimal(Q int, prec int32) (decimal.Decimal, error) {
	if prec < 1 {
		return decimal.Decimal{}, fmt.Errorf("decimal sum: precision must be ≥ 1, got %d", prec)
	}
	if err := t.checkRange(Q); err != nil {
		return decimal.Decimal{}, err
	}
	one := decimal.NewFromInt(1)
	s := decimal.Decimal{}
	for q := 2; q <= Q; q++ {
		if ph := t[q]; ph != 0 {
			s = s.Add(one.DivRound(decimal.NewFromInt(int64(q)*ph), prec))
		}
	}
	return s, nil
}

// SumFraction computes S(Q) exactly as a rational number.
func (t PhiTable) SumFraction(Q int) (*big.Rat, error) {
	if err := t.checkRange(Q); err != nil {
		return nil, err
	}
	s := new(big.Rat)
	term := new(big.Rat)
	for q := 2; q <= Q; q++ {
		if ph := t[q]; ph != 0 {
			s.Add(s, term.SetFrac64(1, int64(q)*ph))
		}
	}
	return s, nil
}

func (t PhiTable) checkRange(Q int) error {
	if Q < 0 {
		return fmt.Errorf("harmonic sum: Q must be ≥ 0, got %d", Q)
	}
	// Q < 2 is the empty sum whatever the table covers.
	if Q >= 2 && Q > t.Limit() {
		return fmt.Errorf("harmonic sum: Q = %d exceeds totient table limit %d", Q, t.Limit())
	}
	return nil
}

// decimalPow10 returns 10^exp as a decimal.
func decimalPow10(exp int32) decimal.Decimal {
	return decimal.New(1, exp)
}

// ratToDecimal converts an exact rational to a decimal rounded to prec
// places, for cross-representation residuals in the diagnostics.
func ratToDecimal(r *big.Rat, prec int32) decimal.Decimal {
	num := decimal.NewFromBigInt(new(big.Int).Set(r.Num()), 0)
	den := decimal.NewFromBigInt(new(big.Int).Set(r.Denom()), 0)
	return num.DivRound(den, prec)
}
