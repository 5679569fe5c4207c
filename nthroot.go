package tailbound

import (
	"fmt"
	"math/big"
)

// IntRootFloor returns the unique integer r ≥ 0 with r^k ≤ n < (r+1)^k.
//
// The target scales sit around 4×10^18, at the edge of what int64 holds and
// well past what float64 represents exactly, so n stays a big.Int end to end.
//
// Mathematical property:
//
//	IntRootFloor(n, k)^k ≤ n < (IntRootFloor(n, k)+1)^k
func IntRootFloor(n *big.Int, k int) (*big.Int, error) {
	if n == nil || n.Sign() < 0 {
		return nil, fmt.Errorf("integer root: n must be ≥ 0, got %v", n)
	}
	if k <= 0 {
		return nil, fmt.Errorf("integer root: k must be ≥ 1, got %d", k)
	}

	// 0^k = 0 and 1^k = 1 for every k ≥ 1.
	if n.Cmp(big.NewInt(2)) < 0 {
		return new(big.Int).Set(n), nil
	}

	// Double until hi^k > n, then bisect keeping lo^k ≤ n < hi^k.
	exp := big.NewInt(int64(k))
	lo := big.NewInt(0)
	hi := big.NewInt(1)
	for new(big.Int).Exp(hi, exp, nil).Cmp(n) <= 0 {
		hi.Lsh(hi, 1)
	}

	one := big.NewInt(1)
	mid := new(big.Int)
	diff := new(big.Int)
	for diff.Sub(hi, lo).Cmp(one) > 0 {
		mid.Add(lo, hi)
		mid.Rsh(mid, 1)
		if new(big.Int).Exp(mid, exp, nil).Cmp(n) <= 0 {
			lo.Set(mid)
		} else {
			hi.Set(mid)
		}
	}

	return lo, nil
}

// intRootFloorSmall is IntRootFloor narrowed to results that fit an int.
// The evaluator derives Q = floor(N^(1/5)) this way; a Q past the int range
// would mean a totient table no machine could hold anyway.
func intRootFloorSmall(n *big.Int, k int) (int, error) {
	r, err := IntRootFloor(n, k)
	if err != nil {
		return 0, err
	}
	if !r.IsInt64() || r.Int64() > int64(maxInt) {
		return 0, fmt.Errorf("integer root: floor(n^(1/%d)) = %v exceeds the addressable table size", k, r)
	}
	return int(r.Int64()), nil
}

const maxInt = int(^uint(0) >> 1)
