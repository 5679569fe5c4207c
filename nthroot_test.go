package tailbound

import (
	"math/big"
	"testing"
)

func TestIntRootFloor_Contract(t *testing.T) {
	cases := []struct {
		n string
		k int
	}{
		{"2", 1},
		{"2", 2},
		{"3", 2},
		{"15", 2},
		{"16", 2},
		{"17", 2},
		{"1000000", 3},
		{"999999999999999999", 4},
		{"4000000000000000000", 5},
		{"18446744073709551615", 5},
		{"123456789012345678901234567890", 7},
	}

	for _, tc := range cases {
		n, ok := new(big.Int).SetString(tc.n, 10)
		if !ok {
			t.Fatalf("bad test case %q", tc.n)
		}
		AssertRootContract(t, n, tc.k)
	}
}

func TestIntRootFloor_ReferenceScale(t *testing.T) {
	n, _ := new(big.Int).SetString("4000000000000000000", 10)

	r, err := IntRootFloor(n, 5)
	if err != nil {
		t.Fatalf("IntRootFloor failed: %v", err)
	}

	if r.Int64() != 5253 {
		t.Errorf("floor((4e18)^(1/5)) = %v, want 5253", r)
	}

	t.Logf("✓ Reference scale: Q = %v", r)
}

func TestIntRootFloor_ExactPowers(t *testing.T) {
	// r^k must come back as exactly r, and r^k - 1 as r - 1.
	for _, k := range []int{1, 2, 3, 5, 10} {
		for _, r := range []int64{2, 3, 10, 97} {
			n := new(big.Int).Exp(big.NewInt(r), big.NewInt(int64(k)), nil)

			got, err := IntRootFloor(n, k)
			if err != nil {
				t.Fatalf("IntRootFloor(%v, %d) failed: %v", n, k, err)
			}
			if got.Int64() != r {
				t.Errorf("floor((%d^%d)^(1/%d)) = %v, want %d", r, k, k, got, r)
			}

			below, err := IntRootFloor(new(big.Int).Sub(n, big.NewInt(1)), k)
			if err != nil {
				t.Fatalf("IntRootFloor(%v-1, %d) failed: %v", n, k, err)
			}
			if below.Int64() != r-1 {
				t.Errorf("floor((%d^%d-1)^(1/%d)) = %v, want %d", r, k, k, below, r-1)
			}
		}
	}
}

func TestIntRootFloor_Boundaries(t *testing.T) {
	for _, k := range []int{1, 2, 5, 17} {
		zero, err := IntRootFloor(big.NewInt(0), k)
		if err != nil {
			t.Fatalf("IntRootFloor(0, %d) failed: %v", k, err)
		}
		if zero.Sign() != 0 {
			t.Errorf("IntRootFloor(0, %d) = %v, want 0", k, zero)
		}

		one, err := IntRootFloor(big.NewInt(1), k)
		if err != nil {
			t.Fatalf("IntRootFloor(1, %d) failed: %v", k, err)
		}
		if one.Int64() != 1 {
			t.Errorf("IntRootFloor(1, %d) = %v, want 1", k, one)
		}
	}
}

func TestIntRootFloor_InvalidArguments(t *testing.T) {
	if _, err := IntRootFloor(big.NewInt(-1), 2); err == nil {
		t.Error("negative n should be rejected")
	}
	if _, err := IntRootFloor(big.NewInt(10), 0); err == nil {
		t.Error("k = 0 should be rejected")
	}
	if _, err := IntRootFloor(big.NewInt(10), -3); err == nil {
		t.Error("negative k should be rejected")
	}
	if _, err := IntRootFloor(nil, 2); err == nil {
		t.Error("nil n should be rejected")
	}
}

func TestIntRootFloor_DoesNotMutateInput(t *testing.T) {
	n, _ := new(big.Int).SetString("4000000000000000000", 10)
	want := new(big.Int).Set(n)

	if _, err := IntRootFloor(n, 5); err != nil {
		t.Fatalf("IntRootFloor failed: %v", err)
	}
	if n.Cmp(want) != 0 {
		t.Errorf("input mutated: %v != %v", n, want)
	}
}
