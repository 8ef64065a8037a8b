//go:build gmp

// This file swaps the cross-check arithmetic to GMP when built with
// -tags gmp. It requires libgmp on the build host.

package verify

import (
	"fmt"

	"github.com/ncw/gmp"
)

// Backend names the arithmetic library behind CrossCheck.
const Backend = "gmp"

func sumMatches(a, b, r string) (bool, error) {
	x, ok := new(gmp.Int).SetString(a, 10)
	if !ok {
		return false, fmt.Errorf("bad operand %q", a)
	}
	y, ok := new(gmp.Int).SetString(b, 10)
	if !ok {
		return false, fmt.Errorf("bad operand %q", b)
	}
	z, ok := new(gmp.Int).SetString(r, 10)
	if !ok {
		return false, fmt.Errorf("bad result %q", r)
	}
	return x.Add(x, y).Cmp(z) == 0, nil
}
