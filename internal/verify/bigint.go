//go:build !gmp

package verify

import (
	"fmt"
	"math/big"
)

// Backend names the arithmetic library behind CrossCheck.
const Backend = "math/big"

func sumMatches(a, b, r string) (bool, error) {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return false, fmt.Errorf("bad operand %q", a)
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return false, fmt.Errorf("bad operand %q", b)
	}
	z, ok := new(big.Int).SetString(r, 10)
	if !ok {
		return false, fmt.Errorf("bad result %q", r)
	}
	return x.Add(x, y).Cmp(z) == 0, nil
}
