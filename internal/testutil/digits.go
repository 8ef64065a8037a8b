package testutil

import (
	"math/rand"

	fuzz "github.com/google/gofuzz"
)

// RandomDigits returns n pseudo-random decimal digits, least-significant
// first, driven by seed so failures can be replayed. When msdNonZero is set
// the most-significant digit is drawn from [1,9].
//
// Parameters:
//   - seed: The random seed.
//   - n: The number of digits.
//   - msdNonZero: Whether the last (most-significant) digit must be nonzero.
//
// Returns:
//   - []int: The generated digits.
func RandomDigits(seed int64, n int, msdNonZero bool) []int {
	if n <= 0 {
		return []int{}
	}
	var out []int
	fz := fuzz.New().
		RandSource(rand.NewSource(seed)).
		NilChance(0).
		NumElements(n, n).
		Funcs(func(d *int, c fuzz.Continue) {
			*d = c.Intn(10)
		})
	fz.Fuzz(&out)
	if msdNonZero && out[n-1] == 0 {
		out[n-1] = 1 + int(seed&0x7fffffff)%9
	}
	return out
}

// AllNines returns n nines, the worst case for carry propagation.
func AllNines(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 9
	}
	return out
}
