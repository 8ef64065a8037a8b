// Package addition implements big-integer addition over digit sequences: the
// sequential reference that every other result is checked against, and four
// distributed strategies that split the digits across ranks and chain the
// carry from the lowest-order worker to the highest.
//
// A strategy only supplies policy: how operands reach the workers, how the
// carry moves between them and how results come back. The Coordinator and
// Worker roles drive those steps in a fixed order, so every strategy shares
// the same skeleton and differs only where its communication pattern does.
package addition

import "github.com/agbru/bigadd/internal/digits"

// Sequential adds a and b on one rank. The operands may differ in length;
// the shorter one is treated as zero-extended. The result holds
// max(len(a), len(b)) digits and the overflow carry.
//
// Parameters:
//   - a: The first operand, least-significant first.
//   - b: The second operand, least-significant first.
//
// Returns:
//   - digits.Result: The sum digits and the overflow digit.
func Sequential(a, b digits.Sequence) digits.Result {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	sum := make(digits.Sequence, len(long))
	carry := 0
	for i := range long {
		s := long[i] + carry
		if i < len(short) {
			s += short[i]
		}
		sum[i] = s % digits.Base
		carry = s / digits.Base
	}
	return digits.Result{Digits: sum, Overflow: carry}
}
