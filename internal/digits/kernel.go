package digits

import "fmt"

// AddSlice adds two equal-length digit slices position by position, starting
// from a zero carry, and returns the sum slice plus the carry out of the last
// position. Neither input is modified.
//
// Parameters:
//   - a: The first operand slice.
//   - b: The second operand slice, same length as a.
//
// Returns:
//   - Sequence: A new slice with r[i] = (a[i]+b[i]+c) mod 10.
//   - int: The final carry, 0 or 1.
func AddSlice(a, b Sequence) (Sequence, int) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("digits: AddSlice length mismatch %d != %d", len(a), len(b)))
	}
	r := make(Sequence, len(a))
	carry := 0
	for i := range a {
		checkDigit(a[i])
		checkDigit(b[i])
		s := a[i] + b[i] + carry
		r[i] = s % Base
		carry = s / Base
	}
	return r, carry
}

// ApplyCarry adds an incoming carry to r in place and returns the carry out
// of the last position. Every position is visited even once the running
// carry has dropped to zero.
//
// Parameters:
//   - r: The slice to update in place.
//   - carryIn: The incoming carry, 0 or 1.
//
// Returns:
//   - int: The carry out of the last position, 0 or 1.
func ApplyCarry(r Sequence, carryIn int) int {
	checkCarry(carryIn)
	carry := carryIn
	for i := range r {
		s := r[i] + carry
		r[i] = s % Base
		carry = s / Base
	}
	return carry
}

// Propagates reports whether an incoming carry of 1 would ripple through the
// whole of r, i.e. every digit is 9. An empty slice passes any carry through.
func Propagates(r Sequence) bool {
	for _, d := range r {
		if d != Base-1 {
			return false
		}
	}
	return true
}

// CarryOut predicts the total carry leaving a slice given its local carry,
// its propagate flag and the carry coming in. At most one of the local carry
// and the propagated carry can be set, so the result stays in {0,1}.
func CarryOut(localCarry int, propagates bool, carryIn int) int {
	checkCarry(localCarry)
	checkCarry(carryIn)
	if localCarry == 1 {
		return 1
	}
	if propagates {
		return carryIn
	}
	return 0
}

func checkDigit(d int) {
	if d < 0 || d >= Base {
		panic(fmt.Sprintf("digits: digit %d outside [0,9]", d))
	}
}

func checkCarry(c int) {
	if c != 0 && c != 1 {
		panic(fmt.Sprintf("digits: carry %d outside {0,1}", c))
	}
}
