// Package digits holds the decimal digit sequences the adder works on and the
// arithmetic kernel shared by every strategy: slice addition with carry,
// incoming-carry application, and carry-propagation prediction.
//
// A Sequence is stored least-significant digit first. Index 0 is the units
// digit. Every digit lies in [0,9] and every carry in {0,1}; callers that
// break these preconditions get a panic, since they are programming errors.
package digits

import (
	"fmt"
	"strings"
)

// Base is the radix of a digit sequence.
const Base = 10

// Sequence is a run of decimal digits, least-significant first.
type Sequence []int

// Result is the outcome of adding two N-digit numbers: N digits plus the
// overflow digit carried out of the most-significant position.
type Result struct {
	Digits   Sequence
	Overflow int
}

// Sequence returns the full sum, appending the overflow digit only when it
// is nonzero.
func (r Result) Sequence() Sequence {
	out := make(Sequence, len(r.Digits), len(r.Digits)+1)
	copy(out, r.Digits)
	if r.Overflow != 0 {
		out = append(out, r.Overflow)
	}
	return out
}

// Len returns the number of digits in the sequence.
func (s Sequence) Len() int { return len(s) }

// Clone returns an independent copy of s.
func (s Sequence) Clone() Sequence {
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Validate reports the first digit outside [0,9].
func (s Sequence) Validate() error {
	for i, d := range s {
		if d < 0 || d >= Base {
			return fmt.Errorf("digit %d at position %d is outside [0,9]", d, i)
		}
	}
	return nil
}

// String renders the sequence most-significant digit first, the way a
// number is normally written.
func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(len(s))
	for i := len(s) - 1; i >= 0; i-- {
		b.WriteByte(byte('0' + s[i]))
	}
	return b.String()
}

// Parse converts a decimal string written most-significant first into a
// Sequence. Leading zeros are kept so that fixed-width operands survive.
//
// Parameters:
//   - text: The decimal digits, most-significant first.
//
// Returns:
//   - Sequence: The digits, least-significant first.
//   - error: An error if text is empty or holds a non-digit rune.
func Parse(text string) (Sequence, error) {
	if text == "" {
		return nil, fmt.Errorf("empty number")
	}
	out := make(Sequence, len(text))
	for i := 0; i < len(text); i++ {
		c := text[len(text)-1-i]
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("invalid digit %q in %q", c, text)
		}
		out[i] = int(c - '0')
	}
	return out, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(text string) Sequence {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}
