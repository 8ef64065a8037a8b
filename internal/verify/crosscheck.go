package verify

import (
	"fmt"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/store"
)

// CrossCheck checks the stored result against an independent
// arbitrary-precision sum of the stored operands. The arithmetic backend is
// math/big unless the binary is built with -tags gmp.
//
// Parameters:
//   - st: The store holding all three records.
//   - firstID, secondID: The operand ids.
//   - resultID: The id of the result to check.
//
// Returns:
//   - bool: True if the result equals first+second.
//   - error: An error if a record is unreadable.
func CrossCheck(st store.NumberStore, firstID, secondID, resultID string) (bool, error) {
	a, err := st.ReadAll(firstID)
	if err != nil {
		return false, err
	}
	b, err := st.ReadAll(secondID)
	if err != nil {
		return false, err
	}
	r, err := st.ReadAll(resultID)
	if err != nil {
		return false, err
	}
	if len(r) == 0 {
		return false, fmt.Errorf("result %s: %w", resultID, ErrEmpty)
	}
	return sumMatches(decimal(a), decimal(b), decimal(r))
}

// decimal renders a sequence as a base-10 literal, most significant first.
func decimal(seq digits.Sequence) string {
	if len(seq) == 0 {
		return "0"
	}
	return seq.String()
}
