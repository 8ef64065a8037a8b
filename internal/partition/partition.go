// Package partition splits a digit range across workers.
//
// Plan hands out contiguous ranges in worker order, giving the remainder
// digits to the first workers. PlanEqual pads the range to a multiple of the
// worker count so that every worker gets the same length, which is what
// collective scatter and gather need.
package partition

import (
	apperrors "github.com/agbru/bigadd/internal/errors"
)

// Range is a contiguous run of digit positions [Start, Start+Len).
type Range struct {
	Start int
	Len   int
}

// End returns the first position past the range.
func (r Range) End() int { return r.Start + r.Len }

// Plan computes one range per worker over [0, n). The first n%workers
// workers get one extra digit. Ranges are gap-free, non-overlapping, ordered
// by worker index, and their lengths sum to n. When n < workers the trailing
// ranges are empty.
//
// Parameters:
//   - n: The number of digits to split (n >= 0).
//   - workers: The number of workers (must be >= 1).
//
// Returns:
//   - []Range: One range per worker.
//   - error: A ConfigError when workers < 1 or n < 0.
func Plan(n, workers int) ([]Range, error) {
	if err := check(n, workers); err != nil {
		return nil, err
	}
	base, rem := n/workers, n%workers
	ranges := make([]Range, workers)
	start := 0
	for i := range ranges {
		l := base
		if i < rem {
			l++
		}
		ranges[i] = Range{Start: start, Len: l}
		start += l
	}
	return ranges, nil
}

// PaddedLen rounds n up to the next multiple of workers.
func PaddedLen(n, workers int) int {
	if workers < 1 {
		return n
	}
	if rem := n % workers; rem != 0 {
		return n + workers - rem
	}
	return n
}

// PlanEqual computes equal-size ranges over n padded to a multiple of
// workers. Positions at or past n are padding and hold zeros.
//
// Parameters:
//   - n: The number of real digits.
//   - workers: The number of workers (must be >= 1).
//
// Returns:
//   - []Range: One range per worker, all of the same length.
//   - int: The padded length.
//   - error: A ConfigError when workers < 1 or n < 0.
func PlanEqual(n, workers int) ([]Range, int, error) {
	if err := check(n, workers); err != nil {
		return nil, 0, err
	}
	padded := PaddedLen(n, workers)
	chunk := padded / workers
	ranges := make([]Range, workers)
	for i := range ranges {
		ranges[i] = Range{Start: i * chunk, Len: chunk}
	}
	return ranges, padded, nil
}

func check(n, workers int) error {
	if workers < 1 {
		return apperrors.NewConfigError("worker count must be at least 1, got %d", workers)
	}
	if n < 0 {
		return apperrors.NewConfigError("digit count must not be negative, got %d", n)
	}
	return nil
}
