// Package verify checks strategy results against the sequential reference.
// Results are compared as text after whitespace is stripped, so two streams
// that differ only in layout are equal. An empty or unreadable stream is
// always an error and never equal to anything.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/store"
	"github.com/spaolacci/murmur3"
)

// ErrEmpty is the cause reported for a stream with no digits.
var ErrEmpty = errors.New("empty result stream")

// Status is the outcome of one comparison.
type Status int

const (
	// StatusOK means the stream matches the reference.
	StatusOK Status = iota
	// StatusFail means both streams were read and differ.
	StatusFail
	// StatusError means a stream could not be read or was empty.
	StatusError
)

// String returns the tag printed in reports.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFail:
		return "FAIL"
	default:
		return "ERROR"
	}
}

// Target names one stream to compare against the reference.
type Target struct {
	Name string
	ID   string
}

// Entry is the result of comparing one target.
type Entry struct {
	Target
	Status Status
	// Digest is the murmur3 fingerprint of the normalized stream, zero when
	// the stream could not be read.
	Digest uint64
	Err    error
}

// Report collects the entries of a RunAll pass.
type Report struct {
	Reference string
	// RefDigest is the fingerprint of the reference stream.
	RefDigest uint64
	Entries   []Entry
}

// Passed reports whether every entry is OK.
func (r Report) Passed() bool {
	return r.Failures() == 0
}

// Failures returns the number of entries that are not OK.
func (r Report) Failures() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status != StatusOK {
			n++
		}
	}
	return n
}

// Normalize strips all whitespace from text.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), "")
}

// Digest returns the murmur3 fingerprint of the normalized text.
func Digest(text string) uint64 {
	return murmur3.Sum64([]byte(Normalize(text)))
}

// Compare reports whether the streams stored under idA and idB hold the same
// digits.
//
// Parameters:
//   - st: The store holding both streams.
//   - idA: The first stream id.
//   - idB: The second stream id.
//
// Returns:
//   - bool: True if both normalized streams are non-empty and equal.
//   - error: An IOError if either stream is unreadable or empty.
func Compare(st store.NumberStore, idA, idB string) (bool, error) {
	a, err := load(st, idA)
	if err != nil {
		return false, err
	}
	b, err := load(st, idB)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

// RunAll compares the reference stream against every target. Each target is
// judged on its own; an error on one does not stop the others. If the
// reference itself is unreadable every entry is an error.
func RunAll(ctx context.Context, st store.NumberStore, reference string, targets []Target) Report {
	report := Report{Reference: reference, Entries: make([]Entry, 0, len(targets))}
	ref, refErr := load(st, reference)
	if refErr == nil {
		report.RefDigest = murmur3.Sum64([]byte(ref))
	}

	for _, t := range targets {
		e := Entry{Target: t}
		if err := ctx.Err(); err != nil {
			e.Status, e.Err = StatusError, err
			report.Entries = append(report.Entries, e)
			continue
		}
		got, err := load(st, t.ID)
		switch {
		case err != nil:
			e.Status, e.Err = StatusError, err
		case refErr != nil:
			e.Status, e.Err = StatusError, refErr
			e.Digest = murmur3.Sum64([]byte(got))
		default:
			e.Digest = murmur3.Sum64([]byte(got))
			if got == ref {
				e.Status = StatusOK
			} else {
				e.Status = StatusFail
			}
		}
		report.Entries = append(report.Entries, e)
	}
	return report
}

// Print writes one line per entry.
func Print(r Report, out io.Writer) {
	for _, e := range r.Entries {
		switch e.Status {
		case StatusOK:
			fmt.Fprintf(out, "[OK] %s matches sequential result (%016x)\n", e.Name, e.Digest)
		case StatusFail:
			fmt.Fprintf(out, "[FAIL] %s differs from sequential result (%016x != %016x)\n", e.Name, e.Digest, r.RefDigest)
		default:
			fmt.Fprintf(out, "[ERROR] %s could not be verified: %v\n", e.Name, e.Err)
		}
	}
}

func load(st store.NumberStore, id string) (string, error) {
	text, err := st.ReadText(id)
	if err != nil {
		return "", err
	}
	norm := Normalize(text)
	if norm == "" {
		return "", apperrors.NewIOError("verify", id, ErrEmpty)
	}
	return norm, nil
}
