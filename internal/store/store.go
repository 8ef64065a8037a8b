// Package store persists the numbers the adder works on: the two generated
// operands, the sequential reference sum and one sum per strategy.
//
// Numbers are kept as text, least-significant digit first, digits separated
// by single spaces. Operand records start with a line holding the digit
// count; result records are the digit line alone. FileStore keeps one file
// per record in a directory, MemoryStore keeps the same text in memory.
package store

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/logging"
)

// Well-known record ids.
const (
	FirstNumber     = "firstNumber"
	SecondNumber    = "secondNumber"
	Reference       = "result"
	StandardResult  = "result1"
	ScatterResult   = "resultScatter"
	AsyncResult     = "resultAsync"
	OptimizedResult = "resultOptimized"
)

// NumberStore is the persistence collaborator of the adder.
type NumberStore interface {
	// Generate creates count random digits with a nonzero most-significant
	// digit, stores them as an operand record under id and returns them.
	Generate(id string, count int) (digits.Sequence, error)
	// ReadAll returns every digit stored under id.
	ReadAll(id string) (digits.Sequence, error)
	// ReadRange returns length digits starting at offset. Positions past the
	// stored length read as zero.
	ReadRange(id string, offset, length int) (digits.Sequence, error)
	// Write stores seq as a result record under id, replacing any previous one.
	Write(id string, seq digits.Sequence) error
	// ReadText returns the raw stored text of id.
	ReadText(id string) (string, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	seed   int64
	logger logging.Logger
}

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger used for store events.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{seed: time.Now().UnixNano(), logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// generator draws operand digits from a seeded source.
type generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newGenerator(seed int64) *generator {
	return &generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *generator) digits(count int) digits.Sequence {
	g.mu.Lock()
	defer g.mu.Unlock()
	seq := make(digits.Sequence, count)
	for i := 0; i < count-1; i++ {
		seq[i] = g.rng.Intn(digits.Base)
	}
	seq[count-1] = g.rng.Intn(digits.Base-1) + 1
	return seq
}

// FormatOperand renders an operand record: the digit count, a newline, then
// the digits.
func FormatOperand(seq digits.Sequence) string {
	return strconv.Itoa(len(seq)) + "\n" + FormatResult(seq)
}

// FormatResult renders a result record: the digits, space separated, least
// significant first, followed by a newline.
func FormatResult(seq digits.Sequence) string {
	var b strings.Builder
	b.Grow(2*len(seq) + 1)
	for i, d := range seq {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(byte('0' + d))
	}
	b.WriteByte('\n')
	return b.String()
}

// IsOperand reports whether id names an input record. Input records carry a
// digit-count header; every other record is a bare result.
func IsOperand(id string) bool { return id == FirstNumber || id == SecondNumber }

// formatRecord renders seq in the layout id is stored in.
func formatRecord(id string, seq digits.Sequence) string {
	if IsOperand(id) {
		return FormatOperand(seq)
	}
	return FormatResult(seq)
}

// parseRecord reads text in the layout id is stored in.
func parseRecord(id, text string) (digits.Sequence, error) {
	if IsOperand(id) {
		return ParseOperand(text)
	}
	return ParseResult(text)
}

// ParseOperand reads an operand record. The first line is the digit count
// and must match the digits that follow.
//
// Parameters:
//   - text: The stored record.
//
// Returns:
//   - digits.Sequence: The digits, least-significant first.
//   - error: An error for a missing or mismatched header or a bad digit.
func ParseOperand(text string) (digits.Sequence, error) {
	head, body, _ := strings.Cut(strings.TrimSpace(text), "\n")
	count, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("bad digit count %q", head)
	}
	seq, err := ParseResult(body)
	if err != nil {
		return nil, err
	}
	if count != len(seq) {
		return nil, fmt.Errorf("header declares %d digits, found %d", count, len(seq))
	}
	return seq, nil
}

// ParseResult reads a result record: whitespace-separated digits, least
// significant first, in any line layout.
func ParseResult(text string) (digits.Sequence, error) {
	fields := strings.Fields(text)
	seq := make(digits.Sequence, len(fields))
	for i, f := range fields {
		if len(f) != 1 || f[0] < '0' || f[0] > '9' {
			return nil, fmt.Errorf("bad digit %q at position %d", f, i)
		}
		seq[i] = int(f[0] - '0')
	}
	return seq, nil
}

// window copies length digits of seq starting at offset, zero-padding past
// the end.
func window(seq digits.Sequence, offset, length int) (digits.Sequence, error) {
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("bad range offset=%d length=%d", offset, length)
	}
	out := make(digits.Sequence, length)
	if offset < len(seq) {
		copy(out, seq[offset:])
	}
	return out, nil
}
