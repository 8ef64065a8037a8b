package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]NumberStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir(), WithSeed(42))
	require.NoError(t, err)
	return map[string]NumberStore{
		"file":   fs,
		"memory": NewMemoryStore(WithSeed(42)),
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			seq, err := s.Generate(FirstNumber, 50)
			require.NoError(t, err)
			require.Len(t, seq, 50)
			assert.NotZero(t, seq[49], "most-significant digit must be nonzero")
			require.NoError(t, seq.Validate())

			back, err := s.ReadAll(FirstNumber)
			require.NoError(t, err)
			assert.Equal(t, seq, back)

			text, err := s.ReadText(FirstNumber)
			require.NoError(t, err)
			assert.Equal(t, FormatOperand(seq), text)

			_, err = s.Generate(SecondNumber, 0)
			var cfgErr apperrors.ConfigError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	t.Parallel()
	a, _ := NewMemoryStore(WithSeed(7)).Generate(FirstNumber, 30)
	b, _ := NewMemoryStore(WithSeed(7)).Generate(FirstNumber, 30)
	assert.Equal(t, a, b)
}

func TestReadRangeZeroPads(t *testing.T) {
	t.Parallel()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Write(StandardResult, digits.Sequence{1, 2, 3}))

			got, err := s.ReadRange(StandardResult, 1, 4)
			require.NoError(t, err)
			assert.Equal(t, digits.Sequence{2, 3, 0, 0}, got)

			got, err = s.ReadRange(StandardResult, 5, 2)
			require.NoError(t, err)
			assert.Equal(t, digits.Sequence{0, 0}, got)

			_, err = s.ReadRange(StandardResult, -1, 2)
			assert.Error(t, err)
		})
	}
}

func TestMissingRecordIsIOError(t *testing.T) {
	t.Parallel()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.ReadAll("nothere")
			var ioErr apperrors.IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Contains(t, err.Error(), "nothere")
		})
	}
}

func TestWriteFormat(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Write(Reference, digits.MustParse("1000")))

	raw, err := os.ReadFile(filepath.Join(dir, "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0 0 0 1\n", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestParseOperand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		want    digits.Sequence
		wantErr bool
	}{
		{"operand record", "3\n1 2 3 \n", digits.Sequence{1, 2, 3}, false},
		{"single digit operand", "1\n7\n", digits.Sequence{7}, false},
		{"digits over several lines", "3\n1\n2\n3\n", digits.Sequence{1, 2, 3}, false},
		{"count mismatch", "4\n1 2 3\n", nil, true},
		{"missing header", "1 2 3\n", nil, true},
		{"negative count", "-1\n1\n", nil, true},
		{"bad digit", "2\n1 x\n", nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOperand(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		text    string
		want    digits.Sequence
		wantErr bool
	}{
		{"result record", "1 2 3\n", digits.Sequence{1, 2, 3}, false},
		{"single digit result", "7\n", digits.Sequence{7}, false},
		{"one digit per line", "1\n2\n3", digits.Sequence{1, 2, 3}, false},
		{"empty", "", digits.Sequence{}, false},
		{"bad digit", "1 x 3\n", nil, true},
		{"multi-char token", "12 3\n", nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseResult(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestReadAllResultOnePerLine reads a result record that lists one digit per
// line. Its first line must not be mistaken for a count header.
func TestReadAllResultOnePerLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fs.Path(Reference), []byte("1\n2\n3"), 0o644))

	got, err := fs.ReadAll(Reference)
	require.NoError(t, err)
	assert.Equal(t, digits.Sequence{1, 2, 3}, got)

	require.NoError(t, os.WriteFile(fs.Path(FirstNumber), []byte("1\n2\n3"), 0o644))
	_, err = fs.ReadAll(FirstNumber)
	var ioErr apperrors.IOError
	assert.ErrorAs(t, err, &ioErr, "an operand record keeps its count header")
}

func TestRecordLayoutFollowsID(t *testing.T) {
	t.Parallel()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			seq := digits.Sequence{4, 0, 2}
			require.NoError(t, s.Write(SecondNumber, seq))
			require.NoError(t, s.Write(OptimizedResult, seq))

			text, err := s.ReadText(SecondNumber)
			require.NoError(t, err)
			assert.Equal(t, FormatOperand(seq), text)
			text, err = s.ReadText(OptimizedResult)
			require.NoError(t, err)
			assert.Equal(t, FormatResult(seq), text)

			for _, id := range []string{SecondNumber, OptimizedResult} {
				back, err := s.ReadAll(id)
				require.NoError(t, err)
				assert.Equal(t, seq, back)
			}
		})
	}
}

func TestMemoryStorePutAndIDs(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	s.Put(SecondNumber, digits.MustParse("01"))
	require.NoError(t, s.Write(AsyncResult, digits.Sequence{4}))
	assert.Equal(t, []string{AsyncResult, SecondNumber}, s.IDs())

	_, err := s.ReadText("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestStore_RoundTrip checks that any written sequence reads back unchanged
// from both stores.
func TestStore_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ms := NewMemoryStore()

	properties.Property("Write then ReadAll is identity", prop.ForAll(
		func(raw []int) bool {
			seq := digits.Sequence(raw)
			for _, s := range []NumberStore{fs, ms} {
				if err := s.Write(ScatterResult, seq); err != nil {
					return false
				}
				back, err := s.ReadAll(ScatterResult)
				if err != nil || len(back) != len(seq) {
					return false
				}
				for i := range seq {
					if back[i] != seq[i] {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}
