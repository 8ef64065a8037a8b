package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
	"github.com/agbru/bigadd/internal/logging"
)

// FileStore keeps each record in <dir>/<id>.txt.
type FileStore struct {
	dir    string
	gen    *generator
	logger logging.Logger
}

var _ NumberStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at dir, creating the directory if
// needed.
//
// Parameters:
//   - dir: The directory holding the record files.
//   - opts: Optional seed and logger.
//
// Returns:
//   - *FileStore: The store.
//   - error: An IOError if dir cannot be created.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewIOError("mkdir", dir, err)
	}
	o := buildOptions(opts)
	return &FileStore{dir: dir, gen: newGenerator(o.seed), logger: o.logger}, nil
}

// Path returns the file backing id.
func (s *FileStore) Path(id string) string {
	return filepath.Join(s.dir, id+".txt")
}

// Generate creates and stores a random operand.
func (s *FileStore) Generate(id string, count int) (digits.Sequence, error) {
	if count < 1 {
		return nil, apperrors.NewConfigError("cannot generate %d digits", count)
	}
	seq := s.gen.digits(count)
	if err := s.writeFile(id, formatRecord(id, seq)); err != nil {
		return nil, err
	}
	s.logger.Debug("generated operand", logging.String("id", id), logging.Int("digits", count))
	return seq, nil
}

// ReadAll returns every digit of id.
func (s *FileStore) ReadAll(id string) (digits.Sequence, error) {
	text, err := s.ReadText(id)
	if err != nil {
		return nil, err
	}
	seq, err := parseRecord(id, text)
	if err != nil {
		return nil, apperrors.NewIOError("parse", s.Path(id), err)
	}
	return seq, nil
}

// ReadRange returns a zero-padded window of id.
func (s *FileStore) ReadRange(id string, offset, length int) (digits.Sequence, error) {
	seq, err := s.ReadAll(id)
	if err != nil {
		return nil, err
	}
	out, err := window(seq, offset, length)
	if err != nil {
		return nil, apperrors.NewIOError("read", s.Path(id), err)
	}
	return out, nil
}

// Write stores seq in the layout of id.
func (s *FileStore) Write(id string, seq digits.Sequence) error {
	return s.writeFile(id, formatRecord(id, seq))
}

// ReadText returns the raw contents of id.
func (s *FileStore) ReadText(id string) (string, error) {
	b, err := os.ReadFile(s.Path(id))
	if err != nil {
		return "", apperrors.NewIOError("read", s.Path(id), err)
	}
	return string(b), nil
}

// writeFile replaces the record atomically through a temporary file.
func (s *FileStore) writeFile(id, text string) error {
	path := s.Path(id)
	tmp, err := os.CreateTemp(s.dir, id+".*.tmp")
	if err != nil {
		return apperrors.NewIOError("write", path, err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return apperrors.NewIOError("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewIOError("write", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewIOError("write", path, fmt.Errorf("rename: %w", err))
	}
	return nil
}
