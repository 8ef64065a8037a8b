package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/agbru/bigadd/internal/digits"
	apperrors "github.com/agbru/bigadd/internal/errors"
)

// ErrNotFound is the cause of an IOError for an id that was never stored.
var ErrNotFound = errors.New("record not found")

// MemoryStore keeps records in memory, in the same text format as FileStore.
// The HTTP service uses one per request.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
	gen     *generator
}

var _ NumberStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{records: make(map[string]string), gen: newGenerator(o.seed)}
}

// Put stores seq in the layout of id, for callers that supply their own
// numbers instead of generating them.
func (s *MemoryStore) Put(id string, seq digits.Sequence) {
	s.put(id, formatRecord(id, seq))
}

// Generate creates and stores a random operand.
func (s *MemoryStore) Generate(id string, count int) (digits.Sequence, error) {
	if count < 1 {
		return nil, apperrors.NewConfigError("cannot generate %d digits", count)
	}
	seq := s.gen.digits(count)
	s.put(id, formatRecord(id, seq))
	return seq, nil
}

// ReadAll returns every digit of id.
func (s *MemoryStore) ReadAll(id string) (digits.Sequence, error) {
	text, err := s.ReadText(id)
	if err != nil {
		return nil, err
	}
	seq, err := parseRecord(id, text)
	if err != nil {
		return nil, apperrors.NewIOError("parse", id, err)
	}
	return seq, nil
}

// ReadRange returns a zero-padded window of id.
func (s *MemoryStore) ReadRange(id string, offset, length int) (digits.Sequence, error) {
	seq, err := s.ReadAll(id)
	if err != nil {
		return nil, err
	}
	out, err := window(seq, offset, length)
	if err != nil {
		return nil, apperrors.NewIOError("read", id, err)
	}
	return out, nil
}

// Write stores seq in the layout of id.
func (s *MemoryStore) Write(id string, seq digits.Sequence) error {
	s.put(id, formatRecord(id, seq))
	return nil
}

// ReadText returns the raw text of id.
func (s *MemoryStore) ReadText(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.records[id]
	if !ok {
		return "", apperrors.NewIOError("read", id, ErrNotFound)
	}
	return text, nil
}

// IDs lists the stored ids in sorted order.
func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) put(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = text
}
