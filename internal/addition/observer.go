package addition

import "sync"

// ProgressUpdate is one progress event: how much of a strategy's result the
// coordinator has collected so far.
type ProgressUpdate struct {
	// Index identifies the strategy run among those of one invocation.
	Index int
	// Value is the collected fraction, from 0.0 to 1.0.
	Value float64
}

// ProgressObserver receives progress events.
type ProgressObserver interface {
	// Update is called when progress changes.
	//
	// Parameters:
	//   - index: The strategy run identifier.
	//   - progress: The collected fraction (0.0 to 1.0).
	Update(index int, progress float64)
}

// ProgressSubject fans progress events out to registered observers, in
// registration order. It is safe for concurrent use.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. A nil observer is ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes an observer if present.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify sends an update to every observer synchronously.
//
// Parameters:
//   - index: The strategy run identifier.
//   - progress: The collected fraction (0.0 to 1.0).
func (s *ProgressSubject) Notify(index int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, observer := range s.observers {
		observer.Update(index, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}
