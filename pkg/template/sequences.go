package template

import "sync"

// SequenceStore manages named auto-incrementing counters backing
// {{sequence("name")}} expressions. Safe for concurrent use.
type SequenceStore struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequenceStore creates an empty sequence store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{values: make(map[string]int64)}
}

// Next returns the current value of the named sequence and increments
// it. A sequence seen for the first time begins at start.
func (s *SequenceStore) Next(name string, start int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[name]; !ok {
		s.values[name] = start
	}
	v := s.values[name]
	s.values[name]++
	return v
}

// Reset removes a sequence so the next call to Next starts it over.
func (s *SequenceStore) Reset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
}

// Current reads a sequence without advancing it. Unknown sequences
// report zero.
func (s *SequenceStore) Current(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name]
}
