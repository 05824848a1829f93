// File: internal/common/viewstate.go
package common

import "sync"

// ActionSequencer tags every user-triggered view-model action with a
// monotonically increasing sequence number. A completion whose number is no
// longer the latest issued must be discarded, so a slow earlier request can
// never overwrite the result of a later one.
type ActionSequencer struct {
	mu     sync.Mutex
	issued uint64
}

// Next issues the sequence number for a newly triggered action.
func (s *ActionSequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// IsLatest reports whether seq is still the most recently issued number.
func (s *ActionSequencer) IsLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.issued
}
