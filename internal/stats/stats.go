// Package stats accumulates per-run fuzzing statistics.
package stats

import "sort"

// Statistics counts dispatched input codes. It has a single owner and is not
// safe for concurrent use.
type Statistics struct {
	count  uint64
	unique map[uint16]struct{}
}

// New returns empty statistics.
func New() *Statistics {
	return &Statistics{unique: make(map[uint16]struct{})}
}

// Record notes one dispatched code.
func (s *Statistics) Record(code uint16) {
	s.count++
	s.unique[code] = struct{}{}
}

// Count is the number of recorded dispatches.
func (s *Statistics) Count() uint64 {
	return s.count
}

// Unique is the number of distinct codes recorded. It never exceeds Count.
func (s *Statistics) Unique() int {
	return len(s.unique)
}

func (s *Statistics) Contains(code uint16) bool {
	_, ok := s.unique[code]
	return ok
}

// Codes returns the distinct recorded codes in ascending order.
func (s *Statistics) Codes() []uint16 {
	codes := make([]uint16, 0, len(s.unique))
	for code := range s.unique {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
