package repositories

import (
	"sync"
	"time"
)

// sequencer serializes appends and hands out commit timestamps that are
// strictly increasing, even when the wall clock stalls or steps back.
// resolution is the precision kept by the backend (1ns for badger, 1µs for postgres).
type sequencer struct {
	mu         sync.Mutex
	now        func() time.Time
	resolution time.Duration
	last       time.Time
}

func newSequencer(now func() time.Time, resolution time.Duration) *sequencer {
	if now == nil {
		now = time.Now
	}
	return &sequencer{now: now, resolution: resolution}
}

// commit runs write with the next timestamp while holding the append lock.
// The timestamp is only consumed when write succeeds. It is rounded up to the
// resolution so it never precedes the moment commit was called.
func (s *sequencer) commit(write func(at time.Time) error) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	at := now.Truncate(s.resolution)
	if at.Before(now) {
		at = at.Add(s.resolution)
	}
	if !at.After(s.last) {
		at = s.last.Add(s.resolution)
	}
	if err := write(at); err != nil {
		return time.Time{}, err
	}
	s.last = at
	return at, nil
}
