package telemetry

import "sync"

// Shared is a snapshot guarded for one writer and many readers.
type Shared struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewShared creates an empty shared snapshot.
func NewShared() *Shared {
	return &Shared{}
}

// Update runs fn with exclusive access to the snapshot.
func (s *Shared) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
}

// Read returns a copy of the latest snapshot.
func (s *Shared) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone()
}

// Consume publishes the update's snapshot. It lets the decode loop feed
// readers on other goroutines.
func (s *Shared) Consume(u Update) error {
	if u.Snapshot == nil {
		return nil
	}
	c := u.Snapshot.Clone()
	s.mu.Lock()
	s.snap = c
	s.mu.Unlock()
	return nil
}
