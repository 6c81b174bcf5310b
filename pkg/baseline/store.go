// Package baseline owns the prior-cycle digests of hashed regions and
// classifies each region's current state against them. The store is
// in-memory only and exclusively owned by the checker loop; persisting
// it would make the baseline itself a tampering target.
package baseline

import (
	"sync"
	"time"

	"github.com/codesentry/codesentry/pkg/digest"
	"github.com/codesentry/codesentry/pkg/region"
)

// Class is the classification of one region sample against the store.
type Class int

const (
	// FirstSeen means no prior entry existed for this identity.
	FirstSeen Class = iota
	// Unchanged means the digest matches the prior entry.
	Unchanged
	// Diverged means the digest differs from the prior entry for the
	// same identity: the region's bytes changed in place.
	Diverged
)

func (c Class) String() string {
	switch c {
	case FirstSeen:
		return "first-seen"
	case Unchanged:
		return "unchanged"
	case Diverged:
		return "diverged"
	default:
		return "unknown"
	}
}

// Entry is the stored state for one region identity.
type Entry struct {
	Digest     digest.Digest
	FirstSeen  time.Time
	RecordedAt time.Time
}

// Outcome is the result of recording one sample. Previous and
// PreviousAt are set only for Diverged.
type Outcome struct {
	Class      Class
	Previous   digest.Digest
	PreviousAt time.Time
}

// Store maps region identities to their last recorded digest. Mutation
// happens only on the checker loop; the lock makes read access from
// other goroutines safe.
type Store struct {
	mu      sync.Mutex
	entries map[region.Identity]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[region.Identity]Entry)}
}

// Record classifies the sample against the stored entry and updates the
// store. A Diverged outcome overwrites the stored digest, so a change
// is reported once, on the transition, not on every following cycle.
func (s *Store) Record(id region.Identity, d digest.Digest, now time.Time) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[id]
	if !ok {
		s.entries[id] = Entry{Digest: d, FirstSeen: now, RecordedAt: now}
		return Outcome{Class: FirstSeen}
	}

	out := Outcome{Class: Unchanged}
	if prev.Digest != d {
		out = Outcome{Class: Diverged, Previous: prev.Digest, PreviousAt: prev.RecordedAt}
	}
	s.entries[id] = Entry{Digest: d, FirstSeen: prev.FirstSeen, RecordedAt: now}
	return out
}

// Prune drops every entry whose identity is absent from seen.
// Disappearance is legitimate (library unload, permission change) and
// never reported.
func (s *Store) Prune(seen map[region.Identity]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		if _, ok := seen[id]; !ok {
			delete(s.entries, id)
		}
	}
}

// Forget drops a single entry, used when a fresh enumeration has
// confirmed a cached region's absence.
func (s *Store) Forget(id region.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Lookup returns the stored entry for an identity, if any.
func (s *Store) Lookup(id region.Identity) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// Len returns the number of tracked identities.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
