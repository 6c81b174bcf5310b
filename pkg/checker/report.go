package checker

import (
	"fmt"
	"time"

	"github.com/codesentry/codesentry/pkg/digest"
	"github.com/codesentry/codesentry/pkg/region"
)

// Event describes one detected divergence: a region whose digest
// changed between two consecutive cycles in which it was present,
// filtered-in and hashed. It is an immutable value snapshot; it never
// retains references into process memory beyond the digest strings.
type Event struct {
	// Region identifies the diverged mapping.
	Region region.Identity
	// Old is the digest recorded at BaselineAt.
	Old digest.Digest
	// New is the digest just computed.
	New digest.Digest
	// BaselineAt is when Old was recorded.
	BaselineAt time.Time
	// ObservedAt is when the divergence was detected.
	ObservedAt time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("region %s diverged: %s (recorded %s) -> %s",
		e.Region, e.Old, e.BaselineAt.Format(time.RFC3339), e.New)
}

// Callback receives divergence events. It runs synchronously on the
// goroutine executing Run, so it observes a consistent snapshot, and it
// must not block indefinitely or all future checks stall.
type Callback func(Event)
