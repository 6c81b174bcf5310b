package checker

import (
	"fmt"

	"github.com/codesentry/codesentry/pkg/region"
)

// EnumerationError is the fatal failure of the OS memory-enumeration
// capability: the underlying query itself failed, as opposed to a
// single region legitimately disappearing.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("checker: memory enumeration failed: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// ReadError is the fatal failure to read a region's bytes while a fresh
// enumeration still shows the region as mapped. A read failure for a
// region that has genuinely vanished is never surfaced this way; it is
// tolerated as a transient race skip.
type ReadError struct {
	Region region.Identity
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("checker: read of mapped region %s failed: %v", e.Region, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
