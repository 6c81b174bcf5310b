// Package shared provides small utility functions used by both the
// checker core and the codesentry command-line binary.
package shared

import (
	"fmt"
	"time"
)

// SleepWithStop sleeps for d but returns early if stop is closed.
// It returns false when the sleep was interrupted by stop, true
// otherwise. A non-positive d only polls the stop channel.
func SleepWithStop(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	}
}

// FormatBytes renders a byte count in binary units for human output.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
