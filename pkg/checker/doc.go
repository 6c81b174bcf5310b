// Package checker implements periodic self-integrity checking of the
// current process's executable memory. A Checker repeatedly enumerates
// the process's mapped regions, filters them down to the executable
// pages the configuration selects, hashes their bytes, and compares the
// digests against the previous cycle's baseline. Divergences are
// delivered synchronously to a caller-supplied callback; the loop
// itself returns only on a fatal, non-memory error or after an explicit
// Stop.
package checker
