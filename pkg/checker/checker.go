package checker

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codesentry/codesentry/internal/shared"
	"github.com/codesentry/codesentry/pkg/baseline"
	"github.com/codesentry/codesentry/pkg/digest"
	"github.com/codesentry/codesentry/pkg/region"
)

// readChunkSize is the buffer size for streaming region bytes into the
// hash state. Large regions are read in chunks so a multi-hundred-MiB
// mapping never needs a matching allocation.
const readChunkSize = 64 * 1024

// Checker runs the enumerate, filter, hash, compare cycle against the
// current process. Construct with New, then call Run on a goroutine the
// caller owns; Run blocks for the lifetime of normal operation.
type Checker struct {
	cfg    Config
	hasher digest.Hasher
	enum   region.Enumerator
	reader region.Reader
	policy region.Policy
	store  *baseline.Store

	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	buf      []byte
}

// New builds a Checker for the build platform. It fails if the config
// is invalid or the platform has no enumerator (the unsupported-platform
// fatal condition).
func New(cfg Config) (*Checker, error) {
	enum, err := region.NewEnumerator()
	if err != nil {
		return nil, fmt.Errorf("checker: %w", err)
	}
	reader, err := region.NewReader()
	if err != nil {
		return nil, fmt.Errorf("checker: %w", err)
	}
	mainImage, err := region.MainImagePath()
	if err != nil {
		return nil, err
	}
	return newWithDeps(cfg, enum, reader, mainImage)
}

// newWithDeps is the injection point used by tests.
func newWithDeps(cfg Config, enum region.Enumerator, reader region.Reader, mainImage string) (*Checker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	hasher, err := digest.New(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return &Checker{
		cfg:    cfg,
		hasher: hasher,
		enum:   enum,
		reader: reader,
		policy: region.Policy{
			SkipLibs:            cfg.SkipLibs,
			IncludeWritableCode: cfg.IncludeWritableCode,
			MainImage:           mainImage,
		},
		store: baseline.NewStore(),
		done:  make(chan struct{}),
		buf:   make([]byte, readChunkSize),
	}, nil
}

// Stop asks a running Run loop to return. It is safe to call from any
// goroutine and more than once. Run returns nil after Stop.
func (c *Checker) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
}

// Close releases the memory reader. Call after Run has returned.
func (c *Checker) Close() error {
	return c.reader.Close()
}

// Run blocks the calling goroutine and executes check cycles until a
// fatal error occurs or Stop is called. onDivergence is invoked
// synchronously, on this goroutine, for every detected divergence; it
// runs zero or more times. Run never returns because of a divergence.
func (c *Checker) Run(onDivergence Callback) error {
	if onDivergence == nil {
		return errors.New("checker: nil divergence callback")
	}
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("checker: already running")
	}
	defer c.running.Store(false)

	// cached is the filtered region list reused across cycles under
	// SearchOnce; nil until the first enumeration.
	var cached []region.Region

	for {
		select {
		case <-c.done:
			return nil
		default:
		}

		cycleStart := time.Now()

		fresh := !c.cfg.SearchOnce || cached == nil
		var regions []region.Region
		if fresh {
			enumerated, err := c.enum.Enumerate()
			if err != nil {
				return &EnumerationError{Err: err}
			}
			regions = region.Filter(enumerated, c.policy)
			if c.cfg.SearchOnce {
				cached = regions
			}
		} else {
			regions = cached
		}

		seen := make(map[region.Identity]struct{}, len(regions))
		var vanished map[region.Identity]struct{}

		for _, r := range regions {
			select {
			case <-c.done:
				return nil
			default:
			}

			d, err := c.hashRegion(r)
			if err != nil {
				// The mapping may have been removed between
				// enumeration and the read (concurrent dlclose).
				// A confirmed absence is a benign race, anything
				// else is systemic.
				gone, cerr := c.confirmAbsent(r.Identity())
				if cerr != nil {
					return cerr
				}
				if !gone {
					return &ReadError{Region: r.Identity(), Err: err}
				}
				c.store.Forget(r.Identity())
				if !fresh {
					if vanished == nil {
						vanished = make(map[region.Identity]struct{})
					}
					vanished[r.Identity()] = struct{}{}
				}
				continue
			}

			id := r.Identity()
			seen[id] = struct{}{}
			out := c.store.Record(id, d, cycleStart)
			if out.Class == baseline.Diverged {
				onDivergence(Event{
					Region:     id,
					Old:        out.Previous,
					New:        d,
					BaselineAt: out.PreviousAt,
					ObservedAt: time.Now(),
				})
			}
		}

		if fresh {
			// Entries for identities gone from the filtered set are
			// pruned unconditionally; disappearance is legitimate.
			c.store.Prune(seen)
		}
		if len(vanished) > 0 {
			cached = dropVanished(cached, vanished)
		}

		// Sleep out the remainder of the period. An overlong cycle
		// starts the next one immediately; missed periods are never
		// caught up with a burst.
		if !shared.SleepWithStop(c.cfg.CheckPeriod-time.Since(cycleStart), c.done) {
			return nil
		}
	}
}

// hashRegion streams the region's bytes through the configured hash.
// The read primitive fails, rather than faulting, when the range is no
// longer mapped.
func (c *Checker) hashRegion(r region.Region) (digest.Digest, error) {
	state := c.hasher.Start()
	addr := r.Start
	remaining := r.Size
	for remaining > 0 {
		n := uint64(len(c.buf))
		if remaining < n {
			n = remaining
		}
		if _, err := c.reader.ReadMemory(c.buf[:n], addr); err != nil {
			return "", err
		}
		state.Write(c.buf[:n])
		addr += n
		remaining -= n
	}
	return c.hasher.Finish(state), nil
}

// confirmAbsent re-enumerates and reports whether the identity is gone
// from the current mapping. An enumeration failure here is fatal.
func (c *Checker) confirmAbsent(id region.Identity) (bool, error) {
	current, err := c.enum.Enumerate()
	if err != nil {
		return false, &EnumerationError{Err: err}
	}
	for _, r := range current {
		if r.Identity() == id {
			return false, nil
		}
	}
	return true, nil
}

func dropVanished(regions []region.Region, vanished map[region.Identity]struct{}) []region.Region {
	kept := regions[:0]
	for _, r := range regions {
		if _, ok := vanished[r.Identity()]; !ok {
			kept = append(kept, r)
		}
	}
	return kept
}
