package checker

import (
	"time"

	"github.com/codesentry/codesentry/pkg/digest"
	"github.com/codesentry/codesentry/pkg/region"
)

// VariantResult holds the measured cost of one full enumerate, filter,
// hash pass under one option combination.
type VariantResult struct {
	SkipLibs            bool
	IncludeWritableCode bool

	EnumerateTime time.Duration
	FilterTime    time.Duration
	HashTime      time.Duration

	// Regions and Bytes count what the variant's filter kept and
	// hashed. SkippedReads counts regions that vanished between
	// enumeration and read.
	Regions      int
	Bytes        uint64
	SkippedReads int
}

// BenchmarkResult aggregates the variant measurements of one Benchmark
// call, used to tune CheckPeriod and the other options for a workload.
type BenchmarkResult struct {
	Algorithm digest.Algorithm
	Variants  []VariantResult
}

// Benchmark runs the pipeline once for every combination of SkipLibs
// and IncludeWritableCode under the configured hash algorithm. It is
// strictly observational: it never touches the baseline and never
// invokes a divergence callback. It fails with the same fatal-error
// taxonomy as Run.
func (c *Checker) Benchmark() (BenchmarkResult, error) {
	result := BenchmarkResult{Algorithm: c.cfg.Algorithm}

	for _, skipLibs := range []bool{false, true} {
		for _, includeWritable := range []bool{false, true} {
			vr, err := c.benchmarkVariant(region.Policy{
				SkipLibs:            skipLibs,
				IncludeWritableCode: includeWritable,
				MainImage:           c.policy.MainImage,
			})
			if err != nil {
				return BenchmarkResult{}, err
			}
			result.Variants = append(result.Variants, vr)
		}
	}
	return result, nil
}

func (c *Checker) benchmarkVariant(p region.Policy) (VariantResult, error) {
	vr := VariantResult{
		SkipLibs:            p.SkipLibs,
		IncludeWritableCode: p.IncludeWritableCode,
	}

	t0 := time.Now()
	enumerated, err := c.enum.Enumerate()
	if err != nil {
		return VariantResult{}, &EnumerationError{Err: err}
	}
	t1 := time.Now()
	regions := region.Filter(enumerated, p)
	t2 := time.Now()

	for _, r := range regions {
		if _, err := c.hashRegion(r); err != nil {
			gone, cerr := c.confirmAbsent(r.Identity())
			if cerr != nil {
				return VariantResult{}, cerr
			}
			if !gone {
				return VariantResult{}, &ReadError{Region: r.Identity(), Err: err}
			}
			vr.SkippedReads++
			continue
		}
		vr.Regions++
		vr.Bytes += r.Size
	}
	t3 := time.Now()

	vr.EnumerateTime = t1.Sub(t0)
	vr.FilterTime = t2.Sub(t1)
	vr.HashTime = t3.Sub(t2)
	return vr, nil
}
