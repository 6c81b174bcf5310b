package region

// Policy selects which enumerated regions are subject to hashing.
// It is fixed before the checker starts and never mutated mid-run.
type Policy struct {
	// SkipLibs restricts checking to regions backed by MainImage,
	// dropping shared libraries and kernel pseudo-mappings.
	SkipLibs bool

	// IncludeWritableCode also keeps regions mapped both writable and
	// executable (JIT or self-modifying code). Off by default: such
	// regions legitimately change and would flood the caller with
	// false divergences.
	IncludeWritableCode bool

	// MainImage is the resolved path of the process's own executable,
	// consulted only when SkipLibs is set.
	MainImage string
}

// Filter returns the subset of regions the policy keeps. It is pure:
// no side effects, deterministic for equal input, and the input slice
// is never modified.
func Filter(regions []Region, p Policy) []Region {
	kept := make([]Region, 0, len(regions))
	for _, r := range regions {
		if !r.Executable {
			continue
		}
		if r.Writable && !p.IncludeWritableCode {
			continue
		}
		if p.SkipLibs && r.Module != p.MainImage {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
