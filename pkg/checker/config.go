package checker

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codesentry/codesentry/pkg/digest"
)

// Config holds the checker options. It is constructed once, before the
// loop starts, and never mutated mid-run.
type Config struct {
	// SkipLibs restricts checking to the main executable image. This
	// is also the recommended mitigation for unload races: the main
	// image is not expected to be unmapped during process lifetime.
	SkipLibs bool

	// SearchOnce enumerates regions only on the first cycle and reuses
	// the cached filtered set afterwards, trading responsiveness to
	// module load/unload for lower per-cycle cost.
	SearchOnce bool

	// IncludeWritableCode also hashes regions mapped both writable and
	// executable (JIT, self-modifying code).
	IncludeWritableCode bool

	// CheckPeriod is the minimum spacing between cycle starts.
	CheckPeriod time.Duration

	// Algorithm selects the digest strategy, fixed for the run.
	Algorithm digest.Algorithm
}

// DefaultConfig returns the documented defaults: full enumeration every
// second, libraries included, writable code excluded, SHA-256 digests.
func DefaultConfig() Config {
	return Config{
		CheckPeriod: time.Second,
		Algorithm:   digest.SHA256,
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	if c.CheckPeriod <= 0 {
		return fmt.Errorf("checker: check period must be positive, got %v", c.CheckPeriod)
	}
	if _, err := digest.ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	return nil
}

// fileConfig is the YAML-facing shape of Config. CheckPeriod is a
// duration string ("500ms", "2s") in the file.
type fileConfig struct {
	SkipLibs            *bool  `yaml:"skip_libs"`
	SearchOnce          *bool  `yaml:"search_once"`
	IncludeWritableCode *bool  `yaml:"include_writable_code"`
	CheckPeriod         string `yaml:"check_period"`
	Algorithm           string `yaml:"algorithm"`
}

// LoadConfig reads a YAML config file and overlays it on the defaults.
// Absent keys keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("checker: read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("checker: parse config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if fc.SkipLibs != nil {
		cfg.SkipLibs = *fc.SkipLibs
	}
	if fc.SearchOnce != nil {
		cfg.SearchOnce = *fc.SearchOnce
	}
	if fc.IncludeWritableCode != nil {
		cfg.IncludeWritableCode = *fc.IncludeWritableCode
	}
	if fc.CheckPeriod != "" {
		d, err := time.ParseDuration(fc.CheckPeriod)
		if err != nil {
			return Config{}, fmt.Errorf("checker: bad check_period %q: %w", fc.CheckPeriod, err)
		}
		cfg.CheckPeriod = d
	}
	if fc.Algorithm != "" {
		algo, err := digest.ParseAlgorithm(fc.Algorithm)
		if err != nil {
			return Config{}, err
		}
		cfg.Algorithm = algo
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
