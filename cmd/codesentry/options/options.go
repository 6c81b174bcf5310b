// Package options holds the flag surface shared by the watch and bench
// commands and resolves it into a checker configuration.
package options

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/codesentry/codesentry/pkg/checker"
	"github.com/codesentry/codesentry/pkg/digest"
)

// Flags mirrors the checker configuration one to one.
type Flags struct {
	ConfigFile          string
	SkipLibs            bool
	SearchOnce          bool
	IncludeWritableCode bool
	CheckPeriod         time.Duration
	Algorithm           string
}

// Register wires the flags into a command's flag set.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Path to a YAML config file")
	fs.BoolVar(&f.SkipLibs, "skip-libs", false, "Check only the main executable image")
	fs.BoolVar(&f.SearchOnce, "search-once", false, "Enumerate memory regions once instead of every cycle")
	fs.BoolVar(&f.IncludeWritableCode, "include-writable-code", false, "Also hash writable executable regions (JIT code)")
	fs.DurationVar(&f.CheckPeriod, "period", time.Second, "Minimum spacing between cycle starts")
	fs.StringVar(&f.Algorithm, "algorithm", string(digest.SHA256), "Digest strategy: sha256 or crc64")
}

// Resolve builds the configuration: defaults, then the config file if
// given, then any flag the user set explicitly.
func (f *Flags) Resolve(fs *pflag.FlagSet) (checker.Config, error) {
	cfg := checker.DefaultConfig()

	if f.ConfigFile != "" {
		loaded, err := checker.LoadConfig(f.ConfigFile)
		if err != nil {
			return checker.Config{}, err
		}
		cfg = loaded
	}

	if fs.Changed("skip-libs") {
		cfg.SkipLibs = f.SkipLibs
	}
	if fs.Changed("search-once") {
		cfg.SearchOnce = f.SearchOnce
	}
	if fs.Changed("include-writable-code") {
		cfg.IncludeWritableCode = f.IncludeWritableCode
	}
	if fs.Changed("period") {
		cfg.CheckPeriod = f.CheckPeriod
	}
	if fs.Changed("algorithm") {
		algo, err := digest.ParseAlgorithm(f.Algorithm)
		if err != nil {
			return checker.Config{}, err
		}
		cfg.Algorithm = algo
	}

	if err := cfg.Validate(); err != nil {
		return checker.Config{}, err
	}
	return cfg, nil
}
