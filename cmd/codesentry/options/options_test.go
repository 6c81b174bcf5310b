package options

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/codesentry/codesentry/pkg/digest"
)

func parse(t *testing.T, args ...string) (*Flags, *pflag.FlagSet) {
	t.Helper()
	f := &Flags{}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Register(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return f, fs
}

func TestResolveDefaults(t *testing.T) {
	f, fs := parse(t)
	cfg, err := f.Resolve(fs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.CheckPeriod != time.Second {
		t.Errorf("CheckPeriod = %v, want 1s", cfg.CheckPeriod)
	}
	if cfg.Algorithm != digest.SHA256 {
		t.Errorf("Algorithm = %q, want sha256", cfg.Algorithm)
	}
	if cfg.SkipLibs || cfg.SearchOnce || cfg.IncludeWritableCode {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestResolveFlags(t *testing.T) {
	f, fs := parse(t, "--skip-libs", "--period", "100ms", "--algorithm", "crc64")
	cfg, err := f.Resolve(fs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !cfg.SkipLibs {
		t.Error("skip-libs flag not applied")
	}
	if cfg.CheckPeriod != 100*time.Millisecond {
		t.Errorf("CheckPeriod = %v, want 100ms", cfg.CheckPeriod)
	}
	if cfg.Algorithm != digest.CRC64 {
		t.Errorf("Algorithm = %q, want crc64", cfg.Algorithm)
	}
}

func TestResolveFlagOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codesentry.yaml")
	content := "check_period: 5s\nskip_libs: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f, fs := parse(t, "--config", path, "--period", "200ms")
	cfg, err := f.Resolve(fs)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.CheckPeriod != 200*time.Millisecond {
		t.Errorf("CheckPeriod = %v, explicit flag must beat the file", cfg.CheckPeriod)
	}
	if !cfg.SkipLibs {
		t.Error("file-set skip_libs must survive when the flag is untouched")
	}
}

func TestResolveBadAlgorithm(t *testing.T) {
	f, fs := parse(t, "--algorithm", "md5")
	if _, err := f.Resolve(fs); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
