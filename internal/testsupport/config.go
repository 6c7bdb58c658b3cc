package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sessionprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.DestDir = filepath.Join(base, "dest")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ArtifactFile = ""
	cfgVal.TrialLog.File = filepath.Join(base, "trial_log.csv")
	cfgVal.Journal.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithZone overrides the civil timezone on the test config.
func WithZone(zone string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Time.Zone = zone
	}
}

// WithArtifact seeds an artifact file under the test base directory and
// points the config at it.
func WithArtifact(name string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, name)
		WriteFile(b.t, path, 64)
		b.cfg.Paths.ArtifactFile = path
	}
}

// WithIntrinsics seeds an intrinsics footage directory containing the named
// files and points the config at it.
func WithIntrinsics(files ...string) ConfigOption {
	return func(b *configBuilder) {
		dir := filepath.Join(b.baseDir, "intrinsics")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir intrinsics dir: %v", err)
		}
		for _, name := range files {
			WriteFile(b.t, filepath.Join(dir, name), 32)
		}
		b.cfg.Paths.IntrinsicsDir = dir
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffprobe is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}
