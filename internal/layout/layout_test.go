package layout_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"sessionprep/internal/layout"
	"sessionprep/internal/logging"
)

func newBuilder(t *testing.T, artifact string) (*layout.Builder, string) {
	t.Helper()
	root := t.TempDir()
	return layout.NewBuilder(root, artifact, ".mp4", logging.NewNop()), root
}

func TestPathDerivation(t *testing.T) {
	b, root := newBuilder(t, "")

	session := b.SessionRoot("2025-02-18")
	if session != filepath.Join(root, "Session_2025-02-18") {
		t.Fatalf("unexpected session root: %s", session)
	}

	batch := b.BatchRoot(session, 1)
	if batch != filepath.Join(session, "BatchSession_1") {
		t.Fatalf("unexpected batch root: %s", batch)
	}
	if got := b.IntrinsicsDir(batch); got != filepath.Join(batch, "calibration", "intrinsics") {
		t.Fatalf("unexpected intrinsics dir: %s", got)
	}
	if got := b.ExtrinsicsCameraDir(batch, "cam01"); got != filepath.Join(batch, "calibration", "extrinsics", "ext_cam01") {
		t.Fatalf("unexpected extrinsics camera dir: %s", got)
	}

	trial := b.TrialRoot(batch, layout.TrialLabel("A001", 2))
	if trial != filepath.Join(batch, "Trial_A001_2") {
		t.Fatalf("unexpected trial root: %s", trial)
	}
	if got := b.TrialVideosDir(trial); got != filepath.Join(trial, "videos") {
		t.Fatalf("unexpected videos dir: %s", got)
	}
}

func TestDestFileName(t *testing.T) {
	b, _ := newBuilder(t, "")
	target := time.Date(2025, time.February, 18, 10, 0, 0, 0, time.UTC)
	got := b.DestFileName(target, layout.TrialLabel("A001", 1), "cam01")
	if got != "2025-02-18_10h00_Trial_A001_1_cam01.mp4" {
		t.Fatalf("unexpected filename: %s", got)
	}
}

func TestDestFileNameNormalizesExtension(t *testing.T) {
	root := t.TempDir()
	b := layout.NewBuilder(root, "", ".MP4", logging.NewNop())
	target := time.Date(2025, time.February, 18, 9, 55, 0, 0, time.UTC)
	got := b.DestFileName(target, layout.BatchLabel(1), "cam02")
	if got != "2025-02-18_09h55_BatchSession_1_cam02.mp4" {
		t.Fatalf("unexpected filename: %s", got)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	b, root := newBuilder(t, "")
	dir := filepath.Join(root, "Session_2025-02-18", "BatchSession_1", "calibration", "intrinsics")
	for i := 0; i < 2; i++ {
		if err := b.Ensure(dir); err != nil {
			t.Fatalf("Ensure pass %d: %v", i+1, err)
		}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory, err=%v", err)
	}
}

func TestCopyArtifactPlacesFile(t *testing.T) {
	artifact := filepath.Join(t.TempDir(), "Config.toml")
	if err := os.WriteFile(artifact, []byte("[pose]\nmodel = \"body_25\"\n"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	b, root := newBuilder(t, artifact)
	batch := filepath.Join(root, "BatchSession_1")
	if err := b.Ensure(batch); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := b.CopyArtifact(batch); err != nil {
		t.Fatalf("CopyArtifact: %v", err)
	}

	copied, err := os.ReadFile(filepath.Join(batch, "Config.toml"))
	if err != nil {
		t.Fatalf("read copied artifact: %v", err)
	}
	if len(copied) == 0 {
		t.Fatal("artifact copy is empty")
	}
}

func TestCopyArtifactMissingFileIsNotFatal(t *testing.T) {
	b, root := newBuilder(t, filepath.Join(t.TempDir(), "absent.toml"))
	if err := b.CopyArtifact(root); err != nil {
		t.Fatalf("missing artifact should be skipped, got %v", err)
	}
}

func TestCopyArtifactDisabled(t *testing.T) {
	b, root := newBuilder(t, "")
	if err := b.CopyArtifact(root); err != nil {
		t.Fatalf("disabled hook should be a no-op, got %v", err)
	}
}
