// Package layout derives and materializes the destination directory tree:
// session roots, calibration batch roots with intrinsics/extrinsics leaves,
// per-trial video directories, and the self-describing destination filenames.
// Directory creation is idempotent throughout.
package layout

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sessionprep/internal/fileutil"
	"sessionprep/internal/logging"
)

// timestampFormat is embedded in destination filenames so an archived copy
// stays self-describing after relocation.
const timestampFormat = "2006-01-02_15h04"

// Builder computes destination paths beneath a fixed root and runs the
// artifact-copy hook on newly created batch and trial roots.
type Builder struct {
	root         string
	artifactFile string
	extension    string
	logger       *slog.Logger
}

// NewBuilder constructs a Builder. artifactFile may be empty to disable the
// artifact hook; extension defaults to ".mp4".
func NewBuilder(root, artifactFile, extension string, logger *slog.Logger) *Builder {
	if strings.TrimSpace(extension) == "" {
		extension = ".mp4"
	}
	return &Builder{
		root:         root,
		artifactFile: strings.TrimSpace(artifactFile),
		extension:    strings.ToLower(extension),
		logger:       logging.WithComponent(logger, "layout"),
	}
}

// SessionRoot returns Session_<date> under the destination root.
func (b *Builder) SessionRoot(dateKey string) string {
	return filepath.Join(b.root, "Session_"+dateKey)
}

// BatchLabel returns the directory name for a calibration batch.
func BatchLabel(batch int) string {
	return fmt.Sprintf("BatchSession_%d", batch)
}

// BatchRoot returns the batch directory beneath a session root.
func (b *Builder) BatchRoot(sessionRoot string, batch int) string {
	return filepath.Join(sessionRoot, BatchLabel(batch))
}

// IntrinsicsDir returns the intrinsics calibration leaf of a batch.
func (b *Builder) IntrinsicsDir(batchRoot string) string {
	return filepath.Join(batchRoot, "calibration", "intrinsics")
}

// ExtrinsicsDir returns the extrinsics calibration leaf of a batch.
func (b *Builder) ExtrinsicsDir(batchRoot string) string {
	return filepath.Join(batchRoot, "calibration", "extrinsics")
}

// ExtrinsicsCameraDir returns the per-camera extrinsics directory.
func (b *Builder) ExtrinsicsCameraDir(batchRoot, camera string) string {
	return filepath.Join(b.ExtrinsicsDir(batchRoot), "ext_"+camera)
}

// TrialLabel returns Trial_<subject>_<counter>; counter is 1-based.
func TrialLabel(subjectID string, counter int) string {
	return fmt.Sprintf("Trial_%s_%d", subjectID, counter)
}

// TrialRoot returns the trial directory beneath a batch root.
func (b *Builder) TrialRoot(batchRoot, trialLabel string) string {
	return filepath.Join(batchRoot, trialLabel)
}

// TrialVideosDir returns the videos leaf of a trial.
func (b *Builder) TrialVideosDir(trialRoot string) string {
	return filepath.Join(trialRoot, "videos")
}

// DestFileName generates the archived copy's name from the entry's local
// target time, the batch or trial label, and the camera identifier. The
// container extension is normalized regardless of the source file's casing.
func (b *Builder) DestFileName(target time.Time, label, camera string) string {
	return target.Format(timestampFormat) + "_" + label + "_" + camera + b.extension
}

// Ensure creates the directory recursively. Recreating an existing path is
// a no-op.
func (b *Builder) Ensure(path string) error {
	if err := fileutil.EnsureDir(path); err != nil {
		return fmt.Errorf("ensure %s: %w", path, err)
	}
	return nil
}

// CopyArtifact places the configured pipeline artifact into root. A missing
// artifact is reported and skipped; batch and trial processing continues
// without it.
func (b *Builder) CopyArtifact(root string) error {
	if b.artifactFile == "" {
		return nil
	}
	if _, err := os.Stat(b.artifactFile); err != nil {
		b.logger.Warn("configuration artifact unavailable, skipping copy",
			logging.String("artifact", b.artifactFile),
			logging.Error(err),
		)
		return nil
	}
	dest := filepath.Join(root, filepath.Base(b.artifactFile))
	if err := fileutil.CopyFile(b.artifactFile, dest); err != nil {
		return fmt.Errorf("copy artifact into %s: %w", root, err)
	}
	return nil
}
