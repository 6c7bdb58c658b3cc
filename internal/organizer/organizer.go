package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sessionprep/internal/config"
	"sessionprep/internal/faults"
	"sessionprep/internal/fileutil"
	"sessionprep/internal/journal"
	"sessionprep/internal/layout"
	"sessionprep/internal/logging"
	"sessionprep/internal/match"
	"sessionprep/internal/timezone"
	"sessionprep/internal/triallog"
)

// Organizer executes runs against a fixed configuration.
type Organizer struct {
	cfg     *config.Config
	logger  *slog.Logger
	builder *layout.Builder
	journal *journal.Store
	probe   match.ProbeFunc
	dryRun  bool
}

// Option customizes Organizer construction.
type Option func(*Organizer)

// WithJournal attaches a run journal. A nil store disables journaling.
func WithJournal(store *journal.Store) Option {
	return func(o *Organizer) { o.journal = store }
}

// WithProbe overrides the external metadata probe (used in tests).
func WithProbe(probe match.ProbeFunc) Option {
	return func(o *Organizer) { o.probe = probe }
}

// WithDryRun plans matches and destinations without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(o *Organizer) { o.dryRun = dryRun }
}

// New constructs an Organizer.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Organizer {
	o := &Organizer{
		cfg:     cfg,
		logger:  logging.WithComponent(logger, "organizer"),
		builder: layout.NewBuilder(cfg.Paths.DestDir, cfg.Paths.ArtifactFile, cfg.Video.Extension, logger),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlannedCopy is one camera video routed to a destination.
type PlannedCopy struct {
	Row    int
	Label  string
	Camera string
	Source string
	Dest   string
	Delta  time.Duration
}

// Summary reports what a run did (or, in dry-run mode, would do).
type Summary struct {
	Entries       int
	Sessions      int
	Batches       int
	Trials        int
	Placed        int
	SkippedRows   int
	MissedCameras int
	Plan          []PlannedCopy
}

// session carries the per-date counters. A new value supersedes the previous
// one whenever a row's date changes.
type session struct {
	dateKey         string
	root            string
	batchCounter    int
	trialCounters   map[string]int
	currentBatch    string
	currentBatchNum int
}

// Run processes the configured trial log end to end. Fatal conditions (bad
// spreadsheet, missing batch context, unreadable source tree) abort with an
// error; per-row conditions are logged and skipped.
func (o *Organizer) Run(ctx context.Context) (*Summary, error) {
	entries, err := triallog.Read(o.cfg.TrialLog.File, o.cfg.TrialLog.Sheet)
	if err != nil {
		return nil, err
	}
	loc, err := o.cfg.Location()
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "organizing", "load timezone", "", err)
	}

	o.logger.Info("scanning camera source tree",
		logging.String("source", o.cfg.Paths.SourceDir),
		logging.Int("rows", len(entries)),
	)
	catalog, err := match.ScanSource(ctx, o.cfg.Paths.SourceDir, match.Options{
		Binary:    o.cfg.FFprobeBinary(),
		Extension: o.cfg.Video.Extension,
		Location:  loc,
		Probe:     o.probe,
		Logger:    o.logger,
	})
	if err != nil {
		return nil, err
	}

	runID := o.beginJournalRun(ctx)
	summary := &Summary{Entries: len(entries)}
	sampler := logging.NewProgressSampler(5)
	var sess *session

	for i, entry := range entries {
		percent := float64(i) / float64(len(entries)) * 100
		if sampler.ShouldLog(percent, "organizing") {
			o.logger.Info("processing log rows",
				logging.Int("row", entry.Row),
				logging.Float64("percent", percent),
			)
		}

		if sess == nil || sess.dateKey != entry.DateKey() {
			sess = &session{
				dateKey:       entry.DateKey(),
				root:          o.builder.SessionRoot(entry.DateKey()),
				batchCounter:  1,
				trialCounters: make(map[string]int),
			}
			summary.Sessions++
			o.logger.Info("opening session", logging.String("date", sess.dateKey))
			if err := o.ensure(sess.root); err != nil {
				return nil, err
			}
		}

		target, err := timezone.ToLocal(entry.Timestamp, loc, false)
		if err != nil {
			if errors.Is(err, faults.ErrInvalidTimestamp) {
				summary.SkippedRows++
				o.logger.Warn("row timestamp cannot be normalized, skipping row",
					logging.Int("row", entry.Row),
					logging.Float64("percent", percent),
					logging.Error(err),
				)
				continue
			}
			return nil, err
		}

		if entry.IsCalibration() {
			if err := o.processCalibration(ctx, sess, entry, target, catalog, runID, summary); err != nil {
				return nil, err
			}
		} else {
			if err := o.processTrial(ctx, sess, entry, target, catalog, runID, summary); err != nil {
				return nil, err
			}
		}
	}

	o.logger.Info("run completed",
		logging.Float64("percent", 100),
		logging.Int("rows", summary.Entries),
		logging.Int("placed", summary.Placed),
		logging.Int("skipped_rows", summary.SkippedRows),
		logging.Int("missed_cameras", summary.MissedCameras),
	)
	o.finishJournalRun(ctx, runID, summary)
	return summary, nil
}

// processCalibration opens batch N, routes each camera's nearest video into
// its extrinsics leaf, merges the intrinsics footage verbatim, and advances
// the batch counter. The new batch becomes the current batch for subsequent
// trial rows.
func (o *Organizer) processCalibration(ctx context.Context, sess *session, entry triallog.Entry, target time.Time, catalog *match.Catalog, runID string, summary *Summary) error {
	batch := sess.batchCounter
	batchRoot := o.builder.BatchRoot(sess.root, batch)
	label := layout.BatchLabel(batch)

	o.logger.Info("opening calibration batch",
		logging.Int("row", entry.Row),
		logging.String("batch", label),
		logging.Time("target", target),
	)

	intrinsicsDir := o.builder.IntrinsicsDir(batchRoot)
	if err := o.ensure(intrinsicsDir); err != nil {
		return err
	}
	if err := o.ensure(o.builder.ExtrinsicsDir(batchRoot)); err != nil {
		return err
	}
	if err := o.copyArtifact(batchRoot); err != nil {
		return err
	}
	o.mergeIntrinsics(intrinsicsDir)

	for _, camera := range catalog.Cameras() {
		destDir := o.builder.ExtrinsicsCameraDir(batchRoot, camera.Name)
		if err := o.placeMatch(ctx, sess, entry, target, catalog, camera.Name, label, batch, destDir, runID, summary); err != nil {
			return err
		}
	}

	sess.currentBatch = batchRoot
	sess.currentBatchNum = batch
	sess.batchCounter++
	summary.Batches++
	return nil
}

// processTrial places each camera's nearest video into the trial's videos
// leaf under the current batch.
func (o *Organizer) processTrial(ctx context.Context, sess *session, entry triallog.Entry, target time.Time, catalog *match.Catalog, runID string, summary *Summary) error {
	if sess.currentBatch == "" {
		return faults.Wrap(
			faults.ErrMissingBatch,
			"organizing",
			"trial row",
			fmt.Sprintf("row %d (%s, athlete %s) precedes any calibration row for session %s",
				entry.Row, entry.RawKind, entry.SubjectID, sess.dateKey),
			nil,
		)
	}

	counter := sess.trialCounters[entry.SubjectID] + 1
	label := layout.TrialLabel(entry.SubjectID, counter)
	trialRoot := o.builder.TrialRoot(sess.currentBatch, label)
	videosDir := o.builder.TrialVideosDir(trialRoot)

	o.logger.Info("processing trial",
		logging.Int("row", entry.Row),
		logging.String("trial", label),
		logging.Time("target", target),
	)

	if err := o.ensure(videosDir); err != nil {
		return err
	}
	if err := o.copyArtifact(trialRoot); err != nil {
		return err
	}

	for _, camera := range catalog.Cameras() {
		if err := o.placeMatch(ctx, sess, entry, target, catalog, camera.Name, label, sess.currentBatchNum, videosDir, runID, summary); err != nil {
			return err
		}
	}

	sess.trialCounters[entry.SubjectID] = counter
	summary.Trials++
	return nil
}

// placeMatch runs the selector for one camera and copies the winner into
// destDir. A camera with no usable candidate is surfaced and skipped; the
// destination simply lacks that camera's footage.
func (o *Organizer) placeMatch(ctx context.Context, sess *session, entry triallog.Entry, target time.Time, catalog *match.Catalog, camera, label string, batch int, destDir, runID string, summary *Summary) error {
	result, err := catalog.SelectClosest(camera, target)
	if err != nil {
		if errors.Is(err, faults.ErrNoMatch) {
			summary.MissedCameras++
			o.logger.Warn("no video matched for camera",
				logging.Int("row", entry.Row),
				logging.String("camera", camera),
				logging.String("label", label),
				logging.Error(err),
			)
			return nil
		}
		return err
	}

	destName := o.builder.DestFileName(target, label, camera)
	destPath := filepath.Join(destDir, destName)

	if !o.dryRun {
		if err := o.ensure(destDir); err != nil {
			return err
		}
		if err := fileutil.CopyFileVerified(result.Path, destPath); err != nil {
			return faults.Wrap(faults.ErrExternalTool, "organizing", "copy video",
				fmt.Sprintf("row %d camera %s", entry.Row, camera), err)
		}
	}
	catalog.Claim(result.Path)

	o.logger.Info("video placed",
		logging.Int("row", entry.Row),
		logging.String("camera", camera),
		logging.String("source", result.Path),
		logging.String("dest", destPath),
		logging.Duration("delta", result.Delta),
		logging.Bool("dry_run", o.dryRun),
	)

	summary.Placed++
	summary.Plan = append(summary.Plan, PlannedCopy{
		Row:    entry.Row,
		Label:  label,
		Camera: camera,
		Source: result.Path,
		Dest:   destPath,
		Delta:  result.Delta,
	})
	o.recordPlacement(ctx, runID, sess, batch, label, camera, result, destPath)
	return nil
}

// mergeIntrinsics bulk-copies the pre-captured intrinsics footage. It is not
// time-matched; the footage is captured once, independent of any trial log.
func (o *Organizer) mergeIntrinsics(intrinsicsDir string) {
	src := o.cfg.Paths.IntrinsicsDir
	if src == "" || o.dryRun {
		return
	}
	if _, err := os.Stat(src); err != nil {
		o.logger.Warn("intrinsics source unavailable, batch left without intrinsics footage",
			logging.String("intrinsics_dir", src),
			logging.Error(err),
		)
		return
	}
	if err := fileutil.CopyTree(src, intrinsicsDir); err != nil {
		o.logger.Warn("intrinsics merge failed",
			logging.String("intrinsics_dir", src),
			logging.Error(err),
		)
	}
}

func (o *Organizer) ensure(path string) error {
	if o.dryRun {
		return nil
	}
	return o.builder.Ensure(path)
}

func (o *Organizer) copyArtifact(root string) error {
	if o.dryRun {
		return nil
	}
	return o.builder.CopyArtifact(root)
}

func (o *Organizer) beginJournalRun(ctx context.Context) string {
	if o.journal == nil || o.dryRun {
		return ""
	}
	runID, err := o.journal.BeginRun(ctx, o.cfg.TrialLog.File)
	if err != nil {
		o.logger.Warn("journal run could not be opened", logging.Error(err))
		return ""
	}
	return runID
}

func (o *Organizer) finishJournalRun(ctx context.Context, runID string, summary *Summary) {
	if o.journal == nil || runID == "" {
		return
	}
	if err := o.journal.FinishRun(ctx, runID, summary.Entries, summary.Placed, summary.SkippedRows); err != nil {
		o.logger.Warn("journal run could not be finalized", logging.Error(err))
	}
}

func (o *Organizer) recordPlacement(ctx context.Context, runID string, sess *session, batch int, label, camera string, result match.Result, destPath string) {
	if o.journal == nil || runID == "" {
		return
	}
	err := o.journal.RecordPlacement(ctx, journal.Placement{
		RunID:        runID,
		Session:      sess.dateKey,
		Batch:        batch,
		Label:        label,
		Camera:       camera,
		Source:       result.Path,
		Dest:         destPath,
		DeltaSeconds: result.Delta.Seconds(),
	})
	if err != nil {
		o.logger.Warn("placement could not be journaled", logging.Error(err))
	}
}
