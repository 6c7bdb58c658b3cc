package match

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"sessionprep/internal/faults"
	"sessionprep/internal/logging"
	"sessionprep/internal/media/ffprobe"
	"sessionprep/internal/timezone"
)

// ProbeFunc mirrors ffprobe.Inspect so tests can stub the external probe.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Candidate is one video file eligible for matching. Creation is already
// converted into the session's local timezone.
type Candidate struct {
	Path     string
	Creation time.Time
}

// Camera is the candidate pool found under one camera folder.
type Camera struct {
	Name       string
	Dir        string
	Candidates []Candidate
	// Skipped counts files excluded because their creation time could not
	// be read.
	Skipped int
}

// Options configures catalog construction.
type Options struct {
	// Binary is the ffprobe executable; empty means "ffprobe".
	Binary string
	// Extension filters candidate files, compared caselessly (".mp4").
	Extension string
	// Location is the civil timezone creation times are converted into.
	Location *time.Location
	// Probe overrides the external probe; nil uses ffprobe.Inspect.
	Probe  ProbeFunc
	Logger *slog.Logger
}

// Catalog holds every camera pool for a run plus the claimed set.
type Catalog struct {
	cameras []Camera
	claimed map[string]struct{}
}

var foldCaser = cases.Fold()

func fold(s string) string {
	return foldCaser.String(s)
}

// ScanSource enumerates camera folders (directory names containing "cam",
// caseless) beneath sourceDir and probes each candidate video once. A probe
// failure excludes that file and is logged; it never aborts the scan.
func ScanSource(ctx context.Context, sourceDir string, opts Options) (*Catalog, error) {
	probe := opts.Probe
	if probe == nil {
		probe = ffprobe.Inspect
	}
	extension := fold(opts.Extension)
	if extension == "" {
		extension = ".mp4"
	}
	logger := logging.WithComponent(opts.Logger, "match")

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "matching", "scan source", sourceDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !strings.Contains(fold(entry.Name()), "cam") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, faults.Wrap(
			faults.ErrConfiguration,
			"matching",
			"scan source",
			fmt.Sprintf("no camera folders (directories containing \"cam\") under %s", sourceDir),
			nil,
		)
	}

	catalog := &Catalog{
		cameras: make([]Camera, 0, len(names)),
		claimed: make(map[string]struct{}),
	}
	for _, name := range names {
		camera, err := scanCamera(ctx, filepath.Join(sourceDir, name), name, extension, opts, probe, logger)
		if err != nil {
			return nil, err
		}
		catalog.cameras = append(catalog.cameras, camera)
	}
	return catalog, nil
}

func scanCamera(ctx context.Context, dir, name, extension string, opts Options, probe ProbeFunc, logger *slog.Logger) (Camera, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Camera{}, faults.Wrap(faults.ErrConfiguration, "matching", "scan camera folder", dir, err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if fold(filepath.Ext(entry.Name())) != extension {
			continue
		}
		files = append(files, entry.Name())
	}
	// Directory listing order is platform-dependent; sorting makes the
	// first-wins tie-break reproducible.
	sort.Strings(files)

	camera := Camera{Name: name, Dir: dir}
	for _, file := range files {
		path := filepath.Join(dir, file)
		result, err := probe(ctx, opts.Binary, path)
		if err != nil {
			camera.Skipped++
			logger.Warn("creation time probe failed, file excluded from matching",
				logging.String("camera", name),
				logging.String("file", file),
				logging.Error(faults.Wrap(faults.ErrProbe, "matching", "probe", "", err)),
			)
			continue
		}
		creationUTC, ok := result.CreationTime()
		if !ok {
			camera.Skipped++
			logger.Warn("video has no readable creation_time tag, excluded from matching",
				logging.String("camera", name),
				logging.String("file", file),
			)
			continue
		}
		local, err := timezone.ToLocal(creationUTC, opts.Location, true)
		if err != nil {
			camera.Skipped++
			logger.Warn("creation time could not be localized, file excluded",
				logging.String("camera", name),
				logging.String("file", file),
				logging.Error(err),
			)
			continue
		}
		camera.Candidates = append(camera.Candidates, Candidate{Path: path, Creation: local})
	}

	logger.Debug("camera folder scanned",
		logging.String("camera", name),
		logging.Int("candidates", len(camera.Candidates)),
		logging.Int("skipped", camera.Skipped),
	)
	return camera, nil
}

// Cameras returns the scanned pools in sorted folder order.
func (c *Catalog) Cameras() []Camera {
	return c.cameras
}

// Claim marks a file as consumed so later selections skip it.
func (c *Catalog) Claim(path string) {
	c.claimed[path] = struct{}{}
}

// Claimed reports whether the file was already consumed by an entry.
func (c *Catalog) Claimed(path string) bool {
	_, ok := c.claimed[path]
	return ok
}
