package match_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sessionprep/internal/faults"
	"sessionprep/internal/logging"
	"sessionprep/internal/match"
	"sessionprep/internal/media/ffprobe"
)

// stubProbe serves creation_time tags keyed by file base name. A missing key
// simulates a probe failure; an empty value simulates an untagged container.
func stubProbe(times map[string]string) match.ProbeFunc {
	return func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		value, ok := times[filepath.Base(path)]
		if !ok {
			return ffprobe.Result{}, errors.New("moov atom not found")
		}
		if value == "" {
			return ffprobe.Result{}, nil
		}
		return ffprobe.Result{
			Format: ffprobe.Format{Tags: map[string]string{"creation_time": value}},
		}, nil
	}
}

func montreal(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Montreal")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	return loc
}

func writeSourceTree(t *testing.T, layout map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, files := range layout {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		for _, file := range files {
			if err := os.WriteFile(filepath.Join(root, dir, file), []byte("video"), 0o644); err != nil {
				t.Fatalf("write %s: %v", file, err)
			}
		}
	}
	return root
}

func scan(t *testing.T, root string, times map[string]string) *match.Catalog {
	t.Helper()
	catalog, err := match.ScanSource(context.Background(), root, match.Options{
		Extension: ".mp4",
		Location:  montreal(t),
		Probe:     stubProbe(times),
		Logger:    logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("ScanSource: %v", err)
	}
	return catalog
}

func TestScanSourceFindsCameraFoldersSorted(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{
		"Cam02":    {"b.mp4"},
		"cam01":    {"a.mp4"},
		"GoPRO_CAM": {"c.mp4"},
		"notes":    {"ignored.mp4"},
	})
	catalog := scan(t, root, map[string]string{
		"a.mp4": "2025-02-18T15:00:00.000000Z",
		"b.mp4": "2025-02-18T15:00:00.000000Z",
		"c.mp4": "2025-02-18T15:00:00.000000Z",
	})

	cameras := catalog.Cameras()
	if len(cameras) != 3 {
		t.Fatalf("expected 3 camera folders, got %d", len(cameras))
	}
	if cameras[0].Name != "Cam02" || cameras[1].Name != "GoPRO_CAM" || cameras[2].Name != "cam01" {
		t.Fatalf("unexpected camera order: %+v", cameras)
	}
}

func TestScanSourceCaselessExtensionFilter(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{
		"cam01": {"upper.MP4", "lower.mp4", "skip.txt"},
	})
	catalog := scan(t, root, map[string]string{
		"upper.MP4": "2025-02-18T15:00:00Z",
		"lower.mp4": "2025-02-18T15:01:00Z",
	})
	if got := len(catalog.Cameras()[0].Candidates); got != 2 {
		t.Fatalf("expected both containers regardless of case, got %d", got)
	}
}

func TestScanSourceExcludesUnreadableFilesWithoutAborting(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{
		"cam01": {"bad.mp4", "good.mp4", "untagged.mp4"},
	})
	// bad.mp4 missing from the stub map -> probe error; untagged -> no tag.
	catalog := scan(t, root, map[string]string{
		"good.mp4":     "2025-02-18T15:00:02.000000Z",
		"untagged.mp4": "",
	})

	camera := catalog.Cameras()[0]
	if len(camera.Candidates) != 1 {
		t.Fatalf("expected 1 usable candidate, got %d", len(camera.Candidates))
	}
	if camera.Skipped != 2 {
		t.Fatalf("expected 2 skipped files, got %d", camera.Skipped)
	}
	if filepath.Base(camera.Candidates[0].Path) != "good.mp4" {
		t.Fatalf("unexpected candidate: %s", camera.Candidates[0].Path)
	}
}

func TestScanSourceWithoutCameraFoldersIsFatal(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{"notes": {}})
	_, err := match.ScanSource(context.Background(), root, match.Options{
		Location: montreal(t),
		Probe:    stubProbe(nil),
		Logger:   logging.NewNop(),
	})
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSelectClosestPicksMinimumDelta(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{
		"cam01": {"v1.mp4", "v2.mp4", "v3.mp4"},
	})
	// Local times after conversion: 10:00:02, 10:00:07, 10:05:00 (EST).
	catalog := scan(t, root, map[string]string{
		"v1.mp4": "2025-02-18T15:00:02.000000Z",
		"v2.mp4": "2025-02-18T15:00:07.000000Z",
		"v3.mp4": "2025-02-18T15:05:00.000000Z",
	})

	target := time.Date(2025, time.February, 18, 10, 0, 0, 0, montreal(t))
	result, err := catalog.SelectClosest("cam01", target)
	if err != nil {
		t.Fatalf("SelectClosest: %v", err)
	}
	if filepath.Base(result.Path) != "v1.mp4" {
		t.Fatalf("expected v1.mp4 (delta 2s), got %s", result.Path)
	}
	if result.Delta != 2*time.Second {
		t.Fatalf("unexpected delta: %v", result.Delta)
	}
}

func TestSelectClosestTieBreakIsStable(t *testing.T) {
	files := map[string][]string{
		"cam01": {"zeta.mp4", "alpha.mp4"},
	}
	// Both candidates sit exactly 2s from the target on opposite sides.
	times := map[string]string{
		"alpha.mp4": "2025-02-18T14:59:58.000000Z",
		"zeta.mp4":  "2025-02-18T15:00:02.000000Z",
	}
	target := time.Date(2025, time.February, 18, 10, 0, 0, 0, montreal(t))

	for run := 0; run < 5; run++ {
		catalog := scan(t, writeSourceTree(t, files), times)
		result, err := catalog.SelectClosest("cam01", target)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if filepath.Base(result.Path) != "alpha.mp4" {
			t.Fatalf("run %d: tie-break drifted to %s", run, result.Path)
		}
	}
}

func TestSelectClosestSkipsClaimedFiles(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{
		"cam01": {"v1.mp4", "v2.mp4"},
	})
	catalog := scan(t, root, map[string]string{
		"v1.mp4": "2025-02-18T15:00:02.000000Z",
		"v2.mp4": "2025-02-18T15:00:07.000000Z",
	})
	target := time.Date(2025, time.February, 18, 10, 0, 0, 0, montreal(t))

	first, err := catalog.SelectClosest("cam01", target)
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	catalog.Claim(first.Path)

	second, err := catalog.SelectClosest("cam01", target)
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if second.Path == first.Path {
		t.Fatal("claimed file selected twice")
	}
	catalog.Claim(second.Path)

	if _, err := catalog.SelectClosest("cam01", target); !errors.Is(err, faults.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch once pool is exhausted, got %v", err)
	}
}

func TestSelectClosestUnknownCamera(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{"cam01": {"v1.mp4"}})
	catalog := scan(t, root, map[string]string{"v1.mp4": "2025-02-18T15:00:02Z"})
	if _, err := catalog.SelectClosest("cam99", time.Now()); !errors.Is(err, faults.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSelectClosestEmptyPool(t *testing.T) {
	root := writeSourceTree(t, map[string][]string{"cam01": {}})
	catalog := scan(t, root, nil)
	if _, err := catalog.SelectClosest("cam01", time.Now()); !errors.Is(err, faults.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
