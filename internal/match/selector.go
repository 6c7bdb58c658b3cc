package match

import (
	"fmt"
	"time"

	"sessionprep/internal/faults"
)

// Result identifies the file a camera contributes to one log entry.
type Result struct {
	Camera   string
	Path     string
	Creation time.Time
	// Delta is the absolute distance between the candidate's creation time
	// and the entry's target time.
	Delta time.Duration
}

// SelectClosest picks the unclaimed candidate of the named camera minimizing
// the absolute delta to target. Ties resolve to the first candidate in
// sorted filename order. Returns faults.ErrNoMatch when the pool has no
// usable candidates left.
func (c *Catalog) SelectClosest(camera string, target time.Time) (Result, error) {
	var pool *Camera
	for i := range c.cameras {
		if c.cameras[i].Name == camera {
			pool = &c.cameras[i]
			break
		}
	}
	if pool == nil {
		return Result{}, faults.Wrap(
			faults.ErrNoMatch,
			"matching",
			"select",
			fmt.Sprintf("unknown camera %q", camera),
			nil,
		)
	}

	found := false
	var best Result
	for _, candidate := range pool.Candidates {
		if c.Claimed(candidate.Path) {
			continue
		}
		delta := candidate.Creation.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		// Strict less-than keeps the earliest candidate on equal deltas.
		if !found || delta < best.Delta {
			found = true
			best = Result{Camera: camera, Path: candidate.Path, Creation: candidate.Creation, Delta: delta}
		}
	}
	if !found {
		return Result{}, faults.Wrap(
			faults.ErrNoMatch,
			"matching",
			"select",
			fmt.Sprintf("camera %q has no timestamped video left for %s", camera, target.Format("2006-01-02 15:04")),
			nil,
		)
	}
	return best, nil
}
