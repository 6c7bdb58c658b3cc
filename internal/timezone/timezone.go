// Package timezone converts the naive timestamps found in trial logs and
// video metadata into aware local times in the configured civil timezone.
//
// The two inputs are asymmetric: spreadsheet times are authored in local
// wall-clock time and only need the zone's offset attached, while video
// creation times are stored in UTC and must be converted. DST handling is a
// fixed policy, never a per-call guess: a wall time that does not exist
// (spring-forward gap) is rejected, and a wall time that occurs twice
// (fall-back) resolves to the later, post-transition instant.
package timezone

import (
	"fmt"
	"sort"
	"time"

	"sessionprep/internal/faults"
)

// ToLocal converts a naive timestamp into an aware timestamp in loc. Only
// the wall-clock fields of naive are considered; its location is ignored.
//
// When sourceIsUTC is true the naive fields are read as UTC and the result
// is the same instant expressed in loc. Otherwise the fields are read as
// wall-clock time in loc; a nonexistent wall time yields
// faults.ErrInvalidTimestamp.
func ToLocal(naive time.Time, loc *time.Location, sourceIsUTC bool) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := naive.Date()
	hour, minute, second := naive.Clock()
	nanos := naive.Nanosecond()

	if sourceIsUTC {
		return time.Date(year, month, day, hour, minute, second, nanos, time.UTC).In(loc), nil
	}

	// Treat the wall clock as if it were UTC, then re-anchor it with each
	// offset in force around the target date. Offsets that reproduce the
	// requested wall clock are valid interpretations.
	wall := time.Date(year, month, day, hour, minute, second, nanos, time.UTC)
	approx := time.Date(year, month, day, hour, minute, second, nanos, loc)

	offsets := candidateOffsets(approx, loc)
	candidates := make([]time.Time, 0, 2)
	for _, offset := range offsets {
		candidate := wall.Add(-time.Duration(offset) * time.Second).In(loc)
		if sameWall(candidate, year, month, day, hour, minute, second, nanos) {
			candidates = append(candidates, candidate)
		}
	}

	switch len(candidates) {
	case 0:
		return time.Time{}, faults.Wrap(
			faults.ErrInvalidTimestamp,
			"normalize",
			"to local",
			fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d does not exist in %s (DST gap)",
				year, month, day, hour, minute, second, loc),
			nil,
		)
	case 1:
		return candidates[0], nil
	default:
		// Ambiguous fall-back wall time: the post-transition instant wins.
		latest := candidates[0]
		for _, candidate := range candidates[1:] {
			if candidate.After(latest) {
				latest = candidate
			}
		}
		return latest, nil
	}
}

// candidateOffsets collects the distinct UTC offsets in force within a day
// of the approximate instant, sorted for deterministic iteration.
func candidateOffsets(approx time.Time, loc *time.Location) []int {
	seen := make(map[int]struct{}, 3)
	offsets := make([]int, 0, 3)
	for _, probe := range []time.Time{approx.Add(-24 * time.Hour), approx, approx.Add(24 * time.Hour)} {
		_, offset := probe.In(loc).Zone()
		if _, ok := seen[offset]; ok {
			continue
		}
		seen[offset] = struct{}{}
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)
	return offsets
}

func sameWall(t time.Time, year int, month time.Month, day, hour, minute, second, nanos int) bool {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return y == year && mo == month && d == day &&
		h == hour && mi == minute && s == second && t.Nanosecond() == nanos
}
