// Package organizer drives a full run: it reads the trial log, walks its
// rows strictly in file order, and places the nearest-matching camera videos
// into the generated session/batch/trial tree.
//
// Session state (date, batch counter, per-subject trial counters, current
// batch) is an explicit value scoped to the run, never ambient package
// state, so sessions can be exercised in isolation. Calibration rows open a
// new batch and merge the intrinsics footage; trial rows require a current
// batch and fail the run with a clear diagnostic when none exists.
// Recoverable row conditions (unreadable probes, empty pools, DST gaps) are
// logged with row context and skipped; structural problems abort before the
// destination tree can end up half-wrong.
package organizer
