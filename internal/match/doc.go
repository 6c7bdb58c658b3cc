// Package match scans the camera source tree and selects, per camera, the
// video whose embedded creation timestamp lies closest to a trial's nominal
// time.
//
// A Catalog is built once per run: every camera folder is enumerated in
// sorted order and each candidate video is probed once for its creation_time
// tag, converted from UTC into the session's local timezone. Selection then
// works entirely in memory. Files consumed by an entry are recorded in a
// claimed set so a physical video can never satisfy two log entries; the
// source tree itself is never modified.
package match
