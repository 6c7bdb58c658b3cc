// Package preflight provides readiness checks for the filesystem paths and
// external binaries a run depends on.
//
// The organize command calls RunAll before touching the destination tree so a
// doomed run fails up front, and "sessionprep status" uses the same results to
// display environment health.
package preflight
