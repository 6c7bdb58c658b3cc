// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no sessionprep-specific dependencies and could be
// extracted as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata including the tag map
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - Result.CreationTime: the UTC creation_time format tag, when present
package ffprobe
