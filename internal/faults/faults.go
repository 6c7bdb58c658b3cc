package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpreadsheet marks an unreadable or structurally invalid trial log.
	// Always fatal: nothing may touch the destination tree after it.
	ErrSpreadsheet = errors.New("spreadsheet error")
	// ErrProbe marks a per-file metadata probe failure. Recovered locally.
	ErrProbe = errors.New("metadata probe error")
	// ErrNoMatch marks a camera folder that produced no usable candidate
	// for an entry. Surfaced per camera, never fatal.
	ErrNoMatch = errors.New("no match found")
	// ErrMissingBatch marks a trial row encountered before any calibration
	// row established a batch. Fatal for the run.
	ErrMissingBatch = errors.New("missing batch context")
	// ErrInvalidTimestamp marks a local time that falls into a DST gap.
	// Fatal for the row only.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for classification by callers. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// RowFatal reports whether the error should abort the whole run rather than
// just the row that produced it.
func RowFatal(err error) bool {
	switch {
	case errors.Is(err, ErrSpreadsheet), errors.Is(err, ErrMissingBatch), errors.Is(err, ErrConfiguration):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
