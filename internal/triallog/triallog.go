// Package triallog reads the spreadsheet experiment log that drives a run.
//
// The log is tabular with the named columns Groups, Trials, Date, Time, and
// Athlete ID; variant exports using "Jump time" and "Athlete name" are
// accepted. Rows are returned strictly in file order because session and
// counter semantics downstream depend on encounter order. Any structural
// problem is fatal and reported before the organizer touches the filesystem.
package triallog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"sessionprep/internal/faults"
)

// Kind distinguishes calibration rows from athlete trial rows.
type Kind string

const (
	KindCalibration Kind = "calibration"
	KindTrial       Kind = "trial"
)

// Entry is one spreadsheet row. Entries are immutable once parsed.
type Entry struct {
	// Row is the 1-based spreadsheet row the entry came from, headers
	// included, for diagnostics.
	Row     int
	Group   string
	Kind    Kind
	RawKind string
	Date    time.Time
	// Timestamp combines the Date and Time cells into the row's nominal
	// local wall-clock time. It is naive: no zone is attached yet.
	Timestamp time.Time
	// SubjectID is opaque; leading zeros and code prefixes are preserved.
	SubjectID string
}

// DateKey returns the session grouping key for the entry.
func (e Entry) DateKey() string {
	return e.Date.Format("2006-01-02")
}

// IsCalibration reports whether the entry opens a new calibration batch.
func (e Entry) IsCalibration() bool {
	return e.Kind == KindCalibration
}

var foldCaser = cases.Fold()

func foldEqual(a, b string) bool {
	return foldCaser.String(strings.TrimSpace(a)) == foldCaser.String(strings.TrimSpace(b))
}

// Read loads entries from the log at path. XLSX workbooks and CSV exports
// are supported, selected by extension. The sheet argument picks an XLSX
// worksheet by name; empty means the first sheet.
func Read(path, sheet string) ([]Entry, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	case ".csv":
		return readCSV(path)
	default:
		return nil, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"open",
			fmt.Sprintf("unsupported log format %q (want .xlsx or .csv)", ext),
			nil,
		)
	}
}

// columns maps required log fields to their zero-based positions.
type columns struct {
	group   int
	trials  int
	date    int
	time    int
	subject int
}

// headerAliases lists accepted header spellings per field, primary first.
var headerAliases = map[string][]string{
	"group":   {"Groups"},
	"trials":  {"Trials"},
	"date":    {"Date"},
	"time":    {"Time", "Jump time"},
	"subject": {"Athlete ID", "Athlete name"},
}

func resolveColumns(header []string) (columns, error) {
	find := func(field string) (int, error) {
		for _, alias := range headerAliases[field] {
			for idx, cell := range header {
				if foldEqual(cell, alias) {
					return idx, nil
				}
			}
		}
		return 0, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"resolve columns",
			fmt.Sprintf("required column %q not found (accepted: %s)", headerAliases[field][0], strings.Join(headerAliases[field], ", ")),
			nil,
		)
	}

	var cols columns
	var err error
	if cols.group, err = find("group"); err != nil {
		return columns{}, err
	}
	if cols.trials, err = find("trials"); err != nil {
		return columns{}, err
	}
	if cols.date, err = find("date"); err != nil {
		return columns{}, err
	}
	if cols.time, err = find("time"); err != nil {
		return columns{}, err
	}
	if cols.subject, err = find("subject"); err != nil {
		return columns{}, err
	}
	return cols, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowEmpty(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// parseRow converts one data row. rowNum is 1-based and includes the header.
func parseRow(row []string, cols columns, rowNum int) (Entry, error) {
	rawKind := cell(row, cols.trials)
	if rawKind == "" {
		return Entry{}, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"parse row",
			fmt.Sprintf("row %d: empty Trials cell", rowNum),
			nil,
		)
	}

	date, err := parseDate(cell(row, cols.date))
	if err != nil {
		return Entry{}, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"parse row",
			fmt.Sprintf("row %d: Date cell", rowNum),
			err,
		)
	}
	clock, err := parseClock(cell(row, cols.time))
	if err != nil {
		return Entry{}, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"parse row",
			fmt.Sprintf("row %d: Time cell", rowNum),
			err,
		)
	}

	kind := KindTrial
	if foldEqual(rawKind, string(KindCalibration)) {
		kind = KindCalibration
	}

	entry := Entry{
		Row:       rowNum,
		Group:     cell(row, cols.group),
		Kind:      kind,
		RawKind:   rawKind,
		Date:      date,
		Timestamp: combine(date, clock),
		SubjectID: cell(row, cols.subject),
	}
	if kind == KindTrial && entry.SubjectID == "" {
		return Entry{}, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"parse row",
			fmt.Sprintf("row %d: trial row without an athlete identifier", rowNum),
			nil,
		)
	}
	return entry, nil
}

func parseRows(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "parse", "log contains no header row", nil)
	}
	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		entry, err := parseRow(row, cols, i+2)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "parse", "log contains no data rows", nil)
	}
	return entries, nil
}

func combine(date, clock time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(),
		time.UTC,
	)
}
