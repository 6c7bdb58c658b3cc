package triallog

import (
	"encoding/csv"
	"os"

	"sessionprep/internal/faults"
)

func readCSV(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "open csv", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "read csv", path, err)
	}
	return parseRows(rows)
}
