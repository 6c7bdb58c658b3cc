package triallog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"sessionprep/internal/faults"
)

func readXLSX(path, sheet string) ([]Entry, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "open workbook", path, err)
	}
	defer workbook.Close()

	name := strings.TrimSpace(sheet)
	if name == "" {
		name = workbook.GetSheetName(0)
	}
	if name == "" {
		return nil, faults.Wrap(faults.ErrSpreadsheet, "trial log", "select sheet", "workbook has no sheets", nil)
	}

	rows, err := workbook.GetRows(name)
	if err != nil {
		return nil, faults.Wrap(
			faults.ErrSpreadsheet,
			"trial log",
			"read sheet",
			fmt.Sprintf("sheet %q", name),
			err,
		)
	}
	return parseRows(rows)
}
