package cases

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"casemap-api/internal/models"

	"github.com/xuri/excelize/v2"
)

// Column titles expected in the workbook header row.
const (
	nameColumn  = "id"
	countColumn = "Confirmed Cases"
)

// ErrMissingColumn is returned when the header row lacks one of the expected columns.
var ErrMissingColumn = errors.New("cases: missing expected column")

// Read loads confirmed case counts from the first sheet of an xlsx workbook.
// The sheet must carry a header row with an "id" column (town name) and a
// "Confirmed Cases" column. Town names are trimmed, duplicates and negative
// counts are rejected.
func Read(path string) ([]models.Town, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cases: failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("cases: workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("cases: failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("cases: sheet %q has no data rows", sheet)
	}

	nameIdx, countIdx, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	towns := make([]models.Town, 0, len(rows)-1)
	seen := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		name := ""
		if nameIdx < len(row) {
			name = strings.TrimSpace(row[nameIdx])
		}
		countCell := ""
		if countIdx < len(row) {
			countCell = strings.TrimSpace(row[countIdx])
		}

		if name == "" && countCell == "" {
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("cases: row %d has a count but no town name", rowNum)
		}
		if seen[name] {
			return nil, fmt.Errorf("cases: duplicate town %q at row %d", name, rowNum)
		}

		count, err := parseCount(countCell)
		if err != nil {
			return nil, fmt.Errorf("cases: row %d (%s): %w", rowNum, name, err)
		}

		seen[name] = true
		towns = append(towns, models.Town{Name: name, ConfirmedCases: count})
	}

	if len(towns) == 0 {
		return nil, fmt.Errorf("cases: sheet %q has no data rows", sheet)
	}

	return towns, nil
}

// resolveColumns locates the expected columns by title rather than position.
func resolveColumns(header []string) (nameIdx, countIdx int, err error) {
	nameIdx, countIdx = -1, -1
	for i, cell := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(cell), nameColumn):
			nameIdx = i
		case strings.EqualFold(strings.TrimSpace(cell), countColumn):
			countIdx = i
		}
	}
	if nameIdx == -1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMissingColumn, nameColumn)
	}
	if countIdx == -1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMissingColumn, countColumn)
	}
	return nameIdx, countIdx, nil
}

// parseCount accepts integer cells, including ones Excel has formatted as
// floats, and rejects anything negative or fractional.
func parseCount(cell string) (int, error) {
	if cell == "" {
		return 0, errors.New("empty case count")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid case count %q", cell)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative case count %v", v)
	}
	if v != float64(int(v)) {
		return 0, fmt.Errorf("fractional case count %v", v)
	}
	return int(v), nil
}
