package insight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxUnzipLimit   = 256 << 20
	xlsxXMLPartLimit = 64 << 20
	xlsxMaxColumns   = excelize.MaxColumns
)

var errNoWorksheets = errors.New("workbook has no worksheets")

// readXLSXGrid returns the cell text of the first worksheet, row by row.
// Empty rows are dropped and at most maxRows rows are kept.
func readXLSXGrid(p string, maxRows int) (grid [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("read workbook: %v", r)
		}
	}()

	f, err := excelize.OpenFile(p, excelize.Options{
		UnzipSizeLimit:    xlsxUnzipLimit,
		UnzipXMLSizeLimit: xlsxXMLPartLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errNoWorksheets
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("worksheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	for len(grid) < maxRows && rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("worksheet %s: %w", sheets[0], err)
		}
		if len(cells) > xlsxMaxColumns {
			cells = cells[:xlsxMaxColumns]
		}
		if rowIsEmpty(cells) {
			continue
		}
		grid = append(grid, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("worksheet %s: %w", sheets[0], err)
	}
	return grid, nil
}

func rowIsEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
