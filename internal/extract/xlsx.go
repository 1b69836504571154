package extract

import (
	"bytes"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders the used range of the first sheet in workbook order as
// a tab-separated grid. Every row is padded to the width of the range and
// rows are joined by newlines.
func extractXLSX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty xlsx data")
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := book.GetRows(sheet)
	if err != nil {
		return "", err
	}

	rng, ok := usedRange(rows)
	if !ok {
		return "", nil
	}
	if dim, err := book.GetSheetDimension(sheet); err == nil {
		rng = rng.union(dim)
	}

	lines := make([]string, 0, rng.lastRow-rng.firstRow+1)
	cells := make([]string, rng.lastCol-rng.firstCol+1)
	for r := rng.firstRow; r <= rng.lastRow; r++ {
		for c := rng.firstCol; c <= rng.lastCol; c++ {
			cells[c-rng.firstCol] = cellAt(rows, r, c)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n"), nil
}

// cellRange holds 1-based inclusive bounds.
type cellRange struct {
	firstRow, firstCol int
	lastRow, lastCol   int
}

// usedRange returns the bounds of the non-empty cells in rows.
func usedRange(rows [][]string) (cellRange, bool) {
	var rng cellRange
	found := false
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			rowNum, colNum := r+1, c+1
			if !found {
				rng = cellRange{firstRow: rowNum, firstCol: colNum, lastRow: rowNum, lastCol: colNum}
				found = true
				continue
			}
			rng.firstRow = min(rng.firstRow, rowNum)
			rng.firstCol = min(rng.firstCol, colNum)
			rng.lastRow = max(rng.lastRow, rowNum)
			rng.lastCol = max(rng.lastCol, colNum)
		}
	}
	return rng, found
}

// union widens rng by a sheet dimension reference such as "A1:C4". An
// unparsable reference leaves rng unchanged.
func (rng cellRange) union(ref string) cellRange {
	from, to, ok := strings.Cut(ref, ":")
	if !ok {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return rng
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return rng
	}
	return cellRange{
		firstRow: min(rng.firstRow, r1, r2),
		firstCol: min(rng.firstCol, c1, c2),
		lastRow:  max(rng.lastRow, r1, r2),
		lastCol:  max(rng.lastCol, c1, c2),
	}
}

func cellAt(rows [][]string, row, col int) string {
	if row-1 >= len(rows) || col-1 >= len(rows[row-1]) {
		return ""
	}
	return rows[row-1][col-1]
}
