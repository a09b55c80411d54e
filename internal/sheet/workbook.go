package sheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/xuri/excelize/v2"
)

// Workbook reads .xlsx files through excelize.
type Workbook struct {
	file *excelize.File
	path string
}

func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

func (w *Workbook) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *Workbook) ReadSheet(ctx context.Context, name string, headerRow, startRow int) (*Table, error) {
	if err := checkRange(name, headerRow, startRow); err != nil {
		return nil, err
	}

	idx, err := w.file.GetSheetIndex(name)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%s in %s: %w", name, w.path, ErrSheetNotFound)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}

	table := &Table{Name: name}
	if headerRow <= len(rows) {
		header, err := w.rowValues(name, headerRow, rows[headerRow-1])
		if err != nil {
			return nil, err
		}
		table.Columns = make([]string, len(header))
		for i, v := range header {
			table.Columns[i] = headerName(v)
		}
	}

	for n := startRow; n <= len(rows); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := w.rowValues(name, n, rows[n-1])
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, Row{Number: n, Values: values})
	}

	return table, nil
}

func (w *Workbook) rowValues(sheet string, rowNum int, raw []string) ([]types.Value, error) {
	values := make([]types.Value, len(raw))
	for i, cell := range raw {
		v, err := w.cellValue(sheet, i+1, rowNum, cell)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// cellValue types a raw cell. Numbers stay numbers, booleans stay booleans,
// and everything else (shared strings, dates, formula text) is a string.
func (w *Workbook) cellValue(sheet string, col, row int, raw string) (types.Value, error) {
	if raw == "" {
		return types.Undefined{}, nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, fmt.Errorf("invalid cell position %d,%d: %w", col, row, err)
	}
	cellType, err := w.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s!%s: %w", sheet, cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return types.Number(f), nil
		}
	}
	return types.String(raw), nil
}
