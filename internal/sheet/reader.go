package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrInvalidRange  = errors.New("invalid row range")
)

// Table is one worksheet read from the header row down.
type Table struct {
	Name string
	// Columns holds the header cells; an empty string marks a column with
	// no header.
	Columns []string
	Rows    []Row
}

// Row is a data row with its 1-based row number in the sheet.
type Row struct {
	Number int
	Values []types.Value
}

// Reader yields sheets of a workbook as typed cell values.
type Reader interface {
	SheetNames() []string
	ReadSheet(ctx context.Context, name string, headerRow, startRow int) (*Table, error)
}

// SheetInfo summarizes one sheet for inspection.
type SheetInfo struct {
	Name     string
	Columns  []string
	DataRows int
}

// Inspect reads the header of every sheet, assuming data starts on the row
// after it.
func Inspect(ctx context.Context, r Reader, headerRow int) ([]SheetInfo, error) {
	var infos []SheetInfo
	for _, name := range r.SheetNames() {
		table, err := r.ReadSheet(ctx, name, headerRow, headerRow+1)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect sheet %s: %w", name, err)
		}
		infos = append(infos, SheetInfo{
			Name:     name,
			Columns:  table.Columns,
			DataRows: len(table.Rows),
		})
	}
	return infos, nil
}

func checkRange(name string, headerRow, startRow int) error {
	if headerRow < 1 || startRow < 1 {
		return fmt.Errorf("sheet %s: header row %d, start row %d: %w", name, headerRow, startRow, ErrInvalidRange)
	}
	return nil
}

func headerName(v types.Value) string {
	switch x := v.(type) {
	case types.String:
		return string(x)
	case types.Number:
		return x.String()
	case types.Bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	}
	return ""
}
