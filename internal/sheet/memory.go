package sheet

import (
	"context"
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

// Memory is a Reader over sheets held in memory. Row i of a sheet is row
// i+1 in Reader terms.
type Memory struct {
	names  []string
	sheets map[string][][]types.Value
}

func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]types.Value)}
}

// AddSheet stores rows of plain Go values (nil for empty cells).
func (m *Memory) AddSheet(name string, rows [][]any) *Memory {
	converted := make([][]types.Value, len(rows))
	for i, row := range rows {
		converted[i] = make([]types.Value, len(row))
		for j, cell := range row {
			converted[i][j] = types.FromAny(cell)
		}
	}
	if _, exists := m.sheets[name]; !exists {
		m.names = append(m.names, name)
	}
	m.sheets[name] = converted
	return m
}

func (m *Memory) SheetNames() []string {
	return append([]string(nil), m.names...)
}

func (m *Memory) ReadSheet(ctx context.Context, name string, headerRow, startRow int) (*Table, error) {
	if err := checkRange(name, headerRow, startRow); err != nil {
		return nil, err
	}
	rows, ok := m.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}

	table := &Table{Name: name}
	if headerRow <= len(rows) {
		header := rows[headerRow-1]
		table.Columns = make([]string, len(header))
		for i, v := range header {
			table.Columns[i] = headerName(v)
		}
	}
	for n := startRow; n <= len(rows); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, Row{Number: n, Values: rows[n-1]})
	}
	return table, nil
}
