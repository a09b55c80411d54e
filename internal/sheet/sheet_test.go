package sheet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "user"))
	rows := [][]any{
		{"user table"},
		{"userId", "name", "infoId", "active"},
		{1, "kim", "3|4", true},
		{2, nil, 7, false},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("user", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookReadSheet(t *testing.T) {
	wb, err := Open(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"user"}, wb.SheetNames())

	table, err := wb.ReadSheet(context.Background(), "user", 2, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"userId", "name", "infoId", "active"}, table.Columns)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, 3, first.Number)
	assert.Equal(t, []types.Value{types.Number(1), types.String("kim"), types.String("3|4"), types.Bool(true)}, first.Values)

	second := table.Rows[1]
	assert.Equal(t, types.Number(2), second.Values[0])
	assert.Equal(t, types.Undefined{}, second.Values[1])
	assert.Equal(t, types.Number(7), second.Values[2])
	assert.Equal(t, types.Bool(false), second.Values[3])
}

func TestWorkbookMissingSheet(t *testing.T) {
	wb, err := Open(writeWorkbook(t))
	require.NoError(t, err)
	defer wb.Close()

	_, err = wb.ReadSheet(context.Background(), "post", 2, 3)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestMemoryReader(t *testing.T) {
	m := NewMemory().
		AddSheet("user", [][]any{
			{"userId", nil, "name"},
			{1, "ignored", "kim"},
			{2},
		})

	table, err := m.ReadSheet(context.Background(), "user", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"userId", "", "name"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 3, table.Rows[1].Number)

	_, err = m.ReadSheet(context.Background(), "user", 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidRange))

	_, err = m.ReadSheet(context.Background(), "post", 1, 2)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestMemoryReaderHonoursCancellation(t *testing.T) {
	m := NewMemory().AddSheet("user", [][]any{{"userId"}, {1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.ReadSheet(ctx, "user", 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInspect(t *testing.T) {
	m := NewMemory().
		AddSheet("user", [][]any{{"userId", "name"}, {1, "kim"}, {2, "lee"}}).
		AddSheet("post", [][]any{{"postId", "userId"}, {10, 1}})

	infos, err := Inspect(context.Background(), m, 1)
	require.NoError(t, err)
	assert.Equal(t, []SheetInfo{
		{Name: "user", Columns: []string{"userId", "name"}, DataRows: 2},
		{Name: "post", Columns: []string{"postId", "userId"}, DataRows: 1},
	}, infos)
}
