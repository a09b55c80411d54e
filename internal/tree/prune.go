package tree

import "github.com/Lumos-Labs-HQ/sheetflash/internal/types"

// Prune removes empty reference lists and empty create buckets from every
// row, recursively, then drops rows left with no fields. Rows are modified in
// place; the returned slice is new.
func Prune(rows []*types.Row) []*types.Row {
	out := make([]*types.Row, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		pruneRow(row)
		if row.Len() > 0 {
			out = append(out, row)
		}
	}
	return out
}

func pruneRow(row *types.Row) {
	for _, key := range row.Keys() {
		v, _ := row.Get(key)
		if !keepValue(v) {
			row.Delete(key)
		}
	}
}

// keepValue prunes v in place and reports whether anything is left in it.
func keepValue(v types.Value) bool {
	switch x := v.(type) {
	case types.References:
		return len(x) > 0
	case types.Relation:
		return keepValue(x.Target)
	case *types.Bucket:
		x.Create = Prune(x.Create)
		return len(x.Create) > 0
	case *types.Row:
		pruneRow(x)
		return x.Len() > 0
	}
	return true
}
