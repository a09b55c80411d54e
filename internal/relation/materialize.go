package relation

import "github.com/Lumos-Labs-HQ/sheetflash/internal/types"

// Materialize pairs header names with row values. Columns listed in specs are
// rewritten into relation descriptors unless the cell is empty or false;
// everything else is copied as-is. Positions with an empty header are skipped
// and values past the header are ignored.
func Materialize(columns []string, values []types.Value, specs []types.RelationSpec, delimiter string) *types.Row {
	row := types.NewRow()
	for i, name := range columns {
		if name == "" {
			continue
		}

		var v types.Value = types.Undefined{}
		if i < len(values) && values[i] != nil {
			v = values[i]
		}

		if spec, ok := findSpec(specs, name); ok && isRelationCandidate(v) {
			if target, ok := ParseReference(v, spec.Option, delimiter); ok {
				v = types.Relation{Op: spec.Operation, Target: target}
			}
		}

		row.Set(name, v)
	}
	return row
}

func findSpec(specs []types.RelationSpec, column string) (types.RelationSpec, bool) {
	for _, spec := range specs {
		if spec.Key == column {
			return spec, true
		}
	}
	return types.RelationSpec{}, false
}

func isRelationCandidate(v types.Value) bool {
	if !types.IsDefined(v) {
		return false
	}
	if b, ok := v.(types.Bool); ok && !bool(b) {
		return false
	}
	return true
}
