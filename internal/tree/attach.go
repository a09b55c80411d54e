package tree

import (
	"errors"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

// ErrNoMatch is returned by Link when no row carries the child's fk value.
var ErrNoMatch = errors.New("no row matches the foreign key")

// Attach hangs child under the first row of forest whose fk value equals the
// child's, inside a create bucket named relation. The search is depth-first
// pre-order: a row is checked before its fields, and siblings in order.
// Rows whose fk collides with an earlier match never receive the child, so
// callers should keep fk values unique per level.
//
// A child without an fk value never matches. Attach reports whether the child
// was placed; on false the forest is untouched.
func Attach(forest []*types.Row, child *types.Row, fk, relation string) bool {
	return Link(forest, child, fk, relation) == nil
}

// AttachRow is Attach for a single subtree.
func AttachRow(node *types.Row, child *types.Row, fk, relation string) bool {
	return Attach([]*types.Row{node}, child, fk, relation)
}

// Link is Attach with the reason for a miss. It returns ErrNoMatch when
// nothing matched, or an error wrapping types.ErrFieldTaken when the first
// matching row already has a non-bucket field named relation. In both cases
// the forest is untouched.
func Link(forest []*types.Row, child *types.Row, fk, relation string) error {
	key := child.Value(fk)
	if !types.IsDefined(key) {
		return ErrNoMatch
	}
	matched, err := linkRows(forest, child, key, fk, relation)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNoMatch
	}
	return nil
}

// The bool reports a match; a match that could not take the child stops the
// search with an error.
func linkRows(rows []*types.Row, child *types.Row, key types.Value, fk, relation string) (bool, error) {
	for _, row := range rows {
		if row == nil {
			continue
		}
		if matched, err := linkRow(row, child, key, fk, relation); matched || err != nil {
			return matched, err
		}
	}
	return false, nil
}

func linkRow(row, child *types.Row, key types.Value, fk, relation string) (bool, error) {
	if types.Equal(row.Value(fk), key) {
		if err := row.Append(relation, child); err != nil {
			return false, err
		}
		return true, nil
	}

	for _, v := range row.All() {
		if matched, err := linkValue(v, child, key, fk, relation); matched || err != nil {
			return matched, err
		}
	}
	return false, nil
}

func linkValue(v types.Value, child *types.Row, key types.Value, fk, relation string) (bool, error) {
	switch n := v.(type) {
	case *types.Row:
		return linkRow(n, child, key, fk, relation)
	case *types.Bucket:
		return linkRows(n.Create, child, key, fk, relation)
	}
	return false, nil
}

// CountMatches returns how many rows in forest carry the child's fk value.
// Rows below a match are not counted, as Attach never reaches them. Anything
// above one means Attach had to pick.
func CountMatches(forest []*types.Row, child *types.Row, fk string) int {
	key := child.Value(fk)
	if !types.IsDefined(key) {
		return 0
	}
	n := 0
	var visit func(v types.Value)
	visit = func(v types.Value) {
		switch x := v.(type) {
		case *types.Row:
			if types.Equal(x.Value(fk), key) {
				n++
				return
			}
			for _, field := range x.All() {
				visit(field)
			}
		case *types.Bucket:
			for _, r := range x.Create {
				visit(r)
			}
		}
	}
	for _, r := range forest {
		if r != nil {
			visit(r)
		}
	}
	return n
}
