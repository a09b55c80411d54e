package converter

import (
	"errors"
	"fmt"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

// ErrUnlinked is matched by LinkError, the strict-mode failure for child rows
// that found no parent or more than one.
var ErrUnlinked = errors.New("child rows could not be linked")

type SheetStats struct {
	Name     string `json:"name"`
	Read     int    `json:"read"`
	Accepted int    `json:"accepted"`
	Attached int    `json:"attached"`
	Skipped  int    `json:"skipped"`
}

// UnlinkedRow is a child row that was not attached. Reason is empty when its
// fk matched nothing in the forest.
type UnlinkedRow struct {
	Sheet  string      `json:"sheet"`
	Row    int         `json:"row"`
	FK     string      `json:"fk"`
	Key    types.Value `json:"key"`
	Reason string      `json:"reason,omitempty"`
}

// Collision is a child row whose fk matched several rows; only the first got
// the child.
type Collision struct {
	Sheet   string      `json:"sheet"`
	Row     int         `json:"row"`
	FK      string      `json:"fk"`
	Key     types.Value `json:"key"`
	Matches int         `json:"matches"`
}

type Report struct {
	Sheets     []SheetStats  `json:"sheets"`
	Unlinked   []UnlinkedRow `json:"unlinked,omitempty"`
	Collisions []Collision   `json:"collisions,omitempty"`
}

func (r Report) Clean() bool {
	return len(r.Unlinked) == 0 && len(r.Collisions) == 0
}

type LinkError struct {
	Sheet      string
	Unlinked   []UnlinkedRow
	Collisions []Collision
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("sheet %s: %d unlinked rows, %d ambiguous rows", e.Sheet, len(e.Unlinked), len(e.Collisions))
}

func (e *LinkError) Is(target error) bool {
	return target == ErrUnlinked
}

// KeyString renders an fk value for messages.
func KeyString(v types.Value) string {
	switch x := v.(type) {
	case types.String:
		return string(x)
	case types.Number:
		return x.String()
	case types.Bool:
		if x {
			return "true"
		}
		return "false"
	}
	return "undefined"
}
