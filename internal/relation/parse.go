package relation

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
)

// ParseReference turns a relation cell into a Reference (cardinality one) or
// References (cardinality many). ok is false when the cell holds nothing that
// can be read as an id, which callers must keep apart from an empty list.
//
// Strings are split on delimiter and every piece goes through parseInt;
// pieces that are not numbers are kept as invalid references. An empty
// delimiter splits between characters, so "3|7" gives 3, an invalid
// reference and 7.
func ParseReference(v types.Value, cardinality types.Cardinality, delimiter string) (types.Value, bool) {
	var refs types.References
	switch x := v.(type) {
	case types.Number:
		refs = types.References{numberRef(x)}
	case types.String:
		refs = splitRefs(string(x), delimiter)
	default:
		return nil, false
	}

	if cardinality == types.CardinalityOne {
		if len(refs) == 0 {
			return types.Reference{}, true
		}
		return refs[0], true
	}
	return refs, true
}

func splitRefs(s, delimiter string) types.References {
	pieces := strings.Split(s, delimiter)
	refs := make(types.References, len(pieces))
	for i, piece := range pieces {
		refs[i] = parseInt(piece)
	}
	return refs
}

// numberRef truncates n. Values with no int64 id are invalid.
func numberRef(n types.Number) types.Reference {
	f := math.Trunc(float64(n))
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return types.Reference{}
	}
	return types.Reference{ID: int64(f), Valid: true}
}

// parseInt reads a leading integer. Leading whitespace is skipped, an
// optional sign is honoured and the digit run ends at the first non-digit.
// "12abc" is 12, "abc" is invalid.
func parseInt(s string) types.Reference {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return types.Reference{}
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return types.Reference{}
	}
	if neg {
		n = -n
	}
	return types.Reference{ID: n, Valid: true}
}
