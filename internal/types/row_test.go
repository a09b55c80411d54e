package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowKeepsInsertionOrder(t *testing.T) {
	r := RowOf("userId", 1, "name", "kim", "age", 30)
	r.Set("name", String("lee"))
	require.NoError(t, r.Append("post"))

	assert.Equal(t, []string{"userId", "name", "age", "post"}, r.Keys())
	assert.Equal(t, String("lee"), r.Value("name"))
	assert.Equal(t, Undefined{}, r.Value("missing"))
}

func TestBucketDoesNotReplaceValues(t *testing.T) {
	r := RowOf("userId", 1, "post", "pinned", "draft", nil)

	_, err := r.Bucket("post")
	require.ErrorIs(t, err, ErrFieldTaken)
	assert.Equal(t, String("pinned"), r.Value("post"))
	assert.ErrorIs(t, r.Append("post", RowOf("postId", 1)), ErrFieldTaken)

	b, err := r.Bucket("draft")
	require.NoError(t, err)
	assert.Same(t, b, r.Value("draft"))

	again, err := r.Bucket("draft")
	require.NoError(t, err)
	assert.Same(t, b, again)
}

func TestRowMarshalJSON(t *testing.T) {
	r := RowOf("userId", 2, "name", "kim", "nickname", nil, "active", false)
	r.Set("info", Relation{Op: OperationConnect, Target: References{{ID: 3, Valid: true}, {}}})
	require.NoError(t, r.Append("post", RowOf("postId", 10, "score", 1.5)))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"userId":2,"name":"kim","active":false,"info":{"connect":[{"id":3},{"id":null}]},"post":{"create":[{"postId":10,"score":1.5}]}}`,
		string(data))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same number", Number(2), Number(2), true},
		{"different number", Number(2), Number(3), false},
		{"number vs string", Number(2), String("2"), false},
		{"same string", String("a"), String("a"), true},
		{"bools", Bool(true), Bool(true), true},
		{"undefined", Undefined{}, Undefined{}, true},
		{"references are not comparable", Reference{ID: 1, Valid: true}, Reference{ID: 1, Valid: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestToAny(t *testing.T) {
	r := RowOf("userId", 1, "ratio", 0.5)
	r.Set("info", Relation{Op: OperationSet, Target: Reference{ID: 4, Valid: true}})

	got := ToAny(r)
	assert.Equal(t, map[string]any{
		"userId": int64(1),
		"ratio":  0.5,
		"info":   map[string]any{"set": map[string]any{"id": int64(4)}},
	}, got)
}

func TestSheetOptionValidate(t *testing.T) {
	ok := SheetOption{Name: "user", RowNameIndex: 2, StartRowIndex: 3}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.StartRowIndex = 2
	assert.Error(t, bad.Validate())

	withRel := ok
	withRel.Relations = []RelationSpec{{Key: "infoId", Option: "few", Operation: OperationConnect}}
	assert.ErrorContains(t, withRel.Validate(), "unsupported relation option")

	sub := SubCreateOption{SheetOption: ok}
	assert.ErrorContains(t, sub.Validate(), "fk cannot be empty")
	sub.FK = "userId"
	assert.NoError(t, sub.Validate())
	assert.Equal(t, "user", sub.RelationName())
}
