package tree

import (
	"encoding/json"
	"testing"

	"github.com/Lumos-Labs-HQ/sheetflash/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, rows []*types.Row) string {
	t.Helper()
	data, err := json.Marshal(rows)
	require.NoError(t, err)
	return string(data)
}

func TestAttachToMatchingRoot(t *testing.T) {
	forest := []*types.Row{
		types.RowOf("userId", 1),
		types.RowOf("userId", 2),
	}
	child := types.RowOf("userId", 2, "postId", 10)

	found := Attach(forest, child, "userId", "post")

	require.True(t, found)
	assert.Equal(t, `[{"userId":1}]`, encode(t, forest[:1]))
	assert.Equal(t, `[{"userId":2,"post":{"create":[{"userId":2,"postId":10}]}}]`, encode(t, forest[1:]))
}

func TestAttachNothingLeavesForestUnchanged(t *testing.T) {
	forest := []*types.Row{types.RowOf("userId", 1, "name", "kim")}
	before := types.RowsToAny(forest)

	var children []*types.Row
	for _, child := range children {
		Attach(forest, child, "userId", "post")
	}

	if diff := cmp.Diff(before, types.RowsToAny(forest)); diff != "" {
		t.Errorf("forest changed (-before +after):\n%s", diff)
	}
}

func TestAttachMiss(t *testing.T) {
	forest := []*types.Row{
		types.RowOf("userId", 1),
		types.RowOf("userId", 2),
	}
	before := encode(t, forest)

	found := Attach(forest, types.RowOf("userId", 9, "postId", 1), "userId", "post")

	assert.False(t, found)
	assert.Equal(t, before, encode(t, forest))
	assert.Equal(t, []string{"userId"}, forest[0].Keys())
}

func TestAttachComparesStrictly(t *testing.T) {
	forest := []*types.Row{types.RowOf("userId", 2)}

	assert.False(t, Attach(forest, types.RowOf("userId", "2"), "userId", "post"))
	assert.Equal(t, 1, forest[0].Len())
}

func TestAttachUndefinedKeyClaimsNothing(t *testing.T) {
	forest := []*types.Row{
		types.RowOf("name", "no key"),
		types.RowOf("userId", 1),
	}
	child := types.RowOf("postId", 4)

	assert.False(t, Attach(forest, child, "userId", "post"))
	assert.Equal(t, []string{"name"}, forest[0].Keys())
	assert.Equal(t, []string{"userId"}, forest[1].Keys())
}

func TestAttachDescendsIntoBuckets(t *testing.T) {
	forest := []*types.Row{
		types.RowOf("userId", 1),
		types.RowOf("userId", 2),
	}
	require.True(t, Attach(forest, types.RowOf("postId", 10, "userId", 2), "userId", "post"))
	require.True(t, Attach(forest, types.RowOf("postId", 11, "userId", 2), "userId", "post"))

	require.True(t, Attach(forest, types.RowOf("commentId", 100, "postId", 11), "postId", "comment"))
	require.True(t, Attach(forest, types.RowOf("historyId", 7, "commentId", 100), "commentId", "history"))

	assert.JSONEq(t, `[
		{"userId":1},
		{"userId":2,"post":{"create":[
			{"postId":10,"userId":2},
			{"postId":11,"userId":2,"comment":{"create":[
				{"commentId":100,"postId":11,"history":{"create":[{"historyId":7,"commentId":100}]}}
			]}}
		]}}
	]`, encode(t, forest))
}

func TestAttachFirstMatchWinsInPreOrder(t *testing.T) {
	// The nested match under the first root is reached before the second
	// root, which shares the same key at the top level.
	nested := types.RowOf("postId", 5, "tag", "nested")
	first := types.RowOf("userId", 1)
	require.NoError(t, first.Append("post", nested))
	second := types.RowOf("postId", 5, "tag", "root")
	forest := []*types.Row{first, second}

	require.Equal(t, 2, CountMatches(forest, types.RowOf("postId", 5), "postId"))
	require.True(t, Attach(forest, types.RowOf("commentId", 1, "postId", 5), "postId", "comment"))

	_, nestedHas := nested.Get("comment")
	_, secondHas := second.Get("comment")
	assert.True(t, nestedHas)
	assert.False(t, secondHas)
}

func TestAttachMatchedRowIsNotSearchedDeeper(t *testing.T) {
	parent := types.RowOf("groupId", 1)
	inner := types.RowOf("groupId", 1, "level", "inner")
	require.NoError(t, parent.Append("sub", inner))

	require.True(t, AttachRow(parent, types.RowOf("groupId", 1, "memberId", 3), "groupId", "member"))

	members, err := parent.Bucket("member")
	require.NoError(t, err)
	assert.Len(t, members.Create, 1)
	_, innerHas := inner.Get("member")
	assert.False(t, innerHas)
}

func TestCountMatchesStopsAtMatch(t *testing.T) {
	// Attached posts keep their userId, so a second post sheet keyed by
	// userId sees them below the matching user. Only the user counts.
	forest := []*types.Row{types.RowOf("userId", 1), types.RowOf("userId", 2)}
	require.True(t, Attach(forest, types.RowOf("postId", 10, "userId", 2), "userId", "post"))
	require.True(t, Attach(forest, types.RowOf("postId", 13, "userId", 2), "userId", "post"))

	assert.Equal(t, 1, CountMatches(forest, types.RowOf("productId", 50, "userId", 2), "userId"))
	assert.Equal(t, 1, CountMatches(forest[1:], types.RowOf("commentId", 1, "postId", 13), "postId"))
}

func TestLinkKeepsExistingField(t *testing.T) {
	forest := []*types.Row{types.RowOf("userId", 1, "post", "pinned"), types.RowOf("userId", 1)}
	before := encode(t, forest)

	err := Link(forest, types.RowOf("postId", 10, "userId", 1), "userId", "post")

	require.ErrorIs(t, err, types.ErrFieldTaken)
	assert.Equal(t, types.String("pinned"), forest[0].Value("post"))
	assert.Equal(t, before, encode(t, forest))
	assert.False(t, Attach(forest, types.RowOf("postId", 11, "userId", 1), "userId", "post"))
}

func TestLinkNoMatch(t *testing.T) {
	forest := []*types.Row{types.RowOf("userId", 1)}
	assert.ErrorIs(t, Link(forest, types.RowOf("userId", 2), "userId", "post"), ErrNoMatch)
	assert.ErrorIs(t, Link(forest, types.RowOf("postId", 2), "userId", "post"), ErrNoMatch)
	assert.NoError(t, Link(forest, types.RowOf("userId", 1), "userId", "post"))
}

func TestCountMatchesUndefinedKey(t *testing.T) {
	forest := []*types.Row{types.RowOf("userId", 1)}
	assert.Equal(t, 0, CountMatches(forest, types.RowOf("postId", 1), "userId"))
}

func TestPrune(t *testing.T) {
	withEmpty := types.RowOf("userId", 1)
	require.NoError(t, withEmpty.Append("post"))
	withEmpty.Set("tags", types.Relation{Op: types.OperationConnect, Target: types.References{}})

	nestedEmpty := types.RowOf("userId", 2)
	post := types.RowOf("postId", 3)
	require.NoError(t, post.Append("comment"))
	require.NoError(t, nestedEmpty.Append("post", post, types.NewRow()))

	blank := types.NewRow()
	onlyEmpty := types.NewRow()
	require.NoError(t, onlyEmpty.Append("post"))

	got := Prune([]*types.Row{withEmpty, nestedEmpty, blank, onlyEmpty, nil})

	require.Len(t, got, 2)
	assert.JSONEq(t, `[
		{"userId":1},
		{"userId":2,"post":{"create":[{"postId":3}]}}
	]`, encode(t, got))
}

func TestPruneLeavesNoEmptyContainers(t *testing.T) {
	forest := []*types.Row{types.RowOf("a", 1), types.RowOf("a", 2)}
	Attach(forest, types.RowOf("a", 2, "b", 1), "a", "child")
	require.NoError(t, forest[0].Append("child"))
	forest[0].Set("refs", types.References{})

	var check func(t *testing.T, rows []*types.Row)
	check = func(t *testing.T, rows []*types.Row) {
		for _, row := range rows {
			require.Positive(t, row.Len())
			for key, v := range row.All() {
				switch x := v.(type) {
				case types.References:
					assert.NotEmpty(t, x, key)
				case *types.Bucket:
					require.NotEmpty(t, x.Create, key)
					check(t, x.Create)
				}
			}
		}
	}

	check(t, Prune(forest))
}
