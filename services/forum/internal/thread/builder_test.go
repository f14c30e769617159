package thread

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/forum-platform/services/forum/internal/store"
)

func comment(id, parent string) store.Comment {
	c := store.Comment{ID: id, PostID: "post-1", AuthorID: "user-a", Body: "body " + id}
	if parent != "" {
		p := parent
		c.ParentID = &p
	}
	return c
}

func TestBuildForest_NestedChain(t *testing.T) {
	forest := BuildForest([]store.Comment{comment("1", ""), comment("2", "1"), comment("3", "2")})

	require.Len(t, forest, 1)
	assert.Equal(t, "1", forest[0].Comment.ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, "2", forest[0].Replies[0].Comment.ID)
	require.Len(t, forest[0].Replies[0].Replies, 1)
	assert.Equal(t, "3", forest[0].Replies[0].Replies[0].Comment.ID)
	assert.Empty(t, forest[0].Replies[0].Replies[0].Replies)
}

func TestBuildForest_ChildBeforeParent(t *testing.T) {
	forest := BuildForest([]store.Comment{comment("b", "a"), comment("a", "")})

	require.Len(t, forest, 1)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, "b", forest[0].Replies[0].Comment.ID)
}

func TestBuildForest_EveryCommentOnce(t *testing.T) {
	input := []store.Comment{
		comment("r1", ""), comment("r2", ""),
		comment("a", "r1"), comment("b", "r1"), comment("c", "a"),
		comment("d", "r2"), comment("e", "d"), comment("f", "e"),
	}
	forest := BuildForest(input)

	assert.Equal(t, len(input), Size(forest))

	seen := map[string]int{}
	var walk func(nodes []Node, parent string)
	walk = func(nodes []Node, parent string) {
		for _, n := range nodes {
			seen[n.Comment.ID]++
			assert.Equal(t, parent, n.Comment.ParentCommentID())
			walk(n.Replies, n.Comment.ID)
		}
	}
	walk(forest, "")
	for _, c := range input {
		assert.Equal(t, 1, seen[c.ID], "comment %s", c.ID)
	}
}

func TestBuildForest_ReplyOrderFollowsInput(t *testing.T) {
	forest := BuildForest([]store.Comment{comment("r", ""), comment("z", "r"), comment("a", "r"), comment("m", "r")})

	require.Len(t, forest, 1)
	var ids []string
	for _, n := range forest[0].Replies {
		ids = append(ids, n.Comment.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestBuildForest_DropsOrphans(t *testing.T) {
	forest := BuildForest([]store.Comment{
		comment("r", ""),
		comment("orphan", "deleted-parent"),
		comment("orphan-child", "orphan"),
	})

	require.Len(t, forest, 1)
	assert.Equal(t, "r", forest[0].Comment.ID)
	assert.Equal(t, 1, Size(forest))
}

func TestBuildForest_EmptyParentIsRoot(t *testing.T) {
	c := comment("r", "")
	empty := ""
	c.ParentID = &empty

	forest := BuildForest([]store.Comment{c})
	require.Len(t, forest, 1)
}

func TestBuildForest_CyclesTerminate(t *testing.T) {
	forest := BuildForest([]store.Comment{
		comment("r", ""),
		comment("x", "y"),
		comment("y", "x"),
		comment("self", "self"),
	})

	require.Len(t, forest, 1)
	assert.Equal(t, 1, Size(forest))
}

func TestBuildForest_DeepChain(t *testing.T) {
	const depth = 5000
	input := make([]store.Comment, depth)
	input[0] = comment("c0", "")
	for i := 1; i < depth; i++ {
		input[i] = comment(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i-1))
	}
	assert.Equal(t, depth, Size(BuildForest(input)))
}

func TestBuildForest_EmptyInputSerializesAsList(t *testing.T) {
	raw, err := json.Marshal(BuildForest(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestNode_JSONShape(t *testing.T) {
	raw, err := json.Marshal(BuildForest([]store.Comment{comment("1", ""), comment("2", "1")}))
	require.NoError(t, err)

	var decoded []struct {
		Comment struct {
			ID string `json:"id"`
		} `json:"comment"`
		Replies []json.RawMessage `json:"replies"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "1", decoded[0].Comment.ID)
	assert.Len(t, decoded[0].Replies, 1)
}
