package reaction

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/forum-platform/services/forum/internal/store"
)

// countingStore wraps the in-memory store and counts writes.
type countingStore struct {
	*store.InMemoryCommentStore
	replaces int
}

func (s *countingStore) Replace(ctx context.Context, c store.Comment) error {
	s.replaces++
	return s.InMemoryCommentStore.Replace(ctx, c)
}

func setup(t *testing.T) (*Engine, *countingStore, string) {
	t.Helper()
	cs := &countingStore{InMemoryCommentStore: store.NewInMemoryCommentStore()}
	c, err := cs.Insert(context.Background(), store.Comment{PostID: "post-1", AuthorID: "author", Body: "hi"})
	require.NoError(t, err)
	return NewEngine(cs), cs, c.ID
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    State
		action  Action
		to      State
		wantErr error
	}{
		{Neutral, Like, Liked, nil},
		{Disliked, Like, Liked, nil},
		{Liked, Like, Liked, ErrAlreadyLiked},
		{Neutral, Dislike, Disliked, nil},
		{Liked, Dislike, Disliked, nil},
		{Disliked, Dislike, Disliked, ErrAlreadyDisliked},
		{Liked, Unlike, Neutral, nil},
		{Neutral, Unlike, Neutral, ErrNotLiked},
		{Disliked, Unlike, Disliked, ErrNotLiked},
		{Disliked, Undislike, Neutral, nil},
		{Neutral, Undislike, Neutral, ErrNotDisliked},
		{Liked, Undislike, Liked, ErrNotDisliked},
	}
	for _, tc := range cases {
		t.Run(tc.from.String()+"_"+string(tc.action), func(t *testing.T) {
			c := store.Comment{ID: "c"}
			switch tc.from {
			case Liked:
				c.LikedBy.Add("u1")
			case Disliked:
				c.DislikedBy.Add("u1")
			}

			err := Transition(&c, "u1", tc.action)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, ErrInvalidState)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.to, StateOf(c, "u1"))
		})
	}
}

func TestTransition_UnknownAction(t *testing.T) {
	c := store.Comment{ID: "c"}
	err := Transition(&c, "u1", Action("boost"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidState))
}

func TestApply_LikeTwice(t *testing.T) {
	e, cs, id := setup(t)
	ctx := context.Background()

	_, err := e.Apply(ctx, id, "u1", Like)
	require.NoError(t, err)
	_, err = e.Apply(ctx, id, "u1", Like)
	require.ErrorIs(t, err, ErrAlreadyLiked)

	got, _ := cs.GetByID(ctx, id)
	assert.Equal(t, []string{"u1"}, got.LikedBy.Slice())
	assert.Equal(t, 1, cs.replaces, "failed transition must not write")
}

func TestApply_LikeThenDislike(t *testing.T) {
	e, cs, id := setup(t)
	ctx := context.Background()

	_, err := e.Apply(ctx, id, "u1", Like)
	require.NoError(t, err)
	_, err = e.Apply(ctx, id, "u1", Dislike)
	require.NoError(t, err)

	got, _ := cs.GetByID(ctx, id)
	assert.Empty(t, got.LikedBy.Slice())
	assert.Equal(t, []string{"u1"}, got.DislikedBy.Slice())
	assert.Equal(t, 2, cs.replaces)
}

func TestApply_DoesNotTouchUpdatedAt(t *testing.T) {
	e, cs, id := setup(t)
	ctx := context.Background()
	before, _ := cs.GetByID(ctx, id)

	after, err := e.Apply(ctx, id, "u2", Dislike)
	require.NoError(t, err)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestApply_MissingComment(t *testing.T) {
	e, cs, _ := setup(t)
	_, err := e.Apply(context.Background(), "missing", "u1", Like)
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, cs.replaces)
}

func TestApply_RandomSequencesKeepSetsDisjoint(t *testing.T) {
	e, cs, id := setup(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))
	users := []string{"u1", "u2", "u3"}
	actions := []Action{Like, Dislike, Unlike, Undislike}

	for i := 0; i < 500; i++ {
		u := users[rng.Intn(len(users))]
		_, _ = e.Apply(ctx, id, u, actions[rng.Intn(len(actions))])

		got, err := cs.GetByID(ctx, id)
		require.NoError(t, err)
		for _, liked := range got.LikedBy.Slice() {
			require.False(t, got.DislikedBy.Has(liked), "user %s in both sets at step %d", liked, i)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction("undislike")
	assert.True(t, ok)
	assert.Equal(t, Undislike, a)

	_, ok = ParseAction("Like")
	assert.False(t, ok)
}
