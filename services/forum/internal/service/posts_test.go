package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/forum-platform/services/forum/internal/store"
)

func TestPostCreate_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.postSvc.Create(context.Background(), CreatePostInput{AuthorID: "u", Body: "b"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
}

func TestPostDelete_CascadesComments(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, "userY")
	r := f.comment(t, p.ID, "userX", nil)
	f.comment(t, p.ID, "userZ", &r)

	_, err := f.postSvc.Delete(context.Background(), p.ID, "userX", false)
	assert.ErrorIs(t, err, ErrForbidden)

	n, err := f.postSvc.Delete(context.Background(), p.ID, "userY", false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = f.postSvc.Get(context.Background(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	left, err := f.comments.ListByPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Contains(t, f.pub.subjects(), "forum.posts.deleted")
}

func TestPostDelete_Admin(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, "userY")

	_, err := f.postSvc.Delete(context.Background(), p.ID, "root", true)
	require.NoError(t, err)

	_, err = f.postSvc.Delete(context.Background(), p.ID, "root", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostUpdate(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, "userY")
	ctx := context.Background()
	in := UpdatePostInput{Title: "renamed", Body: "new body", TagIDs: []string{"go"}}

	_, err := f.postSvc.Update(ctx, p.ID, "userX", false, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.postSvc.Update(ctx, p.ID, "userY", false, UpdatePostInput{Title: " ", Body: "b"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	got, err := f.postSvc.Update(ctx, p.ID, "userY", false, in)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, []string{"go"}, got.TagIDs)
	assert.True(t, got.IsEdited())
	assert.Equal(t, p.CreatedAt, got.CreatedAt)

	_, err = f.postSvc.Update(ctx, "missing", "userY", true, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostToggleLike(t *testing.T) {
	f := newFixture(t)
	p := f.post(t, "userY")
	ctx := context.Background()

	got, liked, err := f.postSvc.ToggleLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, got.LikedBy.Len())
	assert.True(t, got.IsEdited())

	got, liked, err = f.postSvc.ToggleLike(ctx, p.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, got.LikedBy.Len())

	_, _, err = f.postSvc.ToggleLike(ctx, "missing", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostList_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.postSvc.Create(ctx, CreatePostInput{AuthorID: "a", Title: "t1", Body: "b", TagIDs: []string{"go"}})
	require.NoError(t, err)
	_, err = f.postSvc.Create(ctx, CreatePostInput{AuthorID: "b", Title: "t2", Body: "b", TagIDs: []string{"rust"}})
	require.NoError(t, err)

	byAuthor, err := f.postSvc.List(ctx, store.PostFilter{AuthorID: "a"})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "t1", byAuthor[0].Title)

	byTag, err := f.postSvc.List(ctx, store.PostFilter{TagIDs: []string{"rust"}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "t2", byTag[0].Title)

	all, err := f.postSvc.List(ctx, store.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
