package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/forum-platform/services/forum/internal/store"
)

// fakeStore serves a fixed parent -> children map and records DeleteMany calls.
type fakeStore struct {
	children   map[string][]string
	deleteCall [][]string
	listErr    error
}

func (f *fakeStore) ListChildrenIDs(_ context.Context, parentID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.children[parentID], nil
}

func (f *fakeStore) DeleteMany(_ context.Context, ids []string) error {
	f.deleteCall = append(f.deleteCall, append([]string(nil), ids...))
	return nil
}

func TestDeleteTree_Completeness(t *testing.T) {
	fs := &fakeStore{children: map[string][]string{
		"R": {"A", "B"},
		"A": {"C"},
		"X": {"Y"},
	}}
	ids, err := NewDeleter(fs, zap.NewNop()).DeleteTree(context.Background(), "R")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"R", "A", "B", "C"}, ids)
	require.Len(t, fs.deleteCall, 1, "exactly one bulk delete")
	assert.ElementsMatch(t, []string{"R", "A", "B", "C"}, fs.deleteCall[0])
}

func TestDeleteTree_ChainBreadthFirst(t *testing.T) {
	fs := &fakeStore{children: map[string][]string{"R": {"A"}, "A": {"B"}}}
	ids, err := NewDeleter(fs, nil).DeleteTree(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "A", "B"}, ids)
	assert.Equal(t, [][]string{{"R", "A", "B"}}, fs.deleteCall)
}

func TestDeleteTree_MissingRootIsIdempotent(t *testing.T) {
	fs := &fakeStore{children: map[string][]string{}}
	d := NewDeleter(fs, nil)

	for i := 0; i < 2; i++ {
		ids, err := d.DeleteTree(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Equal(t, []string{"ghost"}, ids)
	}
	assert.Len(t, fs.deleteCall, 2)
}

func TestDeleteTree_CycleTerminates(t *testing.T) {
	fs := &fakeStore{children: map[string][]string{"R": {"A"}, "A": {"R"}}}
	ids, err := NewDeleter(fs, nil).DeleteTree(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, []string{"R", "A"}, ids)
}

func TestDeleteTree_ListErrorSkipsDelete(t *testing.T) {
	fs := &fakeStore{listErr: errors.New("store offline")}
	_, err := NewDeleter(fs, nil).DeleteTree(context.Background(), "R")
	require.Error(t, err)
	assert.Empty(t, fs.deleteCall)
}

func TestDeleteTree_InMemoryStore(t *testing.T) {
	ctx := context.Background()
	cs := store.NewInMemoryCommentStore()
	reply := func(parent string) *string { return &parent }

	root, _ := cs.Insert(ctx, store.Comment{PostID: "p", AuthorID: "u", Body: "root"})
	a, _ := cs.Insert(ctx, store.Comment{PostID: "p", AuthorID: "u", Body: "a", ParentID: reply(root.ID)})
	_, _ = cs.Insert(ctx, store.Comment{PostID: "p", AuthorID: "u", Body: "a.1", ParentID: reply(a.ID)})
	other, _ := cs.Insert(ctx, store.Comment{PostID: "p", AuthorID: "u", Body: "other"})

	ids, err := NewDeleter(cs, nil).DeleteTree(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	left, _ := cs.ListByPost(ctx, "p")
	require.Len(t, left, 1)
	assert.Equal(t, other.ID, left[0].ID)
}
