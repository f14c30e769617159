package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryPostStore_ListFiltersAndOrders(t *testing.T) {
	s := NewInMemoryPostStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	older, _ := s.Insert(ctx, Post{AuthorID: "user-a", Title: "old", TagIDs: []string{"go"}, CreatedAt: base})
	newer, _ := s.Insert(ctx, Post{AuthorID: "user-a", Title: "new", TagIDs: []string{"go", "db"}, CreatedAt: base.Add(time.Hour)})
	_, _ = s.Insert(ctx, Post{AuthorID: "user-b", Title: "other", TagIDs: []string{"db"}, CreatedAt: base.Add(2 * time.Hour)})

	got, err := s.List(ctx, PostFilter{AuthorID: "user-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ID != older.ID {
		t.Fatalf("expected [new old], got %+v", got)
	}

	got, _ = s.List(ctx, PostFilter{TagIDs: []string{"db"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 posts tagged db, got %d", len(got))
	}

	got, _ = s.List(ctx, PostFilter{TagIDs: []string{"go", "db"}, MatchAll: true})
	if len(got) != 1 || got[0].ID != newer.ID {
		t.Fatalf("expected only the post tagged go and db, got %+v", got)
	}

	got, _ = s.List(ctx, PostFilter{TagIDs: []string{"go", "db"}})
	if len(got) != 3 {
		t.Fatalf("expected 3 posts tagged go or db, got %d", len(got))
	}
}

func TestInMemoryPostStore_DeleteAndIsEdited(t *testing.T) {
	s := NewInMemoryPostStore()
	ctx := context.Background()

	p, _ := s.Insert(ctx, Post{AuthorID: "user-a", Title: "t", Body: "b"})
	if p.IsEdited() {
		t.Fatal("fresh post must not be edited")
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Minute)
	if err := s.Replace(ctx, p); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := s.GetByID(ctx, p.ID)
	if !got.IsEdited() {
		t.Fatal("expected edited post")
	}

	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByID(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
