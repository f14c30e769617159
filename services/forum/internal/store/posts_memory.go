package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryPostStore is a development-only in-memory implementation.
type InMemoryPostStore struct {
	mu    sync.RWMutex
	posts map[string]Post
}

func NewInMemoryPostStore() *InMemoryPostStore {
	return &InMemoryPostStore{posts: make(map[string]Post)}
}

func (s *InMemoryPostStore) Insert(_ context.Context, p Post) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = p.Clone()
	p.ID = uuid.New().String()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.posts[p.ID] = p
	return p.Clone(), nil
}

func (s *InMemoryPostStore) GetByID(_ context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemoryPostStore) List(_ context.Context, f PostFilter) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Post{}
	for _, p := range s.posts {
		if f.matches(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemoryPostStore) Replace(_ context.Context, p Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.ID]; !ok {
		return nil
	}
	s.posts[p.ID] = p.Clone()
	return nil
}

func (s *InMemoryPostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, id)
	return nil
}
