package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
// Documents are cloned on the way in and out so callers never share maps.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
	order    []string           // insertion order, used by ListByPost
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{
		comments: make(map[string]Comment),
	}
}

func (s *InMemoryCommentStore) ListByPost(_ context.Context, postID string) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Comment{}
	for _, id := range s.order {
		c, ok := s.comments[id]
		if ok && c.PostID == postID {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (s *InMemoryCommentStore) GetByID(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c.Clone(), nil
}

func (s *InMemoryCommentStore) Insert(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c = c.Clone()
	c.ID = uuid.New().String()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	s.comments[c.ID] = c
	s.order = append(s.order, c.ID)
	return c.Clone(), nil
}

func (s *InMemoryCommentStore) Replace(_ context.Context, c Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[c.ID]; !ok {
		return nil
	}
	s.comments[c.ID] = c.Clone()
	return nil
}

func (s *InMemoryCommentStore) DeleteOne(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(id)
	return nil
}

func (s *InMemoryCommentStore) DeleteMany(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.deleteLocked(id)
	}
	return nil
}

func (s *InMemoryCommentStore) ListChildrenIDs(_ context.Context, parentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, id := range s.order {
		if c, ok := s.comments[id]; ok && c.ParentCommentID() == parentID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *InMemoryCommentStore) DeleteByPost(_ context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.comments {
		if c.PostID == postID {
			s.deleteLocked(id)
			n++
		}
	}
	return n, nil
}

func (s *InMemoryCommentStore) Ping(context.Context) error { return nil }

func (s *InMemoryCommentStore) deleteLocked(id string) {
	if _, ok := s.comments[id]; !ok {
		return
	}
	delete(s.comments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
