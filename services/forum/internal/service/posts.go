package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/forum-platform/services/forum/internal/content"
	"github.com/example/forum-platform/services/forum/internal/events"
	"github.com/example/forum-platform/services/forum/internal/store"
)

// CommentPurger removes all comments of a post. CommentService implements it.
type CommentPurger interface {
	DeleteAllForPost(ctx context.Context, postID string) (int64, error)
}

type CreatePostInput struct {
	AuthorID  string
	Title     string
	Body      string
	MediaURLs []string
	TagIDs    []string
}

// PostService covers the post lifecycle that comment threads hang off.
type PostService struct {
	posts    store.PostStore
	comments CommentPurger
	events   EventPublisher
	render   func(string) string
	log      *zap.Logger
	now      func() time.Time
}

func NewPostService(posts store.PostStore, comments CommentPurger, pub EventPublisher, log *zap.Logger) *PostService {
	if log == nil {
		log = zap.NewNop()
	}
	if pub == nil {
		pub = noopPublisher{}
	}
	return &PostService{
		posts:    posts,
		comments: comments,
		events:   pub,
		render:   content.NewRenderer().Render,
		log:      log,
		now:      time.Now,
	}
}

func (s *PostService) rendered(p store.Post) store.Post {
	p.BodyHTML = s.render(p.Body)
	return p
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (store.Post, error) {
	switch {
	case strings.TrimSpace(in.AuthorID) == "":
		return store.Post{}, invalid("authorId", "is required")
	case strings.TrimSpace(in.Title) == "":
		return store.Post{}, invalid("title", "must not be empty")
	case strings.TrimSpace(in.Body) == "":
		return store.Post{}, invalid("body", "must not be empty")
	}

	now := s.now().UTC()
	p, err := s.posts.Insert(ctx, store.Post{
		AuthorID:  strings.TrimSpace(in.AuthorID),
		Title:     strings.TrimSpace(in.Title),
		Body:      in.Body,
		MediaURLs: in.MediaURLs,
		TagIDs:    in.TagIDs,
		LikedBy:   store.NewUserSet(),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Post{}, fmt.Errorf("insert post: %w", err)
	}

	s.events.Publish(events.SubjectPostCreated, p.AuthorID, map[string]any{
		"post_id": p.ID,
		"tags":    p.TagIDs,
	})
	return s.rendered(p), nil
}

func (s *PostService) Get(ctx context.Context, id string) (store.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return store.Post{}, lookupErr("post", id, err)
	}
	return s.rendered(p), nil
}

func (s *PostService) List(ctx context.Context, f store.PostFilter) ([]store.Post, error) {
	out, err := s.posts.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	for i := range out {
		out[i] = s.rendered(out[i])
	}
	return out, nil
}

// UpdatePostInput replaces the editable fields of a post.
type UpdatePostInput struct {
	Title     string
	Body      string
	MediaURLs []string
	TagIDs    []string
}

// Update rewrites title, body, media and tags. Allowed for the post author or
// an admin. Likes, author and creation time are kept.
func (s *PostService) Update(ctx context.Context, id, userID string, isAdmin bool, in UpdatePostInput) (store.Post, error) {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return store.Post{}, invalid("title", "must not be empty")
	case strings.TrimSpace(in.Body) == "":
		return store.Post{}, invalid("body", "must not be empty")
	}

	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return store.Post{}, lookupErr("post", id, err)
	}
	if p.AuthorID != userID && !isAdmin {
		return store.Post{}, ErrForbidden
	}

	p.Title = strings.TrimSpace(in.Title)
	p.Body = in.Body
	p.MediaURLs = in.MediaURLs
	p.TagIDs = in.TagIDs
	p.UpdatedAt = s.now().UTC()
	if err := s.posts.Replace(ctx, p); err != nil {
		return store.Post{}, fmt.Errorf("replace post %s: %w", id, err)
	}
	return s.rendered(p), nil
}

// Delete removes the post and every comment under it. Allowed for the post
// author or an admin. Comments go first so none outlive their post.
func (s *PostService) Delete(ctx context.Context, id, userID string, isAdmin bool) (int64, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return 0, lookupErr("post", id, err)
	}
	if p.AuthorID != userID && !isAdmin {
		return 0, ErrForbidden
	}

	n, err := s.comments.DeleteAllForPost(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return n, fmt.Errorf("delete post %s: %w", id, err)
	}

	s.log.Info("post deleted",
		zap.String("post_id", id),
		zap.String("user_id", userID),
		zap.Int64("comments_deleted", n))
	s.events.Publish(events.SubjectPostDeleted, userID, map[string]any{
		"post_id":          id,
		"comments_deleted": n,
	})
	return n, nil
}

// ToggleLike flips userID's like on the post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, id, userID string) (store.Post, bool, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return store.Post{}, false, lookupErr("post", id, err)
	}

	liked := p.LikedBy.Add(userID)
	if !liked {
		p.LikedBy.Remove(userID)
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.posts.Replace(ctx, p); err != nil {
		return store.Post{}, false, fmt.Errorf("replace post %s: %w", id, err)
	}
	return s.rendered(p), liked, nil
}
