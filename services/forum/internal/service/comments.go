package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/forum-platform/services/forum/internal/cascade"
	"github.com/example/forum-platform/services/forum/internal/content"
	"github.com/example/forum-platform/services/forum/internal/events"
	"github.com/example/forum-platform/services/forum/internal/reaction"
	"github.com/example/forum-platform/services/forum/internal/store"
	"github.com/example/forum-platform/services/forum/internal/thread"
)

// EventPublisher receives lifecycle events. *events.Publisher satisfies it.
type EventPublisher interface {
	Publish(subject, userID string, props map[string]any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, string, map[string]any) {}

// PostLookup resolves the post a comment hangs off.
type PostLookup interface {
	GetByID(ctx context.Context, id string) (store.Post, error)
}

// CreateCommentInput carries the fields of a new comment.
type CreateCommentInput struct {
	PostID          string
	AuthorID        string
	Body            string
	ParentCommentID *string
}

// CommentService orchestrates thread reads, authorization, reactions and
// cascading deletes over a CommentStore.
type CommentService struct {
	comments  store.CommentStore
	posts     PostLookup
	reactions *reaction.Engine
	cascade   *cascade.Deleter
	events    EventPublisher
	render    func(string) string
	log       *zap.Logger
	now       func() time.Time
}

func NewCommentService(comments store.CommentStore, posts PostLookup, pub EventPublisher, log *zap.Logger) *CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	if pub == nil {
		pub = noopPublisher{}
	}
	return &CommentService{
		comments:  comments,
		posts:     posts,
		reactions: reaction.NewEngine(comments),
		cascade:   cascade.NewDeleter(comments, log),
		events:    pub,
		render:    content.NewRenderer().Render,
		log:       log,
		now:       time.Now,
	}
}

func (s *CommentService) rendered(c store.Comment) store.Comment {
	c.BodyHTML = s.render(c.Body)
	return c
}

// CreateComment validates the input, stamps timestamps and inserts the comment.
// A parent, when given, must exist and belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (store.Comment, error) {
	in.PostID = strings.TrimSpace(in.PostID)
	in.AuthorID = strings.TrimSpace(in.AuthorID)
	switch {
	case in.PostID == "":
		return store.Comment{}, invalid("postId", "is required")
	case in.AuthorID == "":
		return store.Comment{}, invalid("authorId", "is required")
	case strings.TrimSpace(in.Body) == "":
		return store.Comment{}, invalid("body", "must not be empty")
	}

	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return store.Comment{}, lookupErr("post", in.PostID, err)
	}

	var parent *string
	if in.ParentCommentID != nil && strings.TrimSpace(*in.ParentCommentID) != "" {
		pid := strings.TrimSpace(*in.ParentCommentID)
		p, err := s.comments.GetByID(ctx, pid)
		if errors.Is(err, store.ErrNotFound) {
			return store.Comment{}, invalid("parentCommentId", "parent comment does not exist")
		}
		if err != nil {
			return store.Comment{}, fmt.Errorf("get parent comment %s: %w", pid, err)
		}
		if p.PostID != in.PostID {
			return store.Comment{}, invalid("parentCommentId", "parent comment belongs to another post")
		}
		parent = &pid
	}

	now := s.now().UTC()
	created, err := s.comments.Insert(ctx, store.Comment{
		PostID:     in.PostID,
		AuthorID:   in.AuthorID,
		ParentID:   parent,
		Body:       in.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
		LikedBy:    store.NewUserSet(),
		DislikedBy: store.NewUserSet(),
	})
	if err != nil {
		return store.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	s.events.Publish(events.SubjectCommentCreated, created.AuthorID, map[string]any{
		"comment_id":        created.ID,
		"post_id":           created.PostID,
		"parent_comment_id": created.ParentCommentID(),
	})
	return s.rendered(created), nil
}

// GetByID returns a single comment.
func (s *CommentService) GetByID(ctx context.Context, id string) (store.Comment, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return store.Comment{}, lookupErr("comment", id, err)
	}
	return s.rendered(c), nil
}

// GetThreaded returns the reply forest of a post, oldest first at every level.
func (s *CommentService) GetThreaded(ctx context.Context, postID string) ([]thread.Node, error) {
	all, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments of post %s: %w", postID, err)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	for i := range all {
		all[i] = s.rendered(all[i])
	}
	return thread.BuildForest(all), nil
}

// RequestEdit replaces the body. Allowed for the comment author or an admin.
func (s *CommentService) RequestEdit(ctx context.Context, commentID, userID string, isAdmin bool, body string) (store.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return store.Comment{}, invalid("body", "must not be empty")
	}
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return store.Comment{}, lookupErr("comment", commentID, err)
	}
	if c.AuthorID != userID && !isAdmin {
		return store.Comment{}, ErrForbidden
	}

	c.Body = body
	c.UpdatedAt = s.now().UTC()
	if err := s.comments.Replace(ctx, c); err != nil {
		return store.Comment{}, fmt.Errorf("replace comment %s: %w", commentID, err)
	}

	s.events.Publish(events.SubjectCommentEdited, userID, map[string]any{
		"comment_id": c.ID,
		"post_id":    c.PostID,
	})
	return s.rendered(c), nil
}

// RequestDelete removes the comment and its whole reply tree. Allowed for the
// comment author or the author of the owning post. Returns the deleted ids.
func (s *CommentService) RequestDelete(ctx context.Context, commentID, userID string) ([]string, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, lookupErr("comment", commentID, err)
	}

	if c.AuthorID != userID {
		post, err := s.posts.GetByID(ctx, c.PostID)
		if err != nil {
			return nil, lookupErr("post", c.PostID, err)
		}
		if post.AuthorID != userID {
			return nil, ErrForbidden
		}
	}

	ids, err := s.cascade.DeleteTree(ctx, commentID)
	if err != nil {
		return nil, err
	}

	s.log.Info("comment tree deleted",
		zap.String("comment_id", commentID),
		zap.String("user_id", userID),
		zap.Int("count", len(ids)))
	s.events.Publish(events.SubjectCommentDeleted, userID, map[string]any{
		"comment_id": commentID,
		"post_id":    c.PostID,
		"count":      len(ids),
	})
	return ids, nil
}

// React runs one reaction transition for userID on the comment.
func (s *CommentService) React(ctx context.Context, commentID, userID string, a reaction.Action) (store.Comment, error) {
	c, err := s.reactions.Apply(ctx, commentID, userID, a)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	if err != nil {
		return store.Comment{}, err
	}

	s.events.Publish(events.SubjectCommentReacted, userID, map[string]any{
		"comment_id":     c.ID,
		"action":         string(a),
		"likes_count":    c.LikesCount(),
		"dislikes_count": c.DislikesCount(),
	})
	return s.rendered(c), nil
}

func (s *CommentService) Like(ctx context.Context, commentID, userID string) (store.Comment, error) {
	return s.React(ctx, commentID, userID, reaction.Like)
}

func (s *CommentService) Dislike(ctx context.Context, commentID, userID string) (store.Comment, error) {
	return s.React(ctx, commentID, userID, reaction.Dislike)
}

func (s *CommentService) Unlike(ctx context.Context, commentID, userID string) (store.Comment, error) {
	return s.React(ctx, commentID, userID, reaction.Unlike)
}

func (s *CommentService) Undislike(ctx context.Context, commentID, userID string) (store.Comment, error) {
	return s.React(ctx, commentID, userID, reaction.Undislike)
}

// DeleteAllForPost removes every comment of a post. PostService calls it
// while deleting the post itself.
func (s *CommentService) DeleteAllForPost(ctx context.Context, postID string) (int64, error) {
	n, err := s.comments.DeleteByPost(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("delete comments of post %s: %w", postID, err)
	}
	return n, nil
}
