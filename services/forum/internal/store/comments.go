package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a document id does not resolve.
var ErrNotFound = errors.New("not found")

// Comment is a single comment document.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId"`
	ParentID   *string   `json:"parentCommentId"`
	Body       string    `json:"body"`
	BodyHTML   string    `json:"bodyHtml,omitempty"` // rendered on read, never stored
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	LikedBy    UserSet   `json:"likedByUserIds"`
	DislikedBy UserSet   `json:"dislikedByUserIds"`
}

// ParentCommentID returns the parent id or "" for a root comment.
func (c Comment) ParentCommentID() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}

func (c Comment) IsRoot() bool { return c.ParentCommentID() == "" }

func (c Comment) LikesCount() int    { return c.LikedBy.Len() }
func (c Comment) DislikesCount() int { return c.DislikedBy.Len() }

// Clone returns a copy that shares no mutable state with c.
func (c Comment) Clone() Comment {
	out := c
	if c.ParentID != nil {
		pid := *c.ParentID
		out.ParentID = &pid
	}
	out.LikedBy = c.LikedBy.Clone()
	out.DislikedBy = c.DislikedBy.Clone()
	return out
}

func (c Comment) MarshalJSON() ([]byte, error) {
	type wire Comment
	return json.Marshal(struct {
		wire
		LikesCount    int `json:"likesCount"`
		DislikesCount int `json:"dislikesCount"`
	}{wire(c), c.LikesCount(), c.DislikesCount()})
}

// CommentStore is the persistence contract for comments. Implementations
// do not enforce referential integrity between comments and posts.
type CommentStore interface {
	ListByPost(ctx context.Context, postID string) ([]Comment, error)
	// GetByID returns ErrNotFound when id does not resolve.
	GetByID(ctx context.Context, id string) (Comment, error)
	// Insert assigns an id and persists c.
	Insert(ctx context.Context, c Comment) (Comment, error)
	// Replace overwrites the document with c.ID. Absent ids are a silent no-op.
	Replace(ctx context.Context, c Comment) error
	DeleteOne(ctx context.Context, id string) error
	// DeleteMany is best effort; absent ids are ignored.
	DeleteMany(ctx context.Context, ids []string) error
	// ListChildrenIDs returns the ids of direct replies to parentID.
	ListChildrenIDs(ctx context.Context, parentID string) ([]string, error)
	DeleteByPost(ctx context.Context, postID string) (int64, error)
	Ping(ctx context.Context) error
}
