package store

import (
	"context"
	"encoding/json"
	"time"
)

// Post is the anchor for a comment thread.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"bodyHtml,omitempty"` // rendered on read, never stored
	MediaURLs []string  `json:"mediaUrls"`
	TagIDs    []string  `json:"tagsIds"`
	LikedBy   UserSet   `json:"likedByUserIds"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Post) IsEdited() bool { return !p.CreatedAt.Equal(p.UpdatedAt) }

func (p Post) Clone() Post {
	out := p
	out.MediaURLs = append([]string(nil), p.MediaURLs...)
	out.TagIDs = append([]string(nil), p.TagIDs...)
	out.LikedBy = p.LikedBy.Clone()
	return out
}

func (p Post) MarshalJSON() ([]byte, error) {
	type wire Post
	if p.MediaURLs == nil {
		p.MediaURLs = []string{}
	}
	if p.TagIDs == nil {
		p.TagIDs = []string{}
	}
	return json.Marshal(struct {
		wire
		LikesCount int  `json:"likesCount"`
		IsEdited   bool `json:"isEdited"`
	}{wire(p), p.LikedBy.Len(), p.IsEdited()})
}

// PostFilter narrows List. Empty fields match everything. A post matches
// TagIDs when it carries any of them, or all of them with MatchAll.
type PostFilter struct {
	AuthorID string
	TagIDs   []string
	MatchAll bool
}

func (f PostFilter) matches(p Post) bool {
	if f.AuthorID != "" && p.AuthorID != f.AuthorID {
		return false
	}
	if len(f.TagIDs) == 0 {
		return true
	}
	have := make(map[string]bool, len(p.TagIDs))
	for _, t := range p.TagIDs {
		have[t] = true
	}
	hits := 0
	for _, t := range f.TagIDs {
		if have[t] {
			hits++
		}
	}
	if f.MatchAll {
		return hits == len(f.TagIDs)
	}
	return hits > 0
}

// PostStore is the persistence contract for posts.
type PostStore interface {
	Insert(ctx context.Context, p Post) (Post, error)
	// GetByID returns ErrNotFound when id does not resolve.
	GetByID(ctx context.Context, id string) (Post, error)
	// List returns matching posts, newest first.
	List(ctx context.Context, f PostFilter) ([]Post, error)
	Replace(ctx context.Context, p Post) error
	Delete(ctx context.Context, id string) error
}
