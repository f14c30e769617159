// Package reaction implements the per-user like/dislike state machine for comments.
package reaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/forum-platform/services/forum/internal/store"
)

// State is a user's reaction to one comment.
type State int

const (
	Neutral State = iota
	Liked
	Disliked
)

func (s State) String() string {
	switch s {
	case Liked:
		return "liked"
	case Disliked:
		return "disliked"
	default:
		return "neutral"
	}
}

// Action is a requested reaction transition.
type Action string

const (
	Like      Action = "like"
	Dislike   Action = "dislike"
	Unlike    Action = "unlike"
	Undislike Action = "undislike"
)

// ParseAction maps a route segment to an Action.
func ParseAction(s string) (Action, bool) {
	switch a := Action(s); a {
	case Like, Dislike, Unlike, Undislike:
		return a, true
	}
	return "", false
}

// ErrInvalidState is wrapped by every precondition failure below.
var ErrInvalidState = errors.New("invalid reaction state")

var (
	ErrAlreadyLiked    = fmt.Errorf("%w: already liked", ErrInvalidState)
	ErrAlreadyDisliked = fmt.Errorf("%w: already disliked", ErrInvalidState)
	ErrNotLiked        = fmt.Errorf("%w: not liked", ErrInvalidState)
	ErrNotDisliked     = fmt.Errorf("%w: not disliked", ErrInvalidState)
)

// StateOf reads the user's current state from the comment's reaction sets.
func StateOf(c store.Comment, userID string) State {
	switch {
	case c.LikedBy.Has(userID):
		return Liked
	case c.DislikedBy.Has(userID):
		return Disliked
	default:
		return Neutral
	}
}

// Transition applies a to c in memory. On error c is left untouched.
// The two sets stay disjoint for userID after every successful call.
func Transition(c *store.Comment, userID string, a Action) error {
	from := StateOf(*c, userID)
	switch a {
	case Like:
		if from == Liked {
			return ErrAlreadyLiked
		}
		c.DislikedBy.Remove(userID)
		c.LikedBy.Add(userID)
	case Dislike:
		if from == Disliked {
			return ErrAlreadyDisliked
		}
		c.LikedBy.Remove(userID)
		c.DislikedBy.Add(userID)
	case Unlike:
		if from != Liked {
			return ErrNotLiked
		}
		c.LikedBy.Remove(userID)
	case Undislike:
		if from != Disliked {
			return ErrNotDisliked
		}
		c.DislikedBy.Remove(userID)
	default:
		return fmt.Errorf("unknown reaction action %q", a)
	}
	return nil
}

// Store is the slice of the comment store the engine needs.
type Store interface {
	GetByID(ctx context.Context, id string) (store.Comment, error)
	Replace(ctx context.Context, c store.Comment) error
}

// Engine runs transitions as read-modify-write against a Store.
type Engine struct {
	store Store
}

func NewEngine(s Store) *Engine {
	return &Engine{store: s}
}

// Apply fetches the comment, applies the transition and persists it with
// exactly one Replace. Failed transitions write nothing. Reactions are not
// edits, so UpdatedAt is left alone.
func (e *Engine) Apply(ctx context.Context, commentID, userID string, a Action) (store.Comment, error) {
	c, err := e.store.GetByID(ctx, commentID)
	if err != nil {
		return store.Comment{}, err
	}
	if err := Transition(&c, userID, a); err != nil {
		return store.Comment{}, err
	}
	if err := e.store.Replace(ctx, c); err != nil {
		return store.Comment{}, fmt.Errorf("persist %s: %w", a, err)
	}
	return c, nil
}
