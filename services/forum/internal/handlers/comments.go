package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/services/forum/internal/reaction"
	"github.com/example/forum-platform/services/forum/internal/service"
	"github.com/example/forum-platform/services/forum/internal/store"
	"github.com/example/forum-platform/services/forum/internal/thread"
)

// CommentService is the part of service.CommentService the handlers use.
type CommentService interface {
	CreateComment(ctx context.Context, in service.CreateCommentInput) (store.Comment, error)
	GetThreaded(ctx context.Context, postID string) ([]thread.Node, error)
	RequestEdit(ctx context.Context, commentID, userID string, isAdmin bool, body string) (store.Comment, error)
	RequestDelete(ctx context.Context, commentID, userID string) ([]string, error)
	React(ctx context.Context, commentID, userID string, a reaction.Action) (store.Comment, error)
}

type createCommentRequest struct {
	PostID          string  `json:"postId"`
	AuthorID        string  `json:"authorId"`
	Body            string  `json:"body"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}

type updateCommentRequest struct {
	Body string `json:"body"`
}

// GetThreaded handles GET /comment/post/{postId}/threaded
func GetThreaded(cs CommentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := strings.TrimSpace(chi.URLParam(r, "postId"))
		if postID == "" {
			api.BadRequest(w, "MISSING_ID", "postId is required", requestID(r), nil)
			return
		}

		forest, err := cs.GetThreaded(r.Context(), postID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		if forest == nil {
			forest = []thread.Node{}
		}
		api.WriteJSON(w, http.StatusOK, forest)
	}
}

// CreateComment handles POST /comment
func CreateComment(cs CommentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		var req createCommentRequest
		if err := api.DecodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}

		authorID := strings.TrimSpace(req.AuthorID)
		if authorID == "" {
			authorID = c.UserID
		}
		if authorID != c.UserID && !c.Admin {
			api.Forbidden(w, "FORBIDDEN", "authorId must match the caller", requestID(r))
			return
		}

		created, err := cs.CreateComment(r.Context(), service.CreateCommentInput{
			PostID:          req.PostID,
			AuthorID:        authorID,
			Body:            req.Body,
			ParentCommentID: req.ParentCommentID,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, created)
	}
}

// UpdateComment handles PUT /comment/{id}
func UpdateComment(cs CommentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", requestID(r), nil)
			return
		}

		var req updateCommentRequest
		if err := api.DecodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}

		if _, err := cs.RequestEdit(r.Context(), commentID, c.UserID, c.Admin, req.Body); err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteComment handles DELETE /comment/{id}
func DeleteComment(cs CommentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "id is required", requestID(r), nil)
			return
		}

		if _, err := cs.RequestDelete(r.Context(), commentID, c.UserID); err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReactComment handles POST /comment/{id}/{action}/{userId}
// where action is like, dislike, unlike or undislike.
func ReactComment(cs CommentService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		commentID := strings.TrimSpace(chi.URLParam(r, "id"))
		userID := strings.TrimSpace(chi.URLParam(r, "userId"))
		if commentID == "" || userID == "" {
			api.BadRequest(w, "MISSING_ID", "id and userId are required", requestID(r), nil)
			return
		}

		action, ok := reaction.ParseAction(chi.URLParam(r, "action"))
		if !ok {
			api.NotFound(w, "UNKNOWN_ACTION", "unknown reaction", requestID(r))
			return
		}
		if userID != c.UserID && !c.Admin {
			api.Forbidden(w, "FORBIDDEN", "cannot react on behalf of another user", requestID(r))
			return
		}

		updated, err := cs.React(r.Context(), commentID, userID, action)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}
