package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/services/forum/internal/service"
	"github.com/example/forum-platform/services/forum/internal/store"
)

// PostService is the part of service.PostService the handlers use.
type PostService interface {
	Create(ctx context.Context, in service.CreatePostInput) (store.Post, error)
	Get(ctx context.Context, id string) (store.Post, error)
	List(ctx context.Context, f store.PostFilter) ([]store.Post, error)
	Update(ctx context.Context, id, userID string, isAdmin bool, in service.UpdatePostInput) (store.Post, error)
	Delete(ctx context.Context, id, userID string, isAdmin bool) (int64, error)
	ToggleLike(ctx context.Context, id, userID string) (store.Post, bool, error)
}

type postRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	MediaURLs []string `json:"mediaUrls"`
	TagIDs    []string `json:"tagsIds"`
}

type likeResponse struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// CreatePost handles POST /post
func CreatePost(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		var req postRequest
		if err := api.DecodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}

		p, err := ps.Create(r.Context(), service.CreatePostInput{
			AuthorID:  c.UserID,
			Title:     req.Title,
			Body:      req.Body,
			MediaURLs: req.MediaURLs,
			TagIDs:    req.TagIDs,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, p)
	}
}

// GetPost handles GET /post/{id}
func GetPost(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ps.Get(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")))
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// UpdatePost handles PUT /post/{id}
func UpdatePost(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		var req postRequest
		if err := api.DecodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", requestID(r), nil)
			return
		}

		p, err := ps.Update(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")), c.UserID, c.Admin, service.UpdatePostInput{
			Title:     req.Title,
			Body:      req.Body,
			MediaURLs: req.MediaURLs,
			TagIDs:    req.TagIDs,
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// ListPosts handles GET /post?author=&tag=&tagsIds=a,b&match=any|all
func ListPosts(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		raw := append([]string{}, q["tag"]...)
		raw = append(raw, strings.Split(q.Get("tagsIds"), ",")...)
		var tags []string
		seen := map[string]bool{}
		for _, t := range raw {
			if t = strings.TrimSpace(t); t != "" && !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}

		posts, err := ps.List(r.Context(), store.PostFilter{
			AuthorID: strings.TrimSpace(q.Get("author")),
			TagIDs:   tags,
			MatchAll: strings.EqualFold(strings.TrimSpace(q.Get("match")), "all"),
		})
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		if posts == nil {
			posts = []store.Post{}
		}
		api.WriteJSON(w, http.StatusOK, posts)
	}
}

// DeletePost handles DELETE /post/{id}. Comments of the post go with it.
func DeletePost(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		if _, err := ps.Delete(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")), c.UserID, c.Admin); err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// LikePost handles POST /post/{id}/like
func LikePost(ps PostService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := caller(w, r)
		if !ok {
			return
		}

		p, liked, err := ps.ToggleLike(r.Context(), strings.TrimSpace(chi.URLParam(r, "id")), c.UserID)
		if err != nil {
			writeServiceError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, likeResponse{Liked: liked, LikesCount: p.LikedBy.Len()})
	}
}
