package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Mount registers the comment and post routes on r. Authentication
// middleware is the caller's concern.
func Mount(r chi.Router, cs CommentService, ps PostService, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}

	r.Route("/comment", func(r chi.Router) {
		r.Post("/", CreateComment(cs, log))
		r.Get("/post/{postId}/threaded", GetThreaded(cs, log))
		r.Put("/{id}", UpdateComment(cs, log))
		r.Delete("/{id}", DeleteComment(cs, log))
		r.Post("/{id}/{action}/{userId}", ReactComment(cs, log))
	})

	r.Route("/post", func(r chi.Router) {
		r.Post("/", CreatePost(ps, log))
		r.Get("/", ListPosts(ps, log))
		r.Get("/{id}", GetPost(ps, log))
		r.Put("/{id}", UpdatePost(ps, log))
		r.Delete("/{id}", DeletePost(ps, log))
		r.Post("/{id}/like", LikePost(ps, log))
	})
}
