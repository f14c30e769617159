package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/services/forum/internal/reaction"
	"github.com/example/forum-platform/services/forum/internal/service"
)

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

// caller returns the authenticated caller or writes 401.
func caller(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	c, ok := auth.CallerFromContext(r.Context())
	if !ok {
		api.Unauthorized(w, "UNAUTHORIZED", "authentication required", requestID(r))
		return auth.Caller{}, false
	}
	return c, true
}

// writeServiceError maps service errors onto the API envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	rid := requestID(r)

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		api.BadRequest(w, "VALIDATION_FAILED", verr.Error(), rid, map[string]any{"field": verr.Field})
	case errors.Is(err, reaction.ErrInvalidState):
		api.BadRequest(w, "INVALID_REACTION", err.Error(), rid, nil)
	case errors.Is(err, service.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", err.Error(), rid)
	case errors.Is(err, service.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", "not allowed", rid)
	default:
		log.Error("request failed",
			zap.String("request_id", rid),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		api.Internal(w, rid)
	}
}
